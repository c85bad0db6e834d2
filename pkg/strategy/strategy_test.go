package strategy

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fedprompt/fedprompt/pkg/feedback"
)

func testShape() Shape {
	return Shape{NumTemplates: 5, NumKeywords: 10, InputFeatures: 4}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		shape   Shape
		lr      float64
		wantErr bool
	}{
		{name: "valid", shape: testShape(), lr: 0.01},
		{name: "zero templates", shape: Shape{NumKeywords: 1, InputFeatures: 1}, lr: 0.01, wantErr: true},
		{name: "zero keywords", shape: Shape{NumTemplates: 1, InputFeatures: 1}, lr: 0.01, wantErr: true},
		{name: "zero features", shape: Shape{NumTemplates: 1, NumKeywords: 1}, lr: 0.01, wantErr: true},
		{name: "zero learning rate", shape: testShape(), lr: 0, wantErr: true},
		{name: "negative learning rate", shape: testShape(), lr: -0.1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.shape, tt.lr, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSelectBounds(t *testing.T) {
	model, err := New(testShape(), 0.1, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Sweep many contexts and nudge parameters between sweeps to cover
	// selections beyond the zero-parameter default.
	for trial := 0; trial < 50; trial++ {
		context := []float64{float64(trial) * 0.1, -0.3, float64(trial%7) - 3, 0.5}

		sel, err := model.Select(context)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}

		if sel.TemplateIndex < 0 || sel.TemplateIndex >= 5 {
			t.Errorf("template index %d outside [0,5)", sel.TemplateIndex)
		}
		for _, ki := range sel.KeywordIndices {
			if ki < 0 || ki >= 10 {
				t.Errorf("keyword index %d outside [0,10)", ki)
			}
		}

		if err := model.Train(feedback.Signal{Mode: feedback.ModeScore, Score: float64(trial%11) / 10}); err != nil {
			t.Fatalf("Train: %v", err)
		}
	}
}

func TestSelectInvalidContext(t *testing.T) {
	model, err := New(testShape(), 0.1, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, n := range []int{0, 3, 5} {
		if _, err := model.Select(make([]float64, n)); !errors.Is(err, ErrInvalidContext) {
			t.Errorf("Select with %d features: error = %v, want ErrInvalidContext", n, err)
		}
	}
}

func TestSelectDeterminism(t *testing.T) {
	runSelections := func() []string {
		model, err := New(testShape(), 0.05, nil)
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		var out []string
		for i := 0; i < 20; i++ {
			context := []float64{float64(i), 0.25, -1, float64(i % 3)}
			sel, err := model.Select(context)
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			out = append(out, fmt.Sprintf("%d/%v", sel.TemplateIndex, sel.KeywordIndices))
			if err := model.Train(feedback.Signal{Mode: feedback.ModeScore, Score: 0.9}); err != nil {
				t.Fatalf("Train: %v", err)
			}
		}

		return out
	}

	if diff := cmp.Diff(runSelections(), runSelections()); diff != "" {
		t.Errorf("two identical runs diverged (-first +second):\n%s", diff)
	}
}

func TestTrainRequiresSelection(t *testing.T) {
	model, err := New(testShape(), 0.1, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := model.Train(feedback.Signal{Mode: feedback.ModeScore, Score: 0.7}); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Train before Select: error = %v, want ErrNoSelection", err)
	}
}

func TestTrainNeutralSignalLeavesParams(t *testing.T) {
	model, err := New(testShape(), 0.1, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := model.Select([]float64{1, 2, 3, 4}); err != nil {
		t.Fatalf("Select: %v", err)
	}

	before := model.Params()
	if err := model.Train(feedback.Signal{Mode: feedback.ModeScore, Score: 0.5}); err != nil {
		t.Fatalf("Train: %v", err)
	}

	if !model.Params().Equal(before) {
		t.Error("neutral signal changed parameters")
	}
}

func TestTrainUpdatesChosenRowsOnly(t *testing.T) {
	model, err := New(testShape(), 0.1, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	context := []float64{1, 0, -1, 2}
	sel, err := model.Select(context)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	before := model.Params()
	if err := model.Train(feedback.Signal{Mode: feedback.ModeScore, Score: 1}); err != nil {
		t.Fatalf("Train: %v", err)
	}
	after := model.Params()

	features := testShape().InputFeatures
	for row := 0; row < testShape().NumTemplates; row++ {
		changed := false
		for j := 0; j < features; j++ {
			idx := row*features + j
			if before.Data[KeyTemplateWeights][idx] != after.Data[KeyTemplateWeights][idx] {
				changed = true
			}
		}
		if changed != (row == sel.TemplateIndex) {
			t.Errorf("template row %d changed=%v, selected row was %d", row, changed, sel.TemplateIndex)
		}
	}
}

func TestSetParamsReplacesAndCopies(t *testing.T) {
	model, err := New(testShape(), 0.1, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	incoming := NewParams(testShape())
	incoming.Data[KeyTemplateBias][0] = 42

	if err := model.SetParams(incoming); err != nil {
		t.Fatalf("SetParams: %v", err)
	}

	// Mutating the caller's copy must not leak into the model.
	incoming.Data[KeyTemplateBias][0] = -1
	if got := model.Params().Data[KeyTemplateBias][0]; got != 42 {
		t.Errorf("model params aliased the incoming slice: bias[0] = %v", got)
	}

	bad := Params{Data: map[string][]float64{KeyTemplateBias: {1}}}
	if err := model.SetParams(bad); err == nil {
		t.Error("SetParams accepted mismatched shape")
	}
}

func TestParamsCloneAndEqual(t *testing.T) {
	p := NewParams(testShape())
	p.Data[KeyKeywordBias][3] = 1.5

	clone := p.Clone()
	if !clone.Equal(p) {
		t.Fatal("clone is not equal to original")
	}

	clone.Data[KeyKeywordBias][3] = 2
	if p.Data[KeyKeywordBias][3] != 1.5 {
		t.Error("mutating clone changed original")
	}
	if clone.Equal(p) {
		t.Error("Equal missed a differing element")
	}
}
