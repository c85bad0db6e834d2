package feedback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSimulatedModeValidation(t *testing.T) {
	tests := []struct {
		mode Mode
		err  error
	}{
		{mode: ModeScore},
		{mode: ModePreference},
		{mode: Mode("bogus"), err: ErrUnsupportedMode},
		{mode: Mode(""), err: ErrUnsupportedMode},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			_, err := NewSimulated(tt.mode, discardLogger())
			if !errors.Is(err, tt.err) {
				t.Fatalf("NewSimulated(%q) error = %v, want %v", tt.mode, err, tt.err)
			}
		})
	}
}

func TestScoreModeRange(t *testing.T) {
	svc, err := NewSimulated(ModeScore, discardLogger())
	if err != nil {
		t.Fatalf("NewSimulated: %v", err)
	}

	for i := 0; i < 100; i++ {
		content := fmt.Sprintf("generated content %d", i)
		sig, err := svc.Feedback(context.Background(), content)
		if err != nil {
			t.Fatalf("Feedback: %v", err)
		}
		if sig.Mode != ModeScore {
			t.Fatalf("signal mode = %q, want %q", sig.Mode, ModeScore)
		}
		if sig.Score < 0 || sig.Score > 1 {
			t.Errorf("score %v outside [0,1] for %q", sig.Score, content)
		}
	}
}

func TestPreferenceModeLabels(t *testing.T) {
	svc, err := NewSimulated(ModePreference, discardLogger())
	if err != nil {
		t.Fatalf("NewSimulated: %v", err)
	}

	valid := map[Label]bool{LabelBetter: true, LabelSame: true, LabelWorse: true}
	for i := 0; i < 100; i++ {
		sig, err := svc.Feedback(context.Background(), fmt.Sprintf("content %d", i))
		if err != nil {
			t.Fatalf("Feedback: %v", err)
		}
		if !valid[sig.Preference] {
			t.Errorf("preference %q not in the fixed label set", sig.Preference)
		}
	}
}

func TestFeedbackDeterminism(t *testing.T) {
	svc, err := NewSimulated(ModeScore, discardLogger())
	if err != nil {
		t.Fatalf("NewSimulated: %v", err)
	}

	first, err := svc.Feedback(context.Background(), "same content")
	if err != nil {
		t.Fatalf("Feedback: %v", err)
	}
	second, err := svc.Feedback(context.Background(), "same content")
	if err != nil {
		t.Fatalf("Feedback: %v", err)
	}

	if first != second {
		t.Errorf("identical content produced different signals: %+v vs %+v", first, second)
	}
}

func TestSignalReward(t *testing.T) {
	tests := []struct {
		name    string
		sig     Signal
		want    float64
		wantErr bool
	}{
		{name: "score high", sig: Signal{Mode: ModeScore, Score: 1}, want: 0.5},
		{name: "score mid", sig: Signal{Mode: ModeScore, Score: 0.5}, want: 0},
		{name: "score low", sig: Signal{Mode: ModeScore, Score: 0}, want: -0.5},
		{name: "score out of range", sig: Signal{Mode: ModeScore, Score: 1.5}, wantErr: true},
		{name: "preference better", sig: Signal{Mode: ModePreference, Preference: LabelBetter}, want: 0.5},
		{name: "preference same", sig: Signal{Mode: ModePreference, Preference: LabelSame}, want: 0},
		{name: "preference worse", sig: Signal{Mode: ModePreference, Preference: LabelWorse}, want: -0.5},
		{name: "unknown label", sig: Signal{Mode: ModePreference, Preference: Label("meh")}, wantErr: true},
		{name: "unknown mode", sig: Signal{Mode: Mode("bogus")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sig.Reward()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Reward() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Reward() = %v, want %v", got, tt.want)
			}
		})
	}
}
