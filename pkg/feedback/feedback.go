// Package feedback simulates human feedback on generated content. The
// real feedback channel is an external collaborator; the simulated
// service exists to close the select-generate-feedback-train loop.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
)

var ErrUnsupportedMode = errors.New("unsupported feedback mode")

type Mode string

const (
	ModeScore      Mode = "score"
	ModePreference Mode = "preference"
)

func (m Mode) Validate() error {
	switch m {
	case ModeScore, ModePreference:
		return nil
	default:
		return fmt.Errorf("mode %q: %w", string(m), ErrUnsupportedMode)
	}
}

type Label string

const (
	LabelBetter Label = "better"
	LabelSame   Label = "same"
	LabelWorse  Label = "worse"
)

// Labels is the fixed finite set of preference labels.
var Labels = []Label{LabelBetter, LabelSame, LabelWorse}

// Signal is the feedback on one piece of generated content. Exactly one
// of Score and Preference is meaningful, according to Mode.
type Signal struct {
	Mode       Mode    `json:"mode"`
	Score      float64 `json:"score,omitempty"`
	Preference Label   `json:"preference,omitempty"`
}

type Service interface {
	Feedback(ctx context.Context, content string) (Signal, error)
}

// Simulated derives a deterministic signal from a content hash. The mode
// is validated once at construction so a misconfigured mode aborts before
// any round executes.
type Simulated struct {
	mode   Mode
	logger *slog.Logger
}

func NewSimulated(mode Mode, logger *slog.Logger) (*Simulated, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	return &Simulated{
		mode:   mode,
		logger: logger,
	}, nil
}

func (s *Simulated) Mode() Mode {
	return s.mode
}

func (s *Simulated) Feedback(ctx context.Context, content string) (Signal, error) {
	if err := ctx.Err(); err != nil {
		return Signal{}, err
	}

	h := contentHash(content)

	switch s.mode {
	case ModeScore:
		score := float64(h%10001) / 10000.0
		s.logger.Debug("Feedback produced", "mode", string(s.mode), "score", score)

		return Signal{Mode: ModeScore, Score: score}, nil
	case ModePreference:
		label := Labels[h%uint64(len(Labels))]
		s.logger.Debug("Feedback produced", "mode", string(s.mode), "preference", string(label))

		return Signal{Mode: ModePreference, Preference: label}, nil
	default:
		return Signal{}, fmt.Errorf("mode %q: %w", string(s.mode), ErrUnsupportedMode)
	}
}

// Reward maps a signal onto a centered reward in [-0.5, 0.5] used by the
// default strategy update rule.
func (sig Signal) Reward() (float64, error) {
	switch sig.Mode {
	case ModeScore:
		if math.IsNaN(sig.Score) || sig.Score < 0 || sig.Score > 1 {
			return 0, fmt.Errorf("score %v outside [0,1]", sig.Score)
		}

		return sig.Score - 0.5, nil
	case ModePreference:
		switch sig.Preference {
		case LabelBetter:
			return 0.5, nil
		case LabelSame:
			return 0, nil
		case LabelWorse:
			return -0.5, nil
		default:
			return 0, fmt.Errorf("unknown preference label %q", string(sig.Preference))
		}
	default:
		return 0, fmt.Errorf("mode %q: %w", string(sig.Mode), ErrUnsupportedMode)
	}
}

func contentHash(content string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(content))

	return h.Sum64()
}
