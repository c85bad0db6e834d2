package strategy

import "github.com/fedprompt/fedprompt/pkg/feedback"

// UpdateRule maps a feedback signal onto a signed reward that scales the
// parameter update. The mapping from a scalar or preference signal to an
// update direction is a policy choice, so it is pluggable.
type UpdateRule interface {
	Reward(sig feedback.Signal) (float64, error)
}

// ReinforceRule is the default rule: rewards are centered so a neutral
// signal leaves parameters untouched, positive feedback reinforces the
// chosen rows and negative feedback suppresses them.
type ReinforceRule struct{}

func (ReinforceRule) Reward(sig feedback.Signal) (float64, error) {
	return sig.Reward()
}
