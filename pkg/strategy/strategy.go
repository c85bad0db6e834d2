// Package strategy implements the small local policy each participant
// trains: two linear scoring heads over a context feature vector, one
// ranking prompt templates and one gating keywords.
package strategy

import (
	"errors"
	"fmt"
	"math"

	"github.com/fedprompt/fedprompt/pkg/feedback"
	"github.com/fedprompt/fedprompt/pkg/prompt"
)

var (
	ErrInvalidContext = errors.New("context vector does not match input features")
	ErrNoSelection    = errors.New("no selection to train on")
)

const keywordGate = 0.5

// Model is one participant's private strategy model. It is not safe for
// concurrent use; each client owns exactly one.
type Model struct {
	shape  Shape
	lr     float64
	rule   UpdateRule
	params Params

	// Retained from the last Select call so Train can attribute the
	// feedback signal to the chosen rows.
	lastContext   []float64
	lastSelection *prompt.Selection
}

func New(shape Shape, learningRate float64, rule UpdateRule) (*Model, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if learningRate <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %v", learningRate)
	}
	if rule == nil {
		rule = ReinforceRule{}
	}

	return &Model{
		shape:  shape,
		lr:     learningRate,
		rule:   rule,
		params: NewParams(shape),
	}, nil
}

func (m *Model) Shape() Shape {
	return m.shape
}

// SetParams replaces the model parameters wholesale with a clone of p.
// Prior local state is discarded, never merged.
func (m *Model) SetParams(p Params) error {
	if err := p.CheckShape(m.shape); err != nil {
		return err
	}

	m.params = p.Clone()
	m.lastContext = nil
	m.lastSelection = nil

	return nil
}

// Params returns a clone of the current parameters.
func (m *Model) Params() Params {
	return m.params.Clone()
}

// Select scores all templates and keywords against the context vector and
// returns the argmax template together with all keywords whose gate
// activation exceeds the threshold. Selection is deterministic given
// parameters and context.
func (m *Model) Select(context []float64) (prompt.Selection, error) {
	if len(context) != m.shape.InputFeatures {
		return prompt.Selection{}, fmt.Errorf("got %d features, expected %d: %w",
			len(context), m.shape.InputFeatures, ErrInvalidContext)
	}

	templateIdx := 0
	best := math.Inf(-1)
	for i := 0; i < m.shape.NumTemplates; i++ {
		score := m.rowScore(KeyTemplateWeights, KeyTemplateBias, i, context)
		if score > best {
			best = score
			templateIdx = i
		}
	}

	var keywords []int
	for i := 0; i < m.shape.NumKeywords; i++ {
		if sigmoid(m.rowScore(KeyKeywordWeights, KeyKeywordBias, i, context)) > keywordGate {
			keywords = append(keywords, i)
		}
	}

	sel := prompt.Selection{TemplateIndex: templateIdx, KeywordIndices: keywords}

	ctxCopy := make([]float64, len(context))
	copy(ctxCopy, context)
	m.lastContext = ctxCopy
	m.lastSelection = &sel

	return sel, nil
}

// Train applies one parameter update for the rows chosen by the last
// Select call, scaled by the learning rate and the reward the update rule
// derives from the signal.
func (m *Model) Train(sig feedback.Signal) error {
	if m.lastSelection == nil {
		return ErrNoSelection
	}

	reward, err := m.rule.Reward(sig)
	if err != nil {
		return fmt.Errorf("deriving reward: %w", err)
	}

	step := m.lr * reward
	m.applyRow(KeyTemplateWeights, KeyTemplateBias, m.lastSelection.TemplateIndex, step)
	for _, ki := range m.lastSelection.KeywordIndices {
		m.applyRow(KeyKeywordWeights, KeyKeywordBias, ki, step)
	}

	return nil
}

func (m *Model) rowScore(weightsKey, biasKey string, row int, context []float64) float64 {
	weights := m.params.Data[weightsKey]
	offset := row * m.shape.InputFeatures

	score := m.params.Data[biasKey][row]
	for j, x := range context {
		score += weights[offset+j] * x
	}

	return score
}

func (m *Model) applyRow(weightsKey, biasKey string, row int, step float64) {
	weights := m.params.Data[weightsKey]
	offset := row * m.shape.InputFeatures

	for j, x := range m.lastContext {
		weights[offset+j] += step * x
	}
	m.params.Data[biasKey][row] += step
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
