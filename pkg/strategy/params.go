package strategy

import (
	"fmt"
	"math"
)

// Tensor names of the two scoring heads.
const (
	KeyTemplateWeights = "templates.w"
	KeyTemplateBias    = "templates.b"
	KeyKeywordWeights  = "keywords.w"
	KeyKeywordBias     = "keywords.b"
)

// Shape describes the strategy model dimensions derived from the
// configured pools.
type Shape struct {
	NumTemplates  int `json:"num_templates"`
	NumKeywords   int `json:"num_keywords"`
	InputFeatures int `json:"input_features"`
}

func (s Shape) Validate() error {
	if s.NumTemplates <= 0 {
		return fmt.Errorf("num_templates must be positive, got %d", s.NumTemplates)
	}
	if s.NumKeywords <= 0 {
		return fmt.Errorf("num_keywords must be positive, got %d", s.NumKeywords)
	}
	if s.InputFeatures <= 0 {
		return fmt.Errorf("input_features must be positive, got %d", s.InputFeatures)
	}

	return nil
}

// Params is a named collection of parameter tensors. Values are handed
// between the coordinator and clients only as clones, never as shared
// references.
type Params struct {
	Data map[string][]float64 `json:"data"`
}

// NewParams returns zero-initialized parameters for the given shape.
func NewParams(shape Shape) Params {
	return Params{
		Data: map[string][]float64{
			KeyTemplateWeights: make([]float64, shape.NumTemplates*shape.InputFeatures),
			KeyTemplateBias:    make([]float64, shape.NumTemplates),
			KeyKeywordWeights:  make([]float64, shape.NumKeywords*shape.InputFeatures),
			KeyKeywordBias:     make([]float64, shape.NumKeywords),
		},
	}
}

// Clone returns a deep copy sharing no memory with the receiver.
func (p Params) Clone() Params {
	data := make(map[string][]float64, len(p.Data))
	for name, tensor := range p.Data {
		copied := make([]float64, len(tensor))
		copy(copied, tensor)
		data[name] = copied
	}

	return Params{Data: data}
}

// Equal reports bit-exact equality of all tensors.
func (p Params) Equal(other Params) bool {
	if len(p.Data) != len(other.Data) {
		return false
	}

	for name, tensor := range p.Data {
		otherTensor, ok := other.Data[name]
		if !ok || len(tensor) != len(otherTensor) {
			return false
		}
		for i := range tensor {
			if math.Float64bits(tensor[i]) != math.Float64bits(otherTensor[i]) {
				return false
			}
		}
	}

	return true
}

// CheckShape verifies the tensors match the given shape.
func (p Params) CheckShape(shape Shape) error {
	expected := map[string]int{
		KeyTemplateWeights: shape.NumTemplates * shape.InputFeatures,
		KeyTemplateBias:    shape.NumTemplates,
		KeyKeywordWeights:  shape.NumKeywords * shape.InputFeatures,
		KeyKeywordBias:     shape.NumKeywords,
	}

	if len(p.Data) != len(expected) {
		return fmt.Errorf("expected %d tensors, got %d", len(expected), len(p.Data))
	}

	for name, size := range expected {
		tensor, ok := p.Data[name]
		if !ok {
			return fmt.Errorf("missing tensor %q", name)
		}
		if len(tensor) != size {
			return fmt.Errorf("tensor %q has %d elements, expected %d", name, len(tensor), size)
		}
	}

	return nil
}
