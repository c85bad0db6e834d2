// Package prompt holds the template and keyword pools shared by all
// simulated participants and builds concrete prompt strings from a
// strategy selection.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyTemplatePool = errors.New("template pool is empty")
	ErrEmptyKeywordPool  = errors.New("keyword pool is empty")
	ErrTemplateSlot      = errors.New("template must contain exactly one substitution slot")
	ErrTemplateIndex     = errors.New("template index out of range")
	ErrKeywordIndex      = errors.New("keyword index out of range")
)

const substitutionSlot = "%s"

// Pools is the ordered pool of prompt templates and fixed keywords a
// strategy model selects from. Pools are immutable after validation.
type Pools struct {
	Templates []string
	Keywords  []string
}

func (p Pools) Validate() error {
	if len(p.Templates) == 0 {
		return ErrEmptyTemplatePool
	}
	if len(p.Keywords) == 0 {
		return ErrEmptyKeywordPool
	}

	for i, tmpl := range p.Templates {
		if strings.Count(tmpl, substitutionSlot) != 1 {
			return fmt.Errorf("template %d %q: %w", i, tmpl, ErrTemplateSlot)
		}
	}

	return nil
}

// Selection is the outcome of one strategy-model selection: one template
// index and an ordered set of keyword indices. It lives for a single
// client round.
type Selection struct {
	TemplateIndex  int   `json:"template_index"`
	KeywordIndices []int `json:"keyword_indices"`
}

// Format substitutes input into the selected template's slot and appends
// the selected keywords.
func (p Pools) Format(sel Selection, input string) (string, error) {
	if sel.TemplateIndex < 0 || sel.TemplateIndex >= len(p.Templates) {
		return "", fmt.Errorf("index %d with %d templates: %w", sel.TemplateIndex, len(p.Templates), ErrTemplateIndex)
	}

	keywords := make([]string, 0, len(sel.KeywordIndices))
	for _, ki := range sel.KeywordIndices {
		if ki < 0 || ki >= len(p.Keywords) {
			return "", fmt.Errorf("index %d with %d keywords: %w", ki, len(p.Keywords), ErrKeywordIndex)
		}
		keywords = append(keywords, p.Keywords[ki])
	}

	formatted := fmt.Sprintf(p.Templates[sel.TemplateIndex], input)
	if len(keywords) > 0 {
		formatted = formatted + " Keywords: " + strings.Join(keywords, ", ")
	}

	return formatted, nil
}
