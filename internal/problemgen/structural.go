package problemgen

import (
	"fmt"
	"strings"
)

// StructuralValidator checks that required fields are present and that
// the options form a well-formed multiple-choice set.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(p *Problem) *ValidationError {
	if strings.TrimSpace(p.Question) == "" {
		return &ValidationError{Validator: v.Name(), Message: "question is empty"}
	}
	if strings.TrimSpace(p.Explanation) == "" {
		return &ValidationError{Validator: v.Name(), Message: "explanation is empty"}
	}
	if !p.Tier.Valid() {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("difficulty %d out of range", p.Tier)}
	}
	if len(p.Options) != OptionCount {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected %d options, got %d", OptionCount, len(p.Options)),
		}
	}

	seen := make(map[string]bool, len(p.Options))
	for _, opt := range p.Options {
		key := strings.TrimSpace(opt)
		if key == "" {
			return &ValidationError{Validator: v.Name(), Message: "option is empty"}
		}
		if seen[key] {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("duplicate option %q", key)}
		}
		seen[key] = true
	}
	if !seen[strings.TrimSpace(p.Answer)] {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("answer %q is not one of the options", p.Answer)}
	}
	return nil
}
