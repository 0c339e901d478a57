package productfeed

import (
	"github.com/shopbridge/acp"
	"github.com/shopbridge/acp/internal/validation"
)

// ComplianceParams describes regulatory notices for a product. At least one
// field must be set.
type ComplianceParams struct {
	Warning        *string `json:"warning" validate:"omitnil,notblank"`
	WarningURL     *string `json:"warning_url" validate:"omitnil,notblank"`
	AgeRestriction *int    `json:"age_restriction" validate:"omitnil,gt=0"`
}

// Compliance is a validated [ComplianceParams].
type Compliance struct {
	params ComplianceParams
}

// NewCompliance validates p.
func NewCompliance(p ComplianceParams) (*Compliance, error) {
	if p.Warning == nil && p.WarningURL == nil && p.AgeRestriction == nil {
		return nil, &acp.ValidationError{Field: "compliance", Message: "requires at least one field"}
	}
	if err := validateStruct(p); err != nil {
		return nil, err
	}
	return &Compliance{params: ComplianceParams{
		Warning:        clonePtr(p.Warning),
		WarningURL:     clonePtr(p.WarningURL),
		AgeRestriction: clonePtr(p.AgeRestriction),
	}}, nil
}

func (c *Compliance) Warning() (string, bool)    { return deref(c.params.Warning) }
func (c *Compliance) WarningURL() (string, bool) { return deref(c.params.WarningURL) }
func (c *Compliance) AgeRestriction() (int, bool) {
	return deref(c.params.AgeRestriction)
}

// Record renders the present fields in warning, warning_url, age_restriction order.
func (c *Compliance) Record() Record {
	var rec Record
	if v, ok := c.Warning(); ok {
		rec = append(rec, Field{Key: "warning", Value: v})
	}
	if v, ok := c.WarningURL(); ok {
		rec = append(rec, Field{Key: "warning_url", Value: v})
	}
	if v, ok := c.AgeRestriction(); ok {
		rec = append(rec, Field{Key: "age_restriction", Value: v})
	}
	return rec
}

func validateStruct(v any) error {
	if fe := validation.Struct(v); fe != nil {
		return &acp.ValidationError{Field: fe.Field, Message: fe.Message}
	}
	return nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
