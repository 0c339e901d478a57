package acp

import (
	"strings"
)

// AddressParams carries the fields of an [Address].
type AddressParams struct {
	Name       string  `json:"name" validate:"notblank,max=256"`
	LineOne    string  `json:"line_one" validate:"notblank,max=60"`
	LineTwo    *string `json:"line_two,omitempty" validate:"omitnil,max=60"`
	City       string  `json:"city" validate:"notblank"`
	State      string  `json:"state" validate:"notblank"`
	Country    string  `json:"country" validate:"notblank,len=2,alpha"`
	PostalCode string  `json:"postal_code" validate:"notblank"`
}

// Address is a postal address. State and country are stored upper-cased.
type Address struct {
	rawPayload
	params AddressParams
}

// NewAddress validates p and normalises state and country.
func NewAddress(p AddressParams) (*Address, error) {
	if err := validateStruct(p); err != nil {
		return nil, err
	}
	p.State = strings.ToUpper(p.State)
	p.Country = strings.ToUpper(p.Country)

	raw := map[string]any{
		"name":        p.Name,
		"line_one":    p.LineOne,
		"city":        p.City,
		"state":       p.State,
		"country":     p.Country,
		"postal_code": p.PostalCode,
	}
	if p.LineTwo != nil {
		raw["line_two"] = *p.LineTwo
	}
	return &Address{rawPayload: rawPayload{raw: raw}, params: p}, nil
}

// ParseAddress builds an Address from its wire form.
func ParseAddress(payload map[string]any) (*Address, error) {
	r := newPayloadReader(payload)
	addr, err := NewAddress(AddressParams{
		Name:       r.str("name"),
		LineOne:    r.str("line_one"),
		LineTwo:    r.optStr("line_two"),
		City:       r.str("city"),
		State:      r.str("state"),
		Country:    r.str("country"),
		PostalCode: r.str("postal_code"),
	})
	if err != nil {
		return nil, err
	}
	addr.raw = clonePayload(r.m)
	return addr, nil
}

func (a *Address) Name() string    { return a.params.Name }
func (a *Address) LineOne() string { return a.params.LineOne }

// LineTwo reports the optional second address line.
func (a *Address) LineTwo() (string, bool) { return deref(a.params.LineTwo) }

func (a *Address) City() string       { return a.params.City }
func (a *Address) State() string      { return a.params.State }
func (a *Address) Country() string    { return a.params.Country }
func (a *Address) PostalCode() string { return a.params.PostalCode }
