package acp

import (
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// BuyerParams carries the fields of a [Buyer].
type BuyerParams struct {
	FirstName   string              `json:"first_name" validate:"notblank"`
	LastName    string              `json:"last_name" validate:"notblank"`
	Email       openapi_types.Email `json:"email" validate:"required,email"`
	PhoneNumber *string             `json:"phone_number,omitempty" validate:"omitnil,notblank"`
}

// Buyer identifies the person paying for a checkout session.
type Buyer struct {
	rawPayload
	params BuyerParams
}

// NewBuyer validates p.
func NewBuyer(p BuyerParams) (*Buyer, error) {
	if err := validateStruct(p); err != nil {
		return nil, err
	}
	raw := map[string]any{
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"email":      string(p.Email),
	}
	if p.PhoneNumber != nil {
		raw["phone_number"] = *p.PhoneNumber
	}
	return &Buyer{rawPayload: rawPayload{raw: raw}, params: p}, nil
}

// ParseBuyer builds a Buyer from its wire form.
func ParseBuyer(payload map[string]any) (*Buyer, error) {
	r := newPayloadReader(payload)
	buyer, err := NewBuyer(BuyerParams{
		FirstName:   r.str("first_name"),
		LastName:    r.str("last_name"),
		Email:       openapi_types.Email(r.str("email")),
		PhoneNumber: r.optStr("phone_number"),
	})
	if err != nil {
		return nil, err
	}
	buyer.raw = clonePayload(r.m)
	return buyer, nil
}

func (b *Buyer) FirstName() string          { return b.params.FirstName }
func (b *Buyer) LastName() string           { return b.params.LastName }
func (b *Buyer) Email() openapi_types.Email { return b.params.Email }

// PhoneNumber reports the optional phone number.
func (b *Buyer) PhoneNumber() (string, bool) { return deref(b.params.PhoneNumber) }

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}
