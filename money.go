package acp

import (
	"strings"
)

// Currency is a lowercase ISO-4217 currency code.
type Currency string

// ParseCurrency lower-cases code and checks it is a three-letter code.
func ParseCurrency(code string) (Currency, error) {
	normalized := strings.ToLower(code)
	if !currencyPattern.MatchString(normalized) {
		return "", &ValidationError{Field: "currency", Message: "must be a 3-letter ISO 4217 code"}
	}
	return Currency(normalized), nil
}

func (c Currency) String() string { return string(c) }

// Money is a non-negative amount in minor units of a currency.
type Money struct {
	amount   int
	currency Currency
}

// NewMoney builds Money from a minor-unit amount and a case-insensitive currency code.
func NewMoney(amount int, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, &ValidationError{Field: "amount", Message: "must be greater than or equal to zero"}
	}
	code, err := ParseCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: code}, nil
}

// Amount is expressed in minor units, e.g. cents.
func (m Money) Amount() int { return m.amount }

func (m Money) Currency() Currency { return m.currency }

// Payload returns the wire form {"amount": ..., "currency": ...}.
func (m Money) Payload() map[string]any {
	return map[string]any{
		"amount":   m.amount,
		"currency": m.currency.String(),
	}
}
