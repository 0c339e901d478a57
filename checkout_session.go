package acp

import (
	"strings"
)

// CheckoutSession is the aggregate returned by every checkout endpoint. A
// session is never mutated; each response yields a new instance.
type CheckoutSession struct {
	rawPayload
	fields              checkoutSessionFields
	lineItems           []*LineItem
	fulfillmentAddress  *Address
	totals              []*Total
	fulfillmentOptions  []*FulfillmentOption
	fulfillmentOptionID *string
	messages            []*Message
	order               *OrderReference
	buyer               *Buyer
	paymentProvider     *PaymentProvider
	links               []*Link
}

type checkoutSessionFields struct {
	ID       string `json:"id" validate:"notblank"`
	Status   string `json:"status" validate:"oneof=not_ready_for_payment ready_for_payment completed canceled in_progress"`
	Currency string `json:"currency" validate:"currency"`
}

// ParseCheckoutSession builds a CheckoutSession and all of its children from a
// decoded response body.
func ParseCheckoutSession(payload map[string]any) (*CheckoutSession, error) {
	r := newPayloadReader(payload)
	f := checkoutSessionFields{
		ID:       r.str("id"),
		Status:   r.str("status"),
		Currency: strings.ToLower(r.str("currency")),
	}
	if err := validateStruct(f); err != nil {
		return nil, err
	}

	s := &CheckoutSession{
		rawPayload:          rawPayload{raw: clonePayload(r.m)},
		fields:              f,
		fulfillmentOptionID: r.optStr("fulfillment_option_id"),
	}

	var err error
	if s.lineItems, err = parseList(r, "line_items", ParseLineItem); err != nil {
		return nil, err
	}
	if s.totals, err = parseList(r, "totals", ParseTotal); err != nil {
		return nil, err
	}
	if s.fulfillmentOptions, err = parseList(r, "fulfillment_options", ParseFulfillmentOption); err != nil {
		return nil, err
	}
	if s.messages, err = parseList(r, "messages", ParseMessage); err != nil {
		return nil, err
	}
	if s.links, err = parseList(r, "links", ParseLink); err != nil {
		return nil, err
	}
	if s.fulfillmentAddress, err = parseOptional(r, "fulfillment_address", ParseAddress); err != nil {
		return nil, err
	}
	if s.order, err = parseOptional(r, "order", ParseOrderReference); err != nil {
		return nil, err
	}
	if s.buyer, err = parseOptional(r, "buyer", ParseBuyer); err != nil {
		return nil, err
	}
	if s.paymentProvider, err = parseOptional(r, "payment_provider", ParsePaymentProvider); err != nil {
		return nil, err
	}
	return s, nil
}

// UnmarshalJSON decodes and validates a session.
func (s *CheckoutSession) UnmarshalJSON(data []byte) error {
	payload, err := decodeObject(data)
	if err != nil {
		return &TransportError{Message: "decode checkout session", Err: err}
	}
	parsed, err := ParseCheckoutSession(payload)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

func (s *CheckoutSession) ID() string                    { return s.fields.ID }
func (s *CheckoutSession) Status() CheckoutSessionStatus { return CheckoutSessionStatus(s.fields.Status) }

// Currency is always lower-cased.
func (s *CheckoutSession) Currency() Currency { return Currency(s.fields.Currency) }

func (s *CheckoutSession) LineItems() []*LineItem                   { return cloneList(s.lineItems) }
func (s *CheckoutSession) FulfillmentAddress() *Address             { return s.fulfillmentAddress }
func (s *CheckoutSession) Totals() []*Total                         { return cloneList(s.totals) }
func (s *CheckoutSession) FulfillmentOptions() []*FulfillmentOption { return cloneList(s.fulfillmentOptions) }

// FulfillmentOptionID reports the selected fulfillment option, if any.
func (s *CheckoutSession) FulfillmentOptionID() (string, bool) { return deref(s.fulfillmentOptionID) }

func (s *CheckoutSession) Messages() []*Message              { return cloneList(s.messages) }
func (s *CheckoutSession) Order() *OrderReference            { return s.order }
func (s *CheckoutSession) Buyer() *Buyer                     { return s.buyer }
func (s *CheckoutSession) PaymentProvider() *PaymentProvider { return s.paymentProvider }
func (s *CheckoutSession) Links() []*Link                    { return cloneList(s.links) }

func parseOptional[T any](r *payloadReader, key string, parse func(map[string]any) (*T, error)) (*T, error) {
	obj := r.object(key)
	if r.err != nil {
		return nil, r.err
	}
	if obj == nil {
		return nil, nil
	}
	v, err := parse(obj)
	if err != nil {
		return nil, withFieldPrefix(key, err)
	}
	return v, nil
}
