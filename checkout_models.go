package acp

import (
	"fmt"
	"slices"
	"strings"
)

// CheckoutSessionStatus defines model for CheckoutSession.Status.
type CheckoutSessionStatus string

const (
	CheckoutSessionStatusCanceled           CheckoutSessionStatus = "canceled"
	CheckoutSessionStatusCompleted          CheckoutSessionStatus = "completed"
	CheckoutSessionStatusInProgress         CheckoutSessionStatus = "in_progress"
	CheckoutSessionStatusNotReadyForPayment CheckoutSessionStatus = "not_ready_for_payment"
	CheckoutSessionStatusReadyForPayment    CheckoutSessionStatus = "ready_for_payment"
)

// LinkType defines model for Link.Type.
type LinkType string

const (
	PrivacyPolicy      LinkType = "privacy_policy"
	SellerShopPolicies LinkType = "seller_shop_policies"
	TermsOfUse         LinkType = "terms_of_use"
)

// MessageType distinguishes informational and error messages.
type MessageType string

const (
	MessageTypeInfo  MessageType = "info"
	MessageTypeError MessageType = "error"
)

// MessageErrorCode defines model for Message.Code.
type MessageErrorCode string

const (
	Invalid         MessageErrorCode = "invalid"
	Missing         MessageErrorCode = "missing"
	OutOfStock      MessageErrorCode = "out_of_stock"
	PaymentDeclined MessageErrorCode = "payment_declined"
	Requires3ds     MessageErrorCode = "requires_3ds"
	RequiresSignIn  MessageErrorCode = "requires_sign_in"
)

// MessageContentType defines model for Message.ContentType.
type MessageContentType string

const (
	MessageContentTypeMarkdown MessageContentType = "markdown"
	MessageContentTypePlain    MessageContentType = "plain"
)

// SupportedPaymentMethods defines model for PaymentProvider.SupportedPaymentMethods.
type SupportedPaymentMethods string

const (
	Card SupportedPaymentMethods = "card"
)

// PaymentProviderName names a payment processor.
type PaymentProviderName string

const (
	PaymentProviderStripe PaymentProviderName = "stripe"
)

// TotalType defines model for Total.Type.
type TotalType string

const (
	TotalTypeDiscount        TotalType = "discount"
	TotalTypeFee             TotalType = "fee"
	TotalTypeFulfillment     TotalType = "fulfillment"
	TotalTypeItemsBaseAmount TotalType = "items_base_amount"
	TotalTypeItemsDiscount   TotalType = "items_discount"
	TotalTypeSubtotal        TotalType = "subtotal"
	TotalTypeTax             TotalType = "tax"
	TotalTypeTotal           TotalType = "total"
)

// FulfillmentOptionType discriminates fulfillment options.
type FulfillmentOptionType string

const (
	FulfillmentOptionTypeShipping FulfillmentOptionType = "shipping"
	FulfillmentOptionTypeDigital  FulfillmentOptionType = "digital"
)

// Item defines model for Item.
type Item struct {
	rawPayload
	id       string
	quantity int
}

type itemFields struct {
	ID       string `json:"id" validate:"notblank"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

// ParseItem builds an Item from its wire form.
func ParseItem(payload map[string]any) (*Item, error) {
	r := newPayloadReader(payload)
	f := itemFields{ID: r.str("id"), Quantity: r.integer("quantity", 0)}
	if r.err != nil {
		return nil, r.err
	}
	if err := validateStruct(f); err != nil {
		return nil, err
	}
	return &Item{rawPayload: rawPayload{raw: clonePayload(r.m)}, id: f.ID, quantity: f.Quantity}, nil
}

func (i *Item) ID() string    { return i.id }
func (i *Item) Quantity() int { return i.quantity }

// LineItem defines model for LineItem.
type LineItem struct {
	rawPayload
	fields lineItemFields
	item   *Item
}

type lineItemFields struct {
	ID         string `json:"id" validate:"notblank"`
	BaseAmount int    `json:"base_amount" validate:"gte=0"`
	Discount   int    `json:"discount" validate:"gte=0"`
	Subtotal   int    `json:"subtotal" validate:"gte=0"`
	Tax        int    `json:"tax" validate:"gte=0"`
	Total      int    `json:"total" validate:"gte=0"`
}

// ParseLineItem builds a LineItem and its nested Item from their wire form.
// Missing monetary fields read as zero.
func ParseLineItem(payload map[string]any) (*LineItem, error) {
	r := newPayloadReader(payload)
	f := lineItemFields{
		ID:         r.str("id"),
		BaseAmount: r.integer("base_amount", 0),
		Discount:   r.integer("discount", 0),
		Subtotal:   r.integer("subtotal", 0),
		Tax:        r.integer("tax", 0),
		Total:      r.integer("total", 0),
	}
	itemPayload := r.object("item")
	if r.err != nil {
		return nil, r.err
	}
	if err := validateStruct(f); err != nil {
		return nil, err
	}
	item, err := ParseItem(itemPayload)
	if err != nil {
		return nil, withFieldPrefix("item", err)
	}
	return &LineItem{rawPayload: rawPayload{raw: clonePayload(r.m)}, fields: f, item: item}, nil
}

func (l *LineItem) ID() string      { return l.fields.ID }
func (l *LineItem) Item() *Item     { return l.item }
func (l *LineItem) BaseAmount() int { return l.fields.BaseAmount }
func (l *LineItem) Discount() int   { return l.fields.Discount }
func (l *LineItem) Subtotal() int   { return l.fields.Subtotal }
func (l *LineItem) Tax() int        { return l.fields.Tax }
func (l *LineItem) Total() int      { return l.fields.Total }

// Total defines model for Total. Amount may be negative.
type Total struct {
	rawPayload
	fields totalFields
}

type totalFields struct {
	Type        string `json:"type" validate:"oneof=items_base_amount items_discount subtotal discount fulfillment tax fee total"`
	DisplayText string `json:"display_text"`
	Amount      int    `json:"amount"`
}

// ParseTotal builds a Total from its wire form.
func ParseTotal(payload map[string]any) (*Total, error) {
	r := newPayloadReader(payload)
	f := totalFields{
		Type:        r.str("type"),
		DisplayText: r.str("display_text"),
		Amount:      r.integer("amount", 0),
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := validateStruct(f); err != nil {
		return nil, err
	}
	return &Total{rawPayload: rawPayload{raw: clonePayload(r.m)}, fields: f}, nil
}

func (t *Total) Type() TotalType     { return TotalType(t.fields.Type) }
func (t *Total) DisplayText() string { return t.fields.DisplayText }
func (t *Total) Amount() int         { return t.fields.Amount }

// FulfillmentOption defines model for FulfillmentOption. Digital options never
// expose carrier or delivery window fields.
type FulfillmentOption struct {
	rawPayload
	fields fulfillmentOptionFields
}

type fulfillmentOptionFields struct {
	Type                 string  `json:"type" validate:"oneof=shipping digital"`
	ID                   string  `json:"id" validate:"notblank"`
	Title                string  `json:"title" validate:"notblank"`
	Subtitle             *string `json:"subtitle"`
	Carrier              *string `json:"carrier"`
	EarliestDeliveryTime *string `json:"earliest_delivery_time"`
	LatestDeliveryTime   *string `json:"latest_delivery_time"`
	Subtotal             int     `json:"subtotal" validate:"gte=0"`
	Tax                  int     `json:"tax" validate:"gte=0"`
	Total                int     `json:"total" validate:"gte=0"`
}

// ParseFulfillmentOption builds a FulfillmentOption from its wire form.
func ParseFulfillmentOption(payload map[string]any) (*FulfillmentOption, error) {
	r := newPayloadReader(payload)
	f := fulfillmentOptionFields{
		Type:                 r.str("type"),
		ID:                   r.str("id"),
		Title:                r.str("title"),
		Subtitle:             r.optStr("subtitle"),
		Carrier:              r.optStr("carrier"),
		EarliestDeliveryTime: r.optStr("earliest_delivery_time"),
		LatestDeliveryTime:   r.optStr("latest_delivery_time"),
		Subtotal:             r.integer("subtotal", 0),
		Tax:                  r.integer("tax", 0),
		Total:                r.integer("total", 0),
	}
	if r.err != nil {
		return nil, r.err
	}
	if FulfillmentOptionType(f.Type) == FulfillmentOptionTypeDigital {
		f.Carrier = nil
		f.EarliestDeliveryTime = nil
		f.LatestDeliveryTime = nil
	}
	if err := validateStruct(f); err != nil {
		return nil, err
	}
	return &FulfillmentOption{rawPayload: rawPayload{raw: clonePayload(r.m)}, fields: f}, nil
}

func (o *FulfillmentOption) Type() FulfillmentOptionType {
	return FulfillmentOptionType(o.fields.Type)
}
func (o *FulfillmentOption) ID() string    { return o.fields.ID }
func (o *FulfillmentOption) Title() string { return o.fields.Title }

func (o *FulfillmentOption) Subtitle() (string, bool) { return deref(o.fields.Subtitle) }
func (o *FulfillmentOption) Carrier() (string, bool)  { return deref(o.fields.Carrier) }

func (o *FulfillmentOption) EarliestDeliveryTime() (string, bool) {
	return deref(o.fields.EarliestDeliveryTime)
}

func (o *FulfillmentOption) LatestDeliveryTime() (string, bool) {
	return deref(o.fields.LatestDeliveryTime)
}

func (o *FulfillmentOption) Subtotal() int { return o.fields.Subtotal }
func (o *FulfillmentOption) Tax() int      { return o.fields.Tax }
func (o *FulfillmentOption) Total() int    { return o.fields.Total }

// Message defines model for Message. Error messages always carry a code.
type Message struct {
	rawPayload
	fields messageFields
}

type messageFields struct {
	Type        string  `json:"type" validate:"oneof=info error"`
	ContentType string  `json:"content_type" validate:"oneof=plain markdown"`
	Content     string  `json:"content" validate:"required"`
	Code        *string `json:"code"`
	Param       *string `json:"param"`
}

// messageErrorCodes restricts the code of error messages. Info messages may
// carry any code.
var messageErrorCodes = []MessageErrorCode{Missing, Invalid, OutOfStock, PaymentDeclined, RequiresSignIn, Requires3ds}

// ParseMessage builds a Message from its wire form.
func ParseMessage(payload map[string]any) (*Message, error) {
	r := newPayloadReader(payload)
	f := messageFields{
		Type:        r.str("type"),
		ContentType: r.str("content_type"),
		Content:     r.str("content"),
		Code:        r.optStr("code"),
		Param:       r.optStr("param"),
	}
	if err := validateStruct(f); err != nil {
		return nil, err
	}
	if MessageType(f.Type) == MessageTypeError {
		if f.Code == nil || *f.Code == "" {
			return nil, &ValidationError{Field: "code", Message: "is required for error messages"}
		}
		if !slices.Contains(messageErrorCodes, MessageErrorCode(*f.Code)) {
			return nil, &ValidationError{
				Field:   "code",
				Message: "must be one of [missing, invalid, out_of_stock, payment_declined, requires_sign_in, requires_3ds]",
			}
		}
	}
	return &Message{rawPayload: rawPayload{raw: clonePayload(r.m)}, fields: f}, nil
}

func (m *Message) Type() MessageType               { return MessageType(m.fields.Type) }
func (m *Message) ContentType() MessageContentType { return MessageContentType(m.fields.ContentType) }
func (m *Message) Content() string                 { return m.fields.Content }

// Code reports the error code of an error message.
func (m *Message) Code() (MessageErrorCode, bool) {
	code, ok := deref(m.fields.Code)
	return MessageErrorCode(code), ok
}

func (m *Message) Param() (string, bool) { return deref(m.fields.Param) }

// Link defines model for Link.
type Link struct {
	rawPayload
	fields linkFields
}

type linkFields struct {
	Type string `json:"type" validate:"oneof=terms_of_use privacy_policy seller_shop_policies"`
	URL  string `json:"url" validate:"notblank"`
}

// ParseLink builds a Link from its wire form.
func ParseLink(payload map[string]any) (*Link, error) {
	r := newPayloadReader(payload)
	f := linkFields{Type: r.str("type"), URL: r.str("url")}
	if err := validateStruct(f); err != nil {
		return nil, err
	}
	return &Link{rawPayload: rawPayload{raw: clonePayload(r.m)}, fields: f}, nil
}

func (l *Link) Type() LinkType { return LinkType(l.fields.Type) }
func (l *Link) URL() string    { return l.fields.URL }

// OrderReference defines model for Order.
type OrderReference struct {
	rawPayload
	fields orderReferenceFields
}

type orderReferenceFields struct {
	ID                string `json:"id" validate:"notblank"`
	CheckoutSessionID string `json:"checkout_session_id" validate:"notblank"`
	PermalinkURL      string `json:"permalink_url" validate:"notblank"`
}

// ParseOrderReference builds an OrderReference from its wire form.
func ParseOrderReference(payload map[string]any) (*OrderReference, error) {
	r := newPayloadReader(payload)
	f := orderReferenceFields{
		ID:                r.str("id"),
		CheckoutSessionID: r.str("checkout_session_id"),
		PermalinkURL:      r.str("permalink_url"),
	}
	if err := validateStruct(f); err != nil {
		return nil, err
	}
	return &OrderReference{rawPayload: rawPayload{raw: clonePayload(r.m)}, fields: f}, nil
}

func (o *OrderReference) ID() string                { return o.fields.ID }
func (o *OrderReference) CheckoutSessionID() string { return o.fields.CheckoutSessionID }
func (o *OrderReference) PermalinkURL() string      { return o.fields.PermalinkURL }

// PaymentProvider defines model for PaymentProvider.
type PaymentProvider struct {
	rawPayload
	fields paymentProviderFields
}

type paymentProviderFields struct {
	Provider                string   `json:"provider" validate:"notblank,oneof=stripe"`
	SupportedPaymentMethods []string `json:"supported_payment_methods" validate:"min=1,dive,oneof=card"`
}

// ParsePaymentProvider builds a PaymentProvider from its wire form. Provider
// and method names are matched case-insensitively.
func ParsePaymentProvider(payload map[string]any) (*PaymentProvider, error) {
	r := newPayloadReader(payload)
	f := paymentProviderFields{
		Provider:                strings.ToLower(r.str("provider")),
		SupportedPaymentMethods: r.strings("supported_payment_methods"),
	}
	if r.err != nil {
		return nil, r.err
	}
	for i, method := range f.SupportedPaymentMethods {
		f.SupportedPaymentMethods[i] = strings.ToLower(method)
	}
	if err := validateStruct(f); err != nil {
		return nil, err
	}
	return &PaymentProvider{rawPayload: rawPayload{raw: clonePayload(r.m)}, fields: f}, nil
}

func (p *PaymentProvider) Provider() PaymentProviderName {
	return PaymentProviderName(p.fields.Provider)
}

func (p *PaymentProvider) SupportedPaymentMethods() []SupportedPaymentMethods {
	out := make([]SupportedPaymentMethods, len(p.fields.SupportedPaymentMethods))
	for i, method := range p.fields.SupportedPaymentMethods {
		out[i] = SupportedPaymentMethods(method)
	}
	return out
}

// PaymentDataParams carries the fields of [PaymentData].
type PaymentDataParams struct {
	Token          string   `json:"token" validate:"notblank"`
	Provider       string   `json:"provider" validate:"oneof=stripe"`
	BillingAddress *Address `json:"billing_address,omitempty" validate:"-"`
}

// PaymentData is the payment token submitted when completing a checkout session.
type PaymentData struct {
	rawPayload
	params PaymentDataParams
}

// NewPaymentData validates p and lower-cases the provider.
func NewPaymentData(p PaymentDataParams) (*PaymentData, error) {
	p.Provider = strings.ToLower(p.Provider)
	if err := validateStruct(p); err != nil {
		return nil, err
	}
	raw := map[string]any{
		"token":    p.Token,
		"provider": p.Provider,
	}
	if p.BillingAddress != nil {
		raw["billing_address"] = p.BillingAddress.Payload()
	}
	return &PaymentData{rawPayload: rawPayload{raw: raw}, params: p}, nil
}

func (p *PaymentData) Token() string                 { return p.params.Token }
func (p *PaymentData) Provider() PaymentProviderName { return PaymentProviderName(p.params.Provider) }
func (p *PaymentData) BillingAddress() *Address      { return p.params.BillingAddress }

// parseList parses every object under key with parse, prefixing errors with
// the element path.
func parseList[T any](r *payloadReader, key string, parse func(map[string]any) (*T, error)) ([]*T, error) {
	entries := r.objects(key)
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*T, 0, len(entries))
	for i, entry := range entries {
		v, err := parse(entry)
		if err != nil {
			return nil, withFieldPrefix(fmt.Sprintf("%s[%d]", key, i), err)
		}
		out = append(out, v)
	}
	return out, nil
}

func cloneList[T any](in []*T) []*T {
	return slices.Clone(in)
}
