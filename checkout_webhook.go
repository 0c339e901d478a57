package acp

// WebhookEventType enumerates the supported checkout webhook events.
type WebhookEventType string

const (
	WebhookEventTypeOrderCreate WebhookEventType = "order_create"
	WebhookEventTypeOrderUpdate WebhookEventType = "order_update"

	// Legacy names still emitted by some merchants.
	WebhookEventTypeOrderCreated WebhookEventType = "order_created"
	WebhookEventTypeOrderUpdated WebhookEventType = "order_updated"
)

// Canonical maps legacy event names onto their current form.
func (t WebhookEventType) Canonical() WebhookEventType {
	switch t {
	case WebhookEventTypeOrderCreated:
		return WebhookEventTypeOrderCreate
	case WebhookEventTypeOrderUpdated:
		return WebhookEventTypeOrderUpdate
	default:
		return t
	}
}

// EventDataType labels the payload for a webhook event.
type EventDataType string

const (
	EventDataTypeOrder EventDataType = "order"
)

// OrderStatus defines model for webhook data status.
type OrderStatus string

const (
	OrderStatusCreated      OrderStatus = "created"
	OrderStatusManualReview OrderStatus = "manual_review"
	OrderStatusConfirmed    OrderStatus = "confirmed"
	OrderStatusCanceled     OrderStatus = "canceled"
	OrderStatusShipped      OrderStatus = "shipped"
	OrderStatusFulfilled    OrderStatus = "fulfilled"
)

// RefundType captures the source of refunded funds.
type RefundType string

const (
	RefundTypeStoreCredit     RefundType = "store_credit"
	RefundTypeOriginalPayment RefundType = "original_payment"
)

// Refund describes a refund emitted in webhook events.
type Refund struct {
	rawPayload
	fields refundFields
}

type refundFields struct {
	Type   string `json:"type" validate:"oneof=store_credit original_payment"`
	Amount int    `json:"amount" validate:"gte=0"`
}

// ParseRefund builds a Refund from its wire form. The amount is required.
func ParseRefund(payload map[string]any) (*Refund, error) {
	r := newPayloadReader(payload)
	f := refundFields{
		Type:   r.str("type"),
		Amount: r.integer("amount", -1),
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := validateStruct(f); err != nil {
		return nil, err
	}
	return &Refund{rawPayload: rawPayload{raw: clonePayload(r.m)}, fields: f}, nil
}

func (r *Refund) Type() RefundType { return RefundType(r.fields.Type) }
func (r *Refund) Amount() int      { return r.fields.Amount }

// EventDataOrder is the order payload carried by webhook events.
type EventDataOrder struct {
	rawPayload
	fields  eventDataOrderFields
	refunds []*Refund
}

type eventDataOrderFields struct {
	Type              string `json:"type" validate:"eq=order"`
	CheckoutSessionID string `json:"checkout_session_id" validate:"notblank"`
	PermalinkURL      string `json:"permalink_url" validate:"notblank"`
	Status            string `json:"status" validate:"oneof=created manual_review confirmed canceled shipped fulfilled"`
}

// ParseEventDataOrder builds the order data of a webhook event.
func ParseEventDataOrder(payload map[string]any) (*EventDataOrder, error) {
	r := newPayloadReader(payload)
	f := eventDataOrderFields{
		Type:              r.str("type"),
		CheckoutSessionID: r.str("checkout_session_id"),
		PermalinkURL:      r.str("permalink_url"),
		Status:            r.str("status"),
	}
	if err := validateStruct(f); err != nil {
		return nil, err
	}
	refunds, err := parseList(r, "refunds", ParseRefund)
	if err != nil {
		return nil, err
	}
	return &EventDataOrder{rawPayload: rawPayload{raw: clonePayload(r.m)}, fields: f, refunds: refunds}, nil
}

func (d *EventDataOrder) Type() EventDataType       { return EventDataType(d.fields.Type) }
func (d *EventDataOrder) CheckoutSessionID() string { return d.fields.CheckoutSessionID }
func (d *EventDataOrder) PermalinkURL() string      { return d.fields.PermalinkURL }
func (d *EventDataOrder) Status() OrderStatus       { return OrderStatus(d.fields.Status) }
func (d *EventDataOrder) Refunds() []*Refund        { return cloneList(d.refunds) }

// WebhookEvent is an order notification delivered to the merchant.
type WebhookEvent struct {
	rawPayload
	rawType WebhookEventType
	data    *EventDataOrder
}

// ParseWebhookEvent builds a WebhookEvent, normalising legacy event names.
func ParseWebhookEvent(payload map[string]any) (*WebhookEvent, error) {
	r := newPayloadReader(payload)
	eventType := WebhookEventType(r.str("type"))
	switch eventType.Canonical() {
	case WebhookEventTypeOrderCreate, WebhookEventTypeOrderUpdate:
	default:
		return nil, &ValidationError{Field: "type", Message: "must be order_create or order_update"}
	}
	dataPayload := r.object("data")
	if r.err != nil {
		return nil, r.err
	}
	data, err := ParseEventDataOrder(dataPayload)
	if err != nil {
		return nil, withFieldPrefix("data", err)
	}
	return &WebhookEvent{rawPayload: rawPayload{raw: clonePayload(r.m)}, rawType: eventType, data: data}, nil
}

// UnmarshalJSON decodes and validates an event.
func (e *WebhookEvent) UnmarshalJSON(b []byte) error {
	payload, err := decodeObject(b)
	if err != nil {
		return &TransportError{Message: "decode webhook event", Err: err}
	}
	parsed, err := ParseWebhookEvent(payload)
	if err != nil {
		return err
	}
	*e = *parsed
	return nil
}

// RawType returns the event type exactly as received.
func (e *WebhookEvent) RawType() WebhookEventType { return e.rawType }

// Type returns the canonical event type.
func (e *WebhookEvent) Type() WebhookEventType { return e.rawType.Canonical() }

func (e *WebhookEvent) Data() *EventDataOrder { return e.data }
