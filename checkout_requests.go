package acp

// ItemRequest selects a product and quantity for a checkout session.
type ItemRequest struct {
	ID       string `json:"id" validate:"notblank"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

// CheckoutSessionCreateRequest defines model for CheckoutSessionCreateRequest.
type CheckoutSessionCreateRequest struct {
	Items              []ItemRequest `json:"items" validate:"min=1,dive"`
	Buyer              *Buyer        `json:"buyer,omitempty" validate:"-"`
	FulfillmentAddress *Address      `json:"fulfillment_address,omitempty" validate:"-"`
}

// CheckoutSessionUpdateRequest defines model for CheckoutSessionUpdateRequest.
// Nil fields are left unchanged by the server.
type CheckoutSessionUpdateRequest struct {
	Items               *[]ItemRequest `json:"items,omitempty" validate:"omitnil,min=1,dive"`
	Buyer               *Buyer         `json:"buyer,omitempty" validate:"-"`
	FulfillmentAddress  *Address       `json:"fulfillment_address,omitempty" validate:"-"`
	FulfillmentOptionID *string        `json:"fulfillment_option_id,omitempty" validate:"omitnil,notblank"`
}

// CheckoutSessionCompleteRequest defines model for CheckoutSessionCompleteRequest.
type CheckoutSessionCompleteRequest struct {
	PaymentData *PaymentData `json:"payment_data" validate:"required"`
	Buyer       *Buyer       `json:"buyer,omitempty" validate:"-"`
}

// Payload renders the item in wire form.
func (r ItemRequest) Payload() map[string]any {
	return map[string]any{
		"id":       r.ID,
		"quantity": r.Quantity,
	}
}

// Payload renders the request body. Call Validate first.
func (r CheckoutSessionCreateRequest) Payload() map[string]any {
	payload := map[string]any{
		"items": itemsPayload(r.Items),
	}
	if r.Buyer != nil {
		payload["buyer"] = r.Buyer.Payload()
	}
	if r.FulfillmentAddress != nil {
		payload["fulfillment_address"] = r.FulfillmentAddress.Payload()
	}
	return payload
}

// Payload renders only the fields that are set.
func (r CheckoutSessionUpdateRequest) Payload() map[string]any {
	payload := map[string]any{}
	if r.Items != nil {
		payload["items"] = itemsPayload(*r.Items)
	}
	if r.Buyer != nil {
		payload["buyer"] = r.Buyer.Payload()
	}
	if r.FulfillmentAddress != nil {
		payload["fulfillment_address"] = r.FulfillmentAddress.Payload()
	}
	if r.FulfillmentOptionID != nil {
		payload["fulfillment_option_id"] = *r.FulfillmentOptionID
	}
	return payload
}

// Payload renders the request body. Call Validate first.
func (r CheckoutSessionCompleteRequest) Payload() map[string]any {
	payload := map[string]any{}
	if r.PaymentData != nil {
		payload["payment_data"] = r.PaymentData.Payload()
	}
	if r.Buyer != nil {
		payload["buyer"] = r.Buyer.Payload()
	}
	return payload
}

func itemsPayload(items []ItemRequest) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item.Payload()
	}
	return out
}
