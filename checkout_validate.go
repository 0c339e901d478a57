package acp

// Validate ensures the item names a product and a positive quantity.
func (r ItemRequest) Validate() error {
	return validateStruct(r)
}

// Validate ensures CheckoutSessionCreateRequest carries at least one valid item.
func (r CheckoutSessionCreateRequest) Validate() error {
	return validateStruct(r)
}

// Validate ensures CheckoutSessionUpdateRequest changes something and that the
// provided fields are well formed.
func (r CheckoutSessionUpdateRequest) Validate() error {
	if r.Items == nil && r.Buyer == nil && r.FulfillmentAddress == nil && r.FulfillmentOptionID == nil {
		return validationErrorf("update request must specify at least one field")
	}
	return validateStruct(r)
}

// Validate ensures CheckoutSessionCompleteRequest satisfies payment requirements.
func (r CheckoutSessionCompleteRequest) Validate() error {
	return validateStruct(r)
}
