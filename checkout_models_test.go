package acp

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionJSON = `{
  "id": "cs_test",
  "status": "ready_for_payment",
  "currency": "USD",
  "line_items": [
    {
      "id": "li_1",
      "item": {"id": "sku_1", "quantity": 2},
      "base_amount": 2000,
      "discount": 0,
      "subtotal": 2000,
      "tax": 160,
      "total": 2160
    }
  ],
  "fulfillment_address": {
    "name": "Ada Lovelace",
    "line_one": "1 Main St",
    "city": "Springfield",
    "state": "il",
    "country": "us",
    "postal_code": "62701"
  },
  "totals": [
    {"type": "subtotal", "display_text": "Subtotal", "amount": 2000},
    {"type": "discount", "display_text": "Promo", "amount": -500},
    {"type": "total", "display_text": "Total", "amount": 1660}
  ],
  "fulfillment_options": [
    {
      "type": "shipping",
      "id": "ship_std",
      "title": "Standard",
      "subtitle": "3-5 days",
      "carrier": "UPS",
      "earliest_delivery_time": "2025-10-01T00:00:00Z",
      "latest_delivery_time": "2025-10-03T00:00:00Z",
      "subtotal": 500,
      "tax": 0,
      "total": 500
    }
  ],
  "fulfillment_option_id": "ship_std",
  "messages": [
    {"type": "info", "content_type": "plain", "content": "Free returns"}
  ],
  "buyer": {"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com"},
  "payment_provider": {"provider": "Stripe", "supported_payment_methods": ["card"]},
  "links": [{"type": "terms_of_use", "url": "https://merchant.example/terms"}],
  "extension": {"nested": [1, 2.5, "x"]}
}`

func decodeFixture(t *testing.T, raw string) map[string]any {
	t.Helper()
	payload, err := decodeObject([]byte(raw))
	require.NoError(t, err)
	return payload
}

func requireValidationError(t *testing.T, err error, field string) {
	t.Helper()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	if field != "" {
		assert.Equal(t, field, vErr.Field)
	}
}

func TestParseCheckoutSession(t *testing.T) {
	t.Parallel()

	session, err := ParseCheckoutSession(decodeFixture(t, sessionJSON))
	require.NoError(t, err)

	assert.Equal(t, "cs_test", session.ID())
	assert.Equal(t, CheckoutSessionStatusReadyForPayment, session.Status())
	assert.Equal(t, Currency("usd"), session.Currency())

	lineItems := session.LineItems()
	require.Len(t, lineItems, 1)
	assert.Equal(t, "li_1", lineItems[0].ID())
	assert.Equal(t, "sku_1", lineItems[0].Item().ID())
	assert.Equal(t, 2, lineItems[0].Item().Quantity())
	assert.Equal(t, 2160, lineItems[0].Total())

	totals := session.Totals()
	require.Len(t, totals, 3)
	assert.Equal(t, TotalTypeDiscount, totals[1].Type())
	assert.Equal(t, -500, totals[1].Amount())

	addr := session.FulfillmentAddress()
	require.NotNil(t, addr)
	assert.Equal(t, "US", addr.Country())
	assert.Equal(t, "IL", addr.State())

	options := session.FulfillmentOptions()
	require.Len(t, options, 1)
	carrier, ok := options[0].Carrier()
	assert.True(t, ok)
	assert.Equal(t, "UPS", carrier)

	selected, ok := session.FulfillmentOptionID()
	assert.True(t, ok)
	assert.Equal(t, "ship_std", selected)

	require.NotNil(t, session.Buyer())
	assert.Equal(t, "ada@example.com", string(session.Buyer().Email()))
	require.NotNil(t, session.PaymentProvider())
	assert.Equal(t, PaymentProviderStripe, session.PaymentProvider().Provider())
	assert.Equal(t, []SupportedPaymentMethods{Card}, session.PaymentProvider().SupportedPaymentMethods())
	require.Len(t, session.Links(), 1)
	assert.Equal(t, TermsOfUse, session.Links()[0].Type())
	require.Len(t, session.Messages(), 1)
	assert.Nil(t, session.Order())
}

func TestCheckoutSessionPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	payload := decodeFixture(t, sessionJSON)
	session, err := ParseCheckoutSession(payload)
	require.NoError(t, err)

	assert.Equal(t, payload, session.Payload())

	// The retained payload is isolated from both the input and callers.
	payload["id"] = "mutated"
	got := session.Payload()
	assert.Equal(t, "cs_test", got["id"])
	got["status"] = "mutated"
	assert.Equal(t, "ready_for_payment", session.Payload()["status"])

	encoded, err := json.Marshal(session)
	require.NoError(t, err)
	var decoded CheckoutSession
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, session.Payload(), decoded.Payload())
	assert.Equal(t, Currency("usd"), decoded.Currency())
}

func TestCheckoutSessionAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	session, err := ParseCheckoutSession(decodeFixture(t, sessionJSON))
	require.NoError(t, err)

	items := session.LineItems()
	items[0] = nil
	assert.NotNil(t, session.LineItems()[0])
}

func TestParseCheckoutSessionRejects(t *testing.T) {
	t.Parallel()

	base := func() map[string]any {
		return map[string]any{"id": "cs_1", "status": "in_progress", "currency": "eur"}
	}

	tests := map[string]struct {
		mutate func(map[string]any)
		field  string
	}{
		"unknown status":    {mutate: func(p map[string]any) { p["status"] = "pending" }, field: "status"},
		"missing status":    {mutate: func(p map[string]any) { delete(p, "status") }, field: "status"},
		"missing currency":  {mutate: func(p map[string]any) { delete(p, "currency") }, field: "currency"},
		"four letters":      {mutate: func(p map[string]any) { p["currency"] = "usdx" }, field: "currency"},
		"digits":            {mutate: func(p map[string]any) { p["currency"] = "us1" }, field: "currency"},
		"blank id":          {mutate: func(p map[string]any) { p["id"] = "  " }, field: "id"},
		"line items object": {mutate: func(p map[string]any) { p["line_items"] = map[string]any{} }, field: "line_items"},
		"negative line item amount": {
			mutate: func(p map[string]any) {
				p["line_items"] = []any{map[string]any{
					"id":   "li_1",
					"item": map[string]any{"id": "sku", "quantity": 1},
					"tax":  -1,
				}}
			},
			field: "line_items[0].tax",
		},
		"zero quantity item": {
			mutate: func(p map[string]any) {
				p["line_items"] = []any{map[string]any{
					"id":   "li_1",
					"item": map[string]any{"id": "sku", "quantity": 0},
				}}
			},
			field: "line_items[0].item.quantity",
		},
		"non integer amount": {
			mutate: func(p map[string]any) {
				p["totals"] = []any{map[string]any{"type": "total", "amount": "ten"}}
			},
			field: "totals[0].amount",
		},
		"unknown total type": {
			mutate: func(p map[string]any) {
				p["totals"] = []any{map[string]any{"type": "shipping", "amount": 1}}
			},
			field: "totals[0].type",
		},
		"invalid buyer email": {
			mutate: func(p map[string]any) {
				p["buyer"] = map[string]any{"first_name": "A", "last_name": "B", "email": "nope"}
			},
			field: "buyer.email",
		},
		"unsupported provider": {
			mutate: func(p map[string]any) {
				p["payment_provider"] = map[string]any{"provider": "adyen", "supported_payment_methods": []any{"card"}}
			},
			field: "payment_provider.provider",
		},
		"no payment methods": {
			mutate: func(p map[string]any) {
				p["payment_provider"] = map[string]any{"provider": "stripe", "supported_payment_methods": []any{}}
			},
			field: "payment_provider.supported_payment_methods",
		},
		"order without permalink": {
			mutate: func(p map[string]any) {
				p["order"] = map[string]any{"id": "ord_1", "checkout_session_id": "cs_1"}
			},
			field: "order.permalink_url",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			payload := base()
			tt.mutate(payload)
			_, err := ParseCheckoutSession(payload)
			requireValidationError(t, err, tt.field)
		})
	}
}

func TestParseCheckoutSessionAcceptsEveryStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []CheckoutSessionStatus{
		CheckoutSessionStatusNotReadyForPayment,
		CheckoutSessionStatusReadyForPayment,
		CheckoutSessionStatusCompleted,
		CheckoutSessionStatusCanceled,
		CheckoutSessionStatusInProgress,
	} {
		session, err := ParseCheckoutSession(map[string]any{"id": "cs", "status": string(status), "currency": "GbP"})
		require.NoError(t, err, status)
		assert.Equal(t, status, session.Status())
		assert.Equal(t, Currency("gbp"), session.Currency())
	}
}

func TestDigitalFulfillmentOptionDropsShippingFields(t *testing.T) {
	t.Parallel()

	option, err := ParseFulfillmentOption(map[string]any{
		"type":                   "digital",
		"id":                     "dl",
		"title":                  "Download",
		"carrier":                "UPS",
		"earliest_delivery_time": "2025-10-01T00:00:00Z",
		"latest_delivery_time":   "2025-10-02T00:00:00Z",
		"subtotal":               0,
		"tax":                    0,
		"total":                  0,
	})
	require.NoError(t, err)

	assert.Equal(t, FulfillmentOptionTypeDigital, option.Type())
	_, ok := option.Carrier()
	assert.False(t, ok)
	_, ok = option.EarliestDeliveryTime()
	assert.False(t, ok)
	_, ok = option.LatestDeliveryTime()
	assert.False(t, ok)
	// The wire form is untouched.
	assert.Equal(t, "UPS", option.Payload()["carrier"])
}

func TestParseFulfillmentOptionRejects(t *testing.T) {
	t.Parallel()

	_, err := ParseFulfillmentOption(map[string]any{"type": "pickup", "id": "x", "title": "x"})
	requireValidationError(t, err, "type")

	_, err = ParseFulfillmentOption(map[string]any{"type": "shipping", "id": "x", "title": ""})
	requireValidationError(t, err, "title")

	_, err = ParseFulfillmentOption(map[string]any{"type": "shipping", "id": "x", "title": "x", "total": -1})
	requireValidationError(t, err, "total")
}

func TestParseMessage(t *testing.T) {
	t.Parallel()

	msg, err := ParseMessage(map[string]any{
		"type":         "error",
		"content_type": "markdown",
		"content":      "**Sold out**",
		"code":         "out_of_stock",
		"param":        "$.line_items[0]",
	})
	require.NoError(t, err)
	code, ok := msg.Code()
	assert.True(t, ok)
	assert.Equal(t, OutOfStock, code)
	param, ok := msg.Param()
	assert.True(t, ok)
	assert.Equal(t, "$.line_items[0]", param)

	tests := map[string]struct {
		payload map[string]any
		field   string
	}{
		"error without code": {
			payload: map[string]any{"type": "error", "content_type": "plain", "content": "x"},
			field:   "code",
		},
		"unknown code": {
			payload: map[string]any{"type": "error", "content_type": "plain", "content": "x", "code": "teapot"},
			field:   "code",
		},
		"unknown content type": {
			payload: map[string]any{"type": "info", "content_type": "html", "content": "x"},
			field:   "content_type",
		},
		"empty content": {
			payload: map[string]any{"type": "info", "content_type": "plain", "content": ""},
			field:   "content",
		},
		"unknown type": {
			payload: map[string]any{"type": "warning", "content_type": "plain", "content": "x"},
			field:   "type",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseMessage(tt.payload)
			requireValidationError(t, err, tt.field)
		})
	}
}

func TestParseMessageInfoCodeUnrestricted(t *testing.T) {
	t.Parallel()

	msg, err := ParseMessage(map[string]any{"type": "info", "content_type": "plain", "content": "Ships soon", "code": "shipping_note"})
	require.NoError(t, err)
	code, ok := msg.Code()
	assert.True(t, ok)
	assert.Equal(t, MessageErrorCode("shipping_note"), code)
}

func TestParseRejectsOutOfRangeIntegers(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		parse func(map[string]any) error
		raw   string
		field string
	}{
		"total amount 1e19": {
			parse: func(p map[string]any) error { _, err := ParseTotal(p); return err },
			raw:   `{"type":"total","display_text":"Total","amount":1e19}`,
			field: "amount",
		},
		"total amount max uint64": {
			parse: func(p map[string]any) error { _, err := ParseTotal(p); return err },
			raw:   `{"type":"total","display_text":"Total","amount":18446744073709551615}`,
			field: "amount",
		},
		"total amount below min int64": {
			parse: func(p map[string]any) error { _, err := ParseTotal(p); return err },
			raw:   `{"type":"total","display_text":"Total","amount":-1e19}`,
			field: "amount",
		},
		"item quantity 1e19": {
			parse: func(p map[string]any) error { _, err := ParseItem(p); return err },
			raw:   `{"id":"i","quantity":1e19}`,
			field: "quantity",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			payload, err := decodeObject([]byte(tt.raw))
			require.NoError(t, err)
			err = tt.parse(payload)
			requireValidationError(t, err, tt.field)
			assert.ErrorContains(t, err, "out of integer range")
		})
	}
}

func TestToIntBounds(t *testing.T) {
	t.Parallel()

	n, err := toInt(float64(-9007199254740992))
	require.NoError(t, err)
	assert.Equal(t, -9007199254740992, n)

	_, err = toInt(uint64(1 << 63))
	assert.ErrorIs(t, err, errIntegerRange)
	_, err = toInt(9.3e18)
	assert.ErrorIs(t, err, errIntegerRange)
	_, err = toInt(1.5)
	assert.ErrorIs(t, err, errNotInteger)
}

func TestParseLinkAndOrderReference(t *testing.T) {
	t.Parallel()

	_, err := ParseLink(map[string]any{"type": "faq", "url": "https://x"})
	requireValidationError(t, err, "type")
	_, err = ParseLink(map[string]any{"type": "privacy_policy", "url": " "})
	requireValidationError(t, err, "url")

	order, err := ParseOrderReference(map[string]any{
		"id":                  "ord_1",
		"checkout_session_id": "cs_1",
		"permalink_url":       "https://merchant.example/orders/ord_1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ord_1", order.ID())
	assert.Equal(t, "cs_1", order.CheckoutSessionID())
}

func TestParsePaymentProviderNormalisesCase(t *testing.T) {
	t.Parallel()

	provider, err := ParsePaymentProvider(map[string]any{
		"provider":                  "STRIPE",
		"supported_payment_methods": []any{"Card"},
	})
	require.NoError(t, err)
	assert.Equal(t, PaymentProviderStripe, provider.Provider())
	assert.Equal(t, []SupportedPaymentMethods{Card}, provider.SupportedPaymentMethods())

	_, err = ParsePaymentProvider(map[string]any{
		"provider":                  "stripe",
		"supported_payment_methods": []any{"card", "paypal"},
	})
	requireValidationError(t, err, "supported_payment_methods[1]")
}

func TestNewAddress(t *testing.T) {
	t.Parallel()

	lineTwo := "Apt 4"
	addr, err := NewAddress(AddressParams{
		Name:       "Grace Hopper",
		LineOne:    "2 Navy Way",
		LineTwo:    &lineTwo,
		City:       "Arlington",
		State:      "va",
		Country:    "us",
		PostalCode: "22202",
	})
	require.NoError(t, err)
	assert.Equal(t, "US", addr.Country())
	assert.Equal(t, "VA", addr.State())
	got, ok := addr.LineTwo()
	assert.True(t, ok)
	assert.Equal(t, "Apt 4", got)
	assert.Equal(t, map[string]any{
		"name":        "Grace Hopper",
		"line_one":    "2 Navy Way",
		"line_two":    "Apt 4",
		"city":        "Arlington",
		"state":       "VA",
		"country":     "US",
		"postal_code": "22202",
	}, addr.Payload())

	valid := AddressParams{Name: "n", LineOne: "l", City: "c", State: "s", Country: "de", PostalCode: "p"}
	tests := map[string]struct {
		mutate func(*AddressParams)
		field  string
	}{
		"blank name":       {mutate: func(p *AddressParams) { p.Name = " " }, field: "name"},
		"long line one":    {mutate: func(p *AddressParams) { p.LineOne = string(make([]byte, 61)) }, field: "line_one"},
		"long line two":    {mutate: func(p *AddressParams) { s := string(make([]rune, 61)); p.LineTwo = &s }, field: "line_two"},
		"three letter iso": {mutate: func(p *AddressParams) { p.Country = "DEU" }, field: "country"},
		"numeric country":  {mutate: func(p *AddressParams) { p.Country = "12" }, field: "country"},
		"blank postal":     {mutate: func(p *AddressParams) { p.PostalCode = "" }, field: "postal_code"},
		"blank state":      {mutate: func(p *AddressParams) { p.State = "" }, field: "state"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p := valid
			tt.mutate(&p)
			_, err := NewAddress(p)
			requireValidationError(t, err, tt.field)
		})
	}
}

func TestNewAddressCountsRunes(t *testing.T) {
	t.Parallel()

	name := ""
	for range 256 {
		name += "é"
	}
	_, err := NewAddress(AddressParams{Name: name, LineOne: "l", City: "c", State: "s", Country: "fr", PostalCode: "p"})
	require.NoError(t, err)
}

func TestNewBuyer(t *testing.T) {
	t.Parallel()

	phone := "+15555550100"
	buyer, err := NewBuyer(BuyerParams{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", PhoneNumber: &phone})
	require.NoError(t, err)
	got, ok := buyer.PhoneNumber()
	assert.True(t, ok)
	assert.Equal(t, phone, got)
	assert.Equal(t, phone, buyer.Payload()["phone_number"])

	_, err = NewBuyer(BuyerParams{FirstName: "Ada", LastName: "Lovelace", Email: "not-an-email"})
	requireValidationError(t, err, "email")

	blank := "  "
	_, err = NewBuyer(BuyerParams{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", PhoneNumber: &blank})
	requireValidationError(t, err, "phone_number")

	_, err = NewBuyer(BuyerParams{FirstName: "", LastName: "Lovelace", Email: "ada@example.com"})
	requireValidationError(t, err, "first_name")
}

func TestMoneyAndCurrency(t *testing.T) {
	t.Parallel()

	money, err := NewMoney(1999, "EUR")
	require.NoError(t, err)
	assert.Equal(t, 1999, money.Amount())
	assert.Equal(t, Currency("eur"), money.Currency())
	assert.Equal(t, map[string]any{"amount": 1999, "currency": "eur"}, money.Payload())

	_, err = NewMoney(-1, "eur")
	requireValidationError(t, err, "amount")
	_, err = NewMoney(1, "euro")
	requireValidationError(t, err, "currency")
	_, err = ParseCurrency("e1r")
	assert.Error(t, err)
}

func TestNewPaymentData(t *testing.T) {
	t.Parallel()

	addr, err := NewAddress(AddressParams{Name: "n", LineOne: "l", City: "c", State: "s", Country: "de", PostalCode: "p"})
	require.NoError(t, err)

	data, err := NewPaymentData(PaymentDataParams{Token: "spt_123", Provider: "Stripe", BillingAddress: addr})
	require.NoError(t, err)
	assert.Equal(t, PaymentProviderStripe, data.Provider())
	assert.Equal(t, "stripe", data.Payload()["provider"])
	assert.Equal(t, addr.Payload(), data.Payload()["billing_address"])

	_, err = NewPaymentData(PaymentDataParams{Token: " ", Provider: "stripe"})
	requireValidationError(t, err, "token")
	_, err = NewPaymentData(PaymentDataParams{Token: "t", Provider: "adyen"})
	requireValidationError(t, err, "provider")
}

func TestValidationErrorIsNotAPIError(t *testing.T) {
	t.Parallel()

	_, err := ParseItem(map[string]any{"id": "", "quantity": 1})
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "id")
}
