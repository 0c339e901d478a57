package productfeed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopbridge/acp"
)

func ptr[T any](v T) *T { return &v }

func mustMoney(t *testing.T, amount int, currency string) acp.Money {
	t.Helper()
	m, err := acp.NewMoney(amount, currency)
	require.NoError(t, err)
	return m
}

func baseParams(t *testing.T) ProductParams {
	t.Helper()
	return ProductParams{
		ID:                "sku_1",
		Title:             "Trail Shoe",
		Description:       "Lightweight, waterproof",
		Link:              "https://shop.example/p/sku_1",
		Price:             mustMoney(t, 1999, "USD"),
		EnableSearch:      true,
		EnableCheckout:    false,
		Availability:      "IN_STOCK",
		InventoryQuantity: 4,
		ImageLink:         "https://shop.example/i/sku_1.jpg",
	}
}

func TestNewProductNormalizes(t *testing.T) {
	t.Parallel()

	params := baseParams(t)
	params.Brand = ptr("  Acme ")
	params.GTIN = ptr("   ")
	params.AdditionalImageLinks = []string{"https://shop.example/i/2.jpg"}

	product, err := NewProduct(params)
	require.NoError(t, err)
	assert.Equal(t, AvailabilityInStock, product.Availability())

	brand, ok := product.Brand()
	assert.True(t, ok)
	assert.Equal(t, "Acme", brand)
	_, ok = product.GTIN()
	assert.False(t, ok)

	params.AdditionalImageLinks[0] = "mutated"
	assert.Equal(t, []string{"https://shop.example/i/2.jpg"}, product.AdditionalImageLinks())
}

func TestNewProductRejects(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		mutate func(*ProductParams)
		field  string
	}{
		"blank id":             {mutate: func(p *ProductParams) { p.ID = " " }, field: "id"},
		"blank title":          {mutate: func(p *ProductParams) { p.Title = "" }, field: "title"},
		"blank link":           {mutate: func(p *ProductParams) { p.Link = "" }, field: "link"},
		"missing price":        {mutate: func(p *ProductParams) { p.Price = acp.Money{} }, field: "price"},
		"unknown availability": {mutate: func(p *ProductParams) { p.Availability = "backorder" }, field: "availability"},
		"preorder without date": {
			mutate: func(p *ProductParams) { p.Availability = "preorder" },
			field:  "availability_date",
		},
		"negative inventory": {mutate: func(p *ProductParams) { p.InventoryQuantity = -1 }, field: "inventory_quantity"},
		"blank image":        {mutate: func(p *ProductParams) { p.ImageLink = "" }, field: "image_link"},
		"blank extra image": {
			mutate: func(p *ProductParams) { p.AdditionalImageLinks = []string{"https://x", " "} },
			field:  "additional_image_link[1]",
		},
		"blank video":    {mutate: func(p *ProductParams) { p.VideoLink = ptr("") }, field: "video_link"},
		"blank 3d model": {mutate: func(p *ProductParams) { p.Model3DLink = ptr(" ") }, field: "model_3d_link"},
		"reserved attribute": {
			mutate: func(p *ProductParams) { p.Attributes = map[string]any{"price": "free"} },
			field:  "attributes.price",
		},
		"blank attribute key": {
			mutate: func(p *ProductParams) { p.Attributes = map[string]any{" ": "x"} },
			field:  "attributes",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			params := baseParams(t)
			tt.mutate(&params)
			_, err := NewProduct(params)
			var vErr *acp.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestProductRecordOrder(t *testing.T) {
	t.Parallel()

	compliance, err := NewCompliance(ComplianceParams{AgeRestriction: ptr(18)})
	require.NoError(t, err)

	params := baseParams(t)
	params.Availability = "preorder"
	params.AvailabilityDate = ptr(time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC))
	params.AdditionalImageLinks = []string{"https://shop.example/i/2.jpg", "https://shop.example/i/3.jpg"}
	params.VideoLink = ptr("https://shop.example/v/1.mp4")
	params.MPN = ptr("MPN-1")
	params.Compliance = compliance
	params.Attributes = map[string]any{"size": "42", "color": "red"}

	product, err := NewProduct(params)
	require.NoError(t, err)

	rec := product.Record()
	assert.Equal(t, []string{
		"id", "title", "description", "link", "price", "enable_search", "enable_checkout",
		"availability", "inventory_quantity", "image_link", "availability_date",
		"additional_image_link", "video_link", "mpn", "compliance", "color", "size",
	}, rec.Keys())

	date, ok := rec.Get("availability_date")
	require.True(t, ok)
	assert.Equal(t, "2025-12-01T09:00:00Z", date)

	price, _ := rec.Get("price")
	assert.Equal(t, Record{{Key: "amount", Value: 1999}, {Key: "currency", Value: "usd"}}, price)
	c, _ := rec.Get("compliance")
	assert.Equal(t, Record{{Key: "age_restriction", Value: 18}}, c)
}

func TestNewCompliance(t *testing.T) {
	t.Parallel()

	c, err := NewCompliance(ComplianceParams{Warning: ptr("Contains nuts"), WarningURL: ptr("https://x/w")})
	require.NoError(t, err)
	warning, ok := c.Warning()
	assert.True(t, ok)
	assert.Equal(t, "Contains nuts", warning)
	_, ok = c.AgeRestriction()
	assert.False(t, ok)
	assert.Equal(t, []string{"warning", "warning_url"}, c.Record().Keys())

	tests := map[string]struct {
		params ComplianceParams
		field  string
	}{
		"empty":         {params: ComplianceParams{}, field: "compliance"},
		"blank warning": {params: ComplianceParams{Warning: ptr(" ")}, field: "warning"},
		"blank url":     {params: ComplianceParams{WarningURL: ptr("")}, field: "warning_url"},
		"zero age":      {params: ComplianceParams{AgeRestriction: ptr(0)}, field: "age_restriction"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := NewCompliance(tt.params)
			var vErr *acp.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}
