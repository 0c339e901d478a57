package productfeed

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/shopbridge/acp"
)

// Availability states accepted in a feed.
const (
	AvailabilityInStock    = "in_stock"
	AvailabilityOutOfStock = "out_of_stock"
	AvailabilityPreorder   = "preorder"
)

// reservedFields are the keys Product.Record emits itself. Attributes may not
// reuse them.
var reservedFields = map[string]struct{}{
	"id": {}, "title": {}, "description": {}, "link": {}, "price": {},
	"enable_search": {}, "enable_checkout": {}, "availability": {},
	"inventory_quantity": {}, "image_link": {}, "availability_date": {},
	"additional_image_link": {}, "video_link": {}, "model_3d_link": {},
	"brand": {}, "gtin": {}, "mpn": {}, "compliance": {},
}

// ProductParams is the input of [NewProduct].
type ProductParams struct {
	ID                   string      `json:"id" validate:"notblank"`
	Title                string      `json:"title" validate:"notblank"`
	Description          string      `json:"description"`
	Link                 string      `json:"link" validate:"notblank"`
	Price                acp.Money   `json:"price" validate:"-"`
	EnableSearch         bool        `json:"enable_search"`
	EnableCheckout       bool        `json:"enable_checkout"`
	Availability         string      `json:"availability" validate:"oneof=in_stock out_of_stock preorder"`
	AvailabilityDate     *time.Time  `json:"availability_date" validate:"-"`
	InventoryQuantity    int         `json:"inventory_quantity" validate:"gte=0"`
	ImageLink            string      `json:"image_link" validate:"notblank"`
	AdditionalImageLinks []string    `json:"additional_image_link" validate:"dive,notblank"`
	VideoLink            *string     `json:"video_link" validate:"omitnil,notblank"`
	Model3DLink          *string     `json:"model_3d_link" validate:"omitnil,notblank"`
	Brand                *string     `json:"brand" validate:"-"`
	GTIN                 *string     `json:"gtin" validate:"-"`
	MPN                  *string     `json:"mpn" validate:"-"`
	Compliance           *Compliance `json:"compliance" validate:"-"`

	// Attributes are merchant-specific extras appended after the base fields.
	Attributes map[string]any `json:"-" validate:"-"`
}

// Product is a single validated feed entry.
type Product struct {
	params ProductParams
}

// NewProduct normalizes and validates p. Availability is lower-cased and
// brand, GTIN and MPN are trimmed.
func NewProduct(p ProductParams) (*Product, error) {
	p.Availability = strings.ToLower(p.Availability)
	if err := validateStruct(p); err != nil {
		return nil, err
	}
	if p.Price.Currency() == "" {
		return nil, &acp.ValidationError{Field: "price", Message: "is required"}
	}
	if p.Availability == AvailabilityPreorder && p.AvailabilityDate == nil {
		return nil, &acp.ValidationError{Field: "availability_date", Message: "is required when availability is preorder"}
	}
	for key := range p.Attributes {
		if strings.TrimSpace(key) == "" {
			return nil, &acp.ValidationError{Field: "attributes", Message: "keys cannot be blank"}
		}
		if _, ok := reservedFields[key]; ok {
			return nil, &acp.ValidationError{Field: "attributes." + key, Message: "conflicts with a base field"}
		}
	}

	p.AvailabilityDate = clonePtr(p.AvailabilityDate)
	p.AdditionalImageLinks = slices.Clone(p.AdditionalImageLinks)
	p.VideoLink = clonePtr(p.VideoLink)
	p.Model3DLink = clonePtr(p.Model3DLink)
	p.Brand = trimmed(p.Brand)
	p.GTIN = trimmed(p.GTIN)
	p.MPN = trimmed(p.MPN)
	p.Attributes = maps.Clone(p.Attributes)
	return &Product{params: p}, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func (p *Product) ID() string             { return p.params.ID }
func (p *Product) Title() string          { return p.params.Title }
func (p *Product) Description() string    { return p.params.Description }
func (p *Product) Link() string           { return p.params.Link }
func (p *Product) Price() acp.Money       { return p.params.Price }
func (p *Product) SearchEnabled() bool    { return p.params.EnableSearch }
func (p *Product) CheckoutEnabled() bool  { return p.params.EnableCheckout }
func (p *Product) Availability() string   { return p.params.Availability }
func (p *Product) InventoryQuantity() int { return p.params.InventoryQuantity }
func (p *Product) ImageLink() string      { return p.params.ImageLink }
func (p *Product) Compliance() *Compliance {
	return p.params.Compliance
}

func (p *Product) AvailabilityDate() (time.Time, bool) { return deref(p.params.AvailabilityDate) }
func (p *Product) VideoLink() (string, bool)           { return deref(p.params.VideoLink) }
func (p *Product) Model3DLink() (string, bool)         { return deref(p.params.Model3DLink) }
func (p *Product) Brand() (string, bool)               { return nonEmpty(p.params.Brand) }
func (p *Product) GTIN() (string, bool)                { return nonEmpty(p.params.GTIN) }
func (p *Product) MPN() (string, bool)                 { return nonEmpty(p.params.MPN) }

func (p *Product) AdditionalImageLinks() []string {
	return slices.Clone(p.params.AdditionalImageLinks)
}

func (p *Product) Attributes() map[string]any {
	return maps.Clone(p.params.Attributes)
}

func nonEmpty(s *string) (string, bool) {
	if s == nil || *s == "" {
		return "", false
	}
	return *s, true
}

// Record renders the product in feed order: the base fields, the optional
// fields that are present, then attributes sorted by key.
func (p *Product) Record() Record {
	price := p.params.Price
	rec := Record{
		{Key: "id", Value: p.params.ID},
		{Key: "title", Value: p.params.Title},
		{Key: "description", Value: p.params.Description},
		{Key: "link", Value: p.params.Link},
		{Key: "price", Value: Record{
			{Key: "amount", Value: price.Amount()},
			{Key: "currency", Value: price.Currency().String()},
		}},
		{Key: "enable_search", Value: p.params.EnableSearch},
		{Key: "enable_checkout", Value: p.params.EnableCheckout},
		{Key: "availability", Value: p.params.Availability},
		{Key: "inventory_quantity", Value: p.params.InventoryQuantity},
		{Key: "image_link", Value: p.params.ImageLink},
	}
	if date, ok := p.AvailabilityDate(); ok {
		rec = append(rec, Field{Key: "availability_date", Value: date.Format(time.RFC3339)})
	}
	if len(p.params.AdditionalImageLinks) > 0 {
		rec = append(rec, Field{Key: "additional_image_link", Value: p.AdditionalImageLinks()})
	}
	if v, ok := p.VideoLink(); ok {
		rec = append(rec, Field{Key: "video_link", Value: v})
	}
	if v, ok := p.Model3DLink(); ok {
		rec = append(rec, Field{Key: "model_3d_link", Value: v})
	}
	if v, ok := p.Brand(); ok {
		rec = append(rec, Field{Key: "brand", Value: v})
	}
	if v, ok := p.GTIN(); ok {
		rec = append(rec, Field{Key: "gtin", Value: v})
	}
	if v, ok := p.MPN(); ok {
		rec = append(rec, Field{Key: "mpn", Value: v})
	}
	if p.params.Compliance != nil {
		rec = append(rec, Field{Key: "compliance", Value: p.params.Compliance.Record()})
	}
	for _, key := range slices.Sorted(maps.Keys(p.params.Attributes)) {
		rec = append(rec, Field{Key: key, Value: p.params.Attributes[key]})
	}
	return rec
}
