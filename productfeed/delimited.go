package productfeed

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
)

// baseColumns is the leading column order of CSV and TSV feeds.
var baseColumns = []string{
	"id",
	"title",
	"description",
	"link",
	"image_link",
	"additional_image_link",
	"availability",
	"availability_date",
	"inventory_quantity",
	"price",
	"brand",
	"gtin",
	"mpn",
	"enable_search",
	"enable_checkout",
}

// delimitedFormatter writes CSV-style rows. The header is the base columns
// followed by any other keys of the first record; later records are projected
// onto that header.
type delimitedFormatter struct {
	comma       rune
	contentType string
	w           *csv.Writer
	columns     []string
}

func newDelimitedFormatter(comma rune, contentType string) *delimitedFormatter {
	return &delimitedFormatter{comma: comma, contentType: contentType}
}

func (f *delimitedFormatter) ContentType() string { return f.contentType }

func (f *delimitedFormatter) Start(w io.Writer) error {
	f.w = csv.NewWriter(w)
	f.w.Comma = f.comma
	return nil
}

func (f *delimitedFormatter) WriteRecord(rec Record) error {
	if f.columns == nil {
		f.columns = slices.Clone(baseColumns)
		for _, key := range rec.Keys() {
			if !slices.Contains(f.columns, key) {
				f.columns = append(f.columns, key)
			}
		}
		if err := f.w.Write(f.columns); err != nil {
			return err
		}
	}
	row := make([]string, len(f.columns))
	for i, column := range f.columns {
		value, _ := rec.Get(column)
		row[i] = cell(column, value)
	}
	return f.w.Write(row)
}

func (f *delimitedFormatter) End() error {
	f.w.Flush()
	return f.w.Error()
}

// cell flattens a value: price as "<amount> <currency>", lists joined with |.
func cell(column string, value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case time.Time:
		return v.Format(time.RFC3339)
	case []string:
		return strings.Join(v, "|")
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = cell("", item)
		}
		return strings.Join(parts, "|")
	case Record:
		if column == "price" {
			amount, _ := v.Get("amount")
			currency, _ := v.Get("currency")
			return cell("", amount) + " " + cell("", currency)
		}
		parts := make([]string, len(v))
		for i, field := range v {
			parts[i] = cell(field.Key, field.Value)
		}
		return strings.Join(parts, "|")
	default:
		return fmt.Sprint(v)
	}
}
