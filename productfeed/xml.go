package productfeed

import (
	"encoding/xml"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"time"
)

var invalidTagChars = regexp.MustCompile(`[^A-Za-z0-9_\-:]`)

// xmlTag turns a record key into a usable element name.
func xmlTag(key string) string {
	tag := invalidTagChars.ReplaceAllString(key, "_")
	if tag == "" {
		return "field"
	}
	if tag[0] >= '0' && tag[0] <= '9' {
		tag = "_" + tag
	}
	return tag
}

// xmlFormatter writes <products><product>...</product></products>. Lists
// become repeated sibling elements and nested records nested elements.
type xmlFormatter struct {
	w   io.Writer
	enc *xml.Encoder
}

func (f *xmlFormatter) ContentType() string { return "application/xml" }

func (f *xmlFormatter) Start(w io.Writer) error {
	f.w = w
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	f.enc = xml.NewEncoder(w)
	f.enc.Indent("", "  ")
	return f.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: "products"}})
}

func (f *xmlFormatter) WriteRecord(rec Record) error {
	if err := f.writeRecord("product", rec); err != nil {
		return fmt.Errorf("productfeed: encode record: %w", err)
	}
	return f.enc.Flush()
}

func (f *xmlFormatter) End() error {
	if err := f.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: "products"}}); err != nil {
		return err
	}
	if err := f.enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(f.w, "\n")
	return err
}

func (f *xmlFormatter) writeRecord(tag string, rec Record) error {
	start := xml.StartElement{Name: xml.Name{Local: tag}}
	if err := f.enc.EncodeToken(start); err != nil {
		return err
	}
	for _, field := range rec {
		if err := f.writeElement(field.Key, field.Value); err != nil {
			return err
		}
	}
	return f.enc.EncodeToken(start.End())
}

func (f *xmlFormatter) writeElement(key string, value any) error {
	tag := xmlTag(key)
	switch v := value.(type) {
	case Record:
		return f.writeRecord(tag, v)
	case map[string]any:
		rec := make(Record, 0, len(v))
		for _, k := range slices.Sorted(maps.Keys(v)) {
			rec = append(rec, Field{Key: k, Value: v[k]})
		}
		return f.writeRecord(tag, rec)
	case []string:
		for _, item := range v {
			if err := f.writeElement(key, item); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, item := range v {
			if err := f.writeElement(key, item); err != nil {
				return err
			}
		}
		return nil
	}

	start := xml.StartElement{Name: xml.Name{Local: tag}}
	if err := f.enc.EncodeToken(start); err != nil {
		return err
	}
	if text := xmlText(value); text != "" {
		if err := f.enc.EncodeToken(xml.CharData(text)); err != nil {
			return err
		}
	}
	return f.enc.EncodeToken(start.End())
}

func xmlText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
