package productfeed

import (
	"fmt"
	"io"
	"strings"
)

// Formatter streams records in one feed format. A Formatter is single use:
// Start, then WriteRecord per product, then End.
type Formatter interface {
	ContentType() string
	Start(w io.Writer) error
	WriteRecord(rec Record) error
	End() error
}

// Format names a feed encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXML  Format = "xml"
)

// ParseFormat accepts a case-insensitive format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case FormatJSON, FormatCSV, FormatTSV, FormatXML:
		return f, nil
	default:
		return "", fmt.Errorf("productfeed: unknown format %q", name)
	}
}

// NewFormatter returns a fresh formatter for f.
func NewFormatter(f Format) (Formatter, error) {
	switch f {
	case FormatJSON:
		return &jsonFormatter{}, nil
	case FormatCSV:
		return newDelimitedFormatter(',', "text/csv"), nil
	case FormatTSV:
		return newDelimitedFormatter('\t', "text/tab-separated-values"), nil
	case FormatXML:
		return &xmlFormatter{}, nil
	default:
		return nil, fmt.Errorf("productfeed: unknown format %q", string(f))
	}
}

type jsonFormatter struct {
	w       io.Writer
	written int
}

func (f *jsonFormatter) ContentType() string { return "application/json" }

func (f *jsonFormatter) Start(w io.Writer) error {
	f.w = w
	_, err := io.WriteString(w, "[")
	return err
}

func (f *jsonFormatter) WriteRecord(rec Record) error {
	encoded, err := rec.MarshalJSON()
	if err != nil {
		return fmt.Errorf("productfeed: encode record: %w", err)
	}
	if f.written > 0 {
		if _, err := io.WriteString(f.w, ","); err != nil {
			return err
		}
	}
	f.written++
	_, err = f.w.Write(encoded)
	return err
}

func (f *jsonFormatter) End() error {
	_, err := io.WriteString(f.w, "]")
	return err
}
