package productfeed

import (
	"errors"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Builder renders products into a feed.
type Builder struct {
	format Format
	logger zerolog.Logger
}

// BuilderOption customizes a [Builder].
type BuilderOption func(*Builder)

// WithLogger logs a summary of every built feed.
func WithLogger(logger zerolog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder returns a Builder for format.
func NewBuilder(format Format, opts ...BuilderOption) (*Builder, error) {
	if _, err := NewFormatter(format); err != nil {
		return nil, err
	}
	b := &Builder{format: format, logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// ContentType is the MIME type of the feeds this Builder writes.
func (b *Builder) ContentType() string {
	f, _ := NewFormatter(b.format)
	return f.ContentType()
}

// Build streams products to w and reports how many were written. A nil
// product aborts the feed.
func (b *Builder) Build(w io.Writer, products iter.Seq[*Product]) (int, error) {
	start := time.Now()
	f, err := NewFormatter(b.format)
	if err != nil {
		return 0, err
	}
	if err := f.Start(w); err != nil {
		return 0, err
	}
	n := 0
	for p := range products {
		if p == nil {
			return n, errors.New("productfeed: nil product")
		}
		if err := f.WriteRecord(p.Record()); err != nil {
			return n, err
		}
		n++
	}
	if err := f.End(); err != nil {
		return n, err
	}
	b.logger.Debug().
		Str("format", string(b.format)).
		Int("products", n).
		Dur("duration", time.Since(start)).
		Msg("product feed built")
	return n, nil
}

// BuildString renders the whole feed in memory.
func (b *Builder) BuildString(products iter.Seq[*Product]) (string, error) {
	var sb strings.Builder
	if _, err := b.Build(&sb, products); err != nil {
		return "", err
	}
	return sb.String(), nil
}
