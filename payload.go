package acp

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	errNotInteger   = errors.New("must be an integer")
	errIntegerRange = errors.New("is out of integer range")
)

// payloadReader extracts typed fields from a decoded JSON object. The first
// type mismatch is recorded in err and later reads become no-ops.
type payloadReader struct {
	m   map[string]any
	err error
}

func newPayloadReader(m map[string]any) *payloadReader {
	if m == nil {
		m = map[string]any{}
	}
	return &payloadReader{m: m}
}

func (r *payloadReader) str(key string) string {
	return stringValue(r.m, key)
}

func (r *payloadReader) optStr(key string) *string {
	return optionalString(r.m, key)
}

// integer reads key as a whole number, returning def when the key is absent or null.
func (r *payloadReader) integer(key string, def int) int {
	if r.err != nil {
		return def
	}
	raw, ok := r.m[key]
	if !ok || raw == nil {
		return def
	}
	n, err := toInt(raw)
	if err != nil {
		r.err = &ValidationError{Field: key, Message: err.Error()}
		return def
	}
	return n
}

// object returns the nested object under key, or nil when absent or null.
func (r *payloadReader) object(key string) map[string]any {
	if r.err != nil {
		return nil
	}
	raw, ok := r.m[key]
	if !ok || raw == nil {
		return nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		r.err = &ValidationError{Field: key, Message: "must be an object"}
		return nil
	}
	return obj
}

// objects returns the list of objects under key. Absent or null keys yield nil.
func (r *payloadReader) objects(key string) []map[string]any {
	if r.err != nil {
		return nil
	}
	raw, ok := r.m[key]
	if !ok || raw == nil {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		r.err = &ValidationError{Field: key, Message: "must be an array"}
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for i, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			r.err = &ValidationError{Field: fmt.Sprintf("%s[%d]", key, i), Message: "must be an object"}
			return nil
		}
		out = append(out, obj)
	}
	return out
}

// strings returns the list of scalars under key rendered as strings.
func (r *payloadReader) strings(key string) []string {
	if r.err != nil {
		return nil
	}
	raw, ok := r.m[key]
	if !ok || raw == nil {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		r.err = &ValidationError{Field: key, Message: "must be an array"}
		return nil
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		s, _ := scalarString(entry)
		out = append(out, s)
	}
	return out
}

func stringValue(m map[string]any, key string) string {
	s, _ := scalarString(m[key])
	return s
}

func optionalString(m map[string]any, key string) *string {
	s, ok := scalarString(m[key])
	if !ok {
		return nil
	}
	return &s
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	default:
		return "", false
	}
}

func toInt(v any) (int, error) {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return int64ToInt(n)
		}
		f, err := val.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, errNotInteger
		}
		return floatToInt(f)
	case float64:
		return floatToInt(val)
	case float32:
		return floatToInt(float64(val))
	case int:
		return val, nil
	case int8:
		return int(val), nil
	case int16:
		return int(val), nil
	case int32:
		return int(val), nil
	case int64:
		return int64ToInt(val)
	case uint:
		return uint64ToInt(uint64(val))
	case uint8:
		return int(val), nil
	case uint16:
		return int(val), nil
	case uint32:
		return uint64ToInt(uint64(val))
	case uint64:
		return uint64ToInt(val)
	default:
		return 0, errNotInteger
	}
}

func int64ToInt(n int64) (int, error) {
	if n < math.MinInt || n > math.MaxInt {
		return 0, errIntegerRange
	}
	return int(n), nil
}

func uint64ToInt(n uint64) (int, error) {
	if n > math.MaxInt {
		return 0, errIntegerRange
	}
	return int(n), nil
}

// floatToInt accepts integral values in [MinInt, MaxInt]. -MinInt is an exact
// power of two, so it bounds the range without float rounding.
func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errNotInteger
	}
	if f < math.MinInt || f >= -math.MinInt {
		return 0, errIntegerRange
	}
	return int(f), nil
}

// cloneValue deep-copies the maps and slices of a decoded JSON tree.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return clonePayload(val)
	case []any:
		out := make([]any, len(val))
		for i, entry := range val {
			out[i] = cloneValue(entry)
		}
		return out
	default:
		return val
	}
}

func clonePayload(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// rawPayload keeps the wire form an entity was built from. It is the single
// source for serialisation.
type rawPayload struct {
	raw map[string]any
}

// Payload returns a deep copy of the entity's wire representation.
func (p rawPayload) Payload() map[string]any {
	return clonePayload(p.raw)
}

// MarshalJSON emits the retained wire representation.
func (p rawPayload) MarshalJSON() ([]byte, error) {
	if p.raw == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.raw)
}

// decodeObject decodes raw JSON that must hold a single object, keeping
// numbers as json.Number.
func decodeObject(raw []byte) (map[string]any, error) {
	var v any
	if err := unmarshalUseNumber(raw, &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("expected a JSON object")
	}
	return obj, nil
}
