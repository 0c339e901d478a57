package signature

import (
	"bytes"
	"encoding"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	canonicaljson "github.com/gibson042/canonicaljson-go"
)

// TimeLayout is the timestamp format used inside canonical payloads. The offset
// is always numeric so UTC values render as +00:00 rather than Z.
const TimeLayout = "2006-01-02T15:04:05-07:00"

const maxDepth = 512

var (
	timeType          = reflect.TypeFor[time.Time]()
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// EncodingError reports a value that has no canonical JSON representation.
type EncodingError struct {
	Path   string
	Reason string
	Err    error
}

func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("signature: cannot canonicalize %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("signature: cannot canonicalize %s: %s", e.Path, e.Reason)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Canonicalize renders v as canonical JSON: object members sorted by key,
// arrays in their original order, no insignificant whitespace, slashes and
// non-ASCII characters unescaped, and integral floating point values keeping a
// ".0" fraction. Two trees that are equal as unordered maps always produce the
// same bytes.
//
// Maps, slices, scalars, [time.Time] and [json.Number] are walked directly.
// Structs and other [json.Marshaler] implementations are first reduced to a
// generic tree through encoding/json.
func Canonicalize(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, "$", 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CanonicalizeJSON normalizes a raw JSON document into canonical form.
func CanonicalizeJSON(raw []byte) ([]byte, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return []byte("null"), nil
	}
	tree, err := decodeTree(raw)
	if err != nil {
		return nil, err
	}
	return Canonicalize(tree)
}

func decodeTree(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("signature: multiple JSON documents in body")
	}
	return tree, nil
}

func encodeValue(buf *bytes.Buffer, v any, path string, depth int) error {
	if depth > maxDepth {
		return &EncodingError{Path: path, Reason: fmt.Sprintf("nesting exceeds %d levels", maxDepth)}
	}
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		buf.WriteString(strconv.FormatBool(t))
		return nil
	case string:
		return writeString(buf, t, path)
	case json.Number:
		return writeNumberLiteral(buf, t, path)
	case float64:
		return writeFloat(buf, t, 64, path)
	case float32:
		return writeFloat(buf, float64(t), 32, path)
	case int:
		buf.WriteString(strconv.Itoa(t))
		return nil
	case int64:
		buf.WriteString(strconv.FormatInt(t, 10))
		return nil
	case time.Time:
		return writeString(buf, t.Format(TimeLayout), path)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		return writeObject(buf, keys, func(k string) any { return t[k] }, path, depth)
	case []any:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, item, path+"["+strconv.Itoa(i)+"]", depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case json.RawMessage:
		tree, err := decodeTree(t)
		if err != nil {
			return &EncodingError{Path: path, Reason: "invalid raw JSON", Err: err}
		}
		return encodeValue(buf, tree, path, depth+1)
	}
	return encodeReflect(buf, reflect.ValueOf(v), path, depth)
}

func encodeReflect(buf *bytes.Buffer, rv reflect.Value, path string, depth int) error {
	if rv.Type() == timeType {
		return writeString(buf, rv.Interface().(time.Time).Format(TimeLayout), path)
	}
	if rv.Type().Implements(jsonMarshalerType) || rv.Type().Implements(textMarshalerType) {
		if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
			buf.WriteString("null")
			return nil
		}
		return encodeViaJSON(buf, rv.Interface(), path, depth)
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			buf.WriteString("null")
			return nil
		}
		return encodeValue(buf, rv.Elem().Interface(), path, depth+1)
	case reflect.Bool:
		buf.WriteString(strconv.FormatBool(rv.Bool()))
		return nil
	case reflect.String:
		return writeString(buf, rv.String(), path)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		buf.WriteString(strconv.FormatInt(rv.Int(), 10))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		buf.WriteString(strconv.FormatUint(rv.Uint(), 10))
		return nil
	case reflect.Float32:
		return writeFloat(buf, rv.Float(), 32, path)
	case reflect.Float64:
		return writeFloat(buf, rv.Float(), 64, path)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return &EncodingError{Path: path, Reason: "map keys must be strings"}
		}
		if rv.IsNil() {
			buf.WriteString("null")
			return nil
		}
		keys := make([]string, 0, rv.Len())
		values := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			keys = append(keys, k)
			values[k] = iter.Value().Interface()
		}
		return writeObject(buf, keys, func(k string) any { return values[k] }, path, depth)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			buf.WriteString("null")
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			raw := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(raw), rv)
			return writeString(buf, base64.StdEncoding.EncodeToString(raw), path)
		}
		buf.WriteByte('[')
		for i := range rv.Len() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, rv.Index(i).Interface(), path+"["+strconv.Itoa(i)+"]", depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case reflect.Struct:
		return encodeViaJSON(buf, rv.Interface(), path, depth)
	default:
		return &EncodingError{Path: path, Reason: "unsupported type " + rv.Type().String()}
	}
}

func encodeViaJSON(buf *bytes.Buffer, v any, path string, depth int) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &EncodingError{Path: path, Reason: "marshal value", Err: err}
	}
	tree, err := decodeTree(raw)
	if err != nil {
		return &EncodingError{Path: path, Reason: "decode marshaled value", Err: err}
	}
	return encodeValue(buf, tree, path, depth+1)
}

func writeObject(buf *bytes.Buffer, keys []string, value func(string) any, path string, depth int) error {
	// Go compares strings bytewise, which matches code point order for UTF-8.
	slices.Sort(keys)
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, k, path); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := encodeValue(buf, value(k), path+"."+k, depth+1); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeString(buf *bytes.Buffer, s, path string) error {
	encoded, err := canonicaljson.Marshal(s)
	if err != nil {
		return &EncodingError{Path: path, Reason: "encode string", Err: err}
	}
	buf.Write(encoded)
	return nil
}

func writeNumberLiteral(buf *bytes.Buffer, n json.Number, path string) error {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return &EncodingError{Path: path, Reason: "invalid number literal " + strconv.Quote(s)}
		}
		buf.WriteString(s)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return &EncodingError{Path: path, Reason: "invalid number literal " + strconv.Quote(s), Err: err}
	}
	return writeFloat(buf, f, 64, path)
}

// writeFloat follows encoding/json's float formatting and keeps a ".0"
// fraction on mantissas without one, including exponent forms, so floats stay
// distinguishable from integers.
func writeFloat(buf *bytes.Buffer, f float64, bits int, path string) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return &EncodingError{Path: path, Reason: "non-finite number " + strconv.FormatFloat(f, 'g', -1, bits)}
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 {
		if bits == 64 && (abs < 1e-6 || abs >= 1e21) || bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			format = 'e'
		}
	}
	s := strconv.FormatFloat(f, format, -1, bits)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(s)
		if n >= 4 && s[n-4] == 'e' && s[n-3] == '-' && s[n-2] == '0' {
			s = s[:n-2] + s[n-1:]
		}
		// 1e+21 becomes 1.0e+21
		if i := strings.IndexByte(s, 'e'); !strings.Contains(s[:i], ".") {
			s = s[:i] + ".0" + s[i:]
		}
		buf.WriteString(s)
		return nil
	}
	buf.WriteString(s)
	if !strings.Contains(s, ".") {
		buf.WriteString(".0")
	}
	return nil
}
