package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedPayload is returned when caller-supplied payload text is not a
// valid JSON object. Callers surface this distinctly from snippet execution
// failures so a shell can print a targeted message.
var ErrMalformedPayload = errors.New("domain: invalid JSON payload")

// Payload is a string-keyed mapping parsed from a JSON object, preserving the
// document's top-level key order. The default signing algorithm derives its
// field order from this iteration order, so a plain Go map would not do.
type Payload struct {
	keys   []string
	values map[string]any
}

// NewPayload returns an empty payload.
func NewPayload() *Payload {
	return &Payload{values: make(map[string]any)}
}

// ParsePayload decodes raw JSON into a Payload. Anything that is not a single
// JSON object yields ErrMalformedPayload.
func ParsePayload(raw []byte) (*Payload, error) {
	p := NewPayload()
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, ErrMalformedPayload
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrMalformedPayload
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, ErrMalformedPayload
		}
		key, ok := tok.(string)
		if !ok {
			return nil, ErrMalformedPayload
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, ErrMalformedPayload
		}
		p.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, ErrMalformedPayload
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrMalformedPayload
	}
	return p, nil
}

// Set stores value under key. A repeated key keeps its original position and
// takes the new value, matching JSON object update semantics.
func (p *Payload) Set(key string, value any) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value for key and whether it is present.
func (p *Payload) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the payload's keys in document order.
func (p *Payload) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

func (p *Payload) Len() int {
	return len(p.keys)
}

// ValueString renders a payload value the way snippet code sees it when
// coercing to a string: nil becomes empty, strings pass through, booleans and
// numbers use their ECMAScript string form. The native reference algorithm
// and executed snippets must concatenate identical bytes, so both sides share
// this definition.
func ValueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return numberString(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return numberString(f)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = ValueString(item)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// numberString formats f like ECMAScript's Number::toString: plain decimal
// notation inside the 1e-6..1e21 magnitude range, exponent notation outside
// it, with no zero-padded exponents.
func numberString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs < 1e21 && abs >= 1e-6 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mantissa, exp := s[:i], s[i+1:]
		sign := ""
		if len(exp) > 0 && (exp[0] == '+' || exp[0] == '-') {
			if exp[0] == '-' {
				sign = "-"
			}
			exp = exp[1:]
		}
		exp = strings.TrimLeft(exp, "0")
		if exp == "" {
			exp = "0"
		}
		if sign == "" {
			sign = "+"
		}
		s = mantissa + "e" + sign + exp
	}
	return s
}
