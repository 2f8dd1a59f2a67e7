package provider

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Payload is a decoded JSON object used for required-key checks and loose field access.
type Payload map[string]any

// ParsePayload decodes raw as a JSON object.
func ParsePayload(raw json.RawMessage) (Payload, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("payload is null")
	}
	return p, nil
}

// Has reports whether the key path exists and every value along it is non-null.
// Keys match case-insensitively.
func (p Payload) Has(path ...string) bool {
	cur := p
	for i, key := range path {
		v, ok := cur.lookup(key)
		if !ok || v == nil {
			return false
		}
		if i == len(path)-1 {
			return true
		}
		next, ok := v.(map[string]any)
		if !ok {
			return false
		}
		cur = next
	}
	return true
}

// Present reports whether key exists, even with a null value.
func (p Payload) Present(key string) bool {
	_, ok := p.lookup(key)
	return ok
}

// Object returns the nested object at key.
func (p Payload) Object(key string) (Payload, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return Payload(m), ok
}

// String returns the value at key as text. Numbers and booleans are formatted,
// missing and null values are blank.
func (p Payload) String(key string) string {
	v, _ := p.lookup(key)
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

// Float returns the value at key as a number, parsing strings when needed.
func (p Payload) Float(key string) float64 {
	v, _ := p.lookup(key)
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	}
	return 0
}

// Raw re-encodes the value at key.
func (p Payload) Raw(key string) json.RawMessage {
	v, ok := p.lookup(key)
	if !ok {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func (p Payload) lookup(key string) (any, bool) {
	if v, ok := p[key]; ok {
		return v, true
	}
	for k, v := range p {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// Text decodes a JSON string, number or boolean as text. Null leaves it blank.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*t = Text(v)
		return nil
	}
	*t = Text(s)
	return nil
}

func (t Text) String() string { return string(t) }

// Number decodes a JSON number or numeric string. Null and blank leave it zero.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("number %q: %w", v, err)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Format renders the number without trailing zeros.
func (n Number) Format() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}
