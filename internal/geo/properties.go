package geo

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Properties is the attribute set of a feature. Keys keep the order in which
// they appear in the source document so tables can show columns as authored.
type Properties struct {
	keys   []string
	values map[string]any
}

// NewProperties returns an empty property set.
func NewProperties() *Properties {
	return &Properties{values: map[string]any{}}
}

// Set adds or replaces a value. New keys are appended to the key order.
func (p *Properties) Set(key string, value any) *Properties {
	if p.values == nil {
		p.values = map[string]any{}
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	return p
}

// Get returns the value stored under key.
func (p *Properties) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the property names in document order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// String returns the string form of key's value; see StringValue.
func (p *Properties) String(key string) string {
	v, _ := p.Get(key)
	return StringValue(v)
}

// UnmarshalJSON decodes a JSON object (or null) preserving key order.
// Numbers are kept as json.Number so their text survives filtering.
func (p *Properties) UnmarshalJSON(data []byte) error {
	p.keys = nil
	p.values = map[string]any{}

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	members, err := decodeMembers(data)
	if err != nil {
		return err
	}
	for _, m := range members {
		dec := json.NewDecoder(bytes.NewReader(m.Value))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		p.Set(m.Key, v)
	}
	return nil
}

// MarshalJSON encodes the properties as an object in key order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// StringValue is the text a filter pattern is matched against. Missing and
// null values are empty, numbers keep their JSON text, nested values are
// compact JSON.
func StringValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
