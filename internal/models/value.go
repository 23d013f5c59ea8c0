package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Kind identifies which variant a Value holds.
type Kind int

// Value kinds
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Member is one key/value pair of an object, kept in document order.
type Member struct {
	Key   string
	Value Value
}

// Value is a JSON document of arbitrary shape.
// Objects keep their members in the order they appeared in the source,
// and numbers keep their literal text so that writing a Value back out
// never reformats it.
type Value struct {
	kind    Kind
	boolean bool
	text    string // string payload, or number literal
	elems   []Value
	members []Member
}

// Null returns the JSON null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Number wraps a number literal such as "42" or "1.5e3".
func Number(literal string) Value { return Value{kind: KindNumber, text: literal} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Array builds an array from its elements.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, elems: elems}
}

// Object builds an object from members in the given order.
func Object(members ...Member) Value {
	if members == nil {
		members = []Member{}
	}
	return Value{kind: KindObject, members: members}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload when v is a string.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.text, true
}

// Literal returns the number literal when v is a number.
func (v Value) Literal() (string, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	return v.text, true
}

// Boolean returns the payload when v is a bool.
func (v Value) Boolean() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.boolean, true
}

// Elems returns the elements of an array, or nil for any other kind.
func (v Value) Elems() []Value { return v.elems }

// Members returns the members of an object in document order, or nil.
func (v Value) Members() []Member { return v.members }

// Get returns the first member named key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Validate reports whether data is a document ParseValue accepts. Syntax errors
// carry the byte offset reported by encoding/json, and documents nested deeper
// than encoding/json allows are rejected.
func Validate(data []byte) error {
	var raw json.RawMessage
	return json.Unmarshal(data, &raw)
}

// ParseValue decodes a JSON document into a Value.
func ParseValue(data []byte) (Value, error) {
	if err := Validate(data); err != nil {
		return Value{}, err
	}
	return FromResult(gjson.ParseBytes(data)), nil
}

// FromResult converts an already parsed gjson result.
func FromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		return Number(r.Raw)
	case gjson.String:
		return String(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			elems := make([]Value, 0)
			r.ForEach(func(_, item gjson.Result) bool {
				elems = append(elems, FromResult(item))
				return true
			})
			return Array(elems...)
		}
		members := make([]Member, 0)
		r.ForEach(func(key, item gjson.Result) bool {
			members = append(members, Member{Key: key.Str, Value: FromResult(item)})
			return true
		})
		return Object(members...)
	default:
		return Null()
	}
}

// MarshalJSON writes v compactly, objects in member order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Compact returns the compact JSON text of v.
func (v Value) Compact() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.boolean {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(v.text)
	case KindString:
		return encodeString(buf, v.text)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("cannot encode %s", v.kind)
	}
	return nil
}

// encodeString quotes s as JSON without HTML escaping.
func encodeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

// IndentArray renders values as a JSON array indented by two spaces,
// terminated with a newline. This is the on-disk format of every output file.
func IndentArray(values []Value) ([]byte, error) {
	compact, err := Array(values...).MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent output: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
