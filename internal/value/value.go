package value

import (
	"encoding/json"
	"strings"
)

// Kind identifies which variant of the JSON value union a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

// String returns the JSON type name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Member is one key/value pair of a JSON object. Objects are kept as member
// slices rather than maps so that the original document order survives
// parsing; column ordering downstream depends on it.
type Member struct {
	Key   string
	Value Value
}

// Value is a parsed JSON value. Exactly one of the payload fields is
// meaningful, selected by Kind. Values are immutable after parsing.
//
// Numbers are held as json.Number so their textual form from the input is
// preserved exactly in the output.
type Value struct {
	Kind    Kind
	Bool    bool
	Num     json.Number
	Str     string
	Members []Member // Kind == KindObject
	Elems   []Value  // Kind == KindArray
}

// Null returns the JSON null value.
func Null() Value { return Value{Kind: KindNull} }

// IsScalar reports whether the value is one of the scalar kinds
// (null, boolean, number, string).
func (v Value) IsScalar() bool {
	return v.Kind != KindObject && v.Kind != KindArray
}

// Text returns the textual form of a scalar value: the string itself,
// the number's source text, "true"/"false" for booleans, and the empty
// string for null. For objects and arrays it falls back to the canonical
// JSON representation.
func (v Value) Text() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return v.Num.String()
	case KindString:
		return v.Str
	default:
		return v.JSON()
	}
}

// Member returns the value of the named object member and whether it exists.
func (v Value) Member(key string) (Value, bool) {
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// JSON renders the value as compact JSON text, preserving object member
// order from the source document.
func (v Value) JSON() string {
	var sb strings.Builder
	v.writeJSON(&sb)
	return sb.String()
}

func (v Value) writeJSON(sb *strings.Builder) {
	switch v.Kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.Bool {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindNumber:
		sb.WriteString(v.Num.String())
	case KindString:
		writeJSONString(sb, v.Str)
	case KindObject:
		sb.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeJSONString(sb, m.Key)
			sb.WriteByte(':')
			m.Value.writeJSON(sb)
		}
		sb.WriteByte('}')
	case KindArray:
		sb.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				sb.WriteByte(',')
			}
			e.writeJSON(sb)
		}
		sb.WriteByte(']')
	}
}

const hexDigits = "0123456789abcdef"

func writeJSONString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte(hexDigits[byte(r)>>4])
				sb.WriteByte(hexDigits[byte(r)&0xf])
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
}
