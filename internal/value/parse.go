package value

import (
	"encoding/json"
	"fmt"
	"io"
)

// ParseError reports malformed JSON input. Offset is the byte position the
// decoder had reached when the error surfaced, when known.
type ParseError struct {
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("invalid JSON at byte %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("invalid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewDecoder returns a json.Decoder configured the way this package expects:
// numbers are decoded as json.Number so their source text is preserved.
func NewDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// Parse reads a single JSON document from r into a Value.
func Parse(r io.Reader) (Value, error) {
	dec := NewDecoder(r)
	v, err := Decode(dec)
	if err != nil {
		if err == io.EOF {
			err = &ParseError{Err: io.ErrUnexpectedEOF}
		}
		return Value{}, err
	}
	return v, nil
}

// Decode reads the next complete JSON value from the decoder's token
// stream. Object member order is preserved.
func Decode(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, WrapError(dec, err)
	}
	return DecodeFrom(dec, tok)
}

// DecodeFrom completes a value whose first token has already been consumed.
// The streaming extractor uses this after peeking at a token to decide what
// structure it is entering.
func DecodeFrom(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return Value{}, &ParseError{Offset: dec.InputOffset(), Err: fmt.Errorf("unexpected delimiter %q", t.String())}
		}
	case nil:
		return Value{Kind: KindNull}, nil
	case bool:
		return Value{Kind: KindBool, Bool: t}, nil
	case json.Number:
		return Value{Kind: KindNumber, Num: t}, nil
	case string:
		return Value{Kind: KindString, Str: t}, nil
	default:
		return Value{}, &ParseError{Offset: dec.InputOffset(), Err: fmt.Errorf("unexpected token %v", tok)}
	}
}

func decodeObject(dec *json.Decoder) (Value, error) {
	var members []Member
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, WrapError(dec, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return Value{}, &ParseError{Offset: dec.InputOffset(), Err: fmt.Errorf("object key is not a string: %v", keyTok)}
		}
		val, err := Decode(dec)
		if err != nil {
			return Value{}, err
		}
		members = append(members, Member{Key: key, Value: val})
	}
	// consume the closing '}'
	if _, err := dec.Token(); err != nil {
		return Value{}, WrapError(dec, err)
	}
	return Value{Kind: KindObject, Members: members}, nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	var elems []Value
	for dec.More() {
		el, err := Decode(dec)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, el)
	}
	// consume the closing ']'
	if _, err := dec.Token(); err != nil {
		return Value{}, WrapError(dec, err)
	}
	return Value{Kind: KindArray, Elems: elems}, nil
}

// WrapError converts a decoder failure into a ParseError carrying the byte
// offset. io.EOF passes through untouched so callers can detect a clean end
// of input.
func WrapError(dec *json.Decoder, err error) error {
	if err == nil || err == io.EOF {
		return err
	}
	if pe, ok := err.(*ParseError); ok {
		return pe
	}
	offset := dec.InputOffset()
	if se, ok := err.(*json.SyntaxError); ok {
		offset = se.Offset
	}
	return &ParseError{Offset: offset, Err: err}
}
