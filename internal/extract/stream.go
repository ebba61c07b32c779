package extract

import (
	"encoding/json"
	"io"

	"github.com/vegasq/tablify/internal/value"
)

// Stream yields records incrementally from the token stream without
// materializing sibling records. Only the document prefix before the record
// array is buffered (it is needed for the single-record fallback); once the
// array is located each record is decoded on demand.
type Stream struct {
	src      io.Closer
	dec      *json.Decoder
	buffered []value.Value
	bufPos   int
	inArray  bool
	done     bool
	idx      int
}

// NewStream starts a streaming extraction from r. If r is an io.Closer it
// is closed by Close. The record iterable is located before NewStream
// returns, so location errors surface immediately.
func NewStream(r io.Reader) (*Stream, error) {
	s := &Stream{dec: value.NewDecoder(r)}
	if c, ok := r.(io.Closer); ok {
		s.src = c
	}

	tok, err := s.dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, &value.ParseError{Err: io.ErrUnexpectedEOF}
		}
		return nil, value.WrapError(s.dec, err)
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, &ExtractionError{Msg: "document is not an array or object of records"}
	}

	switch delim {
	case '[':
		return s, s.enterRootArray()
	case '{':
		obj, found, err := s.scanObject()
		if err != nil {
			return nil, err
		}
		if !found {
			// no qualifying array anywhere: the object itself is one record
			s.buffered = []value.Value{obj}
		}
		return s, nil
	default:
		return nil, &ExtractionError{Msg: "document is not an array or object of records"}
	}
}

func (s *Stream) enterRootArray() error {
	if !s.dec.More() {
		// scenario: empty root array is a valid zero-record input
		if _, err := s.dec.Token(); err != nil {
			return value.WrapError(s.dec, err)
		}
		s.done = true
		return nil
	}
	first, err := value.Decode(s.dec)
	if err != nil {
		return err
	}
	if first.Kind != value.KindObject {
		return &ExtractionError{Msg: "root array does not contain objects"}
	}
	s.buffered = []value.Value{first}
	s.inArray = true
	return nil
}

// scanObject walks one object's members in document order, looking for the
// record array. It mirrors Locate: an array member qualifies when its first
// element is an object or its key is a conventional wrapper name; object
// members are scanned recursively. Members read before a find are
// accumulated so that a find-free object can be returned as the single
// record.
func (s *Stream) scanObject() (value.Value, bool, error) {
	var members []value.Member
	for s.dec.More() {
		keyTok, err := s.dec.Token()
		if err != nil {
			return value.Value{}, false, value.WrapError(s.dec, err)
		}
		key, _ := keyTok.(string)

		valTok, err := s.dec.Token()
		if err != nil {
			return value.Value{}, false, value.WrapError(s.dec, err)
		}

		if delim, ok := valTok.(json.Delim); ok {
			switch delim {
			case '[':
				arr, found, err := s.scanArray(key)
				if err != nil {
					return value.Value{}, false, err
				}
				if found {
					return value.Value{}, true, nil
				}
				members = append(members, value.Member{Key: key, Value: arr})
				continue
			case '{':
				sub, found, err := s.scanObject()
				if err != nil {
					return value.Value{}, false, err
				}
				if found {
					return value.Value{}, true, nil
				}
				members = append(members, value.Member{Key: key, Value: sub})
				continue
			}
		}

		v, err := value.DecodeFrom(s.dec, valTok)
		if err != nil {
			return value.Value{}, false, err
		}
		members = append(members, value.Member{Key: key, Value: v})
	}
	if _, err := s.dec.Token(); err != nil {
		return value.Value{}, false, value.WrapError(s.dec, err)
	}
	return value.Value{Kind: value.KindObject, Members: members}, false, nil
}

// scanArray decides whether the array just entered is the record iterable.
// When it is, the first element stays buffered and the decoder is left
// positioned inside the array; otherwise the whole array is decoded and
// returned as an ordinary member value.
func (s *Stream) scanArray(key string) (value.Value, bool, error) {
	if !s.dec.More() {
		if _, err := s.dec.Token(); err != nil {
			return value.Value{}, false, value.WrapError(s.dec, err)
		}
		if wrapperKeys[key] {
			// an empty conventional wrapper is a zero-record input
			s.done = true
			return value.Value{}, true, nil
		}
		return value.Value{Kind: value.KindArray}, false, nil
	}

	first, err := value.Decode(s.dec)
	if err != nil {
		return value.Value{}, false, err
	}
	if first.Kind == value.KindObject || wrapperKeys[key] {
		s.buffered = []value.Value{first}
		s.inArray = true
		return value.Value{}, true, nil
	}

	elems := []value.Value{first}
	for s.dec.More() {
		el, err := value.Decode(s.dec)
		if err != nil {
			return value.Value{}, false, err
		}
		elems = append(elems, el)
	}
	if _, err := s.dec.Token(); err != nil {
		return value.Value{}, false, value.WrapError(s.dec, err)
	}
	return value.Value{Kind: value.KindArray, Elems: elems}, false, nil
}

// Next returns the next record, or io.EOF after the last one.
func (s *Stream) Next() (value.Value, error) {
	if s.bufPos < len(s.buffered) {
		rec := s.buffered[s.bufPos]
		if err := checkRecord(rec, s.idx); err != nil {
			return value.Value{}, err
		}
		s.bufPos++
		s.idx++
		return rec, nil
	}
	if s.done || !s.inArray {
		return value.Value{}, io.EOF
	}
	if !s.dec.More() {
		if _, err := s.dec.Token(); err != nil {
			return value.Value{}, value.WrapError(s.dec, err)
		}
		s.done = true
		return value.Value{}, io.EOF
	}
	rec, err := value.Decode(s.dec)
	if err != nil {
		return value.Value{}, err
	}
	if err := checkRecord(rec, s.idx); err != nil {
		return value.Value{}, err
	}
	s.idx++
	return rec, nil
}

// Close closes the underlying source, if it owns one. Safe to call more
// than once.
func (s *Stream) Close() error {
	if s.src == nil {
		return nil
	}
	src := s.src
	s.src = nil
	return src.Close()
}
