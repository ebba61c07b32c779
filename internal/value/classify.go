package value

// Class is the structural classification a Value receives before
// transformation. It collapses the six JSON kinds into the four shapes the
// converters care about.
type Class int

const (
	// ClassScalar covers null, boolean, number and string values.
	ClassScalar Class = iota
	// ClassObject is a JSON object.
	ClassObject
	// ClassArrayOfScalar is an array whose elements are not objects. Empty
	// arrays land here too, so downstream code never has to handle an
	// unclassified shape.
	ClassArrayOfScalar
	// ClassArrayOfObject is an array whose first element is an object; the
	// source of row multiplication and table splitting.
	ClassArrayOfObject
)

// String returns a human-readable name for the class.
func (c Class) String() string {
	switch c {
	case ClassScalar:
		return "scalar"
	case ClassObject:
		return "object"
	case ClassArrayOfScalar:
		return "array"
	case ClassArrayOfObject:
		return "array of objects"
	default:
		return "unknown"
	}
}

// Classify returns the structural class of a value. It is total: every
// Value classifies without error.
func Classify(v Value) Class {
	switch v.Kind {
	case KindObject:
		return ClassObject
	case KindArray:
		if len(v.Elems) > 0 && v.Elems[0].Kind == KindObject {
			return ClassArrayOfObject
		}
		return ClassArrayOfScalar
	default:
		return ClassScalar
	}
}
