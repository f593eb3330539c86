package datum

// Type tags a value domain.
type Type uint8

const (
	// Invalid is the zero Type; no Values carries it.
	Invalid Type = iota

	// Int32 is a 32-bit signed integer domain.
	Int32
	// Int64 is a 64-bit signed integer domain.
	Int64
	// Uint32 is a 32-bit unsigned integer domain.
	Uint32
	// Uint64 is a 64-bit unsigned integer domain.
	Uint64
	// Float32 is a 32-bit floating point domain.
	Float32
	// Float64 is a 64-bit floating point domain.
	Float64
	// Timestamp is a 64-bit epoch-offset instant domain.
	Timestamp
	// Duration is a 64-bit elapsed-time domain.
	Duration
	// String is a byte-wise ordered string domain.
	String
	// List is a lexicographically ordered list-of-element domain.
	// Two List domains match only if their element domains match.
	List
)

// String returns the tag name.
func (t Type) String() string {
	switch t {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Timestamp:
		return "timestamp"
	case Duration:
		return "duration"
	case String:
		return "string"
	case List:
		return "list"
	default:
		return "invalid"
	}
}
