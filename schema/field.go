package schema

import (
	"math"
	"math/bits"
)

// Kind identifies a field's encoding strategy.
type Kind int

const (
	// Bool encodes as a single bit.
	Bool Kind = iota
	// Int encodes value-min as an unsigned integer sized to the range.
	Int
	// Float scales to an integer by 10^precision, then encodes like Int.
	Float
	// Enum encodes the zero-based ordinal of an ordered variant list.
	Enum
	// Bytes encodes a fixed number of raw bytes.
	Bytes
	// String encodes fixed-length UTF-8 text.
	String
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Enum:
		return "enum"
	case Bytes:
		return "bytes"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// Field is the immutable descriptor of one message field.
// Construct with NewBool, NewInt, NewFloat, NewEnum, NewBytes or NewString;
// the zero Field is not valid.
type Field struct {
	name string
	kind Kind

	min, max   int64   // Int
	fmin, fmax float64 // Float
	precision  int     // Float, decimal digits preserved
	length     int     // Bytes, String
	variants   []string

	bits int
}

// NewBool returns a single-bit boolean field.
func NewBool(name string) (Field, error) {
	if name == "" {
		return Field{}, newError(name, "field name must not be empty")
	}
	return Field{name: name, kind: Bool, bits: 1}, nil
}

// NewInt returns a bounded integer field covering [min, max] inclusive.
func NewInt(name string, min, max int64) (Field, error) {
	if name == "" {
		return Field{}, newError(name, "field name must not be empty")
	}
	if min > max {
		return Field{}, newError(name, "invalid bounds: min=%v > max=%v", min, max)
	}
	return Field{name: name, kind: Int, min: min, max: max, bits: bitsForRange(uint64(max) - uint64(min) + 1)}, nil
}

// NewFloat returns a bounded decimal field covering [min, max] with the
// given number of preserved decimal digits. precision must be in [0,6].
func NewFloat(name string, min, max float64, precision int) (Field, error) {
	if name == "" {
		return Field{}, newError(name, "field name must not be empty")
	}
	if precision < 0 || precision > 6 {
		return Field{}, newError(name, "precision must be 0-6, got %v", precision)
	}
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return Field{}, newError(name, "bounds must be finite")
	}
	if min > max {
		return Field{}, newError(name, "invalid bounds: min=%v > max=%v", min, max)
	}

	scaled := math.Round((max - min) * pow10(precision))
	if scaled >= math.MaxInt64 {
		return Field{}, newError(name, "scaled range %v exceeds 63 bits; reduce bounds or precision", scaled)
	}

	return Field{
		name:      name,
		kind:      Float,
		fmin:      min,
		fmax:      max,
		precision: precision,
		bits:      bitsForRange(uint64(scaled) + 1),
	}, nil
}

// NewEnum returns a field encoding the ordinal of one of the given variants.
// The declaration order of variants is the wire order; it must be stable
// across every process that exchanges this message.
func NewEnum(name string, variants ...string) (Field, error) {
	if name == "" {
		return Field{}, newError(name, "field name must not be empty")
	}
	if len(variants) == 0 {
		return Field{}, newError(name, "enum needs at least one variant")
	}
	seen := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		if _, ok := seen[v]; ok {
			return Field{}, newError(name, "duplicate enum variant %q", v)
		}
		seen[v] = struct{}{}
	}

	vs := make([]string, len(variants))
	copy(vs, variants)
	return Field{name: name, kind: Enum, variants: vs, bits: bitsForRange(uint64(len(vs)))}, nil
}

// NewBytes returns a fixed-length raw byte field.
func NewBytes(name string, length int) (Field, error) {
	if name == "" {
		return Field{}, newError(name, "field name must not be empty")
	}
	if length < 1 {
		return Field{}, newError(name, "length must be at least 1, got %v", length)
	}
	return Field{name: name, kind: Bytes, length: length, bits: length * 8}, nil
}

// NewString returns a fixed-length UTF-8 text field. length is in bytes of
// the encoded form, not characters.
func NewString(name string, length int) (Field, error) {
	if name == "" {
		return Field{}, newError(name, "field name must not be empty")
	}
	if length < 1 {
		return Field{}, newError(name, "length must be at least 1, got %v", length)
	}
	return Field{name: name, kind: String, length: length, bits: length * 8}, nil
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// Kind returns the field kind.
func (f Field) Kind() Kind { return f.kind }

// Bits returns the constant encoded width of the field in bits.
// It is pure; the same descriptor always reports the same width.
func (f Field) Bits() int { return f.bits }

// Min returns the lower bound of an Int field.
func (f Field) Min() int64 { return f.min }

// Max returns the upper bound of an Int field.
func (f Field) Max() int64 { return f.max }

// FloatMin returns the lower bound of a Float field.
func (f Field) FloatMin() float64 { return f.fmin }

// FloatMax returns the upper bound of a Float field.
func (f Field) FloatMax() float64 { return f.fmax }

// Precision returns the preserved decimal digits of a Float field.
func (f Field) Precision() int { return f.precision }

// Length returns the fixed byte length of a Bytes or String field.
func (f Field) Length() int { return f.length }

// Variants returns the ordered variant names of an Enum field.
func (f Field) Variants() []string {
	vs := make([]string, len(f.variants))
	copy(vs, f.variants)
	return vs
}

// bitsForRange returns the bits needed to distinguish size values.
// A single-value range still takes 1 bit. size of 0 means the range wrapped
// the full 64-bit space.
func bitsForRange(size uint64) int {
	if size == 0 {
		return 64
	}
	if size == 1 {
		return 1
	}
	return bits.Len64(size - 1)
}

func pow10(n int) float64 {
	p := 1.0
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
