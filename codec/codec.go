// Package codec encodes and decodes bounded-field messages into near-minimal
// bit counts for severely bandwidth-constrained acoustic links.
//
// Three wire modes share the same field-encoding core:
//
//	Mode 1: [fields]                        Encode / Decode
//	Mode 2: [tag][fields]                   EncodeTagged / DecodeTagged
//	Mode 3: [routing][tag][fields]          EncodeRouted / DecodeRouted
//
// The tag is the 1-or-2-byte flag-bit type ID; the routing header is the
// 19-bit multi-vehicle prefix. Field values travel as a Values map keyed by
// field name. All functions are pure and safe for concurrent use; each call
// operates on its own buffers.
package codec

import (
	"math"
	"unicode/utf8"

	"github.com/acomms/uwcodec/bitio"
	"github.com/acomms/uwcodec/schema"
)

// Values holds concrete field values keyed by field name.
//
// Concrete types by field kind: Bool → bool, Int → int64 (plain int is also
// accepted on encode), Float → float64, Enum → int ordinal, Bytes → []byte,
// String → string. Decode always produces the canonical type.
type Values map[string]interface{}

// Encode produces the Mode 1 (point-to-point) wire form: the fields in
// declaration order, zero-padded on the right to a byte boundary.
func Encode(desc *schema.Message, values Values) ([]byte, error) {
	return encode(desc, values, nil, false)
}

// EncodeTagged produces the Mode 2 (self-describing) wire form: the message
// type ID tag followed by the fields. The descriptor must carry an ID.
func EncodeTagged(desc *schema.Message, values Values) ([]byte, error) {
	return encode(desc, values, nil, true)
}

// EncodeRouted produces the Mode 3 (routed) wire form: the routing header,
// then the tag, then the fields. Mode 3 always includes the tag.
func EncodeRouted(desc *schema.Message, values Values, h Header) ([]byte, error) {
	return encode(desc, values, &h, true)
}

func encode(desc *schema.Message, values Values, h *Header, tagged bool) ([]byte, error) {
	w := new(bitio.Writer)

	if h != nil {
		if err := writeHeader(w, *h); err != nil {
			return nil, err
		}
	}
	if tagged {
		if err := writeTag(w, desc); err != nil {
			return nil, err
		}
	}

	for _, f := range desc.Fields() {
		v, ok := values[f.Name()]
		if !ok {
			return nil, encodeError(f.Name(), "missing value")
		}
		if err := encodeField(w, f, v); err != nil {
			return nil, err
		}
	}

	out := w.Bytes()
	if max, ok := desc.MaxBytes(); ok && len(out) > max {
		return nil, encodeError("", "encoded size %v bytes exceeds ceiling of %v", len(out), max)
	}
	return out, nil
}

// Decode reverses Encode, reconstructing the Mode 1 field values.
func Decode(desc *schema.Message, data []byte) (Values, error) {
	r := bitio.NewReader(data)
	return decodeFields(desc, r)
}

// DecodeTagged reverses EncodeTagged. If the descriptor carries its own type
// ID, the decoded tag must match it.
func DecodeTagged(desc *schema.Message, data []byte) (Values, error) {
	r := bitio.NewReader(data)
	if err := expectTag(r, desc); err != nil {
		return nil, err
	}
	return decodeFields(desc, r)
}

// DecodeRouted reverses EncodeRouted, returning the routing header alongside
// the field values.
func DecodeRouted(desc *schema.Message, data []byte) (Header, Values, error) {
	r := bitio.NewReader(data)

	h, err := readHeader(r)
	if err != nil {
		return Header{}, nil, err
	}
	if err := expectTag(r, desc); err != nil {
		return Header{}, nil, err
	}

	values, err := decodeFields(desc, r)
	if err != nil {
		return Header{}, nil, err
	}
	return h, values, nil
}

// writeTag appends the variable-width type ID: a 0 flag bit and 7 ID bits
// for IDs under 128, a 1 flag bit and 15 ID bits up to 32767. This is a
// fixed two-case format, not a general varint.
func writeTag(w *bitio.Writer, desc *schema.Message) error {
	id, ok := desc.ID()
	if !ok {
		return encodeError("", "message %v has no type ID; self-describing modes require one", desc.Name())
	}

	switch {
	case id < 128:
		w.WriteBool(false)
		w.WriteUint(uint64(id), 7)
	case id <= schema.MaxID:
		w.WriteBool(true)
		w.WriteUint(uint64(id), 15)
	default:
		// Unreachable through schema.WithID; kept as a hard stop.
		return encodeError("", "type ID %v exceeds %v", id, schema.MaxID)
	}
	return nil
}

func readTag(r *bitio.Reader) (int, error) {
	wide, err := r.ReadBool()
	if err != nil {
		return 0, stageError("type tag", err, "truncated")
	}

	n := 7
	if wide {
		n = 15
	}
	id, err := r.ReadUint(n)
	if err != nil {
		return 0, stageError("type tag", err, "truncated")
	}
	return int(id), nil
}

func expectTag(r *bitio.Reader, desc *schema.Message) error {
	id, err := readTag(r)
	if err != nil {
		return err
	}
	if want, ok := desc.ID(); ok && id != want {
		return stageError("type tag", nil, "ID mismatch: decoded %v, expected %v for %v", id, want, desc.Name())
	}
	return nil
}

func decodeFields(desc *schema.Message, r *bitio.Reader) (Values, error) {
	values := make(Values, len(desc.Fields()))
	for _, f := range desc.Fields() {
		v, err := decodeField(r, f)
		if err != nil {
			return nil, err
		}
		values[f.Name()] = v
	}
	return values, nil
}

func encodeField(w *bitio.Writer, f schema.Field, v interface{}) error {
	switch f.Kind() {
	case schema.Bool:
		b, ok := v.(bool)
		if !ok {
			return encodeError(f.Name(), "expected bool, got %T", v)
		}
		w.WriteBool(b)

	case schema.Int:
		var n int64
		switch t := v.(type) {
		case int64:
			n = t
		case int:
			n = int64(t)
		default:
			return encodeError(f.Name(), "expected int64, got %T", v)
		}
		if n < f.Min() || n > f.Max() {
			return encodeError(f.Name(), "value %v out of bounds [%v, %v]", n, f.Min(), f.Max())
		}
		w.WriteUint(uint64(n)-uint64(f.Min()), f.Bits())

	case schema.Float:
		x, ok := v.(float64)
		if !ok {
			return encodeError(f.Name(), "expected float64, got %T", v)
		}
		scaled, max := scaleFloat(f, x)
		if scaled < 0 || scaled > max {
			return encodeError(f.Name(), "value %v out of bounds [%v, %v]", x, f.FloatMin(), f.FloatMax())
		}
		w.WriteUint(uint64(scaled), f.Bits())

	case schema.Enum:
		ord, ok := v.(int)
		if !ok {
			return encodeError(f.Name(), "expected int ordinal, got %T", v)
		}
		if n := len(f.Variants()); ord < 0 || ord >= n {
			return encodeError(f.Name(), "ordinal %v out of range (have %v variants)", ord, n)
		}
		w.WriteUint(uint64(ord), f.Bits())

	case schema.Bytes:
		p, ok := v.([]byte)
		if !ok {
			return encodeError(f.Name(), "expected []byte, got %T", v)
		}
		if len(p) != f.Length() {
			return encodeError(f.Name(), "expected %v bytes, got %v", f.Length(), len(p))
		}
		w.WriteBytes(p)

	case schema.String:
		s, ok := v.(string)
		if !ok {
			return encodeError(f.Name(), "expected string, got %T", v)
		}
		if len(s) != f.Length() {
			return encodeError(f.Name(), "expected %v bytes of UTF-8, got %v", f.Length(), len(s))
		}
		if !utf8.ValidString(s) {
			return encodeError(f.Name(), "invalid UTF-8")
		}
		w.WriteBytes([]byte(s))

	default:
		return encodeError(f.Name(), "unsupported field kind %v", f.Kind())
	}
	return nil
}

func decodeField(r *bitio.Reader, f schema.Field) (interface{}, error) {
	switch f.Kind() {
	case schema.Bool:
		b, err := r.ReadBool()
		if err != nil {
			return nil, &DecodeError{Field: f.Name(), Message: "truncated", Err: err}
		}
		return b, nil

	case schema.Int:
		u, err := r.ReadUint(f.Bits())
		if err != nil {
			return nil, &DecodeError{Field: f.Name(), Message: "truncated", Err: err}
		}
		// Compared unsigned; offsetting first could wrap past MaxInt64 for
		// ranges near the top of int64 and dodge a signed check.
		if u > uint64(f.Max())-uint64(f.Min()) {
			return nil, decodeError(f.Name(), "decoded offset %v exceeds range [%v, %v]", u, f.Min(), f.Max())
		}
		return int64(uint64(f.Min()) + u), nil

	case schema.Float:
		u, err := r.ReadUint(f.Bits())
		if err != nil {
			return nil, &DecodeError{Field: f.Name(), Message: "truncated", Err: err}
		}
		x := f.FloatMin() + float64(u)/pow10(f.Precision())
		// Guards against rounding drift at the boundary.
		if x < f.FloatMin() || x > f.FloatMax() {
			return nil, decodeError(f.Name(), "decoded value %v out of bounds [%v, %v]", x, f.FloatMin(), f.FloatMax())
		}
		return x, nil

	case schema.Enum:
		u, err := r.ReadUint(f.Bits())
		if err != nil {
			return nil, &DecodeError{Field: f.Name(), Message: "truncated", Err: err}
		}
		if n := len(f.Variants()); u >= uint64(n) {
			return nil, decodeError(f.Name(), "invalid enum ordinal %v (only %v variants)", u, n)
		}
		return int(u), nil

	case schema.Bytes:
		p, err := r.ReadBytes(f.Length())
		if err != nil {
			return nil, &DecodeError{Field: f.Name(), Message: "truncated", Err: err}
		}
		return p, nil

	case schema.String:
		p, err := r.ReadBytes(f.Length())
		if err != nil {
			return nil, &DecodeError{Field: f.Name(), Message: "truncated", Err: err}
		}
		if !utf8.Valid(p) {
			return nil, decodeError(f.Name(), "invalid UTF-8")
		}
		return string(p), nil

	default:
		return nil, decodeError(f.Name(), "unsupported field kind %v", f.Kind())
	}
}

// scaleFloat maps a float value onto the integer lattice the field encodes:
// round((v-min) * 10^precision), alongside the largest legal lattice point.
func scaleFloat(f schema.Field, v float64) (scaled, max int64) {
	p := pow10(f.Precision())
	return int64(math.Round((v - f.FloatMin()) * p)), int64(math.Round((f.FloatMax() - f.FloatMin()) * p))
}

func pow10(n int) float64 {
	p := 1.0
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
