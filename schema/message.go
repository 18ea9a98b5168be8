package schema

// MaxID is the largest message type ID the variable-width tag can carry.
const MaxID = 32767

// Message is the immutable descriptor of one message type: an ordered field
// list, an optional type ID for self-describing wire modes, and an optional
// hard ceiling on the encoded size.
//
// Field order is encoding order and is significant; two descriptors with the
// same fields in a different order produce different wire bytes.
type Message struct {
	name     string
	fields   []Field
	id       int // -1 when unset
	maxBytes int // 0 when unset
}

// New returns a message descriptor with the given fields, in order.
// Field names must be unique within the message.
func New(name string, fields ...Field) (*Message, error) {
	if name == "" {
		return nil, newError("", "message name must not be empty")
	}

	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.name == "" {
			return nil, newError("", "message %v contains an uninitialized field", name)
		}
		if _, ok := seen[f.name]; ok {
			return nil, newError(f.name, "duplicate field name in message %v", name)
		}
		seen[f.name] = struct{}{}
	}

	fs := make([]Field, len(fields))
	copy(fs, fields)
	return &Message{name: name, fields: fs, id: -1}, nil
}

// WithID returns a copy of the descriptor carrying the given type ID.
// IDs 0-127 tag in one byte on the wire, 128-32767 in two.
func (m *Message) WithID(id int) (*Message, error) {
	if id < 0 || id > MaxID {
		return nil, newError("", "message ID must be 0-%v, got %v", MaxID, id)
	}
	c := *m
	c.id = id
	return &c, nil
}

// WithMaxBytes returns a copy of the descriptor carrying a maximum encoded
// size. Encoding fails outright when the result would exceed it.
func (m *Message) WithMaxBytes(n int) (*Message, error) {
	if n < 1 {
		return nil, newError("", "max bytes must be at least 1, got %v", n)
	}
	c := *m
	c.maxBytes = n
	return &c, nil
}

// Name returns the message name.
func (m *Message) Name() string { return m.name }

// Fields returns the ordered field descriptors.
// The returned slice is shared; callers must not modify it.
func (m *Message) Fields() []Field { return m.fields }

// Field returns the descriptor of the named field.
func (m *Message) Field(name string) (Field, bool) {
	for _, f := range m.fields {
		if f.name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ID returns the message type ID, if one was set with WithID.
func (m *Message) ID() (int, bool) {
	if m.id < 0 {
		return 0, false
	}
	return m.id, true
}

// MaxBytes returns the encoded size ceiling, if one was set.
func (m *Message) MaxBytes() (int, bool) {
	if m.maxBytes == 0 {
		return 0, false
	}
	return m.maxBytes, true
}

// Bits returns the total payload width in bits, excluding any tag or
// routing header.
func (m *Message) Bits() int {
	total := 0
	for _, f := range m.fields {
		total += f.bits
	}
	return total
}

// Size returns the Mode 1 encoded size in bytes, rounded up.
func (m *Message) Size() int {
	return (m.Bits() + 7) / 8
}

// FieldBits returns the per-field bit widths keyed by field name.
func (m *Message) FieldBits() map[string]int {
	sizes := make(map[string]int, len(m.fields))
	for _, f := range m.fields {
		sizes[f.name] = f.bits
	}
	return sizes
}
