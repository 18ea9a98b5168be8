package codec

import (
	"fmt"

	"github.com/acomms/uwcodec/bitio"
)

// Broadcast is the destination ID addressing every vehicle in range.
const Broadcast = 255

// headerBits is the wire width of the routing header:
// source:8, dest:8, priority:2, ack:1. The header is not padded on its own;
// the whole message is padded once at the very end.
const headerBits = 19

// Header is the Mode 3 routing prefix carrying multi-vehicle addressing
// metadata. Construct with NewHeader, or as a literal with Priority <= 3.
type Header struct {
	Source       uint8
	Dest         uint8 // 255 = broadcast
	Priority     uint8 // 0 = low, 3 = high
	AckRequested bool
}

// NewHeader returns a validated routing header.
func NewHeader(source, dest uint8, priority uint8, ack bool) (Header, error) {
	h := Header{Source: source, Dest: dest, Priority: priority, AckRequested: ack}
	if err := h.validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// String implements fmt.Stringer.
func (h Header) String() string {
	return fmt.Sprintf("src=%v dst=%v prio=%v ack=%v", h.Source, h.Dest, h.Priority, h.AckRequested)
}

func (h Header) validate() error {
	if h.Priority > 3 {
		return fmt.Errorf("priority must be 0-3, got %v", h.Priority)
	}
	return nil
}

func writeHeader(w *bitio.Writer, h Header) error {
	if err := h.validate(); err != nil {
		return &EncodeError{Message: "routing header", Err: err}
	}
	w.WriteUint(uint64(h.Source), 8)
	w.WriteUint(uint64(h.Dest), 8)
	w.WriteUint(uint64(h.Priority), 2)
	w.WriteBool(h.AckRequested)
	return nil
}

// readHeader decodes the 19-bit routing header. Every sub-field read is
// width-limited, so a successfully read header is in range by construction;
// truncation is the only failure mode.
func readHeader(r *bitio.Reader) (Header, error) {
	if r.Remaining() < headerBits {
		return Header{}, stageError("routing header", bitio.ErrTruncated,
			"need %v bits, have %v", headerBits, r.Remaining())
	}

	src, _ := r.ReadUint(8)
	dst, _ := r.ReadUint(8)
	prio, _ := r.ReadUint(2)
	ack, _ := r.ReadBool()

	return Header{
		Source:       uint8(src),
		Dest:         uint8(dst),
		Priority:     uint8(prio),
		AckRequested: ack,
	}, nil
}
