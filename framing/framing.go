// Package framing wraps already-encoded payloads in self-delimiting byte
// envelopes for transmission over lossy acoustic channels.
//
// The plain envelope is [len:u32][payload][crc]; the ID-tagged variant is
// [len:u32][id:u16][payload][crc], where len covers id||payload. The CRC,
// when present, is computed over everything preceding it, including the
// length field. All integers are big-endian. The package is payload-agnostic
// and carries no codec logic.
package framing

import (
	"encoding/binary"
	"fmt"
)

// Error reports a malformed, truncated or corrupted frame. Corruption is
// surfaced to the caller immediately; retry and backoff policy belongs to
// the transport layer.
type Error struct {
	Message string
}

// Error implements error.
func (e *Error) Error() string { return "framing: " + e.Message }

func newError(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Kind selects the checksum appended to a frame.
type Kind int

const (
	// NoCRC appends no checksum.
	NoCRC Kind = iota
	// CRC16 appends a 2-byte CRC-16-CCITT.
	CRC16
	// CRC32 appends a 4-byte CRC-32 (IEEE 802.3).
	CRC32
)

// Size returns the checksum width in bytes.
func (k Kind) Size() int {
	switch k {
	case NoCRC:
		return 0
	case CRC16:
		return 2
	case CRC32:
		return 4
	default:
		panic(fmt.Sprintf("framing: unknown CRC kind %d", k))
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case NoCRC:
		return "none"
	case CRC16:
		return "crc16"
	case CRC32:
		return "crc32"
	default:
		return "unknown"
	}
}

// Options selects the envelope parts around a payload.
type Options struct {
	// LengthPrefix prepends a 4-byte big-endian length of the payload only.
	LengthPrefix bool
	// CRC appends a checksum over everything written before it.
	CRC Kind
}

// Frame wraps payload in the envelope selected by opts.
func Frame(payload []byte, opts Options) []byte {
	out := make([]byte, 0, 4+len(payload)+opts.CRC.Size())

	if opts.LengthPrefix {
		var length [4]byte
		binary.BigEndian.PutUint32(length[:], uint32(len(payload)))
		out = append(out, length[:]...)
	}
	out = append(out, payload...)

	return appendCRC(out, opts.CRC)
}

// Unframe reverses Frame, validating the length prefix and checksum that
// opts declares. The payload end is re-derived from the total length minus
// the checksum size; when a length prefix is present the de-framed payload
// must match it exactly.
func Unframe(framed []byte, opts Options) ([]byte, error) {
	if len(framed) == 0 {
		return nil, newError("cannot unframe empty data")
	}

	pos := 0
	expected := -1
	if opts.LengthPrefix {
		if len(framed) < 4 {
			return nil, newError("frame too short for length prefix: %v bytes", len(framed))
		}
		expected = int(binary.BigEndian.Uint32(framed[:4]))
		pos = 4
	}

	crcSize := opts.CRC.Size()
	if len(framed) < pos+crcSize {
		return nil, newError("frame too short: need at least %v bytes, got %v", pos+crcSize, len(framed))
	}

	payloadEnd := len(framed) - crcSize
	payload := framed[pos:payloadEnd]

	if expected >= 0 && len(payload) != expected {
		return nil, newError("length mismatch: prefix says %v bytes, got %v", expected, len(payload))
	}
	if err := verifyCRC(framed[:payloadEnd], framed[payloadEnd:], opts.CRC); err != nil {
		return nil, err
	}

	return payload, nil
}

// FrameWithID wraps payload as [len:u32][id:u16][payload][crc], with len
// covering id||payload. The 2-byte ID sits inside the length's coverage,
// multiplexing message types over one channel.
func FrameWithID(payload []byte, id uint16, crc Kind) []byte {
	out := make([]byte, 0, 6+len(payload)+crc.Size())

	var header [6]byte
	binary.BigEndian.PutUint32(header[:4], uint32(2+len(payload)))
	binary.BigEndian.PutUint16(header[4:], id)
	out = append(out, header[:]...)
	out = append(out, payload...)

	return appendCRC(out, crc)
}

// UnframeWithID reverses FrameWithID, separating the embedded ID from the
// remaining payload.
func UnframeWithID(framed []byte, crc Kind) (uint16, []byte, error) {
	inner, err := Unframe(framed, Options{LengthPrefix: true, CRC: crc})
	if err != nil {
		return 0, nil, err
	}
	if len(inner) < 2 {
		return 0, nil, newError("payload too short for message ID: %v bytes", len(inner))
	}
	return binary.BigEndian.Uint16(inner[:2]), inner[2:], nil
}

func appendCRC(out []byte, kind Kind) []byte {
	switch kind {
	case NoCRC:
		return out
	case CRC16:
		var sum [2]byte
		binary.BigEndian.PutUint16(sum[:], Sum16(out))
		return append(out, sum[:]...)
	case CRC32:
		var sum [4]byte
		binary.BigEndian.PutUint32(sum[:], Sum32(out))
		return append(out, sum[:]...)
	default:
		panic(fmt.Sprintf("framing: unknown CRC kind %d", kind))
	}
}

func verifyCRC(covered, sum []byte, kind Kind) error {
	switch kind {
	case NoCRC:
		return nil
	case CRC16:
		if !Verify16(covered, binary.BigEndian.Uint16(sum)) {
			return newError("CRC-16 verification failed")
		}
	case CRC32:
		if !Verify32(covered, binary.BigEndian.Uint32(sum)) {
			return newError("CRC-32 verification failed")
		}
	}
	return nil
}
