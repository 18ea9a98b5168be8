// Package uwcodec is a compact binary message codec for severely
// bandwidth-constrained links such as underwater acoustic modems, where
// throughput runs from tens to low thousands of bits per second.
//
// Instead of a tag/length/value format, messages are described by bounded
// field descriptors and encoded in near-minimal bit counts: a field legal in
// [0,255] takes 8 bits, a boolean takes 1, and a float bounded to one
// decimal place in [0,500] takes 13. Three wire modes share the core:
// point-to-point (raw fields), self-describing (type-tagged) and routed
// (addressed and tagged for multi-vehicle systems).
//
// uwcodec/schema declares message shapes, uwcodec/codec encodes and decodes
// them, uwcodec/framing wraps payloads in length- and CRC-protected
// envelopes, uwcodec/bitio provides the underlying bit stream, and
// uwcodec/modem simulates the acoustic channel for testing.
//
// This package fronts a process-wide registry for Mode 2 auto-decoding:
//
//	status := schema.MustMessage(schema.MustMessage(schema.New("Status",
//		schema.Must(schema.NewInt("vehicle_id", 0, 255)),
//		schema.Must(schema.NewBool("active")),
//	)).WithID(10))
//
//	uwcodec.Register(status)
//	desc, values, err := uwcodec.DecodeByID(received)
//
// Tests and libraries that should not share global state can construct an
// isolated codec.Registry instead.
package uwcodec

import (
	"github.com/acomms/uwcodec/codec"
	"github.com/acomms/uwcodec/schema"
)

// DefaultRegistry is the registry used by the package-level Register and
// DecodeByID shortcuts.
var DefaultRegistry = codec.NewRegistry()

// Register registers desc with DefaultRegistry for auto-decode by type ID.
func Register(desc *schema.Message) error {
	return DefaultRegistry.Register(desc)
}

// DecodeByID decodes a Mode 2 message using DefaultRegistry to determine
// its type from the embedded type ID.
func DecodeByID(data []byte) (*schema.Message, codec.Values, error) {
	return DefaultRegistry.DecodeByID(data)
}
