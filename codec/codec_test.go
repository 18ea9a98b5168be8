package codec_test

import (
	"errors"
	"math"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/acomms/uwcodec/bitio"
	"github.com/acomms/uwcodec/codec"
	"github.com/acomms/uwcodec/schema"
)

var status = schema.MustMessage(schema.New("Status",
	schema.Must(schema.NewInt("vehicle_id", 0, 255)),
	schema.Must(schema.NewBool("active")),
))

var telemetry = schema.MustMessage(schema.New("Telemetry",
	schema.Must(schema.NewBool("active")),
	schema.Must(schema.NewInt("depth", -100, 100)),
	schema.Must(schema.NewFloat("temperature", 0, 50, 2)),
	schema.Must(schema.NewEnum("mode", "idle", "transit", "survey")),
	schema.Must(schema.NewBytes("payload", 3)),
	schema.Must(schema.NewString("callsign", 4)),
))

var telemetryValues = codec.Values{
	"active":      true,
	"depth":       int64(-42),
	"temperature": 18.25,
	"mode":        2,
	"payload":     []byte{0xde, 0xad, 0xbe},
	"callsign":    "AUV1",
}

func TestEncodeWireForm(t *testing.T) {
	// vehicle_id 42 in 8 bits, active in 1; 9 bits pad to 2 bytes.
	out, err := codec.Encode(status, codec.Values{"vehicle_id": int64(42), "active": true})
	if err != nil {
		t.Fatal(err)
	}
	td.Cmp(t, out, []byte{0x2a, 0x80})
}

func TestEncodeTaggedWireForm(t *testing.T) {
	tagged := schema.MustMessage(status.WithID(10))

	// Short tag: flag 0, then 7 ID bits. The fields follow unchanged.
	out, err := codec.EncodeTagged(tagged, codec.Values{"vehicle_id": int64(42), "active": true})
	if err != nil {
		t.Fatal(err)
	}
	td.Cmp(t, out, []byte{0x0a, 0x2a, 0x80})
}

func TestTagWidths(t *testing.T) {
	testCases := []struct {
		id   int
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x80}},
		{32767, []byte{0xff, 0xff}},
	}

	// A field-free descriptor makes the tag bytes the whole wire form.
	empty := schema.MustMessage(schema.New("Ping"))

	for _, tC := range testCases {
		desc := schema.MustMessage(empty.WithID(tC.id))
		out, err := codec.EncodeTagged(desc, codec.Values{})
		if err != nil {
			t.Fatal(err)
		}
		td.Cmp(t, out, tC.want, "ID %v", tC.id)

		got, err := codec.DecodeTagged(desc, out)
		if err != nil {
			t.Fatalf("ID %v: %v", tC.id, err)
		}
		td.Cmp(t, got, codec.Values{})
	}
}

func TestRoundTrip(t *testing.T) {
	out, err := codec.Encode(telemetry, telemetryValues)
	if err != nil {
		t.Fatal(err)
	}

	got, err := codec.Decode(telemetry, out)
	if err != nil {
		t.Fatal(err)
	}
	td.Cmp(t, got, telemetryValues)
}

func TestRoundTripTagged(t *testing.T) {
	desc := schema.MustMessage(telemetry.WithID(300))

	out, err := codec.EncodeTagged(desc, telemetryValues)
	if err != nil {
		t.Fatal(err)
	}

	got, err := codec.DecodeTagged(desc, out)
	if err != nil {
		t.Fatal(err)
	}
	td.Cmp(t, got, telemetryValues)
}

func TestRoundTripRouted(t *testing.T) {
	desc := schema.MustMessage(telemetry.WithID(300))
	h, err := codec.NewHeader(7, codec.Broadcast, 2, true)
	if err != nil {
		t.Fatal(err)
	}

	out, err := codec.EncodeRouted(desc, telemetryValues, h)
	if err != nil {
		t.Fatal(err)
	}

	gotHeader, got, err := codec.DecodeRouted(desc, out)
	if err != nil {
		t.Fatal(err)
	}
	td.Cmp(t, gotHeader, h)
	td.Cmp(t, got, telemetryValues)
}

func TestFloatBounds(t *testing.T) {
	desc := schema.MustMessage(schema.New("Depth",
		schema.Must(schema.NewFloat("depth", -10, 10, 2)),
	))

	for _, v := range []float64{-10, 10, 0} {
		out, err := codec.Encode(desc, codec.Values{"depth": v})
		if err != nil {
			t.Fatal(err)
		}
		got, err := codec.Decode(desc, out)
		if err != nil {
			t.Fatal(err)
		}
		td.Cmp(t, got["depth"], v)
	}

	// Values past the bounds are rejected, not clamped.
	_, err := codec.Encode(desc, codec.Values{"depth": 10.01})
	var encErr *codec.EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("want *codec.EncodeError, got %v", err)
	}
	td.Cmp(t, encErr.Field, "depth")
}

func TestEncodeErrors(t *testing.T) {
	testCases := []struct {
		name   string
		values codec.Values
		field  string
	}{
		{"missing value", codec.Values{"active": true}, "vehicle_id"},
		{"wrong type", codec.Values{"vehicle_id": "nope", "active": true}, "vehicle_id"},
		{"out of bounds", codec.Values{"vehicle_id": int64(256), "active": true}, "vehicle_id"},
		{"below bounds", codec.Values{"vehicle_id": int64(-1), "active": true}, "vehicle_id"},
	}

	for _, tC := range testCases {
		t.Run(tC.name, func(t *testing.T) {
			_, err := codec.Encode(status, tC.values)
			var encErr *codec.EncodeError
			if !errors.As(err, &encErr) {
				t.Fatalf("want *codec.EncodeError, got %v", err)
			}
			td.Cmp(t, encErr.Field, tC.field)
		})
	}
}

func TestEncodeIntAcceptsPlainInt(t *testing.T) {
	out, err := codec.Encode(status, codec.Values{"vehicle_id": 42, "active": true})
	if err != nil {
		t.Fatal(err)
	}
	td.Cmp(t, out, []byte{0x2a, 0x80})
}

func TestEnumOrdinal(t *testing.T) {
	desc := schema.MustMessage(schema.New("Mode",
		schema.Must(schema.NewEnum("mode", "idle", "transit", "survey")),
	))

	if _, err := codec.Encode(desc, codec.Values{"mode": 3}); err == nil {
		t.Error("ordinal 3 accepted with 3 variants")
	}
	if _, err := codec.Encode(desc, codec.Values{"mode": -1}); err == nil {
		t.Error("negative ordinal accepted")
	}

	// 2-bit field; ordinal 3 is representable on the wire but invalid.
	_, err := codec.Decode(desc, []byte{0xc0})
	var decErr *codec.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("want *codec.DecodeError, got %v", err)
	}
	td.Cmp(t, decErr.Field, "mode")
}

func TestIntRangeNearMax(t *testing.T) {
	// 10-value range at the very top of int64: offsetting a bad wire value
	// by min would wrap negative, so the range check must reject it first.
	desc := schema.MustMessage(schema.New("Seq",
		schema.Must(schema.NewInt("seq", math.MaxInt64-9, math.MaxInt64)),
	))

	for _, v := range []int64{math.MaxInt64 - 9, math.MaxInt64} {
		out, err := codec.Encode(desc, codec.Values{"seq": v})
		if err != nil {
			t.Fatal(err)
		}
		got, err := codec.Decode(desc, out)
		if err != nil {
			t.Fatal(err)
		}
		td.Cmp(t, got["seq"], v)
	}

	// 4-bit field; offset 15 is on the wire but only 0-9 are legal.
	_, err := codec.Decode(desc, []byte{0xf0})
	var decErr *codec.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("want *codec.DecodeError, got %v", err)
	}
	td.Cmp(t, decErr.Field, "seq")
}

func TestStringUTF8(t *testing.T) {
	desc := schema.MustMessage(schema.New("Note",
		schema.Must(schema.NewString("note", 2)),
	))

	if _, err := codec.Encode(desc, codec.Values{"note": "\xff\xfe"}); err == nil {
		t.Error("invalid UTF-8 accepted on encode")
	}
	if _, err := codec.Decode(desc, []byte{0xff, 0xfe}); err == nil {
		t.Error("invalid UTF-8 accepted on decode")
	}

	// Multi-byte runes count in bytes, not runes.
	out, err := codec.Encode(desc, codec.Values{"note": "é"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := codec.Decode(desc, out)
	if err != nil {
		t.Fatal(err)
	}
	td.Cmp(t, got["note"], "é")
}

func TestBytesLength(t *testing.T) {
	desc := schema.MustMessage(schema.New("Blob",
		schema.Must(schema.NewBytes("blob", 3)),
	))

	if _, err := codec.Encode(desc, codec.Values{"blob": []byte{1, 2}}); err == nil {
		t.Error("short payload accepted")
	}
	if _, err := codec.Encode(desc, codec.Values{"blob": []byte{1, 2, 3, 4}}); err == nil {
		t.Error("long payload accepted")
	}
}

func TestMaxBytesCeiling(t *testing.T) {
	desc := schema.MustMessage(schema.MustMessage(schema.New("Big",
		schema.Must(schema.NewBytes("blob", 4)),
	)).WithMaxBytes(3))

	_, err := codec.Encode(desc, codec.Values{"blob": []byte{1, 2, 3, 4}})
	var encErr *codec.EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("want *codec.EncodeError, got %v", err)
	}
}

func TestTruncatedDecode(t *testing.T) {
	// 9 bits required; a single byte is one bit short of the last field.
	_, err := codec.Decode(status, []byte{0x2a})

	var decErr *codec.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("want *codec.DecodeError, got %v", err)
	}
	td.Cmp(t, decErr.Field, "active")
	if !errors.Is(err, bitio.ErrTruncated) {
		t.Errorf("want ErrTruncated in chain, got %v", err)
	}
}

func TestTagMismatch(t *testing.T) {
	a := schema.MustMessage(status.WithID(10))
	b := schema.MustMessage(status.WithID(11))

	out, err := codec.EncodeTagged(a, codec.Values{"vehicle_id": int64(1), "active": false})
	if err != nil {
		t.Fatal(err)
	}

	_, err = codec.DecodeTagged(b, out)
	var decErr *codec.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("want *codec.DecodeError, got %v", err)
	}
	td.Cmp(t, decErr.Stage, "type tag")
}

func TestEncodeTaggedRequiresID(t *testing.T) {
	if _, err := codec.EncodeTagged(status, codec.Values{"vehicle_id": int64(1), "active": false}); err == nil {
		t.Error("tagged encode accepted a descriptor with no ID")
	}
}

func TestHeaderValidation(t *testing.T) {
	if _, err := codec.NewHeader(1, 2, 4, false); err == nil {
		t.Error("priority 4 accepted")
	}

	desc := schema.MustMessage(status.WithID(10))
	_, err := codec.EncodeRouted(desc, codec.Values{"vehicle_id": int64(1), "active": false},
		codec.Header{Priority: 4})
	var encErr *codec.EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("want *codec.EncodeError, got %v", err)
	}
}

func TestTruncatedHeader(t *testing.T) {
	desc := schema.MustMessage(status.WithID(10))

	_, _, err := codec.DecodeRouted(desc, []byte{0x01, 0x02})
	var decErr *codec.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("want *codec.DecodeError, got %v", err)
	}
	td.Cmp(t, decErr.Stage, "routing header")
	if !errors.Is(err, bitio.ErrTruncated) {
		t.Errorf("want ErrTruncated in chain, got %v", err)
	}
}

func TestDeterministic(t *testing.T) {
	a, err := codec.Encode(telemetry, telemetryValues)
	if err != nil {
		t.Fatal(err)
	}
	b, err := codec.Encode(telemetry, telemetryValues)
	if err != nil {
		t.Fatal(err)
	}
	td.Cmp(t, b, a)
}
