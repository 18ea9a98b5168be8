package export_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/acomms/uwcodec/export"
	"github.com/acomms/uwcodec/schema"
)

const statusDoc = `
message: StatusReport
id: 42
max_bytes: 16
fields:
  - {name: vehicle_id, kind: int, min: 0, max: 255}
  - {name: active, kind: bool}
  - {name: mode, kind: enum, variants: [idle, transit, survey]}
  - {name: depth_m, kind: float, min: 0, max: 500, precision: 1}
  - {name: callsign, kind: string, length: 4}
`

func TestLoad(t *testing.T) {
	desc, err := export.Load(strings.NewReader(statusDoc))
	if err != nil {
		t.Fatal(err)
	}

	td.Cmp(t, desc.Name(), "StatusReport")

	id, ok := desc.ID()
	if !ok {
		t.Fatal("ID not loaded")
	}
	td.Cmp(t, id, 42)

	max, ok := desc.MaxBytes()
	if !ok {
		t.Fatal("max_bytes not loaded")
	}
	td.Cmp(t, max, 16)

	td.Cmp(t, desc.FieldBits(), map[string]int{
		"vehicle_id": 8,
		"active":     1,
		"mode":       2,
		"depth_m":    13,
		"callsign":   32,
	})

	mode, ok := desc.Field("mode")
	if !ok {
		t.Fatal("missing field mode")
	}
	td.Cmp(t, mode.Variants(), []string{"idle", "transit", "survey"})
}

func TestDumpLoadRoundTrip(t *testing.T) {
	orig, err := export.Load(strings.NewReader(statusDoc))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := export.Dump(&buf, orig); err != nil {
		t.Fatal(err)
	}

	reloaded, err := export.Load(&buf)
	if err != nil {
		t.Fatal(err)
	}

	td.Cmp(t, reloaded.Name(), orig.Name())
	td.Cmp(t, reloaded.FieldBits(), orig.FieldBits())
	td.Cmp(t, reloaded.Bits(), orig.Bits())

	origID, _ := orig.ID()
	reloadedID, _ := reloaded.ID()
	td.Cmp(t, reloadedID, origID)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"not yaml", "{{{"},
		{"unknown kind", "message: M\nfields:\n  - {name: x, kind: quaternion}"},
		{"int without bounds", "message: M\nfields:\n  - {name: x, kind: int}"},
		{"string without length", "message: M\nfields:\n  - {name: x, kind: string}"},
		{"min not a number", "message: M\nfields:\n  - {name: x, kind: int, min: low, max: 9}"},
		{"inverted bounds", "message: M\nfields:\n  - {name: x, kind: int, min: 9, max: 0}"},
		{"no message name", "fields:\n  - {name: x, kind: bool}"},
		{"id out of range", "message: M\nid: 40000\nfields:\n  - {name: x, kind: bool}"},
	}

	for _, tC := range testCases {
		t.Run(tC.name, func(t *testing.T) {
			if _, err := export.Load(strings.NewReader(tC.doc)); err == nil {
				t.Error("malformed document accepted")
			}
		})
	}
}

func TestText(t *testing.T) {
	desc, err := export.Load(strings.NewReader(statusDoc))
	if err != nil {
		t.Fatal(err)
	}

	out := export.Text(desc)

	td.Cmp(t, out, td.Contains("42: StatusReport"))
	td.Cmp(t, out, td.Contains("int[0, 255]"))
	td.Cmp(t, out, td.Contains("enum{idle, transit, survey}"))
	td.Cmp(t, out, td.Contains("float[0, 500] @1dp"))
	td.Cmp(t, out, td.Contains("string[4]"))
	td.Cmp(t, out, td.Contains("total: 56 bits (7 bytes encoded)"))
	td.Cmp(t, out, td.Contains("max_bytes: 16"))
}

func TestTextWithoutID(t *testing.T) {
	desc := schema.MustMessage(schema.New("Plain",
		schema.Must(schema.NewBool("flag")),
	))

	out := export.Text(desc)

	// No ID means the banner carries the bare name.
	td.Cmp(t, out, td.Contains("= Plain ="))
	td.Cmp(t, out, td.Contains("1 bit\n"))
}
