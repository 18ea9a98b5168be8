package export

import (
	"fmt"
	"strings"

	"github.com/acomms/uwcodec/schema"
)

// Text renders the bit-budget layout of desc: one line per field with its
// kind, constraints and derived width, followed by the totals. Field sizes
// are in bits unless noted otherwise.
func Text(desc *schema.Message) string {
	var b strings.Builder

	if id, ok := desc.ID(); ok {
		fmt.Fprintf(&b, "=================== %v: %v ===================\n", id, desc.Name())
	} else {
		fmt.Fprintf(&b, "=================== %v ===================\n", desc.Name())
	}

	for _, f := range desc.Fields() {
		unit := "bits"
		if f.Bits() == 1 {
			unit = "bit"
		}
		fmt.Fprintf(&b, "  %-20v %-28v %3v %v\n", f.Name(), constraint(f), f.Bits(), unit)
	}

	fmt.Fprintf(&b, "  total: %v bits (%v bytes encoded)\n", desc.Bits(), desc.Size())
	if max, ok := desc.MaxBytes(); ok {
		fmt.Fprintf(&b, "  max_bytes: %v\n", max)
	}
	return b.String()
}

func constraint(f schema.Field) string {
	switch f.Kind() {
	case schema.Bool:
		return "bool"
	case schema.Int:
		return fmt.Sprintf("int[%v, %v]", f.Min(), f.Max())
	case schema.Float:
		return fmt.Sprintf("float[%v, %v] @%vdp", f.FloatMin(), f.FloatMax(), f.Precision())
	case schema.Enum:
		return fmt.Sprintf("enum{%v}", strings.Join(f.Variants(), ", "))
	case schema.Bytes:
		return fmt.Sprintf("bytes[%v]", f.Length())
	case schema.String:
		return fmt.Sprintf("string[%v]", f.Length())
	default:
		return f.Kind().String()
	}
}
