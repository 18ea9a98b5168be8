// Package export moves message descriptors in and out of textual forms:
// a YAML schema document for authoring and interop, and a human-readable
// bit-budget layout for link planning.
//
// The YAML form is the authoring front end for tooling; the codec itself
// never reads it. A document looks like:
//
//	message: StatusReport
//	id: 42
//	max_bytes: 16
//	fields:
//	  - {name: vehicle_id, kind: int, min: 0, max: 255}
//	  - {name: active, kind: bool}
//	  - {name: mode, kind: enum, variants: [idle, transit, survey]}
//	  - {name: depth_m, kind: float, min: 0, max: 500, precision: 1}
//	  - {name: callsign, kind: string, length: 4}
package export

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/acomms/uwcodec/schema"
)

type document struct {
	Message  string     `yaml:"message"`
	ID       *int       `yaml:"id,omitempty"`
	MaxBytes *int       `yaml:"max_bytes,omitempty"`
	Fields   []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name      string      `yaml:"name"`
	Kind      string      `yaml:"kind"`
	Min       interface{} `yaml:"min,omitempty"`
	Max       interface{} `yaml:"max,omitempty"`
	Precision *int        `yaml:"precision,omitempty"`
	Length    *int        `yaml:"length,omitempty"`
	Variants  []string    `yaml:"variants,omitempty"`
}

// Load parses a YAML schema document into a message descriptor.
func Load(r io.Reader) (*schema.Message, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("export: parsing schema document: %w", err)
	}
	return buildMessage(&doc)
}

// LoadFile is Load on the named file.
func LoadFile(path string) (*schema.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Dump writes the YAML schema document for desc to w.
// Load(Dump(desc)) reproduces an equivalent descriptor.
func Dump(w io.Writer, desc *schema.Message) error {
	doc := document{Message: desc.Name()}

	if id, ok := desc.ID(); ok {
		doc.ID = &id
	}
	if max, ok := desc.MaxBytes(); ok {
		doc.MaxBytes = &max
	}

	for _, f := range desc.Fields() {
		fd := fieldDoc{Name: f.Name(), Kind: f.Kind().String()}
		switch f.Kind() {
		case schema.Int:
			fd.Min, fd.Max = f.Min(), f.Max()
		case schema.Float:
			p := f.Precision()
			fd.Min, fd.Max, fd.Precision = f.FloatMin(), f.FloatMax(), &p
		case schema.Enum:
			fd.Variants = f.Variants()
		case schema.Bytes, schema.String:
			l := f.Length()
			fd.Length = &l
		}
		doc.Fields = append(doc.Fields, fd)
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&doc)
}

func buildMessage(doc *document) (*schema.Message, error) {
	fields := make([]schema.Field, 0, len(doc.Fields))
	for _, fd := range doc.Fields {
		f, err := buildField(&fd)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	desc, err := schema.New(doc.Message, fields...)
	if err != nil {
		return nil, err
	}
	if doc.ID != nil {
		if desc, err = desc.WithID(*doc.ID); err != nil {
			return nil, err
		}
	}
	if doc.MaxBytes != nil {
		if desc, err = desc.WithMaxBytes(*doc.MaxBytes); err != nil {
			return nil, err
		}
	}
	return desc, nil
}

func buildField(fd *fieldDoc) (schema.Field, error) {
	switch fd.Kind {
	case "bool":
		return schema.NewBool(fd.Name)

	case "int":
		min, err := toInt64(fd.Name, "min", fd.Min)
		if err != nil {
			return schema.Field{}, err
		}
		max, err := toInt64(fd.Name, "max", fd.Max)
		if err != nil {
			return schema.Field{}, err
		}
		return schema.NewInt(fd.Name, min, max)

	case "float":
		min, err := toFloat64(fd.Name, "min", fd.Min)
		if err != nil {
			return schema.Field{}, err
		}
		max, err := toFloat64(fd.Name, "max", fd.Max)
		if err != nil {
			return schema.Field{}, err
		}
		precision := 0
		if fd.Precision != nil {
			precision = *fd.Precision
		}
		return schema.NewFloat(fd.Name, min, max, precision)

	case "enum":
		return schema.NewEnum(fd.Name, fd.Variants...)

	case "bytes", "string":
		if fd.Length == nil {
			return schema.Field{}, fmt.Errorf("export: field %v: %v kind requires length", fd.Name, fd.Kind)
		}
		if fd.Kind == "bytes" {
			return schema.NewBytes(fd.Name, *fd.Length)
		}
		return schema.NewString(fd.Name, *fd.Length)

	default:
		return schema.Field{}, fmt.Errorf("export: field %v: unknown kind %q", fd.Name, fd.Kind)
	}
}

func toInt64(field, key string, v interface{}) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case uint64:
		return int64(t), nil
	case nil:
		return 0, fmt.Errorf("export: field %v: int kind requires %v", field, key)
	default:
		return 0, fmt.Errorf("export: field %v: %v must be an integer, got %T", field, key, v)
	}
}

func toFloat64(field, key string, v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case nil:
		return 0, fmt.Errorf("export: field %v: float kind requires %v", field, key)
	default:
		return 0, fmt.Errorf("export: field %v: %v must be a number, got %T", field, key, v)
	}
}
