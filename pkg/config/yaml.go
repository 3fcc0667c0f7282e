package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlIdentFormat mirrors one entry of the `ident_formats` YAML table (spec
// §6): {case, prefix, suffix} overrides for a single naming category, read
// from the same YAML shape SVD's own YAML source variant uses.
type yamlIdentFormat struct {
	Case   string `yaml:"case"`
	Prefix string `yaml:"prefix"`
	Suffix string `yaml:"suffix"`
}

// yamlConfig is the on-disk shape of an optional `--config FILE` override
// document: a subset of Config's options expressible outside CLI flags,
// chiefly the per-category ident_formats table.
type yamlConfig struct {
	IdentFormats map[string]yamlIdentFormat `yaml:"ident_formats"`
}

// categoryNames maps a category's YAML key to its Category constant.
var categoryNames = map[string]Category{
	"field_accessor":      FieldAccessor,
	"field_reader":        FieldReader,
	"field_writer":        FieldWriter,
	"enum_name":           EnumName,
	"enum_write_name":     EnumWriteName,
	"enum_value":          EnumValue,
	"enum_value_accessor": EnumValueAccessor,
	"interrupt":           Interrupt,
	"cluster":             Cluster,
	"register":            Register,
	"register_mod":        RegisterMod,
	"register_spec":       RegisterSpec,
	"peripheral":          Peripheral,
	"peripheral_feature":  PeripheralFeature,
}

func parseCase(s string) (Case, error) {
	switch s {
	case "", "CONSTANT":
		return Constant, nil
	case "Pascal":
		return Pascal, nil
	case "snake":
		return Snake, nil
	default:
		return Constant, fmt.Errorf("unknown ident_formats case %q", s)
	}
}

// LoadIdentFormats reads an ident_formats override document from a YAML
// file (spec §6, ident_formats) and applies it on top of
// DefaultIdentFormats.
func LoadIdentFormats(path string) (IdentFormats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return IdentFormats{}, err
	}

	var doc yamlConfig
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return IdentFormats{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	formats := DefaultIdentFormats()

	for key, entry := range doc.IdentFormats {
		cat, ok := categoryNames[key]
		if !ok {
			return IdentFormats{}, fmt.Errorf("%s: unknown naming category %q", path, key)
		}

		c, err := parseCase(entry.Case)
		if err != nil {
			return IdentFormats{}, fmt.Errorf("%s: category %q: %w", path, key, err)
		}

		formats = formats.Set(cat, IdentFormat{Case: c, Prefix: entry.Prefix, Suffix: entry.Suffix})
	}

	return formats, nil
}
