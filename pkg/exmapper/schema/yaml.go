package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/coerce"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
)

// File is a column table for dynamic records as stored in YAML:
//
//	name: user
//	config:
//	  max_rows_per_sheet: 5000
//	columns:
//	  - field: name
//	    title: 姓名
//	  - field: sex
//	    kind: int
//	    title: 性别
//	    translate: 0=男,1=女,2=未知
//	    combo: [男, 女, 未知]
//	  - field: dept
//	    associate: name
//	    title: 部门
type File struct {
	Name    string       `yaml:"name"`
	Config  FileConfig   `yaml:"config"`
	Columns []FileColumn `yaml:"columns"`
}

// FileConfig holds optional processor settings. Nil means "not set".
type FileConfig struct {
	MaxRowsPerSheet   *int `yaml:"max_rows_per_sheet"`
	TitleRowIndex     *int `yaml:"title_row_index"`
	DataRowStartIndex *int `yaml:"data_row_start_index"`
	ValidationRows    *int `yaml:"validation_rows"`
}

// FileColumn is one column entry. Repeat a field to attach several
// columns to it.
type FileColumn struct {
	Field         string        `yaml:"field"`
	Kind          string        `yaml:"kind"`
	Title         string        `yaml:"title"`
	Order         int           `yaml:"order"`
	Width         *float64      `yaml:"width"`
	Height        *float64      `yaml:"height"`
	Export        *bool         `yaml:"export"`
	Align         string        `yaml:"align"`
	VerticalAlign string        `yaml:"vertical_align"`
	CellType      string        `yaml:"cell_type"`
	Default       string        `yaml:"default"`
	Prefix        string        `yaml:"prefix"`
	Suffix        string        `yaml:"suffix"`
	DateFormat    string        `yaml:"date_format"`
	Translate     string        `yaml:"translate"`
	Delimiter     string        `yaml:"delimiter"`
	KVDelimiter   string        `yaml:"kv_delimiter"`
	Associate     string        `yaml:"associate"`
	AppliesTo     string        `yaml:"applies_to"`
	Combo         StringOrArray `yaml:"combo"`
	Prompt        string        `yaml:"prompt"`
}

// StringOrArray accepts either a comma separated scalar or a sequence.
type StringOrArray []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			*s = nil
			return nil
		}
		parts := strings.Split(node.Value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		*s = parts
		return nil
	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}
		*s = arr
		return nil
	default:
		return fmt.Errorf("expected string or sequence, got %v", node.Kind)
	}
}

// LoadFile reads a YAML column table from path.
func LoadFile(path string) (*Schema[Record], FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, FileConfig{}, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	return Load(bytes.NewReader(data))
}

// Load reads a YAML column table. Unknown keys are rejected.
func Load(r io.Reader) (*Schema[Record], FileConfig, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, FileConfig{}, models.ConfigError("load", "failed to parse schema YAML: %v", err)
	}

	s, err := f.Build()
	if err != nil {
		return nil, FileConfig{}, err
	}
	return s, f.Config, nil
}

// Build turns the file into a table of dynamic records.
func (f *File) Build() (*Schema[Record], error) {
	fields := make([]Field[Record], 0, len(f.Columns))
	for i, c := range f.Columns {
		if c.Field == "" {
			return nil, models.ConfigError("load", "column %d has no field", i)
		}
		opts, kind, err := c.options()
		if err != nil {
			return nil, models.ConfigError("load", "column %q: %v", c.Field, err)
		}
		fd, err := RecordField(c.Field, kind, c.Associate, opts...)
		if err != nil {
			return nil, err
		}
		fields = append(fields, fd)
	}
	return New(f.Name, fields...), nil
}

func (c FileColumn) options() ([]ColumnOption, coerce.Kind, error) {
	kind, err := coerce.ParseKind(c.Kind)
	if err != nil {
		return nil, kind, err
	}
	op, err := models.ParseOperation(c.AppliesTo)
	if err != nil {
		return nil, kind, err
	}

	opts := []ColumnOption{
		Order(c.Order),
		Align(models.Alignment(c.Align)),
		VerticalAlign(models.Alignment(c.VerticalAlign)),
		Default(c.Default),
		Prefix(c.Prefix),
		Suffix(c.Suffix),
		DateFormat(c.DateFormat),
		AppliesTo(op),
		Prompt(c.Prompt),
	}
	if c.Title != "" {
		opts = append(opts, Title(c.Title))
	}
	if c.Width != nil {
		opts = append(opts, Width(*c.Width))
	}
	if c.Height != nil {
		opts = append(opts, Height(*c.Height))
	}
	if c.Export != nil && !*c.Export {
		opts = append(opts, NoExport())
	}
	switch strings.ToLower(c.CellType) {
	case "", "string":
	case "numeric":
		opts = append(opts, Numeric())
	default:
		return nil, kind, fmt.Errorf("unknown cell type %q", c.CellType)
	}
	if c.Translate != "" {
		opts = append(opts, Translate(c.Translate))
		if c.Delimiter != "" || c.KVDelimiter != "" {
			opts = append(opts, TranslateDelimiters(c.Delimiter, c.KVDelimiter))
		}
	}
	if len(c.Combo) > 0 {
		opts = append(opts, Combo(c.Combo...))
	}
	return opts, kind, nil
}
