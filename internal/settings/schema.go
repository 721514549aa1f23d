package settings

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/gray-logic-toolkit/internal/remap"
	"github.com/nerrad567/gray-logic-toolkit/internal/xmlutil"
)

// idPattern keeps setting IDs usable as a single MQTT topic level.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// Schema is the set of settings a toolkit instance manages.
type Schema struct {
	Version  int          `json:"version" yaml:"version"`
	Settings []Definition `json:"settings" yaml:"settings"`
}

// LoadSchemaFile reads a schema, choosing the format by file extension
// (.yaml, .yml or .xml).
func LoadSchemaFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadSchemaYAML(bytes.NewReader(data))
	case ".xml":
		return LoadSchemaXML(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: unsupported schema extension %q", ErrInvalidSchema, filepath.Ext(path))
	}
}

// LoadSchemaYAML parses and validates a YAML schema.
func LoadSchemaYAML(r io.Reader) (*Schema, error) {
	var s Schema
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidSchema)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSchemaXML parses and validates an XML schema.
func LoadSchemaXML(r io.Reader) (*Schema, error) {
	xr := xmlutil.NewReader(r)

	root, err := xr.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	if root.Name.Local != "Settings" {
		return nil, fmt.Errorf("%w: root element <%s>, want <Settings>", ErrInvalidSchema, root.Name.Local)
	}

	var s Schema
	if v, ok := xmlutil.Attr(root, "version"); ok {
		if s.Version, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("%w: version %q", ErrInvalidSchema, v)
		}
	}

	err = xr.Each(root, "Setting", func(se xml.StartElement) error {
		def, err := definitionFromXML(xr, se)
		if err != nil {
			return err
		}
		s.Settings = append(s.Settings, def)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func definitionFromXML(xr *xmlutil.Reader, se xml.StartElement) (Definition, error) {
	var def Definition
	var err error

	def.ID = xmlutil.AttrOr(se, "id", "")
	def.Name = xmlutil.AttrOr(se, "name", "")
	def.Unit = xmlutil.AttrOr(se, "unit", "")
	def.Topic = xmlutil.AttrOr(se, "topic", "")

	if def.Min, err = xmlutil.AttrFloat(se, "min"); err != nil {
		return def, fmt.Errorf("setting %q: %w", def.ID, err)
	}
	if def.Max, err = xmlutil.AttrFloat(se, "max"); err != nil {
		return def, fmt.Errorf("setting %q: %w", def.ID, err)
	}
	if def.Wire, err = remap.ParseKind(xmlutil.AttrOr(se, "wire", "")); err != nil {
		return def, fmt.Errorf("setting %q: %w", def.ID, err)
	}
	if _, ok := xmlutil.Attr(se, "default"); ok {
		d, err := xmlutil.AttrFloat(se, "default")
		if err != nil {
			return def, fmt.Errorf("setting %q: %w", def.ID, err)
		}
		def.Default = &d
	}

	err = xr.Each(se, "Name", func(xml.StartElement) error {
		name, err := xr.ReadText()
		if err != nil {
			return err
		}
		def.Name = strings.TrimSpace(name)
		return nil
	})
	return def, err
}

// Validate checks IDs, kinds, ranges and defaults. All problems are
// reported together.
func (s *Schema) Validate() error {
	var errs []string
	seen := make(map[string]struct{}, len(s.Settings))

	for i, d := range s.Settings {
		label := d.ID
		if label == "" {
			label = "#" + strconv.Itoa(i)
		}

		if !idPattern.MatchString(d.ID) {
			errs = append(errs, fmt.Sprintf("setting %s: invalid id %q", label, d.ID))
		}
		if _, dup := seen[d.ID]; dup {
			errs = append(errs, fmt.Sprintf("setting %s: duplicate id", label))
		}
		seen[d.ID] = struct{}{}

		if !d.Wire.IsValid() {
			errs = append(errs, fmt.Sprintf("setting %s: wire kind is required", label))
		}
		if !finite(d.Min) || !finite(d.Max) {
			errs = append(errs, fmt.Sprintf("setting %s: min and max must be finite", label))
		} else if d.Min == d.Max {
			errs = append(errs, fmt.Sprintf("setting %s: min and max must differ", label))
		}
		if d.Default != nil && !d.Range().Contains(*d.Default) {
			errs = append(errs, fmt.Sprintf("setting %s: default %g outside %s", label, *d.Default, d.Range()))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSchema, strings.Join(errs, "; "))
	}
	return nil
}

// Table compiles the schema into a remap table.
func (s *Schema) Table() (*remap.Table, error) {
	t := remap.NewTable()
	for _, d := range s.Settings {
		if err := t.Register(d.Binding()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}
	}
	return t, nil
}

// Definition returns the definition with the given ID.
func (s *Schema) Definition(id string) (Definition, bool) {
	for _, d := range s.Settings {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
