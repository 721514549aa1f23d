package settings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gray-logic-toolkit/internal/remap"
)

const testSchemaXML = `<?xml version="1.0" encoding="UTF-8"?>
<Settings version="2">
  <!-- lighting -->
  <Setting id="dimmer.level" unit="%" min="0" max="100" wire="uint8" default="50">
    <Name>Dimmer level</Name>
    <Notes>ignored</Notes>
  </Setting>
  <Group/>
  <Setting id="valve.position" name="Valve" min="100" max="0" wire="int16"/>
</Settings>`

func TestLoadSchemaYAML(t *testing.T) {
	s := testSchema(t)

	assert.Equal(t, 1, s.Version)
	require.Len(t, s.Settings, 4)

	d := s.Settings[0]
	assert.Equal(t, "dimmer.level", d.ID)
	assert.Equal(t, "%", d.Unit)
	assert.Equal(t, remap.Uint8, d.Wire)
	require.NotNil(t, d.Default)
	assert.Equal(t, 50.0, d.DefaultValue())

	zone2, ok := s.Definition("zone2.setpoint")
	require.True(t, ok)
	assert.Nil(t, zone2.Default)
	assert.Equal(t, 5.0, zone2.DefaultValue(), "missing default falls back to Min")

	_, ok = s.Definition("missing")
	assert.False(t, ok)
}

func TestLoadSchemaXML(t *testing.T) {
	s, err := LoadSchemaXML(strings.NewReader(testSchemaXML))
	require.NoError(t, err)

	assert.Equal(t, 2, s.Version)
	require.Len(t, s.Settings, 2)

	dimmer := s.Settings[0]
	assert.Equal(t, "Dimmer level", dimmer.Name)
	assert.Equal(t, remap.Uint8, dimmer.Wire)
	require.NotNil(t, dimmer.Default)
	assert.Equal(t, 50.0, *dimmer.Default)

	valve := s.Settings[1]
	assert.Equal(t, "Valve", valve.Name)
	assert.True(t, valve.Range().Inverted())
	assert.Equal(t, remap.Int16, valve.Wire)
}

func TestLoadSchemaXML_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"wrong root", `<Config/>`},
		{"bad version", `<Settings version="x"/>`},
		{"missing min", `<Settings><Setting id="a" max="1" wire="uint8"/></Settings>`},
		{"bad max", `<Settings><Setting id="a" min="0" max="lots" wire="uint8"/></Settings>`},
		{"unknown wire", `<Settings><Setting id="a" min="0" max="1" wire="int"/></Settings>`},
		{"bad default", `<Settings><Setting id="a" min="0" max="1" wire="uint8" default="?"/></Settings>`},
		{"truncated", `<Settings><Setting id="a" min="0" max="1" wire="uint8">`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSchemaXML(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}

func TestSchemaValidate(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		defs    []Definition
		wantErr string
	}{
		{"valid", []Definition{{ID: "a", Min: 0, Max: 1, Wire: remap.Uint8}}, ""},
		{"inverted valid", []Definition{{ID: "a", Min: 1, Max: 0, Wire: remap.Uint8, Default: f(0.5)}}, ""},
		{"empty id", []Definition{{Min: 0, Max: 1, Wire: remap.Uint8}}, "invalid id"},
		{"topic chars in id", []Definition{{ID: "a/b", Min: 0, Max: 1, Wire: remap.Uint8}}, "invalid id"},
		{"duplicate", []Definition{
			{ID: "a", Min: 0, Max: 1, Wire: remap.Uint8},
			{ID: "a", Min: 0, Max: 1, Wire: remap.Uint8},
		}, "duplicate id"},
		{"no wire", []Definition{{ID: "a", Min: 0, Max: 1}}, "wire kind is required"},
		{"equal bounds", []Definition{{ID: "a", Min: 1, Max: 1, Wire: remap.Uint8}}, "must differ"},
		{"default outside", []Definition{{ID: "a", Min: 0, Max: 1, Wire: remap.Uint8, Default: f(2)}}, "outside"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Schema{Settings: tt.defs}).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidSchema)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSchemaValidate_ReportsAllProblems(t *testing.T) {
	s := &Schema{Settings: []Definition{
		{ID: "", Min: 0, Max: 1, Wire: remap.Uint8},
		{ID: "b", Min: 0, Max: 1},
	}}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setting #0: invalid id")
	assert.Contains(t, err.Error(), "setting b: wire kind is required")
}

func TestLoadSchemaYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"unknown field", "settings:\n  - id: a\n    colour: red\n"},
		{"bad kind", "settings:\n  - id: a\n    min: 0\n    max: 1\n    wire: int\n"},
		{"not a list", "settings: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSchemaYAML(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}

func TestSchemaTable(t *testing.T) {
	table, err := testSchema(t).Table()
	require.NoError(t, err)

	assert.Equal(t, []string{"counter.total", "dimmer.level", "zone2.setpoint", "zone10.setpoint"}, table.IDs())

	wire, err := table.Encode("dimmer.level", 100)
	require.NoError(t, err)
	assert.True(t, wire.Equal(remap.Of(uint8(255))))
}

func TestLoadSchemaFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "settings.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(testSchemaYAML), 0o600))
	s, err := LoadSchemaFile(yamlPath)
	require.NoError(t, err)
	assert.Len(t, s.Settings, 4)

	xmlPath := filepath.Join(dir, "settings.XML")
	require.NoError(t, os.WriteFile(xmlPath, []byte(testSchemaXML), 0o600))
	s, err = LoadSchemaFile(xmlPath)
	require.NoError(t, err)
	assert.Len(t, s.Settings, 2)

	txtPath := filepath.Join(dir, "settings.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o600))
	_, err = LoadSchemaFile(txtPath)
	assert.ErrorIs(t, err, ErrInvalidSchema)

	_, err = LoadSchemaFile(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
