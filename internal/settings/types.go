package settings

import (
	"time"

	"github.com/nerrad567/gray-logic-toolkit/internal/remap"
)

// Change sources recorded with each value.
const (
	SourceDefault = "default"
	SourceAPI     = "api"
	SourceMQTT    = "mqtt"
	SourceCLI     = "cli"
)

// Definition declares one setting.
type Definition struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`

	// Min and Max bound the engineering value. Min above Max declares an
	// inverted scale.
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`

	// Wire is the numeric kind sent to the device.
	Wire remap.Kind `json:"wire" yaml:"wire"`

	// Default is the initial engineering value. Nil means Min.
	Default *float64 `json:"default,omitempty" yaml:"default,omitempty"`

	// Topic overrides the MQTT state topic.
	Topic string `json:"topic,omitempty" yaml:"topic,omitempty"`
}

// Range returns the engineering range.
func (d Definition) Range() remap.Range {
	return remap.Range{Min: d.Min, Max: d.Max}
}

// Binding returns the remap binding for the definition.
func (d Definition) Binding() remap.Binding {
	return remap.Binding{ID: d.ID, Range: d.Range(), Kind: d.Wire}
}

// DefaultValue returns the initial engineering value.
func (d Definition) DefaultValue() float64 {
	if d.Default != nil {
		return *d.Default
	}
	return d.Min
}

// Setting is a definition together with its current value.
type Setting struct {
	Definition

	// Value is the engineering value, clamped into the range.
	Value float64 `json:"value"`

	// WireValue is Value encoded to the wire kind.
	WireValue remap.Value `json:"wire_value"`

	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Record is the persisted form of a setting value.
type Record struct {
	ID        string
	Value     float64
	Wire      remap.Value
	Source    string
	UpdatedAt time.Time
}
