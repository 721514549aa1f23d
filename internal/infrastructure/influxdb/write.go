package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// SettingsMeasurement is the measurement holding setting history.
const SettingsMeasurement = "setting_changes"

// SettingChange is one recorded change of a device setting.
type SettingChange struct {
	ID       string
	Unit     string
	Value    float64 // engineering units
	WireKind string
	Wire     any // native integer or float as sent to the device
	Source   string
	Time     time.Time
}

// settingPoint builds the line-protocol point for a change. Tags stay low
// cardinality: setting id, wire kind and source.
func settingPoint(ch SettingChange) *write.Point {
	ts := ch.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	tags := map[string]string{
		"setting_id": ch.ID,
		"wire_kind":  ch.WireKind,
	}
	if ch.Source != "" {
		tags["source"] = ch.Source
	}

	fields := map[string]any{
		"value": ch.Value,
	}
	if ch.Wire != nil {
		fields["wire"] = ch.Wire
	}
	if ch.Unit != "" {
		fields["unit"] = ch.Unit
	}

	return write.NewPoint(SettingsMeasurement, tags, fields, ts)
}

// WriteSettingChange records a setting change. The write is batched and
// non-blocking; failures reach the SetOnError callback.
func (c *Client) WriteSettingChange(ch SettingChange) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(settingPoint(ch))
}

// WritePoint writes a custom point stamped now.
//
//	client.WritePoint("toolkit_stats",
//	    map[string]string{"site": "site-001"},
//	    map[string]any{"settings": 12})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point at timestamp.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, timestamp))
}
