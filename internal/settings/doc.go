// Package settings manages device settings declared by a schema.
//
// Each setting has an engineering range (for example 0 to 100 percent) and
// a wire kind (for example uint8). The schema compiles into a remap.Table,
// and every change flows through it:
//
//	engineering value -> clamp into [Min, Max] -> remap onto the wire kind
//
// Inbound wire values take the reverse path. The Service persists the
// current value of each setting, publishes a retained state message over
// MQTT, records the change in InfluxDB and raises a Changed event.
//
// Schemas are YAML or XML:
//
//	version: 1
//	settings:
//	  - id: dimmer.level
//	    name: Dimmer level
//	    unit: "%"
//	    min: 0
//	    max: 100
//	    wire: uint8
//	    default: 50
//
//	<Settings version="1">
//	  <Setting id="dimmer.level" unit="%" min="0" max="100" wire="uint8" default="50">
//	    <Name>Dimmer level</Name>
//	  </Setting>
//	</Settings>
//
// A Watcher reloads the schema file when it changes on disk.
package settings
