// Package influxdb records setting history in InfluxDB.
//
// It wraps influxdb-client-go v2. Every applied setting change becomes a
// point in the setting_changes measurement, tagged by setting id and wire
// kind, with the engineering value and the wire value as fields. Writes
// are batched and non-blocking; failures arrive through SetOnError.
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteSettingChange(influxdb.SettingChange{ID: "dimmer.level", Value: 42, WireKind: "uint8", Wire: uint8(107)})
package influxdb
