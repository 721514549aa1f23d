// Package mqtt connects the toolkit to the site's MQTT broker.
//
// Setting changes are published as retained wire frames on
// graylogic/state/settings/{id}, and change requests arrive on
// graylogic/command/settings/{id}. The client keeps a retained
// online/offline status on graylogic/toolkit/status with a Last Will so
// other services notice a crash.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.Subscribe(mqtt.Topics{}.AllSettingCommands(), 1, handler)
package mqtt
