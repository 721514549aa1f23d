package mqtt

import (
	"fmt"
	"strings"
)

// Topic layout:
//
//	graylogic/command/settings/{id}   requests to change a setting (inbound)
//	graylogic/state/settings/{id}     wire frame of the current value (retained)
//	graylogic/toolkit/status          online/offline status with LWT
const (
	// TopicPrefix is the root of every Gray Logic topic.
	TopicPrefix = "graylogic"

	// SettingsProtocol is the protocol segment used for setting topics.
	SettingsProtocol = "settings"
)

// Topics builds the toolkit's MQTT topics.
//
//	topic := mqtt.Topics{}.SettingState("dimmer.level")
//	// graylogic/state/settings/dimmer.level
type Topics struct{}

// SettingCommand returns the topic on which change requests for a setting
// arrive.
func (Topics) SettingCommand(id string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, SettingsProtocol, id)
}

// SettingState returns the topic carrying a setting's current wire frame.
func (Topics) SettingState(id string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, SettingsProtocol, id)
}

// AllSettingCommands matches every setting command topic.
//
// Pattern: graylogic/command/settings/+
func (Topics) AllSettingCommands() string {
	return fmt.Sprintf("%s/command/%s/+", TopicPrefix, SettingsProtocol)
}

// Status returns the toolkit status topic used for online/offline and LWT.
func (Topics) Status() string {
	return TopicPrefix + "/toolkit/status"
}

// SettingID extracts the setting id from a command or state topic.
// It reports false for topics outside the settings hierarchy.
func (Topics) SettingID(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != TopicPrefix || parts[2] != SettingsProtocol {
		return "", false
	}
	if parts[1] != "command" && parts[1] != "state" {
		return "", false
	}
	if parts[3] == "" {
		return "", false
	}
	return parts[3], true
}
