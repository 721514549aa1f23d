package settings

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-toolkit/internal/remap"
)

// commandTimeout bounds the handling of one inbound command.
const commandTimeout = 5 * time.Second

// StateMessage is the retained payload published on a setting's state
// topic after every change.
type StateMessage struct {
	ID        string      `json:"id"`
	Value     float64     `json:"value"`
	Unit      string      `json:"unit,omitempty"`
	WireKind  remap.Kind  `json:"wire_kind"`
	Wire      remap.Value `json:"wire"`
	Frame     string      `json:"frame"` // hex of the big-endian wire frame
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
}

// CommandMessage is the payload accepted on a setting's command topic.
// Exactly one of Value (engineering units) or Wire (a number in the
// setting's wire kind) must be present.
type CommandMessage struct {
	Value *float64    `json:"value,omitempty"`
	Wire  json.Number `json:"wire,omitempty"`
}

func stateMessage(v Setting) StateMessage {
	return StateMessage{
		ID:        v.ID,
		Value:     v.Value,
		Unit:      v.Unit,
		WireKind:  v.Wire,
		Wire:      v.WireValue,
		Frame:     hex.EncodeToString(v.WireValue.Bytes()),
		Source:    v.Source,
		Timestamp: v.UpdatedAt,
	}
}

// StateTopic returns the topic on which def's state is published.
func StateTopic(def Definition) string {
	if def.Topic != "" {
		return def.Topic
	}
	return mqtt.Topics{}.SettingState(def.ID)
}

func (s *Service) publish(v Setting) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(stateMessage(v))
	if err != nil {
		s.logger.Error("encoding setting state", "setting_id", v.ID, "error", err)
		return
	}
	if err := s.publisher.Publish(StateTopic(v.Definition), payload, s.qos, true); err != nil {
		s.logger.Warn("publishing setting state failed", "setting_id", v.ID, "error", err)
	}
}

func (s *Service) record(v Setting) {
	if s.recorder == nil {
		return
	}
	s.recorder.WriteSettingChange(influxdb.SettingChange{
		ID:       v.ID,
		Unit:     v.Unit,
		Value:    v.Value,
		WireKind: v.Wire.String(),
		Wire:     v.WireValue.Interface(),
		Source:   v.Source,
		Time:     v.UpdatedAt,
	})
}

// Subscribe routes every setting command topic to HandleCommand.
func (s *Service) Subscribe(sub Subscriber) error {
	if err := sub.Subscribe(mqtt.Topics{}.AllSettingCommands(), s.qos, s.HandleCommand); err != nil {
		return fmt.Errorf("subscribing to setting commands: %w", err)
	}
	return nil
}

// HandleCommand applies a CommandMessage received on topic. It has the
// signature of an mqtt.MessageHandler.
func (s *Service) HandleCommand(topic string, payload []byte) error {
	id, ok := mqtt.Topics{}.SettingID(topic)
	if !ok {
		return fmt.Errorf("%w: topic %q is not a setting topic", ErrInvalidValue, topic)
	}

	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidValue, id, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	_, err := s.Apply(ctx, id, cmd, SourceMQTT)
	return err
}

// Apply executes cmd against setting id. Exactly one of cmd.Value or
// cmd.Wire must be set; a wire value is recorded as coming from the
// device, otherwise source is used.
func (s *Service) Apply(ctx context.Context, id string, cmd CommandMessage, source string) (Setting, error) {
	switch {
	case cmd.Value != nil && cmd.Wire == "":
		return s.SetFrom(ctx, id, *cmd.Value, source)
	case cmd.Value == nil && cmd.Wire != "":
		def, _, err := s.lookup(id)
		if err != nil {
			return Setting{}, err
		}
		wire, err := parseWire(def.Wire, cmd.Wire)
		if err != nil {
			return Setting{}, fmt.Errorf("%s: %w", id, err)
		}
		return s.ApplyWire(ctx, id, wire)
	default:
		return Setting{}, fmt.Errorf("%w: %s: command needs exactly one of value or wire", ErrInvalidValue, id)
	}
}

// parseWire reads n as a value of kind k, saturating at k's bounds.
func parseWire(k remap.Kind, n json.Number) (remap.Value, error) {
	v, err := remap.ParseValue(n.String(), k)
	if err != nil {
		return remap.Value{}, fmt.Errorf("%w: wire %q", ErrInvalidValue, n.String())
	}
	return v, nil
}
