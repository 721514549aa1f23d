package settings

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/nerrad567/gray-logic-toolkit/internal/compare"
	"github.com/nerrad567/gray-logic-toolkit/internal/eventargs"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/tracing"
	"github.com/nerrad567/gray-logic-toolkit/internal/remap"
	"github.com/nerrad567/gray-logic-toolkit/internal/stopwatch"
)

// Logger defines the logging interface used by the Service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Publisher sends state messages. Satisfied by *mqtt.Client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Subscriber delivers command messages. Satisfied by *mqtt.Client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Recorder stores change history. Satisfied by *influxdb.Client.
type Recorder interface {
	WriteSettingChange(ch influxdb.SettingChange)
}

// Options configures optional Service collaborators. Nil fields disable
// the corresponding output.
type Options struct {
	Publisher Publisher
	Recorder  Recorder
	Tracer    trace.Tracer
	Logger    Logger

	// QoS is used for state publications and command subscriptions.
	QoS byte

	// Now overrides the clock used for change timestamps.
	Now func() time.Time
}

// Service owns the current value of every setting in a schema.
//
// Writes are serialised; reads are served from memory. Handlers of
// Changing run while the write lock is held and must not call back into
// the Service. Handlers of Changed run after the write completes.
//
// All public methods are thread-safe.
type Service struct {
	repo      Repository
	publisher Publisher
	recorder  Recorder
	tracer    trace.Tracer
	logger    Logger
	qos       byte
	now       func() time.Time

	mu     sync.RWMutex
	schema *Schema
	table  *remap.Table
	defs   map[string]Definition
	values map[string]Setting

	writeMu  sync.Mutex
	changing eventargs.Event[*eventargs.Cancel[Setting]]
	changed  eventargs.Event[eventargs.Changed[Setting]]
	reloaded eventargs.Event[eventargs.Args[*Schema]]
}

// NewService creates a service for schema backed by repo. Call Load
// before use to restore persisted values.
func NewService(schema *Schema, repo Repository, opts Options) (*Service, error) {
	if schema == nil {
		return nil, fmt.Errorf("%w: nil schema", ErrInvalidSchema)
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	table, err := schema.Table()
	if err != nil {
		return nil, err
	}

	s := &Service{
		repo:      repo,
		publisher: opts.Publisher,
		recorder:  opts.Recorder,
		tracer:    opts.Tracer,
		logger:    opts.Logger,
		qos:       opts.QoS,
		now:       opts.Now,
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("")
	}
	if s.logger == nil {
		s.logger = noopLogger{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.changed.SetLogger(s.logger)
	s.changing.SetLogger(s.logger)
	s.reloaded.SetLogger(s.logger)

	s.install(schema, table, nil)
	return s, nil
}

// Load restores persisted values. Settings without a stored value take
// their default.
func (s *Service) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	schema, table := s.schema, s.table
	s.mu.RUnlock()

	records, err := s.records(ctx)
	if err != nil {
		return err
	}
	s.install(schema, table, records)
	s.logger.Info("settings loaded", "count", len(schema.Settings), "stored", len(records))
	return nil
}

// Reload replaces the schema. Current values of settings that survive
// are kept and re-encoded under their new definition; new settings are
// restored from the repository or take their default.
func (s *Service) Reload(ctx context.Context, schema *Schema) error {
	if schema == nil {
		return fmt.Errorf("%w: nil schema", ErrInvalidSchema)
	}
	if err := schema.Validate(); err != nil {
		return err
	}
	table, err := schema.Table()
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	records, err := s.records(ctx)
	if err != nil {
		s.writeMu.Unlock()
		return err
	}

	s.mu.RLock()
	before := len(s.defs)
	s.mu.RUnlock()

	s.install(schema, table, records)
	s.writeMu.Unlock()

	s.logger.Info("settings schema reloaded", "previous", before, "current", len(schema.Settings))
	s.reloaded.Raise(eventargs.NewArgs(schema))
	return nil
}

// ReloadFile loads the schema at path and applies it with Reload.
func (s *Service) ReloadFile(ctx context.Context, path string) error {
	schema, err := LoadSchemaFile(path)
	if err != nil {
		return err
	}
	return s.Reload(ctx, schema)
}

func (s *Service) records(ctx context.Context) (map[string]Record, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading setting values: %w", err)
	}
	records := make(map[string]Record, len(list))
	for _, rec := range list {
		records[rec.ID] = rec
	}
	return records, nil
}

// install swaps in a schema and rebuilds the value cache from records.
func (s *Service) install(schema *Schema, table *remap.Table, records map[string]Record) {
	defs := make(map[string]Definition, len(schema.Settings))
	values := make(map[string]Setting, len(schema.Settings))
	for _, def := range schema.Settings {
		defs[def.ID] = def
		if rec, ok := records[def.ID]; ok {
			values[def.ID] = materialize(def, &rec)
		} else {
			values[def.ID] = materialize(def, nil)
		}
	}

	s.mu.Lock()
	s.schema = schema
	s.table = table
	s.defs = defs
	s.values = values
	s.mu.Unlock()
}

// materialize builds the in-memory setting for def from a stored record,
// or from the default when rec is nil.
func materialize(def Definition, rec *Record) Setting {
	b := def.Binding()
	if rec == nil {
		v := def.Range().Clamp(def.DefaultValue())
		return Setting{Definition: def, Value: v, WireValue: b.Encode(v), Source: SourceDefault}
	}

	v := def.Range().Clamp(rec.Value)
	wire := b.Encode(v)
	// A value that arrived as a wire frame keeps that frame while the
	// definition still decodes it to the same value.
	if rec.Wire.Kind() == def.Wire && b.Decode(rec.Wire) == v {
		wire = rec.Wire
	}
	return Setting{Definition: def, Value: v, WireValue: wire, Source: rec.Source, UpdatedAt: rec.UpdatedAt}
}

// ─── Reads ──────────────────────────────────────────────────────────

// Get returns the current state of setting id.
func (s *Service) Get(id string) (Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[id]
	if !ok {
		return Setting{}, fmt.Errorf("%w: %s", ErrSettingNotFound, id)
	}
	return v, nil
}

// List returns every setting in natural ID order.
func (s *Service) List() []Setting {
	s.mu.RLock()
	out := make([]Setting, 0, len(s.values))
	for _, v := range s.values {
		out = append(out, v)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, compare.By(func(v Setting) string { return v.ID }, compare.Natural))
	return out
}

// Schema returns the active schema.
func (s *Service) Schema() *Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema
}

// Table returns the remap table compiled from the active schema.
func (s *Service) Table() *remap.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Changing is raised before a change is stored. A handler may veto it.
func (s *Service) Changing() *eventargs.Event[*eventargs.Cancel[Setting]] {
	return &s.changing
}

// Changed is raised after a change has been stored.
func (s *Service) Changed() *eventargs.Event[eventargs.Changed[Setting]] {
	return &s.changed
}

// Reloaded is raised after a new schema has been installed.
func (s *Service) Reloaded() *eventargs.Event[eventargs.Args[*Schema]] {
	return &s.reloaded
}

// ─── Writes ─────────────────────────────────────────────────────────

// Set stores an engineering value for setting id. The value is clamped
// into the setting's range and encoded to its wire kind.
func (s *Service) Set(ctx context.Context, id string, value float64) (Setting, error) {
	return s.SetFrom(ctx, id, value, SourceAPI)
}

// SetFrom is Set with an explicit change source.
func (s *Service) SetFrom(ctx context.Context, id string, value float64, source string) (Setting, error) {
	if !finite(value) {
		return Setting{}, fmt.Errorf("%w: %s: %g", ErrInvalidValue, id, value)
	}

	return s.commit(ctx, "settings.Set", id, source, func(def Definition, table *remap.Table) (float64, remap.Value, error) {
		clamped := def.Range().Clamp(value)
		wire, err := table.Encode(id, clamped)
		if err != nil {
			return 0, remap.Value{}, fmt.Errorf("%w: %s", ErrSettingNotFound, id)
		}
		return clamped, wire, nil
	})
}

// ApplyWire stores a value received in wire form. Values of another kind
// are saturated into the setting's wire kind before decoding.
func (s *Service) ApplyWire(ctx context.Context, id string, wire remap.Value) (Setting, error) {
	if !wire.IsValid() {
		return Setting{}, fmt.Errorf("%w: %s: empty wire value", ErrInvalidValue, id)
	}

	return s.commit(ctx, "settings.ApplyWire", id, SourceMQTT, func(def Definition, table *remap.Table) (float64, remap.Value, error) {
		w := remap.ClampValue(wire, def.Wire)
		value, err := table.Decode(id, w)
		if err != nil {
			return 0, remap.Value{}, fmt.Errorf("%w: %s", ErrSettingNotFound, id)
		}
		return value, w, nil
	})
}

// encodeFunc produces the engineering value and wire frame to store for a
// write, under the definition in force when the write commits.
type encodeFunc func(def Definition, table *remap.Table) (float64, remap.Value, error)

func (s *Service) lookup(id string) (Definition, *remap.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.defs[id]
	if !ok {
		return Definition{}, nil, fmt.Errorf("%w: %s", ErrSettingNotFound, id)
	}
	return def, s.table, nil
}

// commit resolves id and encodes the write while holding writeMu, so a
// concurrent Reload cannot swap the definition between the two.
func (s *Service) commit(ctx context.Context, op, id, source string, encode encodeFunc) (Setting, error) {
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String(tracing.AttrSettingID, id),
		attribute.String(tracing.AttrSource, source),
	))
	defer span.End()

	var previous, current Setting
	err := stopwatch.Profile(s.logger, op, func() error {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		def, table, err := s.lookup(id)
		if err != nil {
			return err
		}
		span.SetAttributes(attribute.String(tracing.AttrSettingKind, def.Wire.String()))

		value, wire, err := encode(def, table)
		if err != nil {
			return err
		}

		s.mu.RLock()
		previous = s.values[id]
		s.mu.RUnlock()

		current = Setting{
			Definition: def,
			Value:      value,
			WireValue:  wire,
			Source:     source,
			UpdatedAt:  s.now().UTC(),
		}

		proposal := eventargs.NewCancel(current)
		s.changing.Raise(proposal)
		if proposal.Cancelled {
			return fmt.Errorf("%w: %s", ErrChangeVetoed, id)
		}

		err = s.repo.Save(ctx, Record{
			ID:        id,
			Value:     value,
			Wire:      wire,
			Source:    source,
			UpdatedAt: current.UpdatedAt,
		})
		if err != nil {
			return err
		}

		s.mu.Lock()
		s.values[id] = current
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		tracing.RecordError(span, err)
		return Setting{}, err
	}

	span.SetAttributes(attribute.String("setting.wire_value", current.WireValue.String()))
	s.publish(current)
	s.record(current)
	s.changed.Raise(eventargs.NewChanged(previous, current))
	return current, nil
}

// Reset returns every setting to its default value. Each reset is a
// normal change: it is stored, published and raises events. It returns
// the number of settings reset.
func (s *Service) Reset(ctx context.Context) (int, error) {
	var n int
	for _, v := range s.List() {
		if _, err := s.SetFrom(ctx, v.ID, v.DefaultValue(), SourceDefault); err != nil {
			return n, fmt.Errorf("resetting %s: %w", v.ID, err)
		}
		n++
	}
	return n, nil
}
