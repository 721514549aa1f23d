package settings

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-toolkit/migrations"
)

const testSchemaYAML = `
version: 1
settings:
  - id: dimmer.level
    name: Dimmer level
    unit: "%"
    min: 0
    max: 100
    wire: uint8
    default: 50
  - id: zone10.setpoint
    name: Zone 10 setpoint
    unit: "°C"
    min: 5
    max: 35
    wire: int16
    default: 21
  - id: zone2.setpoint
    name: Zone 2 setpoint
    unit: "°C"
    min: 5
    max: 35
    wire: int16
  - id: counter.total
    name: Counter
    min: 0
    max: 1000
    wire: uint64
`

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := LoadSchemaYAML(strings.NewReader(testSchemaYAML))
	require.NoError(t, err)
	return s
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{Path: database.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(context.Background(), migrations.Source()))
	return db.DB
}

type published struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{topic, payload, qos, retained})
	return nil
}

func (f *fakePublisher) messages() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.msgs...)
}

type fakeRecorder struct {
	mu      sync.Mutex
	changes []influxdb.SettingChange
}

func (f *fakeRecorder) WriteSettingChange(ch influxdb.SettingChange) {
	f.mu.Lock()
	f.changes = append(f.changes, ch)
	f.mu.Unlock()
}

type fakeSubscriber struct {
	topic   string
	qos     byte
	handler mqtt.MessageHandler
}

func (f *fakeSubscriber) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	f.topic, f.qos, f.handler = topic, qos, handler
	return nil
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	svc  *Service
	repo *SQLiteRepository
	pub  *fakePublisher
	rec  *fakeRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		repo: NewSQLiteRepository(testDB(t)),
		pub:  &fakePublisher{},
		rec:  &fakeRecorder{},
	}
	svc, err := NewService(testSchema(t), h.repo, Options{
		Publisher: h.pub,
		Recorder:  h.rec,
		QoS:       1,
		Now:       func() time.Time { return fixedTime },
	})
	require.NoError(t, err)
	require.NoError(t, svc.Load(context.Background()))
	h.svc = svc
	return h
}
