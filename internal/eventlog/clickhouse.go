package eventlog

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/dalmia/sensai-backend/pkg/logger"
)

// Save event kinds
const (
	KindAutosave   = "autosave"
	KindManualSave = "manual_save"
	KindPublish    = "publish"
)

// SaveEvent is one row of the save audit stream. Written fire and
// forget; losing events must never fail the save itself.
type SaveEvent struct {
	UserID     string
	QuestionID string
	TaskID     string
	Kind       string
	ByteSize   int
	OccurredAt time.Time
}

// Sink receives save events. The nil Sink drops everything.
type Sink interface {
	Record(ctx context.Context, event SaveEvent)
	Close() error
}

// ClickHouseSink writes save events to ClickHouse
type ClickHouseSink struct {
	conn driver.Conn
}

// Config holds ClickHouse connection parameters
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// NewClickHouseSink opens a ClickHouse connection and ensures the
// save_events table exists
func NewClickHouseSink(cfg Config) (*ClickHouseSink, error) {
	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      5 * time.Second,
		MaxOpenConns:     3,
		MaxIdleConns:     2,
		ConnMaxLifetime:  5 * time.Minute,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	}

	// TLS for non-private networks
	if !isPrivateHost(cfg.Host) {
		options.TLS = &tls.Config{InsecureSkipVerify: true}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("eventlog: failed to open ClickHouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("eventlog: failed to ping ClickHouse: %w", err)
	}

	sink := &ClickHouseSink{conn: conn}
	if err := sink.ensureTable(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return sink, nil
}

func isPrivateHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "host.docker.internal" ||
		strings.HasPrefix(host, "10.") ||
		strings.HasPrefix(host, "172.") ||
		strings.HasPrefix(host, "192.168.")
}

func (s *ClickHouseSink) ensureTable(ctx context.Context) error {
	err := s.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS save_events (
			user_id     String,
			question_id String,
			task_id     String,
			kind        LowCardinality(String),
			byte_size   UInt32,
			occurred_at DateTime
		) ENGINE = MergeTree()
		ORDER BY (user_id, question_id, occurred_at)
	`)
	if err != nil {
		return fmt.Errorf("eventlog: failed to create save_events: %w", err)
	}
	return nil
}

// Record inserts one save event. Errors are logged, never returned up
// to the save path.
func (s *ClickHouseSink) Record(ctx context.Context, event SaveEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	err := s.conn.Exec(ctx,
		`INSERT INTO save_events (user_id, question_id, task_id, kind, byte_size, occurred_at) VALUES (?, ?, ?, ?, ?, ?)`,
		event.UserID, event.QuestionID, event.TaskID, event.Kind, uint32(event.ByteSize), event.OccurredAt)
	if err != nil {
		logger.GetLogger().Warn().Err(err).
			Str("kind", event.Kind).
			Str("question_id", event.QuestionID).
			Msg("failed to record save event")
	}
}

// Close closes the connection
func (s *ClickHouseSink) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// NopSink drops all events. Used when ClickHouse is disabled.
type NopSink struct{}

func (NopSink) Record(ctx context.Context, event SaveEvent) {}

func (NopSink) Close() error { return nil }
