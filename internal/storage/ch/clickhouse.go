package ch

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"catalog/internal/storage"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// createTable mirrors migrations/00001_create_library_kv.sql so a fresh
// server works without running cmd/migrate first.
const createTable = `
	CREATE TABLE IF NOT EXISTS library_kv (
		key String,
		value String,
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	ORDER BY key
`

var _ storage.Storage = (*ClickHouseDB)(nil)

// ClickHouseDB keeps every write as a new versioned row; reads pick the
// highest version per key.
type ClickHouseDB struct {
	conn clickhouse.Conn

	mu          sync.Mutex
	lastVersion uint64
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	// Configure TLS if enabled
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test the connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Initialize creates the key-value table when it does not exist yet
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	if err := db.conn.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create library_kv table: %w", err)
	}
	return nil
}

// Get returns the latest value written under key
func (db *ClickHouseDB) Get(ctx context.Context, key string) (string, bool, error) {
	rows, err := db.conn.Query(ctx, `SELECT argMax(value, version) FROM library_kv WHERE key = ? GROUP BY key`, key)
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", false, rows.Err()
	}
	var value string
	if err := rows.Scan(&value); err != nil {
		return "", false, fmt.Errorf("failed to scan %s: %w", key, err)
	}
	return value, true, nil
}

// PutMany sends all entries in a single insert block, which ClickHouse
// applies atomically
func (db *ClickHouseDB) PutMany(ctx context.Context, entries []storage.Entry) error {
	batch, err := db.conn.PrepareBatch(ctx, "INSERT INTO library_kv (key, value, version)")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	version := db.nextVersion()
	for _, e := range entries {
		if err := batch.Append(e.Key, e.Value, version); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("failed to append %s: %w", e.Key, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	return nil
}

// nextVersion returns a strictly increasing version so two saves in the same
// nanosecond still order correctly
func (db *ClickHouseDB) nextVersion() uint64 {
	db.mu.Lock()
	defer db.mu.Unlock()

	v := uint64(time.Now().UnixNano())
	if v <= db.lastVersion {
		v = db.lastVersion + 1
	}
	db.lastVersion = v
	return v
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
