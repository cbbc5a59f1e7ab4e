package probes

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	// Database drivers
	_ "github.com/go-sql-driver/mysql" // MySQL
	_ "github.com/lib/pq"              // PostgreSQL
	_ "modernc.org/sqlite"             // Pure Go SQLite

	"github.com/Ishswami-Tech/healthops/health"
)

const pingQuery = "SELECT 1"

// OpenDatabase opens a lazily connected pool. driver is one of postgres,
// mysql or sqlite.
func OpenDatabase(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(time.Minute)
	return db, nil
}

// Database checks a relational store with a trivial query.
type Database struct {
	db *sqlx.DB
}

// NewDatabase creates a database probe over db.
func NewDatabase(db *sqlx.DB) *Database {
	return &Database{db: db}
}

// Check runs SELECT 1 and reports pool statistics.
func (d *Database) Check(ctx context.Context) health.Result {
	start := time.Now()

	var one int
	if err := d.db.GetContext(ctx, &one, pingQuery); err != nil {
		return health.Unhealthy("", fmt.Errorf("database query failed: %w", err)).
			WithResponseTime(time.Since(start))
	}

	stats := d.db.Stats()
	detail := "connected"
	if stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections-1 {
		detail = "connected, pool near exhaustion"
	}

	return health.Healthy(detail).
		WithResponseTime(time.Since(start)).
		WithMetrics(map[string]float64{
			"open_connections": float64(stats.OpenConnections),
			"in_use":           float64(stats.InUse),
			"idle":             float64(stats.Idle),
			"wait_count":       float64(stats.WaitCount),
			"max_connections":  float64(stats.MaxOpenConnections),
		})
}
