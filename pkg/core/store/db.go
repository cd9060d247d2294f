// Package store provides the persistence seams of the pipeline: a MongoDB
// record store for normalized records and a Postgres audit log for batch
// outcomes.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB initializes the Postgres connection pool from DATABASE_URL.
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}
		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("parse database config: %w", parseErr)
			return
		}
		pool, err = pgxpool.NewWithConfig(ctx, config)
	})
	return err
}

// GetPool returns the Postgres pool, nil when InitDB was never called or
// failed.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close releases the Postgres pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
