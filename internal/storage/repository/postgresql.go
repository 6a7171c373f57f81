// Package repository implements the PostgreSQL data store for users, posts,
// profile subscriptions, payments, service items and messages. The webhook
// reconciler's paid/extend step runs through the Tx variants so both writes
// commit together.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	// Register the pgx driver for use with database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage encapsulates the PostgreSQL connection and implements the
// repository methods used by the services.
type Storage struct {
	DB *sql.DB
}

// New opens a PostgreSQL connection and verifies it with a ping.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// BeginTx starts a database transaction. Callers must commit or roll back.
func (s *Storage) BeginTx(ctx context.Context) (*sql.Tx, error) {
	const op = "storage.BeginTx"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tx, nil
}

// Ready reports whether the schema is reachable, for the health endpoint.
func (s *Storage) Ready() error {
	return CheckDatabaseReady(s)
}

// CheckDatabaseReady verifies that the schema has been migrated.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table users missing or query error: %w", err)
	}
	return nil
}
