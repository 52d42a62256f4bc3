// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package repository is the SQLite-backed store for the two pieces of
// state this server keeps relationally rather than inside a world save:
// each player's logout location per world, and the admin audit trail
// (op/deop/ban/kick history). Both are migrated with golang-migrate
// from the embedded migrations/sqlite3 directory on first Connect.
package repository

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/obsidian-net/classicd/pkg/log"
)

//go:embed migrations/sqlite3
var migrationFiles embed.FS

// Repository wraps the single sqlite connection used by both the
// logout-location and audit-trail tables.
type Repository struct {
	db *sqlx.DB
}

// Connect opens path (creating it if absent), runs any pending
// migrations, and returns a ready Repository. Sqlite does not
// multithread writes well, so the connection pool is capped at one
// connection, matching the teacher's own sqlite sizing.
func Connect(path string) (*Repository, error) {
	db, err := sqlx.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", path))
	if err != nil {
		return nil, fmt.Errorf("repository: opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := migrateUp(db.DB); err != nil {
		return nil, err
	}

	return &Repository{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("repository: migration driver: %w", err)
	}
	src, err := iofs.New(migrationFiles, "migrations/sqlite3")
	if err != nil {
		return fmt.Errorf("repository: migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("repository: migration setup: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("repository: running migrations: %w", err)
	}
	log.Info("repository: schema up to date")
	return nil
}

// Close releases the underlying connection.
func (r *Repository) Close() error { return r.db.Close() }
