// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package histdb holds types to persist and query the programming
// history of a regulator fleet.
package histdb // import "github.com/go-vrm/dmpvr/histdb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/go-vrm/dmpvr/raa"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// Run is one programming run as stored in the history database.
type Run struct {
	ID      int64
	Time    time.Time
	Device  string // bus path and address of the programmed device
	Outcome string
	Slots   int
	Cmds    int
	Err     string
}

// DB exposes convenience methods to store and retrieve programming
// runs from the history database.
type DB struct {
	db   *sql.DB
	name string // name of the history database
	dev  string // device tag stored with every run
}

// Open opens a connection to the history database dbname. Runs
// recorded through this connection are tagged with dev.
func Open(dbname, dev string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("histdb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		return nil, fmt.Errorf("histdb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname, dev: dev}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("histdb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// Record stores one programming-run record. It implements
// raa.Recorder.
func (db *DB) Record(rec raa.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.db.ExecContext(
		ctx,
		"INSERT INTO runs (datetime, device, outcome, slots, cmds, error) VALUES (?, ?, ?, ?, ?, ?)",
		rec.Time.UTC(), db.dev, rec.Outcome, rec.Slots, rec.Cmds, rec.Err,
	)
	if err != nil {
		return fmt.Errorf("histdb: could not insert run record: %w", err)
	}
	return nil
}

// Runs retrieves the programming runs of device dev, most recent
// first. An empty dev retrieves the runs of the whole fleet.
func (db *DB) Runs(ctx context.Context, dev string) ([]Run, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := "SELECT identifier, datetime, device, outcome, slots, cmds, error FROM runs"
	args := []interface{}{}
	if dev != "" {
		query += " WHERE device=?"
		args = append(args, dev)
	}
	query += " ORDER BY datetime DESC"

	var runs []Run
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return runs, fmt.Errorf("histdb: could not query runs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var run Run
		err = rows.Scan(
			&run.ID, &run.Time, &run.Device,
			&run.Outcome, &run.Slots, &run.Cmds, &run.Err,
		)
		if err != nil {
			return runs, fmt.Errorf("histdb: could not scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return runs, fmt.Errorf("histdb: could not scan db for runs: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return runs, fmt.Errorf("histdb: context error while retrieving runs: %w", err)
	}

	return runs, nil
}

// LastRun retrieves the most recent programming run of device dev.
func (db *DB) LastRun(ctx context.Context, dev string) (Run, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var run Run
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT identifier, datetime, device, outcome, slots, cmds, error FROM runs WHERE device=? ORDER BY datetime DESC LIMIT 1",
		dev,
	)
	if err != nil {
		return run, fmt.Errorf("histdb: could not query last run: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(
			&run.ID, &run.Time, &run.Device,
			&run.Outcome, &run.Slots, &run.Cmds, &run.Err,
		)
		if err != nil {
			return run, fmt.Errorf("histdb: could not scan last run: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return run, fmt.Errorf("histdb: could not scan db for last run: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return run, fmt.Errorf("histdb: context error while retrieving last run: %w", err)
	}

	return run, nil
}

var _ raa.Recorder = (*DB)(nil)
