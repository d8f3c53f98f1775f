// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dmpvr-hist exports the programming history of a regulator
// fleet to CSV.
package main // import "github.com/go-vrm/dmpvr/cmd/dmpvr-hist"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go-hep.org/x/hep/csvutil"

	"github.com/go-vrm/dmpvr/histdb"
)

func main() {
	log.SetPrefix("dmpvr-hist: ")
	log.SetFlags(0)

	var (
		dbname = flag.String("db", "dmpvr", "history database name")
		device = flag.String("dev", "", "device tag to filter on (empty: whole fleet)")
		out    = flag.String("o", "runs.csv", "output CSV file")
	)

	flag.Parse()

	db, err := histdb.Open(*dbname, *device)
	if err != nil {
		log.Fatalf("could not open history db: %+v", err)
	}
	defer db.Close()

	err = export(db, *device, *out)
	if err != nil {
		log.Fatalf("could not export history: %+v", err)
	}
}

func export(db *histdb.DB, device, fname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	runs, err := db.Runs(ctx, device)
	if err != nil {
		return fmt.Errorf("could not retrieve runs: %w", err)
	}
	log.Printf("runs: %d", len(runs))

	tbl, err := csvutil.Create(fname)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", fname, err)
	}
	defer tbl.Close()
	tbl.Writer.Comma = ';'

	err = tbl.WriteHeader("# id;time;device;outcome;slots;cmds;error\n")
	if err != nil {
		return fmt.Errorf("could not write CSV header: %w", err)
	}

	for _, run := range runs {
		err = tbl.WriteRow(
			run.ID, run.Time.Format(time.RFC3339), run.Device,
			run.Outcome, int64(run.Slots), int64(run.Cmds), run.Err,
		)
		if err != nil {
			return fmt.Errorf("could not write run %d: %w", run.ID, err)
		}
	}

	err = tbl.Close()
	if err != nil {
		return fmt.Errorf("could not close %q: %w", fname, err)
	}
	return nil
}
