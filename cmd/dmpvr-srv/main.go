// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dmpvr-srv exposes a regulator over a JSON control socket.
package main // import "github.com/go-vrm/dmpvr/cmd/dmpvr-srv"

import (
	"flag"
	"fmt"
	"log"

	"github.com/go-daq/smbus"

	"github.com/go-vrm/dmpvr/histdb"
	"github.com/go-vrm/dmpvr/raa"
)

func main() {
	log.SetPrefix("dmpvr-srv: ")
	log.SetFlags(0)

	var (
		addr   = flag.String("addr", ":9999", "[ip]:port to listen on")
		odir   = flag.String("o", "/var/run/dmpvr", "output dir for journals and fault-log archives")
		bus    = flag.Int("bus", 1, "I2C bus number of the regulator")
		i2c    = flag.Int("i2c", 0x60, "I2C address of the regulator")
		dbname = flag.String("db", "", "history database name (empty: no history)")
	)

	flag.Parse()

	conn, err := smbus.Open(*bus, uint8(*i2c))
	if err != nil {
		log.Fatalf("could not open I2C bus %d: %+v", *bus, err)
	}
	defer conn.Close()

	dev := raa.NewDevice(conn, uint8(*i2c))

	var rec raa.Recorder
	if *dbname != "" {
		db, err := histdb.Open(*dbname, fmt.Sprintf("i2c-%d:0x%02x", *bus, *i2c))
		if err != nil {
			log.Fatalf("could not open history db: %+v", err)
		}
		defer db.Close()
		rec = db
	}

	err = raa.Serve(*addr, *odir, dev, rec)
	if err != nil {
		log.Fatalf("could not create dmpvr service: %+v", err)
	}
}
