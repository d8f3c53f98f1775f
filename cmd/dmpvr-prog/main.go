// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dmpvr-prog burns a configuration file into the NVM of a
// regulator.
package main // import "github.com/go-vrm/dmpvr/cmd/dmpvr-prog"

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/go-daq/smbus"

	"github.com/go-vrm/dmpvr/raa"
)

func main() {
	log.SetPrefix("dmpvr-prog: ")
	log.SetFlags(0)

	var (
		bus     = flag.Int("bus", 1, "I2C bus number of the regulator")
		addr    = flag.Int("addr", 0x60, "I2C address of the regulator")
		timeout = flag.Duration("timeout", 2*time.Second, "programming-status poll budget")
	)

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("missing configuration file argument")
	}

	err := run(*bus, uint8(*addr), *timeout, flag.Arg(0))
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(bus int, addr uint8, timeout time.Duration, fname string) error {
	raw, err := os.ReadFile(fname)
	if err != nil {
		return err
	}

	conn, err := smbus.Open(bus, addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	dev := raa.NewDevice(conn, addr, raa.WithTimeout(timeout))
	port := raa.NewPort(dev)

	n, err := port.Program(raw)
	if err != nil {
		log.Printf("outcome: %s", raa.OutcomeOf(err))
		return err
	}

	log.Printf("programmed %q (%d bytes)", fname, n)
	log.Printf("outcome: %s", raa.OutcomeOf(nil))
	return nil
}
