// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dmpvr-bb retrieves the fault-log black box of a regulator.
package main // import "github.com/go-vrm/dmpvr/cmd/dmpvr-bb"

import (
	"flag"
	"log"
	"os"

	"github.com/go-daq/smbus"

	"github.com/go-vrm/dmpvr/raa"
)

func main() {
	log.SetPrefix("dmpvr-bb: ")
	log.SetFlags(0)

	var (
		bus  = flag.Int("bus", 1, "I2C bus number of the regulator")
		addr = flag.Int("addr", 0x60, "I2C address of the regulator")
		out  = flag.String("o", "", "output file for the snapshot (default: stdout)")
	)

	flag.Parse()

	err := run(*bus, uint8(*addr), *out)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(bus int, addr uint8, out string) error {
	conn, err := smbus.Open(bus, addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	dev := raa.NewDevice(conn, addr)
	buf, err := dev.ReadBlackBox()
	if err != nil {
		return err
	}

	if out == "" {
		_, err = os.Stdout.Write(buf)
		return err
	}
	return os.WriteFile(out, buf, 0644)
}
