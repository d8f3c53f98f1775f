// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dmpvr-id displays the identity and free NVM slots of a
// regulator.
package main // import "github.com/go-vrm/dmpvr/cmd/dmpvr-id"

import (
	"flag"
	"log"

	"github.com/go-daq/smbus"

	"github.com/go-vrm/dmpvr/raa"
)

func main() {
	log.SetPrefix("dmpvr-id: ")
	log.SetFlags(0)

	var (
		bus  = flag.Int("bus", 1, "I2C bus number of the regulator")
		addr = flag.Int("addr", 0x60, "I2C address of the regulator")
	)

	flag.Parse()

	err := run(*bus, uint8(*addr))
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(bus int, addr uint8) error {
	conn, err := smbus.Open(bus, addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	dev := raa.NewDevice(conn, addr)

	ident, err := dev.Identity()
	if err != nil {
		return err
	}
	log.Printf("device-id:  %x", ident.ID)
	log.Printf("device-rev: %02x", ident.Rev)

	free, err := dev.FreeSlots()
	if err != nil {
		return err
	}
	log.Printf("free slots: %d/%d", free, raa.MaxSlots)
	return nil
}
