// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package raa drives the NVM configuration-programming and fault-log
// retrieval protocol of Renesas gen-2 digital multiphase voltage
// regulators (ISL68xxx/ISL69xxx/RAA22xxxx families) on top of a plain
// SMBus/I2C connection.
//
// The regulator exposes its internal memory through a DMA window: a
// write to the window-address register selects a location, and reads
// of the fixed or sequential window registers return 32-bit words from
// that location. Configuration programming burns a vendor-generated
// text file into one or more NVM slots; the fault log ("black box") is
// a fixed 32-word ring buffer read through the same window.
package raa // import "github.com/go-vrm/dmpvr/raa"

import (
	"log"
	"os"
	"sync"
	"time"
)

// Bus is the subset of an SMBus/I2C connection needed to talk to a
// regulator. *smbus.Conn (github.com/go-daq/smbus) implements Bus.
type Bus interface {
	// WriteWord issues an SMBus write-word transaction to the device
	// at addr.
	WriteWord(addr, reg uint8, v uint16) error

	// Write and Read issue raw I2C transfers to the currently
	// addressed device. They carry the non-standard 32/40-bit
	// transfers the SMBus protocol layer cannot express.
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
}

// Device represents one regulator on the bus.
//
// The bus is a single-owner resource: Device serializes programming
// runs and black-box reads, each spanning multiple window-selector and
// window-read transactions that must not interleave.
type Device struct {
	msg  *log.Logger
	bus  Bus
	addr uint8

	mu  sync.Mutex // guards multi-transaction sequences on the bus
	cfg config
}

type config struct {
	timeout time.Duration // programming-status poll budget
	period  time.Duration // pause between status polls

	now   func() time.Time
	sleep func(time.Duration)
}

func newConfig() config {
	return config{
		timeout: 2 * time.Second,
		period:  10 * time.Millisecond,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Option configures a Device.
type Option func(*config)

// WithTimeout sets the wall-clock budget of the programming-status
// poll loop.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = d
	}
}

// WithPollPeriod sets the pause between two programming-status polls.
func WithPollPeriod(d time.Duration) Option {
	return func(cfg *config) {
		cfg.period = d
	}
}

// NewDevice creates a Device for the regulator at the given I2C
// address on bus.
func NewDevice(bus Bus, addr uint8, opts ...Option) *Device {
	dev := &Device{
		msg:  log.New(os.Stdout, "raa: ", 0),
		bus:  bus,
		addr: addr,
		cfg:  newConfig(),
	}
	for _, opt := range opts {
		opt(&dev.cfg)
	}
	return dev
}

// Identity is the identity reported by the live device.
type Identity struct {
	ID  [4]byte
	Rev byte
}

// Identity reads the device id and revision from the device.
func (dev *Device) Identity() (Identity, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.identity()
}

func (dev *Device) identity() (Identity, error) {
	var ident Identity

	id, err := dev.read40(cmdDeviceID)
	if err != nil {
		return ident, err
	}
	rev, err := dev.read40(cmdDeviceRev)
	if err != nil {
		return ident, err
	}

	// byte 0 of a 40-bit read is the block length.
	copy(ident.ID[:], id[1:5])
	ident.Rev = rev[4]
	return ident, nil
}

// FreeSlots reads the number of free NVM configuration slots reported
// by the device.
func (dev *Device) FreeSlots() (int, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.freeSlots()
}

func (dev *Device) freeSlots() (int, error) {
	err := dev.selectWindow(addrNVMSlots)
	if err != nil {
		return 0, err
	}
	data, err := dev.read32(cmdDMASeq)
	if err != nil {
		return 0, err
	}
	// only the first byte of the counter word is meaningful on this
	// device family.
	return int(data[0]), nil
}

// selectWindow points the DMA window at the given device memory
// address.
func (dev *Device) selectWindow(addr uint16) error {
	err := dev.bus.WriteWord(dev.addr, cmdDMAAddr, addr)
	if err != nil {
		return &TransportError{Op: "write-word", Cmd: cmdDMAAddr, Err: err}
	}
	return nil
}
