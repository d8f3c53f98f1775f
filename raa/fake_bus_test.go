// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raa

import (
	"io"
	"log"
	"time"
)

// newTestDevice wraps bus in a quiet Device with a simulated clock:
// sleeping advances time, nothing else does.
func newTestDevice(bus Bus, opts ...Option) *Device {
	dev := NewDevice(bus, 0x60, opts...)
	dev.msg = log.New(io.Discard, "raa: ", 0)

	now := time.Unix(0, 0)
	dev.cfg.now = func() time.Time { return now }
	dev.cfg.sleep = func(d time.Duration) { now = now.Add(d) }
	return dev
}

type wordWrite struct {
	addr uint8
	reg  uint8
	v    uint16
}

// fakeBus models the DMA-window protocol of a regulator: WriteWord to
// the window-address register selects a location, raw writes latch a
// pending command and raw reads answer it from the selected window.
type fakeBus struct {
	window  uint16
	pending byte
	seq     int

	id     [4]byte
	rev    byte
	free   uint8
	status []uint8 // programming-status poll answers, drained front to back
	bank0  [4]byte
	bank1  [4]byte
	bb     [32][4]byte

	words []wordWrite
	raws  [][]byte

	errWriteWord error
	errWrite     error // raw writes fail with this once okWrites ran out
	errRead      error
	okWrites     int
}

func newFakeBus() *fakeBus {
	bus := &fakeBus{
		id:   [4]byte{0x01, 0x02, 0x03, 0x04},
		rev:  0x05,
		free: 16,
	}
	bus.bank0 = [4]byte{0x11, 0x11, 0x11, 0x11}
	bus.bank1 = [4]byte{0x11, 0x11, 0x11, 0x11}
	for i := range bus.bb {
		bus.bb[i] = [4]byte{uint8(i), uint8(i + 1), uint8(i + 2), uint8(i + 3)}
	}
	return bus
}

func (bus *fakeBus) WriteWord(addr, reg uint8, v uint16) error {
	if bus.errWriteWord != nil {
		return bus.errWriteWord
	}
	bus.words = append(bus.words, wordWrite{addr, reg, v})
	if reg == cmdDMAAddr {
		bus.window = v
		bus.seq = 0
	}
	return nil
}

func (bus *fakeBus) Write(p []byte) (int, error) {
	if bus.errWrite != nil && bus.okWrites == 0 {
		return 0, bus.errWrite
	}
	if bus.okWrites > 0 {
		bus.okWrites--
	}
	bus.raws = append(bus.raws, append([]byte(nil), p...))
	if len(p) > 0 {
		bus.pending = p[0]
	}
	return len(p), nil
}

func (bus *fakeBus) Read(p []byte) (int, error) {
	if bus.errRead != nil {
		return 0, bus.errRead
	}

	switch bus.pending {
	case cmdDeviceID:
		copy(p, []byte{4, bus.id[0], bus.id[1], bus.id[2], bus.id[3]})
	case cmdDeviceRev:
		copy(p, []byte{4, 0, 0, 0, bus.rev})
	case cmdDMAFix:
		switch bus.window {
		case addrPrgmStatus:
			copy(p, []byte{bus.pollStatus(), 0, 0, 0})
		case addrBank0Status:
			copy(p, bus.bank0[:])
		case addrBank1Status:
			copy(p, bus.bank1[:])
		}
	case cmdDMASeq:
		switch bus.window {
		case addrNVMSlots:
			copy(p, []byte{bus.free, 0, 0, 0})
		case addrBlackBox:
			copy(p, bus.bb[bus.seq%len(bus.bb)][:])
			bus.seq++
		}
	}
	return len(p), nil
}

// pollStatus drains the scripted status answers, sticking on the last
// one.
func (bus *fakeBus) pollStatus() uint8 {
	if len(bus.status) == 0 {
		return 1
	}
	st := bus.status[0]
	if len(bus.status) > 1 {
		bus.status = bus.status[1:]
	}
	return st
}

// nTransfers reports the total bus traffic seen so far.
func (bus *fakeBus) nTransfers() int {
	return len(bus.words) + len(bus.raws)
}
