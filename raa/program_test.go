// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raa

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
)

func TestProgram(t *testing.T) {
	bus := newFakeBus()
	bus.free = 2
	bus.status = []uint8{0, 0, 1} // two busy polls, then done
	dev := newTestDevice(bus)

	cfg := &Config{
		DevID:  [4]byte{0x01, 0x02, 0x03, 0x04},
		DevRev: [4]byte{0, 0, 0, 0x05},
		Slots:  2,
		Cmds: []Command{
			{Reg: 0x10, Len: 2, Data: [4]byte{0xdd, 0xff, 0, 0}},
			{Reg: 0xe5, Len: 4, Data: [4]byte{0xaa, 0xbb, 0xcc, 0xdd}},
		},
	}

	err := dev.Program(cfg)
	if err != nil {
		t.Fatalf("could not program device: %+v", err)
	}

	// word commands go out as write-word, dword ones as 32-bit writes.
	want := []wordWrite{
		{0x60, cmdDMAAddr, addrNVMSlots},
		{0x60, 0x10, 0xffdd}, // little-endian payload
		{0x60, cmdDMAAddr, addrPrgmStatus},
		{0x60, cmdDMAAddr, addrBank0Status},
		{0x60, cmdDMAAddr, addrBank1Status},
	}
	if got := bus.words; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid write-word sequence:\ngot= %v\nwant=%v", got, want)
	}

	found := false
	for _, raw := range bus.raws {
		if reflect.DeepEqual(raw, []byte{0xe5, 0xaa, 0xbb, 0xcc, 0xdd}) {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing 32-bit configuration write: raws=%v", bus.raws)
	}
}

func TestProgramGating(t *testing.T) {
	// a failed identity or capacity check sends no configuration data.
	cfg := &Config{
		DevID:  [4]byte{0x01, 0x02, 0x03, 0x04},
		DevRev: [4]byte{0, 0, 0, 0x05},
		Slots:  1,
		Cmds: []Command{
			{Reg: 0x10, Len: 2, Data: [4]byte{0xdd, 0xff, 0, 0}},
		},
	}

	for _, tc := range []struct {
		name    string
		setup   func(bus *fakeBus)
		outcome string
	}{
		{
			name:    "identity-mismatch",
			setup:   func(bus *fakeBus) { bus.id[0] = 0xff },
			outcome: "identity-mismatch",
		},
		{
			name:    "insufficient-capacity",
			setup:   func(bus *fakeBus) { bus.free = 0 },
			outcome: "insufficient-capacity",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bus := newFakeBus()
			tc.setup(bus)
			dev := newTestDevice(bus)

			err := dev.Program(cfg)
			if err == nil {
				t.Fatalf("expected a programming error")
			}
			if got, want := OutcomeOf(err), tc.outcome; got != want {
				t.Fatalf("invalid outcome: got=%q, want=%q", got, want)
			}
			for _, w := range bus.words {
				if w.reg != cmdDMAAddr {
					t.Fatalf("configuration write 0x%02x leaked to the device", w.reg)
				}
			}
		})
	}
}

func TestProgramTimeout(t *testing.T) {
	bus := newFakeBus()
	bus.status = []uint8{0} // the programmer never reports completion
	dev := newTestDevice(bus, WithTimeout(2*time.Second), WithPollPeriod(10*time.Millisecond))

	cfg := &Config{
		DevID:  [4]byte{0x01, 0x02, 0x03, 0x04},
		DevRev: [4]byte{0, 0, 0, 0x05},
		Slots:  1,
	}

	start := dev.cfg.now()
	err := dev.Program(cfg)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("invalid error: got=%+v, want=%+v", err, ErrTimeout)
	}
	if got, want := OutcomeOf(err), "timeout"; got != want {
		t.Fatalf("invalid outcome: got=%q, want=%q", got, want)
	}
	if got, min := dev.cfg.now().Sub(start), 2*time.Second; got < min {
		t.Fatalf("poll loop gave up too early: after %v, want at least %v", got, min)
	}
}

func TestProgramSlotFailure(t *testing.T) {
	// the bank status words carry one 4-bit code per slot, slots 8-15
	// in the second bank.
	for _, tc := range []struct {
		name   string
		slots  int
		setup  func(bus *fakeBus)
		slot   int
		status uint8
	}{
		{
			name:   "slot-0",
			slots:  1,
			setup:  func(bus *fakeBus) { bus.bank0[0] = 0x13 },
			slot:   0,
			status: 3,
		},
		{
			name:   "slot-7",
			slots:  8,
			setup:  func(bus *fakeBus) { bus.bank0[3] = 0x01 },
			slot:   7,
			status: 0,
		},
		{
			name:   "slot-8",
			slots:  9,
			setup:  func(bus *fakeBus) { bus.bank1[0] = 0x1f },
			slot:   8,
			status: 0xf,
		},
		{
			name:   "slot-15",
			slots:  16,
			setup:  func(bus *fakeBus) { bus.bank1[3] = 0x71 },
			slot:   15,
			status: 7,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bus := newFakeBus()
			tc.setup(bus)
			dev := newTestDevice(bus)

			cfg := &Config{
				DevID:  [4]byte{0x01, 0x02, 0x03, 0x04},
				DevRev: [4]byte{0, 0, 0, 0x05},
				Slots:  tc.slots,
			}

			err := dev.Program(cfg)
			var serr *SlotError
			if !errors.As(err, &serr) {
				t.Fatalf("invalid error type: got=%+v", err)
			}
			if got, want := serr.Slot, tc.slot; got != want {
				t.Fatalf("invalid slot: got=%d, want=%d", got, want)
			}
			if got, want := serr.Status, tc.status; got != want {
				t.Fatalf("invalid status: got=0x%x, want=0x%x", got, want)
			}
			if got, want := OutcomeOf(err), "slot-failure"; got != want {
				t.Fatalf("invalid outcome: got=%q, want=%q", got, want)
			}
		})
	}
}

func TestProgramBankWindows(t *testing.T) {
	// a run walks the windows in a fixed order: slot counter, status,
	// then both bank-status words.
	for _, tc := range []struct {
		slots int
		want  []uint16
	}{
		{slots: 1, want: []uint16{addrNVMSlots, addrPrgmStatus, addrBank0Status, addrBank1Status}},
		{slots: 16, want: []uint16{addrNVMSlots, addrPrgmStatus, addrBank0Status, addrBank1Status}},
	} {
		t.Run(fmt.Sprintf("slots-%d", tc.slots), func(t *testing.T) {
			bus := newFakeBus()
			dev := newTestDevice(bus)

			cfg := &Config{
				DevID:  [4]byte{0x01, 0x02, 0x03, 0x04},
				DevRev: [4]byte{0, 0, 0, 0x05},
				Slots:  tc.slots,
			}
			err := dev.Program(cfg)
			if err != nil {
				t.Fatalf("could not program device: %+v", err)
			}

			var got []uint16
			for _, w := range bus.words {
				if w.reg == cmdDMAAddr {
					got = append(got, w.v)
				}
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("invalid window sequence:\ngot= %04x\nwant=%04x", got, tc.want)
			}
		})
	}
}

func TestProgramTransportAbort(t *testing.T) {
	errBoom := fmt.Errorf("boom")

	bus := newFakeBus()
	dev := newTestDevice(bus)

	cfg := &Config{
		DevID:  [4]byte{0x01, 0x02, 0x03, 0x04},
		DevRev: [4]byte{0, 0, 0, 0x05},
		Slots:  1,
		Cmds: []Command{
			{Reg: 0xe5, Len: 4, Data: [4]byte{0xaa, 0xbb, 0xcc, 0xdd}},
		},
	}

	// let the identity and capacity reads through, fail the raw
	// transfer carrying the configuration write.
	bus.errWrite = errBoom
	bus.okWrites = 3
	err := dev.Program(cfg)
	if !errors.Is(err, errBoom) {
		t.Fatalf("invalid error: got=%+v, want=%+v", err, errBoom)
	}
	if got, want := OutcomeOf(err), "transport-error"; got != want {
		t.Fatalf("invalid outcome: got=%q, want=%q", got, want)
	}
	// nothing went out past the failed transfer.
	if got, want := len(bus.raws), 3; got != want {
		t.Fatalf("invalid number of raw transfers: got=%d, want=%d", got, want)
	}
}
