// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raa

import (
	"errors"
	"testing"
)

func TestIdentity(t *testing.T) {
	bus := newFakeBus()
	dev := newTestDevice(bus)

	ident, err := dev.Identity()
	if err != nil {
		t.Fatalf("could not read identity: %+v", err)
	}
	if got, want := ident, (Identity{ID: [4]byte{0x01, 0x02, 0x03, 0x04}, Rev: 0x05}); got != want {
		t.Fatalf("invalid identity: got=%+v, want=%+v", got, want)
	}
}

func TestFreeSlots(t *testing.T) {
	bus := newFakeBus()
	bus.free = 3
	dev := newTestDevice(bus)

	free, err := dev.FreeSlots()
	if err != nil {
		t.Fatalf("could not read free slots: %+v", err)
	}
	if got, want := free, 3; got != want {
		t.Fatalf("invalid free slots: got=%d, want=%d", got, want)
	}
	// the counter lives behind the DMA window.
	if got, want := bus.window, addrNVMSlots; got != want {
		t.Fatalf("invalid window: got=0x%04x, want=0x%04x", got, want)
	}
}

func TestVerifyIdentity(t *testing.T) {
	cfg := &Config{
		DevID:  [4]byte{0x01, 0x02, 0x03, 0x04},
		DevRev: [4]byte{0, 0, 0, 0x05},
	}

	for _, tc := range []struct {
		name string
		id   [4]byte
		rev  byte
		ok   bool
	}{
		{
			name: "match",
			id:   [4]byte{0x01, 0x02, 0x03, 0x04},
			rev:  0x05,
			ok:   true,
		},
		{
			name: "newer-revision",
			id:   [4]byte{0x01, 0x02, 0x03, 0x04},
			rev:  0x06,
		},
		{
			name: "wrong-id",
			id:   [4]byte{0x01, 0x02, 0x03, 0x05},
			rev:  0x05,
		},
		{
			name: "older-revision",
			id:   [4]byte{0x01, 0x02, 0x03, 0x04},
			rev:  0x04,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bus := newFakeBus()
			bus.id = tc.id
			bus.rev = tc.rev
			dev := newTestDevice(bus)

			err := dev.verifyIdentity(cfg)
			if tc.ok {
				if err != nil {
					t.Fatalf("could not verify identity: %+v", err)
				}
				return
			}

			var ierr *IdentityError
			if !errors.As(err, &ierr) {
				t.Fatalf("invalid error type: got=%+v", err)
			}
			if got, want := ierr.DevID, tc.id; got != want {
				t.Fatalf("invalid device id: got=%v, want=%v", got, want)
			}
			if got, want := ierr.DevRev, tc.rev; got != want {
				t.Fatalf("invalid device revision: got=0x%02x, want=0x%02x", got, want)
			}
			if got, want := OutcomeOf(err), "identity-mismatch"; got != want {
				t.Fatalf("invalid outcome: got=%q, want=%q", got, want)
			}
		})
	}
}

func TestCheckCapacity(t *testing.T) {
	for _, tc := range []struct {
		name string
		free uint8
		want int
		ok   bool
	}{
		{name: "plenty", free: 16, want: 1, ok: true},
		{name: "exact", free: 2, want: 2, ok: true},
		{name: "full", free: 0, want: 1},
		{name: "short-by-one", free: 1, want: 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bus := newFakeBus()
			bus.free = tc.free
			dev := newTestDevice(bus)

			err := dev.checkCapacity(&Config{Slots: tc.want})
			if tc.ok {
				if err != nil {
					t.Fatalf("could not check capacity: %+v", err)
				}
				return
			}

			var cerr *CapacityError
			if !errors.As(err, &cerr) {
				t.Fatalf("invalid error type: got=%+v", err)
			}
			if got, want := cerr.Free, int(tc.free); got != want {
				t.Fatalf("invalid free slots: got=%d, want=%d", got, want)
			}
			if got, want := OutcomeOf(err), "insufficient-capacity"; got != want {
				t.Fatalf("invalid outcome: got=%q, want=%q", got, want)
			}
		})
	}
}
