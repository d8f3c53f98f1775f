// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raa

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is returned when a configuration file fails
	// structural parsing. Nothing has been sent to the device.
	ErrInvalidFormat = errors.New("raa: invalid configuration format")

	// ErrTimeout is returned when the device did not report
	// programming completion within the poll budget.
	ErrTimeout = errors.New("raa: programming-status timeout")
)

// TransportError reports a bus transaction that did not complete as
// expected. The bus may be healthy: callers decide the retry policy.
type TransportError struct {
	Op  string // "read40", "read32", "write32" or "write-word"
	Cmd uint8  // PMBus command code of the failed transaction
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("raa: %s(0x%02x): %v", e.Op, e.Cmd, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IdentityError reports a mismatch between the identity recorded in a
// configuration file and the one reported by the live device.
type IdentityError struct {
	CfgID  [4]byte
	CfgRev byte
	DevID  [4]byte
	DevRev byte
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf(
		"raa: configuration does not match device: cfg-id=%x cfg-rev=%02x dev-id=%x dev-rev=%02x",
		e.CfgID, e.CfgRev, e.DevID, e.DevRev,
	)
}

// CapacityError reports that the device lacks free NVM slots for the
// requested configuration.
type CapacityError struct {
	Want int // slots required by the configuration
	Free int // free slots reported by the device
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("raa: not enough free NVM slots: want=%d free=%d", e.Want, e.Free)
}

// SlotError reports an NVM slot that did not program successfully.
type SlotError struct {
	Slot   int
	Status uint8 // 4-bit bank status code, 1 means programmed-OK
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("raa: NVM slot %d failed to program (status=0x%x)", e.Slot, e.Status)
}

func errShortWrite(got, want int) error {
	return fmt.Errorf("short write: wrote %d bytes, want %d", got, want)
}

func errShortRead(got, want int) error {
	return fmt.Errorf("short read: read %d bytes, want %d", got, want)
}

// OutcomeOf classifies err as one of the terminal programming outcomes.
// A nil err is "success".
func OutcomeOf(err error) string {
	var (
		xferErr  *TransportError
		identErr *IdentityError
		capErr   *CapacityError
		slotErr  *SlotError
	)
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid-format"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.As(err, &identErr):
		return "identity-mismatch"
	case errors.As(err, &capErr):
		return "insufficient-capacity"
	case errors.As(err, &slotErr):
		return "slot-failure"
	case errors.As(err, &xferErr):
		return "transport-error"
	default:
		return "error"
	}
}
