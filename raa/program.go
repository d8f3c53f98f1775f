// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raa

import (
	"encoding/binary"
	"fmt"
)

// Program burns cfg into the device NVM: it verifies the device
// identity and free-slot capacity, streams the register writes, waits
// for the programmer to report completion and checks the per-slot
// bank statuses.
//
// Program returns nil only when every stage succeeded. The error
// reports the first failing stage; OutcomeOf maps it to a terminal
// outcome name.
func (dev *Device) Program(cfg *Config) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.program(cfg)
}

func (dev *Device) program(cfg *Config) error {
	err := dev.verifyIdentity(cfg)
	if err != nil {
		return err
	}

	err = dev.checkCapacity(cfg)
	if err != nil {
		return err
	}

	dev.msg.Printf("programming %d command(s) into %d NVM slot(s)", len(cfg.Cmds), cfg.Slots)
	for _, cmd := range cfg.Cmds {
		err = dev.send(cmd)
		if err != nil {
			return err
		}
	}

	err = dev.pollStatus()
	if err != nil {
		return err
	}

	return dev.verifySlots(cfg.Slots)
}

// send issues one configuration register write. 2-byte payloads map
// to standard SMBus write-word transactions, 4-byte ones to the
// extended 32-bit write.
func (dev *Device) send(cmd Command) error {
	switch cmd.Len {
	case 2:
		v := binary.LittleEndian.Uint16(cmd.Data[:2])
		err := dev.bus.WriteWord(dev.addr, cmd.Reg, v)
		if err != nil {
			return &TransportError{Op: "write-word", Cmd: cmd.Reg, Err: err}
		}
		return nil
	case 4:
		return dev.write32(cmd.Reg, cmd.Data)
	default:
		return fmt.Errorf("%w: command 0x%02x has payload length %d", ErrInvalidFormat, cmd.Reg, cmd.Len)
	}
}

// pollStatus waits for the programmer status word to leave the busy
// state within the configured poll budget.
func (dev *Device) pollStatus() error {
	err := dev.selectWindow(addrPrgmStatus)
	if err != nil {
		return err
	}

	var status uint8
	deadline := dev.cfg.now().Add(dev.cfg.timeout)
	for {
		data, err := dev.read32(cmdDMAFix)
		if err != nil {
			return err
		}
		status = data[0]
		if status == 1 || !dev.cfg.now().Before(deadline) {
			break
		}
		dev.cfg.sleep(dev.cfg.period)
	}

	if status != 1 {
		return ErrTimeout
	}
	return nil
}

// verifySlots checks the bank status nibbles of the n freshly
// programmed slots. Slots 0-7 live in bank 0, slots 8-15 in bank 1.
func (dev *Device) verifySlots(n int) error {
	bank0, err := dev.readBank(addrBank0Status)
	if err != nil {
		return err
	}
	bank1, err := dev.readBank(addrBank1Status)
	if err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		bank, j := bank0, i
		if i >= 8 {
			bank, j = bank1, i-8
		}
		status := bank[j/2] >> (4 * uint(j%2)) & 0x0f
		if status != 1 {
			return &SlotError{Slot: i, Status: status}
		}
	}
	return nil
}

func (dev *Device) readBank(addr uint16) ([4]byte, error) {
	err := dev.selectWindow(addr)
	if err != nil {
		return [4]byte{}, err
	}
	return dev.read32(cmdDMAFix)
}
