// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raa

import (
	"bytes"
	"fmt"
)

// column offsets within a configuration line, in hex-digit pairs.
const (
	colLen  = 2 // declared transfer length
	colReg  = 6 // PMBus register code
	colData = 8 // first payload byte
)

// Command is one register write extracted from a configuration file.
type Command struct {
	Reg  uint8   // PMBus register code
	Len  int     // payload length, 2 or 4 bytes
	Data [4]byte // payload, little-endian; Data[Len:] is zero
}

// Config is a parsed regulator configuration file.
type Config struct {
	DevID  [4]byte // device id the file was generated for
	DevRev [4]byte // IC revision; DevRev[3] is the compared byte
	Slots  int     // NVM slots the configuration occupies
	Cmds   []Command
}

// ParseConfig parses a vendor-generated configuration file.
//
// The file is line oriented: two header lines carrying the target
// device id and revision, then one hex-encoded register write per
// line. Lines starting with "49" are CRC sentinels and carry no
// register write. The total line count encodes the number of NVM
// slots the configuration occupies.
//
// ParseConfig touches no hardware: a non-nil error means the file was
// rejected before any bus traffic.
func ParseConfig(raw []byte) (*Config, error) {
	lines := bytes.Split(raw, []byte("\n"))
	for len(lines) > 0 && len(bytes.TrimSpace(lines[len(lines)-1])) == 0 {
		lines = lines[:len(lines)-1]
	}

	total := len(lines)
	if total < cfgHeadLen+cfgSlotLen {
		return nil, fmt.Errorf("%w: %d lines, want at least %d", ErrInvalidFormat, total, cfgHeadLen+cfgSlotLen)
	}
	if (total-cfgHeadLen)%cfgSlotLen != 0 {
		return nil, fmt.Errorf("%w: %d lines does not match a whole number of slots", ErrInvalidFormat, total)
	}
	slots := (total - cfgHeadLen) / cfgSlotLen
	if slots > MaxSlots {
		return nil, fmt.Errorf("%w: %d slots, want 1-%d", ErrInvalidFormat, slots, MaxSlots)
	}

	cfg := &Config{Slots: slots}

	// header lines carry the id and revision in reverse byte order.
	for i := 0; i < 4; i++ {
		v, err := hexByte(lines[0], colData+2*i)
		if err != nil {
			return nil, err
		}
		cfg.DevID[3-i] = v
	}
	for i := 0; i < 4; i++ {
		v, err := hexByte(lines[1], colData+2*i)
		if err != nil {
			return nil, err
		}
		cfg.DevRev[3-i] = v
	}

	// count data lines first so the commands slice is sized once. a
	// line too short to carry a payload terminates the data section.
	ccnt := 0
	data := lines[2:]
	for i, line := range data {
		if len(line) <= colData+2 {
			data = data[:i]
			break
		}
		if !bytes.HasPrefix(line, []byte("49")) {
			ccnt++
		}
	}

	cfg.Cmds = make([]Command, 0, ccnt)
	for _, line := range data {
		if bytes.HasPrefix(line, []byte("49")) {
			continue
		}
		cmd, err := parseCommand(line)
		if err != nil {
			return nil, err
		}
		cfg.Cmds = append(cfg.Cmds, cmd)
	}

	return cfg, nil
}

func parseCommand(line []byte) (Command, error) {
	var cmd Command

	v, err := hexByte(line, colLen)
	if err != nil {
		return cmd, err
	}
	// the declared length counts the address, register and CRC bytes
	// on top of the payload.
	cmd.Len = int(v) - 3
	if cmd.Len != 2 && cmd.Len != 4 {
		return cmd, fmt.Errorf("%w: payload length %d, want 2 or 4", ErrInvalidFormat, cmd.Len)
	}

	cmd.Reg, err = hexByte(line, colReg)
	if err != nil {
		return cmd, err
	}

	for i := 0; i < cmd.Len; i++ {
		cmd.Data[i], err = hexByte(line, colData+2*i)
		if err != nil {
			return cmd, err
		}
	}

	return cmd, nil
}

// hexByte decodes the hex-digit pair at offset off of line.
func hexByte(line []byte, off int) (uint8, error) {
	if off+2 > len(line) {
		return 0, fmt.Errorf("%w: line %q too short", ErrInvalidFormat, line)
	}
	var v uint8
	for _, c := range line[off : off+2] {
		var d uint8
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, fmt.Errorf("%w: invalid hex digit %q in line %q", ErrInvalidFormat, c, line)
		}
		v = v<<4 | d
	}
	return v, nil
}
