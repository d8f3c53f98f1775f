// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raa

// read40 issues the non-standard 40-bit read of cmd: a 1-byte command
// write followed by a 5-byte read. Byte 0 of the result is the block
// length reported by the device.
func (dev *Device) read40(cmd uint8) ([5]byte, error) {
	var buf [5]byte

	n, err := dev.bus.Write([]byte{cmd})
	switch {
	case err != nil:
		return buf, &TransportError{Op: "read40", Cmd: cmd, Err: err}
	case n != 1:
		return buf, &TransportError{Op: "read40", Cmd: cmd, Err: errShortWrite(n, 1)}
	}

	n, err = dev.bus.Read(buf[:])
	switch {
	case err != nil:
		return buf, &TransportError{Op: "read40", Cmd: cmd, Err: err}
	case n != len(buf):
		return buf, &TransportError{Op: "read40", Cmd: cmd, Err: errShortRead(n, len(buf))}
	}

	return buf, nil
}

// read32 issues the non-standard 32-bit read of cmd: a 1-byte command
// write followed by a 4-byte read. The result is little-endian device
// data.
func (dev *Device) read32(cmd uint8) ([4]byte, error) {
	var buf [4]byte

	n, err := dev.bus.Write([]byte{cmd})
	switch {
	case err != nil:
		return buf, &TransportError{Op: "read32", Cmd: cmd, Err: err}
	case n != 1:
		return buf, &TransportError{Op: "read32", Cmd: cmd, Err: errShortWrite(n, 1)}
	}

	n, err = dev.bus.Read(buf[:])
	switch {
	case err != nil:
		return buf, &TransportError{Op: "read32", Cmd: cmd, Err: err}
	case n != len(buf):
		return buf, &TransportError{Op: "read32", Cmd: cmd, Err: errShortRead(n, len(buf))}
	}

	return buf, nil
}

// write32 issues the non-standard 32-bit write of cmd: a single 5-byte
// transfer carrying the command code and 4 payload bytes.
func (dev *Device) write32(cmd uint8, data [4]byte) error {
	buf := [5]byte{cmd, data[0], data[1], data[2], data[3]}

	n, err := dev.bus.Write(buf[:])
	switch {
	case err != nil:
		return &TransportError{Op: "write32", Cmd: cmd, Err: err}
	case n != len(buf):
		return &TransportError{Op: "write32", Cmd: cmd, Err: errShortWrite(n, len(buf))}
	}

	return nil
}
