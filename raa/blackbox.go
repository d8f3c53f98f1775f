// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raa

import "fmt"

// ReadBlackBox retrieves the fault-log ring buffer of the device and
// renders it as 32 lines of 8 upper-case hex digits, one 32-bit word
// per line. The returned slice is always BlackBoxSize bytes on
// success.
func (dev *Device) ReadBlackBox() ([]byte, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	err := dev.selectWindow(addrBlackBox)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, BlackBoxSize)
	for i := 0; i < bbNumWords; i++ {
		data, err := dev.read32(cmdDMASeq)
		if err != nil {
			return nil, err
		}
		buf = append(buf, fmt.Sprintf("%02X%02X%02X%02X\n", data[0], data[1], data[2], data[3])...)
	}

	return buf, nil
}
