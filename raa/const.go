// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raa

// PMBus commands of the gen-2 DMPVR extended protocol.
const (
	cmdDeviceID  uint8 = 0xad // IC_DEVICE_ID, 4-byte block
	cmdDeviceRev uint8 = 0xae // IC_DEVICE_REV, 4-byte block

	cmdDMAFix  uint8 = 0xc5 // DMA window read, fixed address
	cmdDMASeq  uint8 = 0xc6 // DMA window read, auto-incrementing address
	cmdDMAAddr uint8 = 0xc7 // DMA window address select
)

// DMA window addresses.
const (
	addrNVMSlots    uint16 = 0x00c2 // free NVM slot counter
	addrPrgmStatus  uint16 = 0x0707 // programmer status
	addrBank0Status uint16 = 0x0709 // NVM bank-0 slot statuses
	addrBank1Status uint16 = 0x070a // NVM bank-1 slot statuses
	addrBlackBox    uint16 = 0xef80 // fault-log ring buffer
)

// Configuration file geometry.
const (
	MaxSlots   = 16  // NVM slot hardware limit
	cfgHeadLen = 290 // header+preamble lines
	cfgSlotLen = 358 // lines per NVM slot block
)

// Black-box geometry: 32 words of 4 bytes, rendered as 8 hex digits
// plus a newline each.
const (
	bbWordSize = 4
	bbNumWords = 32

	// BlackBoxSize is the size of a rendered black-box snapshot.
	BlackBoxSize = bbNumWords * (2*bbWordSize + 1)
)
