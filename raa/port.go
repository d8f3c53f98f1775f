// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raa

// Port is the diagnostic surface of a Device: a byte-blob programming
// endpoint and a fault-log dump endpoint, shaped for file-like
// consumers (debugfs bridges, HTTP handlers, control servers).
type Port struct {
	dev *Device
}

// NewPort wraps dev in a Port.
func NewPort(dev *Device) *Port {
	return &Port{dev: dev}
}

// Program parses blob as a configuration file and burns it into the
// device. On success it reports the full blob length consumed.
// Parsing happens before any bus traffic: a malformed blob leaves the
// device untouched.
func (p *Port) Program(blob []byte) (int, error) {
	cfg, err := ParseConfig(blob)
	if err != nil {
		return 0, err
	}

	err = p.dev.Program(cfg)
	if err != nil {
		return 0, err
	}
	return len(blob), nil
}

// Dump retrieves a rendered fault-log snapshot from the device.
func (p *Port) Dump() ([]byte, error) {
	return p.dev.ReadBlackBox()
}
