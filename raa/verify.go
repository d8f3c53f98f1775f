// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raa

// verifyIdentity checks that the live device matches the identity
// recorded in cfg. Configuration files are generated for one exact IC
// revision: any id or revision byte difference rejects the file.
func (dev *Device) verifyIdentity(cfg *Config) error {
	ident, err := dev.identity()
	if err != nil {
		return err
	}

	if ident.ID != cfg.DevID || ident.Rev != cfg.DevRev[3] {
		return &IdentityError{
			CfgID:  cfg.DevID,
			CfgRev: cfg.DevRev[3],
			DevID:  ident.ID,
			DevRev: ident.Rev,
		}
	}
	return nil
}

// checkCapacity checks that the device has enough free NVM slots to
// hold cfg.
func (dev *Device) checkCapacity(cfg *Config) error {
	free, err := dev.freeSlots()
	if err != nil {
		return err
	}

	if free < cfg.Slots {
		return &CapacityError{Want: cfg.Slots, Free: free}
	}
	return nil
}
