// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package partition provides a library for working with GPT partitions.
package partition

import (
	"github.com/google/uuid"

	"github.com/siderolabs/gptflash/pkg/blockdevice/lba"
)

// Partition represents a partition entry in a GUID partition table.
type Partition struct {
	Type     uuid.UUID
	ID       uuid.UUID
	FirstLBA uint64
	LastLBA  uint64
	Flags    uint64
	Name     string

	// Number is 1-based, in table order.
	Number int
}

// Length returns the partition's length in LBA.
func (prt *Partition) Length() uint64 {
	return prt.LastLBA - prt.FirstLBA + 1
}

// Range returns the LBA extent of the partition.
func (prt *Partition) Range() lba.Range {
	return lba.Range{Start: prt.FirstLBA, End: prt.LastLBA}
}

// PartUUID returns the lowercase partition GUID as udev exposes it.
func (prt *Partition) PartUUID() string {
	return prt.ID.String()
}
