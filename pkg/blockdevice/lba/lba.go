// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package lba provides a library for working with Logical Block Addresses.
package lba

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Range represents an inclusive range of Logical Block Addresses.
type Range struct {
	Start uint64
	End   uint64
}

// Length returns the number of blocks in the range.
func (r Range) Length() uint64 {
	if r.End < r.Start {
		return 0
	}

	return r.End - r.Start + 1
}

// Empty reports whether the range holds no blocks.
func (r Range) Empty() bool {
	return r.End < r.Start
}

// LogicalBlockAddresser represents Logical Block Addressing.
type LogicalBlockAddresser struct {
	PhysicalBlockSize uint64
	LogicalBlockSize  uint64
}

// New initializes and returns a LogicalBlockAddresser.
func New(f *os.File) (lba *LogicalBlockAddresser, err error) {
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat disk error: %w", err)
	}

	var psize uint64
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKPBSZGET, uintptr(unsafe.Pointer(&psize))); errno != 0 {
		if st.Mode().IsRegular() {
			// not a device, assume default block size
			psize = 512
		} else {
			return nil, errors.New("BLKPBSZGET failed")
		}
	}

	var lsize uint64
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKSSZGET, uintptr(unsafe.Pointer(&lsize))); errno != 0 {
		if st.Mode().IsRegular() {
			lsize = 512
		} else {
			return nil, errors.New("BLKSSZGET failed")
		}
	}

	return &LogicalBlockAddresser{
		PhysicalBlockSize: psize,
		LogicalBlockSize:  lsize,
	}, nil
}

// Bytes returns the size of the range in bytes.
func (lba *LogicalBlockAddresser) Bytes(rng Range) uint64 {
	return rng.Length() * lba.LogicalBlockSize
}

// Blocks returns the number of whole blocks needed to hold size bytes.
func (lba *LogicalBlockAddresser) Blocks(size uint64) uint64 {
	return (size + lba.LogicalBlockSize - 1) / lba.LogicalBlockSize
}

// Floor returns the number of whole blocks which fit into size bytes.
func (lba *LogicalBlockAddresser) Floor(size uint64) uint64 {
	return size / lba.LogicalBlockSize
}
