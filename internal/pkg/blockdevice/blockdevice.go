/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

// Package blockdevice opens flash destinations: raw block devices and image files.
package blockdevice

import (
	"context"
	"io"
	"io/fs"
	"math"
	"os"
	"time"

	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/diskfs/go-diskfs/util"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/siderolabs/go-blockdevice/v2/block"
	"golang.org/x/sys/unix"

	"github.com/siderolabs/gptflash/pkg/blockdevice/lba"
)

var (
	// ErrSizeRequired is returned when an image file is opened without a size.
	ErrSizeRequired = errors.New("size must be set when the destination is not a block device")

	// ErrSectorSize is returned when the destination uses other logical sectors than requested.
	ErrSectorSize = errors.New("unsupported logical sector size")
)

const lockTimeout = time.Minute

// Destination is a flash target opened for writing.
type Destination struct {
	path        string
	size        uint64
	blockDevice bool

	f  *os.File
	bd *block.Device
}

// IsBlockDevice reports whether path is a block device. Missing paths are not.
func IsBlockDevice(path string) (bool, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, errors.Wrapf(err, "stat %s", path)
	}

	return st.Mode()&os.ModeDevice != 0 && st.Mode()&os.ModeCharDevice == 0, nil
}

// Open opens the destination for the table build.
//
// Block devices keep their capacity and are exclusively locked until Close,
// size is ignored for them. Image files are created or truncated and grown
// sparsely to size. Image files have 512 byte sectors, the logical sector
// size of either must equal sectorSize.
func Open(ctx context.Context, path string, size, sectorSize uint64) (*Destination, error) {
	isBlock, err := IsBlockDevice(path)
	if err != nil {
		return nil, err
	}

	if !isBlock {
		if size == 0 {
			return nil, errors.WithMessage(ErrSizeRequired, path)
		}

		if err = CreateSparse(path, size); err != nil {
			return nil, err
		}

		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", path)
		}

		d := &Destination{path: path, size: size, f: f}

		if err = d.checkSectorSize(sectorSize); err != nil {
			d.Close() //nolint:errcheck

			return nil, err
		}

		return d, nil
	}

	bd, err := block.NewFromPath(path, block.OpenForWrite())
	if err != nil {
		return nil, errors.Wrapf(err, "open block device %s", path)
	}

	if err = bd.RetryLockWithTimeout(ctx, true, lockTimeout); err != nil {
		bd.Close() //nolint:errcheck

		return nil, errors.Wrapf(err, "lock block device %s", path)
	}

	d := &Destination{path: path, blockDevice: true, f: bd.File(), bd: bd}

	if d.size, err = bd.GetSize(); err != nil {
		d.Close() //nolint:errcheck

		return nil, errors.Wrapf(err, "size of block device %s", path)
	}

	if err = d.checkSectorSize(sectorSize); err != nil {
		d.Close() //nolint:errcheck

		return nil, err
	}

	return d, nil
}

func (d *Destination) checkSectorSize(expected uint64) error {
	addr, err := lba.New(d.f)
	if err != nil {
		return errors.Wrapf(err, "sector size of %s", d.path)
	}

	if addr.LogicalBlockSize != expected {
		return errors.Wrapf(ErrSectorSize, "%s has %d byte sectors, expected %d", d.path, addr.LogicalBlockSize, expected)
	}

	return nil
}

// Path returns the destination path.
func (d *Destination) Path() string {
	return d.path
}

// Size returns the capacity in bytes.
func (d *Destination) Size() uint64 {
	return d.size
}

// BlockDevice reports whether the destination is a physical block device.
func (d *Destination) BlockDevice() bool {
	return d.blockDevice
}

// File returns the underlying file.
func (d *Destination) File() *os.File {
	return d.f
}

// Wipe zeroes the first length bytes of the destination, capped at its size,
// and returns the wipe method used.
//
// Block devices are wiped by the kernel (discard or zero-out where
// supported), image files are zeroed in chunkSize writes.
func (d *Destination) Wipe(length uint64, chunkSize int) (string, error) {
	length = min(length, d.size)

	if d.bd != nil {
		method, err := d.bd.WipeRange(0, length)
		if err != nil {
			return "", errors.Wrapf(err, "wipe %d bytes of %s", length, d.path)
		}

		return method, nil
	}

	if err := Zero(d.f, 0, length, chunkSize); err != nil {
		return "", err
	}

	return "zeroes", nil
}

// Close flushes and closes the destination, releasing the lock.
func (d *Destination) Close() error {
	var result *multierror.Error

	if err := d.f.Sync(); err != nil {
		result = multierror.Append(result, errors.Wrapf(err, "sync %s", d.path))
	}

	if d.bd == nil {
		if err := d.f.Close(); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "close %s", d.path))
		}

		return result.ErrorOrNil()
	}

	if err := d.bd.Unlock(); err != nil {
		result = multierror.Append(result, errors.Wrapf(err, "unlock %s", d.path))
	}

	if err := d.bd.Close(); err != nil {
		result = multierror.Append(result, errors.Wrapf(err, "close %s", d.path))
	}

	return result.ErrorOrNil()
}

// OpenSync opens path for synchronous read/write access.
func OpenSync(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	return f, nil
}

// CreateSparse creates or truncates path and extends it to size without allocating blocks.
func CreateSparse(path string, size uint64) error {
	if size > math.MaxInt64 {
		return errors.Errorf("size %d is too large for %s", size, path)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}

	defer f.Close() //nolint:errcheck

	if err = f.Truncate(int64(size)); err != nil {
		return errors.Wrapf(err, "extend %s to %d bytes", path, size)
	}

	return f.Close()
}

// Zero writes length zero bytes at offset using chunks of chunkSize bytes.
func Zero(w io.WriterAt, offset int64, length uint64, chunkSize int) error {
	if chunkSize <= 0 {
		return errors.Errorf("invalid zero chunk size %d", chunkSize)
	}

	buf := make([]byte, chunkSize)

	for length > 0 {
		n := uint64(len(buf))
		if length < n {
			n = length
		}

		if _, err := w.WriteAt(buf[:n], offset); err != nil {
			return errors.Wrapf(err, "zero %d bytes at offset %d", n, offset)
		}

		offset += int64(n)
		length -= n
	}

	return nil
}

// WriteProtectiveMBR overwrites the first sector with an MBR holding a single
// 0xEE entry which covers the disk.
//
// The sector count is capped at 0xFFFFFFFF for disks too large to describe.
func WriteProtectiveMBR(f util.File, capacity, sectorSize uint64) error {
	sectors := capacity/sectorSize - 1
	if sectors > math.MaxUint32 {
		sectors = math.MaxUint32
	}

	if _, err := f.WriteAt(make([]byte, sectorSize), 0); err != nil {
		return errors.Wrap(err, "clear MBR sector")
	}

	table := &mbr.Table{
		LogicalSectorSize:  int(sectorSize),
		PhysicalSectorSize: int(sectorSize),
		Partitions: []*mbr.Partition{
			{
				Type:        mbr.GPTProtective,
				Start:       1,
				Size:        uint32(sectors),
				StartSector: 2,
				EndHead:     0xff,
				EndSector:   0xff,
				EndCylinder: 0xff,
			},
		},
	}

	return errors.Wrap(table.Write(f, int64(capacity)), "write protective MBR")
}
