// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package partition

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/siderolabs/gptflash/internal/pkg/blockdevice"
)

// WriteResult accounts for the bytes written into a partition.
type WriteResult struct {
	Name string

	// Copied is the number of image bytes, Padded the number of zero bytes after them.
	Copied uint64
	Padded uint64
}

// WriteImages writes images into the partitions created by BuildTable.
//
// The destination is opened again for synchronous writes. Every partition
// gets its first cfg.ClearBytes zeroed; partitions with an image get it
// copied to their start and the rest of the extent zero-filled.
func WriteImages(cfg Config, path string, created []CreatedPartition, logger *zap.Logger) (results []WriteResult, err error) {
	f, err := blockdevice.OpenSync(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: closing %s: %w", ErrIO, path, closeErr)
		}
	}()

	for _, c := range created {
		result, err := writeImage(cfg, f, c, logger)
		if err != nil {
			return nil, fmt.Errorf("%w: partition %q on %s: %w", ErrIO, c.Name, path, err)
		}

		results = append(results, result)
	}

	return results, nil
}

func writeImage(cfg Config, f *os.File, c CreatedPartition, logger *zap.Logger) (result WriteResult, err error) {
	result.Name = c.Name

	offset := int64(c.Offset(cfg.SectorSize))
	length := c.Length(cfg.SectorSize)

	if err = blockdevice.Zero(f, offset, min(cfg.ClearBytes, length), cfg.ZeroChunkSize); err != nil {
		return result, err
	}

	if c.Entry == nil || c.Source == nil {
		logger.Debug("cleared partition", zap.String("name", c.Name))

		return result, nil
	}

	logger.Info("writing image",
		zap.String("name", c.Name),
		zap.String("source", c.Source.Path()),
		zap.String("size", humanize.IBytes(c.Source.Size())),
	)

	r, err := c.Source.Reader()
	if err != nil {
		return result, err
	}

	defer func() {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", c.Source.Path(), closeErr)
		}
	}()

	if _, err = f.Seek(offset, io.SeekStart); err != nil {
		return result, fmt.Errorf("seek to %d: %w", offset, err)
	}

	copied, err := io.CopyN(f, r, int64(length))
	if err != nil && !errors.Is(err, io.EOF) {
		return result, fmt.Errorf("copy %s: %w", c.Source.Path(), err)
	}

	result.Copied = uint64(copied)

	if result.Copied == length {
		if n, _ := io.ReadFull(r, make([]byte, 1)); n > 0 {
			return result, fmt.Errorf("image %s is larger than the partition (%s)", c.Source.Path(), humanize.IBytes(length))
		}
	}

	result.Padded = length - result.Copied

	if err = blockdevice.Zero(f, offset+copied, result.Padded, cfg.ZeroChunkSize); err != nil {
		return result, err
	}

	logger.Debug("image written",
		zap.String("name", c.Name),
		zap.Uint64("copied", result.Copied),
		zap.Uint64("padded", result.Padded),
	)

	return result, nil
}
