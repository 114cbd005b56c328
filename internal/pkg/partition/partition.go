// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package partition plans, lays out, writes and formats the partitions of a flash target.
package partition

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/siderolabs/gptflash/internal/pkg/blockdevice"
	"github.com/siderolabs/gptflash/internal/pkg/source"
	"github.com/siderolabs/gptflash/pkg/alignment"
	"github.com/siderolabs/gptflash/pkg/blockdevice/table/gpt"
	gptpartition "github.com/siderolabs/gptflash/pkg/blockdevice/table/gpt/partition"
)

// CreatedPartition is a partition committed to the table.
//
// Entry is nil for the trailing partition, Source is set for every partition
// which receives an image.
type CreatedPartition struct {
	Entry  *PlanEntry
	Source *source.Source

	Name     string
	Type     Type
	FirstLBA uint64
	LastLBA  uint64
	PartUUID string
}

// Length returns the partition size in bytes.
func (c CreatedPartition) Length(sectorSize uint64) uint64 {
	return (c.LastLBA - c.FirstLBA + 1) * sectorSize
}

// Offset returns the partition start in bytes.
func (c CreatedPartition) Offset(sectorSize uint64) uint64 {
	return c.FirstLBA * sectorSize
}

// BuildTable writes a protective MBR and a fresh GUID partition table to the
// destination at path and returns the partitions in commit order.
//
// Block devices keep their capacity and size is ignored, image files are
// grown sparsely to size. The destination is closed before returning.
func BuildTable(ctx context.Context, cfg Config, path string, size uint64, idbloader *source.Source, entries []PlanEntry, logger *zap.Logger) (created []CreatedPartition, err error) {
	dest, err := blockdevice.Open(ctx, path, size, cfg.SectorSize)
	if err != nil {
		if errors.Is(err, blockdevice.ErrSizeRequired) || errors.Is(err, blockdevice.ErrSectorSize) {
			return nil, fmt.Errorf("%w: %w", ErrArgument, err)
		}

		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	defer func() {
		if closeErr := dest.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrIO, closeErr)
		}
	}()

	capacity := dest.Size()

	logger.Info("building partition table",
		zap.String("destination", path),
		zap.String("size", humanize.IBytes(capacity)),
		zap.Bool("block_device", dest.BlockDevice()),
	)

	if dest.BlockDevice() {
		// stale tables and filesystem signatures live at the very beginning
		method, err := dest.Wipe(cfg.FirstAlignment, cfg.ZeroChunkSize)
		if err != nil {
			return nil, fmt.Errorf("%w: erasing the beginning of %s: %w", ErrIO, path, err)
		}

		logger.Debug("erased beginning of device", zap.String("method", method), zap.String("size", humanize.IBytes(min(cfg.FirstAlignment, capacity))))
	}

	if err = blockdevice.WriteProtectiveMBR(dest.File(), capacity, cfg.SectorSize); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}

	pt, err := gpt.New(capacity,
		gpt.WithLogicalBlockSize(int(cfg.SectorSize)),
		gpt.WithPhysicalBlockSize(int(cfg.SectorSize)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTableConstruction, path, err)
	}

	pt.Clear()

	b := &builder{cfg: cfg, pt: pt, logger: logger}

	if idbloader != nil {
		loaderSize, err := alignment.AlignUp(idbloader.Size(), cfg.PreBootloaderAlignment)
		if err != nil {
			return nil, fmt.Errorf("%w: partition %q: %w", ErrSizeOverflow, cfg.PreBootloaderName, err)
		}

		c, err := b.add(cfg.PreBootloaderName, TypeBootloader, loaderSize, cfg.PreBootloaderAlignment)
		if err != nil {
			return nil, err
		}

		c.Entry = &PlanEntry{
			Name:   cfg.PreBootloaderName,
			Source: idbloader,
			Size:   loaderSize,
			Type:   TypeBootloader,
		}
		c.Source = idbloader
		created = append(created, c)
	}

	for i := range entries {
		entry := &entries[i]

		align := cfg.DefaultAlignment
		if i == 0 {
			align = cfg.FirstAlignment
		}

		c, err := b.add(entry.Name, entry.Type, entry.Size, align)
		if err != nil {
			return nil, err
		}

		c.Entry = entry
		c.Source = entry.Source
		created = append(created, c)
	}

	if !HasData(entries) {
		c, ok, err := b.addTrailing()
		if err != nil {
			return nil, err
		}

		if ok {
			created = append(created, c)
		}
	}

	if err = pt.Write(dest.File()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}

	logger.Info("partition table written", zap.String("destination", path), zap.Int("partitions", len(created)))

	return created, nil
}

type builder struct {
	cfg    Config
	pt     *gpt.GPT
	logger *zap.Logger
}

func (b *builder) add(name string, typ Type, size, align uint64) (CreatedPartition, error) {
	part, err := b.pt.Add(size,
		gptpartition.WithPartitionName(name),
		gptpartition.WithPartitionType(typ.GUID()),
		gptpartition.WithFlags(FlagsFor(name)),
		gptpartition.WithAlignment(align),
	)
	if err != nil {
		return CreatedPartition{}, fmt.Errorf("%w: adding partition %q of %s: %w", ErrTableConstruction, name, humanize.IBytes(size), err)
	}

	return b.created(name, typ, part), nil
}

func (b *builder) created(name string, typ Type, part *gptpartition.Partition) CreatedPartition {
	b.logger.Debug("partition added",
		zap.String("name", name),
		zap.Stringer("type", typ),
		zap.Uint64("first_lba", part.FirstLBA),
		zap.Uint64("last_lba", part.LastLBA),
		zap.String("size", humanize.IBytes(part.Length()*b.cfg.SectorSize)),
	)

	return CreatedPartition{
		Name:     name,
		Type:     typ,
		FirstLBA: part.FirstLBA,
		LastLBA:  part.LastLBA,
		PartUUID: part.PartUUID(),
	}
}

// addTrailing gives the first of the largest free extents to the trailing
// data partition, from its aligned start to the end of the extent.
func (b *builder) addTrailing() (CreatedPartition, bool, error) {
	extent, ok := b.pt.LargestFreeExtent()
	if !ok || extent.Empty() {
		return CreatedPartition{}, false, nil
	}

	name := b.cfg.TrailingName

	start, err := alignment.AlignUp(extent.Start*b.cfg.SectorSize, b.cfg.DefaultAlignment)
	if err != nil {
		return CreatedPartition{}, false, fmt.Errorf("%w: partition %q: %w", ErrSizeOverflow, name, err)
	}

	end := (extent.End + 1) * b.cfg.SectorSize
	if start >= end {
		b.logger.Debug("no room for trailing partition", zap.String("name", name))

		return CreatedPartition{}, false, nil
	}

	part, err := b.pt.AddInExtent(extent, end-start,
		gptpartition.WithPartitionName(name),
		gptpartition.WithPartitionType(TypeData.GUID()),
		gptpartition.WithFlags(FlagsFor(name)),
		gptpartition.WithAlignment(b.cfg.DefaultAlignment),
		gptpartition.WithMaximumSize(true),
	)
	if err != nil {
		return CreatedPartition{}, false, fmt.Errorf("%w: adding partition %q of %s: %w", ErrTableConstruction, name, humanize.IBytes(end-start), err)
	}

	return b.created(name, TypeData, part), true, nil
}
