// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package gpt provides a library for building GUID partition tables.
//
// Encoding is delegated to go-diskfs, this package only places partitions.
package gpt

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf16"

	diskfsgpt "github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/diskfs/go-diskfs/util"
	"github.com/google/uuid"

	"github.com/siderolabs/gptflash/pkg/alignment"
	"github.com/siderolabs/gptflash/pkg/blockdevice/lba"
	"github.com/siderolabs/gptflash/pkg/blockdevice/table/gpt/partition"
)

const (
	entryCount = 128
	entrySize  = 128

	// MaxNameLength is the number of UTF-16 code units a partition name can hold.
	MaxNameLength = 36
)

var (
	// ErrNoSpace is returned when no free extent can hold the partition.
	ErrNoSpace = errors.New("not enough free space")

	// ErrDuplicateName is returned when a partition with the same name already exists.
	ErrDuplicateName = errors.New("duplicate partition name")

	// ErrInvalidPartition is returned for partitions which cannot be encoded.
	ErrInvalidPartition = errors.New("invalid partition")
)

// GPT is an in-memory GUID partition table for a disk of a fixed size.
type GPT struct {
	options *Options
	lba     *lba.LogicalBlockAddresser

	id   uuid.UUID
	size uint64

	usable lba.Range

	partitions []*partition.Partition
}

// New initializes an empty table for a disk of size bytes.
func New(size uint64, setters ...Option) (*GPT, error) {
	opts := NewDefaultOptions(setters...)

	if opts.LogicalBlockSize <= 0 || opts.PhysicalBlockSize <= 0 {
		return nil, fmt.Errorf("invalid block size %d/%d", opts.LogicalBlockSize, opts.PhysicalBlockSize)
	}

	g := &GPT{
		options: opts,
		lba: &lba.LogicalBlockAddresser{
			LogicalBlockSize:  uint64(opts.LogicalBlockSize),
			PhysicalBlockSize: uint64(opts.PhysicalBlockSize),
		},
		id:   uuid.New(),
		size: size,
	}

	entrySectors := g.lba.Blocks(entryCount * entrySize)
	sectors := g.lba.Floor(size)

	// protective MBR, header and entries at the start, entries and header at the end
	if sectors < 2*(entrySectors+1)+2 {
		return nil, fmt.Errorf("disk of %d bytes is too small for a GUID partition table", size)
	}

	g.usable = lba.Range{
		Start: 2 + entrySectors,
		End:   sectors - 2 - entrySectors,
	}

	return g, nil
}

// Read loads the table from f.
func Read(f util.File, setters ...Option) (*GPT, error) {
	opts := NewDefaultOptions(setters...)

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to determine disk size: %w", err)
	}

	g, err := New(uint64(size), setters...)
	if err != nil {
		return nil, err
	}

	table, err := diskfsgpt.Read(f, opts.LogicalBlockSize, opts.PhysicalBlockSize)
	if err != nil {
		return nil, err
	}

	if g.id, err = uuid.Parse(table.GUID); err != nil {
		return nil, fmt.Errorf("invalid disk GUID %q: %w", table.GUID, err)
	}

	for i, p := range table.Partitions {
		typ, err := uuid.Parse(string(p.Type))
		if err != nil {
			return nil, fmt.Errorf("partition %d: invalid type %q: %w", i+1, p.Type, err)
		}

		id, err := uuid.Parse(p.GUID)
		if err != nil {
			return nil, fmt.Errorf("partition %d: invalid GUID %q: %w", i+1, p.GUID, err)
		}

		g.partitions = append(g.partitions, &partition.Partition{
			Type:     typ,
			ID:       id,
			FirstLBA: p.Start,
			LastLBA:  p.End,
			Flags:    p.Attributes,
			Name:     p.Name,
			Number:   i + 1,
		})
	}

	return g, nil
}

// ID returns the disk GUID.
func (g *GPT) ID() uuid.UUID {
	return g.id
}

// Size returns the disk size in bytes.
func (g *GPT) Size() uint64 {
	return g.size
}

// Usable returns the range of LBAs partitions may occupy.
func (g *GPT) Usable() lba.Range {
	return g.usable
}

// Clear drops all partitions.
func (g *GPT) Clear() {
	g.partitions = nil
}

// Partitions returns the partitions in table order.
func (g *GPT) Partitions() []*partition.Partition {
	return g.partitions
}

// FindByName returns the first partition with the given name.
func (g *GPT) FindByName(name string) *partition.Partition {
	for _, p := range g.partitions {
		if p.Name == name {
			return p
		}
	}

	return nil
}

// FreeExtents returns unallocated LBA ranges in disk order.
func (g *GPT) FreeExtents() []lba.Range {
	sorted := slices.Clone(g.partitions)

	slices.SortFunc(sorted, func(a, b *partition.Partition) int {
		switch {
		case a.FirstLBA < b.FirstLBA:
			return -1
		case a.FirstLBA > b.FirstLBA:
			return 1
		default:
			return 0
		}
	})

	var (
		free   []lba.Range
		cursor = g.usable.Start
	)

	for _, p := range sorted {
		if p.FirstLBA > cursor {
			free = append(free, lba.Range{Start: cursor, End: p.FirstLBA - 1})
		}

		cursor = max(cursor, p.LastLBA+1)
	}

	if cursor <= g.usable.End {
		free = append(free, lba.Range{Start: cursor, End: g.usable.End})
	}

	return free
}

// LargestFreeExtent returns the first of the largest unallocated ranges.
func (g *GPT) LargestFreeExtent() (lba.Range, bool) {
	var (
		largest lba.Range
		found   bool
	)

	for _, ext := range g.FreeExtents() {
		if !found || ext.Length() > largest.Length() {
			largest = ext
			found = true
		}
	}

	return largest, found
}

// Add places a partition of size bytes into the first free extent which can
// hold it at the requested alignment.
//
// Sizes are rounded up to whole blocks. With MaximumSize set the partition
// takes the rest of the first extent from its aligned start.
func (g *GPT) Add(size uint64, setters ...partition.Option) (*partition.Partition, error) {
	return g.place(g.FreeExtents(), size, setters...)
}

// AddInExtent is like Add, but only considers the free extent ext.
func (g *GPT) AddInExtent(ext lba.Range, size uint64, setters ...partition.Option) (*partition.Partition, error) {
	if !slices.Contains(g.FreeExtents(), ext) {
		return nil, fmt.Errorf("%w: LBA %d-%d is not a free extent", ErrNoSpace, ext.Start, ext.End)
	}

	return g.place([]lba.Range{ext}, size, setters...)
}

func (g *GPT) place(extents []lba.Range, size uint64, setters ...partition.Option) (*partition.Partition, error) {
	opts := partition.NewDefaultOptions(setters...)

	if err := g.validate(size, opts); err != nil {
		return nil, err
	}

	align := uint64(1)

	if opts.Alignment != 0 {
		if opts.Alignment%g.lba.LogicalBlockSize != 0 {
			return nil, fmt.Errorf("%w: alignment %d is not a multiple of the block size %d", ErrInvalidPartition, opts.Alignment, g.lba.LogicalBlockSize)
		}

		align = opts.Alignment / g.lba.LogicalBlockSize
	}

	blocks := g.lba.Blocks(size)

	for _, ext := range extents {
		start, err := alignment.AlignUp(ext.Start, align)
		if err != nil {
			return nil, err
		}

		if start > ext.End {
			continue
		}

		available := ext.End - start + 1

		if opts.MaximumSize {
			blocks = available
		} else if blocks > available {
			continue
		}

		id := opts.ID
		if id == uuid.Nil {
			id = uuid.New()
		}

		p := &partition.Partition{
			Type:     opts.Type,
			ID:       id,
			FirstLBA: start,
			LastLBA:  start + blocks - 1,
			Flags:    opts.Flags,
			Name:     opts.Name,
			Number:   len(g.partitions) + 1,
		}

		g.partitions = append(g.partitions, p)

		return p, nil
	}

	return nil, fmt.Errorf("%w for %d bytes at %d byte alignment", ErrNoSpace, size, align*g.lba.LogicalBlockSize)
}

func (g *GPT) validate(size uint64, opts *partition.Options) error {
	if opts.Type == uuid.Nil {
		return fmt.Errorf("%w: missing partition type", ErrInvalidPartition)
	}

	if size == 0 && !opts.MaximumSize {
		return fmt.Errorf("%w: partition size must be positive", ErrInvalidPartition)
	}

	if n := len(utf16.Encode([]rune(opts.Name))); n > MaxNameLength {
		return fmt.Errorf("%w: name %q has %d UTF-16 code units, maximum is %d", ErrInvalidPartition, opts.Name, n, MaxNameLength)
	}

	if opts.Name != "" && g.FindByName(opts.Name) != nil {
		return fmt.Errorf("%w %q", ErrDuplicateName, opts.Name)
	}

	return nil
}

// Write encodes the primary and backup tables into f.
func (g *GPT) Write(f util.File) error {
	table := &diskfsgpt.Table{
		LogicalSectorSize:  g.options.LogicalBlockSize,
		PhysicalSectorSize: g.options.PhysicalBlockSize,
		GUID:               g.id.String(),
		ProtectiveMBR:      g.options.ProtectiveMBR,
	}

	for _, p := range g.partitions {
		table.Partitions = append(table.Partitions, &diskfsgpt.Partition{
			Start:      p.FirstLBA,
			End:        p.LastLBA,
			Size:       g.lba.Bytes(p.Range()),
			Type:       diskfsgpt.Type(strings.ToUpper(p.Type.String())),
			Name:       p.Name,
			GUID:       p.ID.String(),
			Attributes: p.Flags,
		})
	}

	if err := table.Write(f, int64(g.size)); err != nil {
		return fmt.Errorf("failed to write GUID partition table: %w", err)
	}

	return nil
}
