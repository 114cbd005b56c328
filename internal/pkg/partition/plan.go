// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package partition

import (
	"fmt"
	"slices"

	"github.com/siderolabs/gen/xslices"

	"github.com/siderolabs/gptflash/internal/pkg/source"
	"github.com/siderolabs/gptflash/pkg/alignment"
)

// PlanEntry is a request sized for the partition table.
type PlanEntry struct {
	Name   string
	Source *source.Source
	Size   uint64
	Type   Type
}

// Plan turns requests into the commit order handed to BuildTable.
//
// Image sizes are rounded up to cfg.FirstAlignment whatever their final
// position, blank sizes are kept as given. File-backed entries come before
// blank ones, then bootloader entries are moved to the front; both moves
// keep relative order.
func Plan(cfg Config, files, blanks []Request) ([]PlanEntry, error) {
	entries := make([]PlanEntry, 0, len(files)+len(blanks))

	for _, req := range files {
		if req.Blank() {
			return nil, fmt.Errorf("%w: partition %q has no image", ErrArgument, req.Name)
		}

		size, err := alignment.AlignUp(req.Size, cfg.FirstAlignment)
		if err != nil {
			return nil, fmt.Errorf("%w: partition %q: %w", ErrSizeOverflow, req.Name, err)
		}

		entries = append(entries, PlanEntry{
			Name:   req.Name,
			Source: req.Source,
			Size:   size,
			Type:   TypeFor(req.Name),
		})
	}

	for _, req := range blanks {
		if !req.Blank() {
			return nil, fmt.Errorf("%w: blank partition %q has an image", ErrArgument, req.Name)
		}

		entries = append(entries, PlanEntry{
			Name: req.Name,
			Size: req.Size,
			Type: TypeFor(req.Name),
		})
	}

	isBootloader := func(e PlanEntry) bool { return e.Type == TypeBootloader }

	return slices.Concat(
		xslices.Filter(entries, isBootloader),
		xslices.Filter(entries, func(e PlanEntry) bool { return !isBootloader(e) }),
	), nil
}

// HasData reports whether any entry is classified as Android data.
func HasData(entries []PlanEntry) bool {
	return slices.ContainsFunc(entries, func(e PlanEntry) bool { return e.Type == TypeData })
}
