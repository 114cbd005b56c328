// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package flash

import (
	"github.com/siderolabs/gptflash/internal/pkg/partition"
)

// Overrides are command line values applied on top of a profile.
//
// Empty scalars keep the profile value, requests are appended.
type Overrides struct {
	Destination string
	IDBLoader   string
	Size        *uint64

	Partitions      []string
	BlankPartitions []string
	Format          []string
}

// Apply parses the overrides into opts.
func (o Overrides) Apply(opts *Options) error {
	if o.Destination != "" {
		opts.Destination = o.Destination
	}

	if o.IDBLoader != "" {
		opts.IDBLoader = o.IDBLoader
	}

	if o.Size != nil {
		opts.Size = *o.Size
	}

	for _, arg := range o.Partitions {
		req, err := partition.ParseRequest(arg)
		if err != nil {
			return err
		}

		opts.Partitions = append(opts.Partitions, req)
	}

	for _, arg := range o.BlankPartitions {
		req, err := partition.ParseBlankRequest(arg)
		if err != nil {
			return err
		}

		opts.BlankPartitions = append(opts.BlankPartitions, req)
	}

	for _, arg := range o.Format {
		req, err := partition.ParseFormatRequest(arg)
		if err != nil {
			return err
		}

		opts.Format = append(opts.Format, req)
	}

	return nil
}
