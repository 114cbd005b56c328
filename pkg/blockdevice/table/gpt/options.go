// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt

// Options is the functional options struct.
type Options struct {
	ProtectiveMBR     bool
	PhysicalBlockSize int
	LogicalBlockSize  int
}

// Option is the functional option func.
type Option func(*Options)

// WithProtectiveMBR makes Write emit the codec's own protective MBR entry.
//
// The codec truncates the sector count of disks larger than 2 TiB, so callers
// which need the capped value write the MBR themselves.
func WithProtectiveMBR(o bool) Option {
	return func(args *Options) {
		args.ProtectiveMBR = o
	}
}

// WithPhysicalBlockSize sets the physical block size.
func WithPhysicalBlockSize(o int) Option {
	return func(args *Options) {
		args.PhysicalBlockSize = o
	}
}

// WithLogicalBlockSize sets the logical block size.
func WithLogicalBlockSize(o int) Option {
	return func(args *Options) {
		args.LogicalBlockSize = o
	}
}

// NewDefaultOptions initializes a Options struct with default values.
func NewDefaultOptions(setters ...Option) *Options {
	opts := &Options{
		PhysicalBlockSize: 512,
		LogicalBlockSize:  512,
	}

	for _, setter := range setters {
		setter(opts)
	}

	return opts
}
