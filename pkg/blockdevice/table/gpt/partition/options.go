// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package partition

import (
	"github.com/google/uuid"
)

// LinuxFilesystemData is the type used when none is set.
const LinuxFilesystemData = "0FC63DAF-8483-4772-8E79-3D69D8477DE4"

// Options is the functional options struct.
type Options struct {
	Type        uuid.UUID
	ID          uuid.UUID
	Name        string
	Alignment   uint64
	MaximumSize bool
	Flags       uint64
}

// Option is the functional option func.
type Option func(*Options)

// WithPartitionType sets the partition type.
func WithPartitionType(id string) Option {
	return func(args *Options) {
		// an invalid type leaves uuid.Nil behind, which is rejected on add
		guuid, _ := uuid.Parse(id) //nolint:errcheck
		args.Type = guuid
	}
}

// WithPartitionName sets the partition name.
func WithPartitionName(o string) Option {
	return func(args *Options) {
		args.Name = o
	}
}

// WithPartitionID sets the partition GUID, a random one is generated otherwise.
func WithPartitionID(o uuid.UUID) Option {
	return func(args *Options) {
		args.ID = o
	}
}

// WithAlignment sets the byte boundary the partition has to start on.
func WithAlignment(o uint64) Option {
	return func(args *Options) {
		args.Alignment = o
	}
}

// WithMaximumSize indicates if the partition should be created with the maximum size possible.
//
// The partition then takes the rest of the first free extent it fits into.
func WithMaximumSize(o bool) Option {
	return func(args *Options) {
		args.MaximumSize = o
	}
}

// WithFlags sets the attribute flags.
func WithFlags(o uint64) Option {
	return func(args *Options) {
		args.Flags = o
	}
}

// NewDefaultOptions initializes a Options struct with default values.
func NewDefaultOptions(setters ...Option) *Options {
	opts := &Options{
		Type: uuid.MustParse(LinuxFilesystemData),
	}

	for _, setter := range setters {
		setter(opts)
	}

	return opts
}
