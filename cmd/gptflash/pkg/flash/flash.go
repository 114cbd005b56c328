// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package flash runs the table, image and format phases against a destination.
package flash

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/siderolabs/gptflash/internal/pkg/partition"
	"github.com/siderolabs/gptflash/internal/pkg/source"
	"github.com/siderolabs/gptflash/pkg/logging"
)

// Options describes a flash run.
type Options struct {
	Destination string
	Size        uint64
	IDBLoader   string

	Partitions      []partition.Request
	BlankPartitions []partition.Request
	Format          []partition.FormatRequest

	Config partition.Config
}

// Flasher provisions a destination.
type Flasher struct {
	options   *Options
	logger    *zap.Logger
	formatter *partition.Formatter
}

// New initializes a Flasher.
func New(opts *Options, logger *zap.Logger) (*Flasher, error) {
	if opts.Destination == "" {
		return nil, fmt.Errorf("%w: destination is required", partition.ErrArgument)
	}

	return &Flasher{
		options:   opts,
		logger:    logger,
		formatter: partition.NewFormatter(opts.Config, logger.With(logging.Component("format"))),
	}, nil
}

// Formatter returns the formatter of the last phase.
func (f *Flasher) Formatter() *partition.Formatter {
	return f.formatter
}

// Run flashes the partitions, then formats the requested ones.
//
// With neither partitions nor an idbloader the flash phases are skipped.
func (f *Flasher) Run(ctx context.Context) error {
	if len(f.options.Partitions) == 0 && len(f.options.BlankPartitions) == 0 && f.options.IDBLoader == "" {
		f.logger.Warn("no partitions specified, nothing to flash, skipping")
	} else {
		results, err := f.Flash(ctx)
		if err != nil {
			return err
		}

		var written uint64

		for _, result := range results {
			written += result.Copied + result.Padded
		}

		f.logger.Info("flash complete",
			zap.String("destination", f.options.Destination),
			zap.String("written", humanize.IBytes(written)),
		)
	}

	return f.formatter.Format(ctx, f.options.Destination, f.options.Format)
}

// Flash builds the table and writes the images.
//
// The two phases use separate handles, images are written to the extents
// returned by the table phase.
func (f *Flasher) Flash(ctx context.Context) ([]partition.WriteResult, error) {
	cfg := f.options.Config

	var idbloader *source.Source

	if f.options.IDBLoader != "" {
		var err error

		idbloader, err = source.Open(f.options.IDBLoader)
		if err != nil {
			return nil, fmt.Errorf("%w: idbloader %q: %w", partition.ErrSourceUnavailable, f.options.IDBLoader, err)
		}
	}

	entries, err := partition.Plan(cfg, f.options.Partitions, f.options.BlankPartitions)
	if err != nil {
		return nil, err
	}

	created, err := partition.BuildTable(ctx, cfg, f.options.Destination, f.options.Size, idbloader, entries, f.logger.With(logging.Component("table")))
	if err != nil {
		return nil, err
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	return partition.WriteImages(cfg, f.options.Destination, created, f.logger.With(logging.Component("image")))
}
