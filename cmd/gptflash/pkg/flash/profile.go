// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package flash

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/siderolabs/gptflash/internal/pkg/partition"
	"github.com/siderolabs/gptflash/pkg/bytesize"
)

// Profile describes a flash run in YAML.
type Profile struct {
	// Destination is a block device or an image file.
	Destination string `yaml:"destination"`
	// Size of the image file, ignored for block devices.
	Size string `yaml:"size,omitempty"`
	// IDBLoader is the pre-bootloader image.
	IDBLoader string `yaml:"idbloader,omitempty"`

	Partitions []PartitionProfile `yaml:"partitions,omitempty"`
	Format     []FormatProfile    `yaml:"format,omitempty"`
}

// PartitionProfile is a partition with either an image or a size.
type PartitionProfile struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source,omitempty"`
	Size   string `yaml:"size,omitempty"`
}

// FormatProfile is a filesystem to create on a partition.
type FormatProfile struct {
	Name       string `yaml:"name"`
	Filesystem string `yaml:"filesystem"`
}

// LoadProfile reads a profile from path, "-" is stdin.
func LoadProfile(path string) (*Profile, error) {
	if path == "-" {
		return ParseProfile(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close() //nolint:errcheck

	prof, err := ParseProfile(f)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}

	return prof, nil
}

// ParseProfile decodes a profile, rejecting unknown keys.
func ParseProfile(r io.Reader) (*Profile, error) {
	var prof Profile

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(&prof); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: failed to decode profile: %w", partition.ErrArgument, err)
	}

	return &prof, nil
}

// Validate checks the profile shape without touching the filesystem.
func (p *Profile) Validate() error {
	var result *multierror.Error

	for i, part := range p.Partitions {
		switch {
		case part.Name == "":
			result = multierror.Append(result, fmt.Errorf("partitions[%d]: name is required", i))
		case part.Source == "" && part.Size == "":
			result = multierror.Append(result, fmt.Errorf("partition %q: either source or size is required", part.Name))
		case part.Source != "" && part.Size != "":
			result = multierror.Append(result, fmt.Errorf("partition %q: source and size are mutually exclusive", part.Name))
		}
	}

	for i, format := range p.Format {
		if format.Name == "" || format.Filesystem == "" {
			result = multierror.Append(result, fmt.Errorf("format[%d]: name and filesystem are required", i))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", partition.ErrArgument, err)
	}

	return nil
}

// Options resolves the profile into flash options based on cfg.
//
// Image sources are opened to learn their size.
func (p *Profile) Options(cfg partition.Config) (*Options, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	opts := &Options{
		Destination: p.Destination,
		IDBLoader:   p.IDBLoader,
		Config:      cfg,
	}

	if p.Size != "" {
		size, err := bytesize.Parse(p.Size)
		if err != nil {
			return nil, fmt.Errorf("%w: size %q: %w", partition.ErrArgument, p.Size, err)
		}

		opts.Size = size
	}

	for _, part := range p.Partitions {
		if part.Source != "" {
			req, err := partition.NewFileRequest(part.Name, part.Source)
			if err != nil {
				return nil, err
			}

			opts.Partitions = append(opts.Partitions, req)

			continue
		}

		req, err := partition.NewBlankRequest(part.Name, part.Size)
		if err != nil {
			return nil, err
		}

		opts.BlankPartitions = append(opts.BlankPartitions, req)
	}

	for _, format := range p.Format {
		opts.Format = append(opts.Format, partition.FormatRequest{
			Partition:  format.Name,
			Filesystem: format.Filesystem,
		})
	}

	return opts, nil
}
