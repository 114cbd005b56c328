// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package bytesize provides a pflag.Value which parses human readable sizes.
package bytesize

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
)

var _ pflag.Value = (*ByteSize)(nil)

// ByteSize is a size literal such as "1MiB", "0.5gb" or "4096".
//
// ByteSize implements pflag.Value.
type ByteSize struct {
	defaultUnit string
	original    string
	value       uint64
}

// New returns a ByteSize which requires an explicit unit.
func New() *ByteSize {
	return &ByteSize{}
}

// WithDefaultUnit returns a ByteSize which appends unit to bare numbers.
func WithDefaultUnit(unit string) *ByteSize {
	return &ByteSize{defaultUnit: unit}
}

// Parse parses a size literal, bare numbers are bytes.
func Parse(s string) (uint64, error) {
	bs := WithDefaultUnit("b")

	if err := bs.Set(s); err != nil {
		return 0, err
	}

	return bs.Bytes(), nil
}

// Set implements pflag.Value.
func (bs *ByteSize) Set(s string) error {
	s = strings.TrimSpace(s)

	if s == "" || s == "0" {
		bs.original = ""
		bs.value = 0

		return nil
	}

	if !hasUnit(s) {
		if bs.defaultUnit == "" {
			return fmt.Errorf("invalid size %q: %w", s, errors.New("no unit specified"))
		}

		s += bs.defaultUnit
	}

	value, err := humanize.ParseBytes(s)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", s, err)
	}

	bs.original = s
	bs.value = value

	return nil
}

// String implements pflag.Value.
func (bs *ByteSize) String() string {
	if bs.original == "" {
		return "0"
	}

	return bs.original
}

// Type implements pflag.Value.
func (bs *ByteSize) Type() string {
	return "bytesize"
}

// Bytes returns the size in bytes.
func (bs *ByteSize) Bytes() uint64 {
	return bs.value
}

// Megabytes returns the size in megabytes.
func (bs *ByteSize) Megabytes() uint64 {
	return bs.value / humanize.MByte
}

// Gigabytes returns the size in gigabytes.
func (bs *ByteSize) Gigabytes() uint64 {
	return bs.value / humanize.GByte
}

// Mebibytetes returns the size in mebibytes.
func (bs *ByteSize) Mebibytetes() uint64 {
	return bs.value / humanize.MiByte
}

// Gibibytes returns the size in gibibytes.
func (bs *ByteSize) Gibibytes() uint64 {
	return bs.value / humanize.GiByte
}

func hasUnit(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) != -1
}
