// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package alignment rounds byte offsets and sizes to block boundaries.
package alignment

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned when rounding up would not fit into uint64.
var ErrOverflow = errors.New("alignment overflow")

// AlignUp returns the smallest multiple of align which is >= value.
//
// AlignUp panics if align is zero.
func AlignUp(value, align uint64) (uint64, error) {
	mustBePositive(align)

	if value > math.MaxUint64-align {
		return 0, fmt.Errorf("%w: cannot align %d up to %d", ErrOverflow, value, align)
	}

	rem := value % align
	if rem == 0 {
		return value, nil
	}

	return value + (align - rem), nil
}

// AlignDown returns the largest multiple of align which is <= value.
//
// AlignDown panics if align is zero.
func AlignDown(value, align uint64) uint64 {
	mustBePositive(align)

	return value - value%align
}

// IsAligned reports whether value is a multiple of align.
func IsAligned(value, align uint64) bool {
	mustBePositive(align)

	return value%align == 0
}

func mustBePositive(align uint64) {
	if align == 0 {
		panic("alignment must be positive")
	}
}
