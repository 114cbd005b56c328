// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package partition

import "errors"

// Error classes of a flash run, match with errors.Is.
var (
	// ErrArgument is a malformed request or size literal.
	ErrArgument = errors.New("invalid argument")

	// ErrSourceUnavailable is a missing or unreadable image.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSizeOverflow is a size which cannot be aligned without overflowing.
	ErrSizeOverflow = errors.New("size overflow")

	// ErrTableConstruction is a partition the table could not take.
	ErrTableConstruction = errors.New("partition table construction failed")

	// ErrIO is a failed open, seek, read, write or flush.
	ErrIO = errors.New("I/O error")

	// ErrPartitionNotFound is a format request for a partition missing from the table.
	ErrPartitionNotFound = errors.New("partition not found")

	// ErrDeviceTimeout is a partition device node which never appeared.
	ErrDeviceTimeout = errors.New("device timeout")

	// ErrExternalTool is a failed external tool.
	ErrExternalTool = errors.New("external tool failed")
)
