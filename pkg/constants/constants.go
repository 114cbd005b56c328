// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package constants holds process-wide constants.
package constants

import "time"

const (
	// SectorSize is the logical block size used for every table and image.
	SectorSize = 512

	// DefaultPartitionAlignment is the alignment of every partition but the first one.
	DefaultPartitionAlignment = 1024 * 1024

	// FirstPartitionAlignment is the alignment of the first planned partition.
	//
	// Image-backed partition sizes are rounded up to this value as well.
	FirstPartitionAlignment = 8 * 1024 * 1024

	// PreBootloaderAlignment is the alignment of the Rockchip idbloader (64 sectors).
	PreBootloaderAlignment = 64 * SectorSize

	// PreBootloaderPartitionName is the name of the idbloader partition.
	PreBootloaderPartitionName = "idbloader"

	// TrailingPartitionName is the name of the partition which consumes the free space.
	TrailingPartitionName = "userdata"

	// PartitionClearSize is the number of bytes zeroed at the start of every partition.
	PartitionClearSize = 1024

	// ZeroChunkSize is the size of the buffer used to zero-fill partitions.
	ZeroChunkSize = 32 * 1024

	// PartitionDeviceRetries is the number of times a partition device node is re-checked.
	PartitionDeviceRetries = 20

	// PartitionDeviceRetryInterval is the delay between partition device node checks.
	PartitionDeviceRetryInterval = 250 * time.Millisecond

	// PartUUIDDirectory is where udev links partitions by PARTUUID.
	PartUUIDDirectory = "/dev/disk/by-partuuid"

	// FilesystemToolPrefix is the prefix of filesystem creation tools (mkfs.<kind>).
	FilesystemToolPrefix = "mkfs"

	// RescanTool asks the kernel to re-read the partition table.
	RescanTool = "partprobe"
)
