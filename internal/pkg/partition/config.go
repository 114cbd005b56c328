// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package partition

import (
	"time"

	"github.com/siderolabs/gptflash/pkg/constants"
)

// Config holds the layout and timing parameters of a flash run.
type Config struct {
	SectorSize uint64

	DefaultAlignment       uint64
	FirstAlignment         uint64
	PreBootloaderAlignment uint64

	PreBootloaderName string
	TrailingName      string

	ClearBytes    uint64
	ZeroChunkSize int

	DeviceRetries       int
	DeviceRetryInterval time.Duration
	DeviceDir           string

	FilesystemToolPrefix string
	RescanTool           string
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		SectorSize: constants.SectorSize,

		DefaultAlignment:       constants.DefaultPartitionAlignment,
		FirstAlignment:         constants.FirstPartitionAlignment,
		PreBootloaderAlignment: constants.PreBootloaderAlignment,

		PreBootloaderName: constants.PreBootloaderPartitionName,
		TrailingName:      constants.TrailingPartitionName,

		ClearBytes:    constants.PartitionClearSize,
		ZeroChunkSize: constants.ZeroChunkSize,

		DeviceRetries:       constants.PartitionDeviceRetries,
		DeviceRetryInterval: constants.PartitionDeviceRetryInterval,
		DeviceDir:           constants.PartUUIDDirectory,

		FilesystemToolPrefix: constants.FilesystemToolPrefix,
		RescanTool:           constants.RescanTool,
	}
}
