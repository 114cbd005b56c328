// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package partition

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/siderolabs/gptflash/pkg/blockdevice/table/gpt"
	gptpartition "github.com/siderolabs/gptflash/pkg/blockdevice/table/gpt/partition"
	"github.com/siderolabs/gptflash/pkg/conditions"
	"github.com/siderolabs/gptflash/pkg/logging"
	"github.com/siderolabs/gptflash/pkg/makefs"
	"github.com/siderolabs/gptflash/pkg/retry"
)

// Formatter creates filesystems on partitions of an already written table.
type Formatter struct {
	Config Config
	Runner makefs.Runner
	Logger *zap.Logger
}

// NewFormatter returns a Formatter running tools on the host.
func NewFormatter(cfg Config, logger *zap.Logger) *Formatter {
	return &Formatter{
		Config: cfg,
		Runner: makefs.DefaultRunner,
		Logger: logger,
	}
}

type formatTarget struct {
	request FormatRequest
	part    *gptpartition.Partition
}

// Format formats the requested partitions of the table on path, in order.
//
// Every partition name is resolved before the first tool runs. Partitions are
// reached through their PARTUUID links in Config.DeviceDir, which may appear
// some time after the kernel re-reads the table.
func (fm *Formatter) Format(ctx context.Context, path string, requests []FormatRequest) error {
	if len(requests) == 0 {
		return nil
	}

	if runtime.GOOS != "linux" {
		return fmt.Errorf("%w: formatting partitions is not supported on %s", ErrExternalTool, runtime.GOOS)
	}

	if output, err := fm.Runner.Run(ctx, fm.Config.RescanTool); err != nil {
		fm.Logger.Warn("failed to re-read partition table",
			zap.String("tool", fm.Config.RescanTool),
			zap.String("output", output),
			zap.Error(err),
		)
	}

	targets, err := fm.resolve(path, requests)
	if err != nil {
		return err
	}

	for _, target := range targets {
		if err = fm.format(ctx, target); err != nil {
			return err
		}
	}

	return nil
}

func (fm *Formatter) resolve(path string, requests []FormatRequest) ([]formatTarget, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	defer f.Close() //nolint:errcheck

	pt, err := gpt.Read(f,
		gpt.WithLogicalBlockSize(int(fm.Config.SectorSize)),
		gpt.WithPhysicalBlockSize(int(fm.Config.SectorSize)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: reading partition table of %s: %w", ErrIO, path, err)
	}

	targets := make([]formatTarget, 0, len(requests))

	for _, req := range requests {
		part := pt.FindByName(req.Partition)
		if part == nil {
			return nil, fmt.Errorf("%w: could not find partition %s to format as %s", ErrPartitionNotFound, req.Partition, req.Filesystem)
		}

		targets = append(targets, formatTarget{request: req, part: part})
	}

	return targets, nil
}

func (fm *Formatter) format(ctx context.Context, target formatTarget) error {
	device := filepath.Join(fm.Config.DeviceDir, target.part.PartUUID())

	logger := fm.Logger.With(
		zap.String("partition", target.request.Partition),
		zap.String("device", device),
	)

	logger.Debug("waiting for partition device")

	condition := conditions.WaitForFileToExist(device,
		retry.Constant(fm.Config.DeviceRetries, retry.WithUnits(fm.Config.DeviceRetryInterval)),
	)

	if err := condition.Wait(ctx); err != nil {
		if retry.IsTimeout(err) {
			return fmt.Errorf("%w: partition %s did not appear at %s: %w", ErrDeviceTimeout, target.request.Partition, device, err)
		}

		return fmt.Errorf("partition %s: %w", target.request.Partition, err)
	}

	logger.Info("formatting partition", zap.String("filesystem", target.request.Filesystem))

	output, err := makefs.Make(ctx, target.request.Filesystem, device,
		makefs.WithRunner(fm.Runner),
		makefs.WithToolPrefix(fm.Config.FilesystemToolPrefix),
		makefs.WithPrintf(logger.Sugar().Debugf),
	)
	if err != nil {
		return fmt.Errorf("%w: formatting partition %s as %s: %w", ErrExternalTool, target.request.Partition, target.request.Filesystem, err)
	}

	_, err = io.WriteString(logging.NewWriter(logger, zapcore.DebugLevel), output)

	return err
}
