// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/ryanuber/columnize"
	"github.com/siderolabs/go-blockdevice/v2/blkid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/siderolabs/gptflash/internal/pkg/blockdevice"
	"github.com/siderolabs/gptflash/internal/pkg/partition"
	"github.com/siderolabs/gptflash/pkg/blockdevice/table/gpt"
	"github.com/siderolabs/gptflash/pkg/constants"
)

// inspectCmd represents the inspect command.
var inspectCmd = &cobra.Command{
	Use:   "inspect <destination>",
	Short: "Print the partition table of a flashed device or image",
	Long:  ``,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		defer logger.Sync() //nolint:errcheck

		return inspect(cmd.OutOrStdout(), args[0], logger)
	},
}

func inspect(w io.Writer, path string, logger *zap.Logger) error {
	isBlock, err := blockdevice.IsBlockDevice(path)
	if err != nil {
		return err
	}

	if isBlock {
		info, err := blkid.ProbePath(path, blkid.WithProbeLogger(logger))
		if err != nil {
			logger.Warn("failed to probe device", zap.String("device", path), zap.Error(err))
		} else if info.Name != "" {
			fmt.Fprintf(w, "probed %s table on %s (%s)\n", info.Name, path, humanize.IBytes(info.Size))
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close() //nolint:errcheck

	pt, err := gpt.Read(f)
	if err != nil {
		return fmt.Errorf("%w: reading partition table of %s: %w", partition.ErrIO, path, err)
	}

	fmt.Fprintln(w, columnize.SimpleFormat(tableLines(pt)))

	return nil
}

func tableLines(pt *gpt.GPT) []string {
	lines := []string{"NUMBER | NAME | TYPE | START | END | SIZE | PARTUUID"}

	for _, p := range pt.Partitions() {
		typ := p.Type.String()
		if t, ok := partition.TypeForGUID(typ); ok {
			typ = t.String()
		}

		lines = append(lines, fmt.Sprintf("%d | %s | %s | %d | %d | %s | %s",
			p.Number, p.Name, typ, p.FirstLBA, p.LastLBA, humanize.IBytes(p.Length()*constants.SectorSize), p.PartUUID()))
	}

	return lines
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
