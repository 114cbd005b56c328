// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package cmd implements the gptflash commands.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/siderolabs/gptflash/cmd/gptflash/pkg/flash"
	"github.com/siderolabs/gptflash/internal/pkg/partition"
	"github.com/siderolabs/gptflash/pkg/bytesize"
	"github.com/siderolabs/gptflash/pkg/cli"
	"github.com/siderolabs/gptflash/pkg/logging"
)

var cmdFlags struct {
	Partitions       []string
	BlankPartitions  []string
	FormatPartitions []string
	Destination      string
	Size             *bytesize.ByteSize
	IDBLoader        string
	Profile          string
	Debug            bool
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "gptflash",
	Short:         "Lay out a GUID partition table for Rockchip boards and flash Android images into it.",
	Long:          ``,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.WithContext(context.Background(), func(ctx context.Context) error {
			logger := newLogger()

			defer logger.Sync() //nolint:errcheck

			opts, err := buildOptions(cmd)
			if err != nil {
				return err
			}

			flasher, err := flash.New(opts, logger)
			if err != nil {
				return err
			}

			return flasher.Run(ctx)
		})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	level := zapcore.InfoLevel
	if cmdFlags.Debug {
		level = zapcore.DebugLevel
	}

	return logging.ZapLogger(
		logging.NewLogDestination(os.Stderr, level, logging.WithoutTimestamp(), logging.WithColoredLevels()),
	)
}

func buildOptions(cmd *cobra.Command) (*flash.Options, error) {
	prof := &flash.Profile{}

	if cmdFlags.Profile != "" {
		var err error

		if prof, err = flash.LoadProfile(cmdFlags.Profile); err != nil {
			return nil, err
		}
	}

	opts, err := prof.Options(partition.DefaultConfig())
	if err != nil {
		return nil, err
	}

	overrides := flash.Overrides{
		Destination:     cmdFlags.Destination,
		IDBLoader:       cmdFlags.IDBLoader,
		Partitions:      cmdFlags.Partitions,
		BlankPartitions: cmdFlags.BlankPartitions,
		Format:          cmdFlags.FormatPartitions,
	}

	if cmd.Flags().Changed("size") {
		size := cmdFlags.Size.Bytes()
		overrides.Size = &size
	}

	if err = overrides.Apply(opts); err != nil {
		return nil, err
	}

	return opts, nil
}

func init() {
	cmdFlags.Size = bytesize.WithDefaultUnit("b")

	rootCmd.Flags().StringArrayVarP(&cmdFlags.Partitions, "partition", "p", nil, "Partition to flash from an image, as name:path (repeatable)")
	rootCmd.Flags().StringArrayVarP(&cmdFlags.BlankPartitions, "blank-partition", "b", nil, "Empty partition, as name:size (repeatable, e.g. misc:4MiB)")
	rootCmd.Flags().StringArrayVarP(&cmdFlags.FormatPartitions, "format-partition", "f", nil, "Filesystem to create on a partition, as name:filesystem (repeatable, e.g. userdata:ext4)")
	rootCmd.Flags().StringVarP(&cmdFlags.Destination, "destination", "d", "", "Block device or image file to flash")
	rootCmd.Flags().VarP(cmdFlags.Size, "size", "s", "Size of the image file, ignored for block devices (accepts human readable values, e.g. 16GiB)")
	rootCmd.Flags().StringVarP(&cmdFlags.IDBLoader, "idbloader", "i", "", "Rockchip pre-bootloader image to place at sector 64")
	rootCmd.Flags().StringVar(&cmdFlags.Profile, "profile", "", "YAML profile with the flash layout, - for stdin")
	rootCmd.PersistentFlags().BoolVar(&cmdFlags.Debug, "debug", false, "Enable debug logging")
}
