// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package flash_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/siderolabs/gptflash/cmd/gptflash/pkg/flash"
	"github.com/siderolabs/gptflash/internal/pkg/partition"
	"github.com/siderolabs/gptflash/pkg/blockdevice/table/gpt"
	"github.com/siderolabs/gptflash/pkg/makefs"
)

const mib = 1024 * 1024

type recorder struct {
	tools []string
}

func (r *recorder) runner() makefs.Runner {
	return makefs.RunnerFunc(func(_ context.Context, name string, args ...string) (string, error) {
		r.tools = append(r.tools, name)

		return "", nil
	})
}

func testConfig(t *testing.T) partition.Config {
	t.Helper()

	cfg := partition.DefaultConfig()
	cfg.DeviceDir = t.TempDir()
	cfg.DeviceRetries = 1
	cfg.DeviceRetryInterval = time.Millisecond

	return cfg
}

func TestFlash(t *testing.T) {
	dir := t.TempDir()

	loaderImage := bytes.Repeat([]byte{0x3b}, 200*1024)
	bootImage := bytes.Repeat([]byte{0x7f}, 3*mib)

	loader := filepath.Join(dir, "idbloader.img")
	require.NoError(t, os.WriteFile(loader, loaderImage, 0o644))

	bootPath := filepath.Join(dir, "boot.img")
	require.NoError(t, os.WriteFile(bootPath, bootImage, 0o644))

	boot, err := partition.NewFileRequest("boot", bootPath)
	require.NoError(t, err)

	misc, err := partition.NewBlankRequest("misc", "1MiB")
	require.NoError(t, err)

	dest := filepath.Join(dir, "disk.img")

	f, err := flash.New(&flash.Options{
		Destination:     dest,
		Size:            64 * mib,
		IDBLoader:       loader,
		Partitions:      []partition.Request{boot},
		BlankPartitions: []partition.Request{misc},
		Config:          testConfig(t),
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	rec := &recorder{}
	f.Formatter().Runner = rec.runner()

	require.NoError(t, f.Run(context.Background()))

	// no format requests, no tools
	assert.Empty(t, rec.tools)

	disk, err := os.Open(dest)
	require.NoError(t, err)

	defer disk.Close() //nolint:errcheck

	pt, err := gpt.Read(disk)
	require.NoError(t, err)

	names := make([]string, 0, len(pt.Partitions()))
	for _, p := range pt.Partitions() {
		names = append(names, p.Name)
	}

	assert.Equal(t, []string{"idbloader", "boot", "misc", "userdata"}, names)

	buf := make([]byte, len(loaderImage))
	_, err = disk.ReadAt(buf, 64*512)
	require.NoError(t, err)
	assert.Equal(t, loaderImage, buf)

	buf = make([]byte, len(bootImage))
	_, err = disk.ReadAt(buf, 8*mib)
	require.NoError(t, err)
	assert.Equal(t, bootImage, buf)
}

func TestFlashNothing(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "disk.img")

	f, err := flash.New(&flash.Options{
		Destination: dest,
		Size:        64 * mib,
		Config:      testConfig(t),
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, f.Run(context.Background()))

	_, err = os.Stat(dest)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFlashNothingStillFormats(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "disk.img")

	f, err := flash.New(&flash.Options{
		Destination: dest,
		Format:      []partition.FormatRequest{{Partition: "userdata", Filesystem: "ext4"}},
		Config:      testConfig(t),
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	rec := &recorder{}
	f.Formatter().Runner = rec.runner()

	// the destination was never written, so there is no table to resolve names in
	require.ErrorIs(t, f.Run(context.Background()), partition.ErrIO)
	assert.Equal(t, []string{"partprobe"}, rec.tools)
}

func TestFlashErrors(t *testing.T) {
	_, err := flash.New(&flash.Options{}, zaptest.NewLogger(t))
	require.ErrorIs(t, err, partition.ErrArgument)

	f, err := flash.New(&flash.Options{
		Destination: filepath.Join(t.TempDir(), "disk.img"),
		Size:        64 * mib,
		IDBLoader:   filepath.Join(t.TempDir(), "missing.img"),
		Config:      testConfig(t),
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.ErrorIs(t, f.Run(context.Background()), partition.ErrSourceUnavailable)
}
