// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package partition_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/siderolabs/gptflash/internal/pkg/partition"
	"github.com/siderolabs/gptflash/internal/pkg/source"
)

func readExtent(t *testing.T, path string, c partition.CreatedPartition) []byte {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)

	defer f.Close() //nolint:errcheck

	buf := make([]byte, c.Length(512))
	_, err = f.ReadAt(buf, int64(c.Offset(512)))
	require.NoError(t, err)

	return buf
}

func fill(t *testing.T, path string, c partition.CreatedPartition, b byte) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)

	defer f.Close() //nolint:errcheck

	_, err = f.WriteAt(bytes.Repeat([]byte{b}, int(c.Length(512))), int64(c.Offset(512)))
	require.NoError(t, err)
}

func TestWriteImages(t *testing.T) {
	image := bytes.Repeat([]byte("android boot image"), 200000)

	boot, err := partition.NewFileRequest("boot", writeImage(t, t.TempDir(), "boot.img", image))
	require.NoError(t, err)

	dest, created := build(t, nil, []partition.Request{boot}, []partition.Request{blankRequest(t, "misc", "1MiB")})
	require.Len(t, created, 3)

	// leftovers of a previous flash
	for _, c := range created {
		fill(t, dest, c, 0xaa)
	}

	results, err := partition.WriteImages(partition.DefaultConfig(), dest, created, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.Len(t, results, 3)

	assert.Equal(t, "boot", results[0].Name)
	assert.EqualValues(t, len(image), results[0].Copied)
	assert.Equal(t, created[0].Length(512), results[0].Copied+results[0].Padded)

	contents := readExtent(t, dest, created[0])
	assert.Equal(t, image, contents[:len(image)])
	assert.Equal(t, make([]byte, len(contents)-len(image)), contents[len(image):])

	// partitions without an image only lose their first kilobyte
	for i, c := range created[1:] {
		assert.Zero(t, results[i+1].Copied, c.Name)
		assert.Zero(t, results[i+1].Padded, c.Name)

		contents = readExtent(t, dest, c)
		assert.Equal(t, make([]byte, 1024), contents[:1024], c.Name)
		assert.Equal(t, bytes.Repeat([]byte{0xaa}, len(contents)-1024), contents[1024:], c.Name)
	}
}

func TestWriteImagesCompressed(t *testing.T) {
	image := bytes.Repeat([]byte{1, 2, 3, 4, 5, 6, 7}, 300000)
	path := filepath.Join(t.TempDir(), "super.img.gz")

	var buf bytes.Buffer

	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(image)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	super, err := partition.NewFileRequest("super", path)
	require.NoError(t, err)

	dest, created := build(t, nil, []partition.Request{super}, nil)

	results, err := partition.WriteImages(partition.DefaultConfig(), dest, created, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.EqualValues(t, len(image), results[0].Copied)
	assert.Equal(t, created[0].Length(512), results[0].Copied+results[0].Padded)

	contents := readExtent(t, dest, created[0])
	assert.Equal(t, image, contents[:len(image)])
}

func TestWriteImagesTooLarge(t *testing.T) {
	dir := t.TempDir()

	src, err := source.Open(writeImage(t, dir, "vbmeta.img", bytes.Repeat([]byte{0x11}, 8*kib)))
	require.NoError(t, err)

	dest := writeImage(t, dir, "disk.img", make([]byte, mib))

	created := []partition.CreatedPartition{
		{
			Entry:    &partition.PlanEntry{Name: "vbmeta", Source: src, Size: 4 * kib},
			Source:   src,
			Name:     "vbmeta",
			FirstLBA: 100,
			LastLBA:  107,
		},
	}

	_, err = partition.WriteImages(partition.DefaultConfig(), dest, created, zaptest.NewLogger(t))
	require.ErrorIs(t, err, partition.ErrIO)
	assert.ErrorContains(t, err, `"vbmeta"`)

	contents, err := os.ReadFile(dest)
	require.NoError(t, err)

	// nothing spills past the partition
	assert.Equal(t, make([]byte, mib-108*512), contents[108*512:])
}

func TestWriteImagesMissingDestination(t *testing.T) {
	_, err := partition.WriteImages(partition.DefaultConfig(), filepath.Join(t.TempDir(), "missing.img"), nil, zaptest.NewLogger(t))
	require.ErrorIs(t, err, partition.ErrIO)
}

func TestWriteImagesInvalidChunkSize(t *testing.T) {
	dest, created := build(t, nil, nil, []partition.Request{blankRequest(t, "misc", "1MiB")})

	cfg := partition.DefaultConfig()
	cfg.ZeroChunkSize = 0

	_, err := partition.WriteImages(cfg, dest, created, zaptest.NewLogger(t))
	require.ErrorIs(t, err, partition.ErrIO)
	assert.ErrorContains(t, err, "invalid zero chunk size 0")
}
