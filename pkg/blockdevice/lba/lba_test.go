// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package lba_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/gptflash/pkg/blockdevice/lba"
)

func TestRange(t *testing.T) {
	assert.EqualValues(t, 1, lba.Range{Start: 34, End: 34}.Length())
	assert.EqualValues(t, 2048, lba.Range{Start: 2048, End: 4095}.Length())
	assert.EqualValues(t, 0, lba.Range{Start: 10, End: 9}.Length())
	assert.True(t, lba.Range{Start: 10, End: 9}.Empty())
	assert.False(t, lba.Range{Start: 10, End: 10}.Empty())
}

func TestConversions(t *testing.T) {
	l := &lba.LogicalBlockAddresser{LogicalBlockSize: 512, PhysicalBlockSize: 4096}

	assert.EqualValues(t, 8*1024*1024, l.Bytes(lba.Range{Start: 0, End: 16383}))
	assert.EqualValues(t, 1024*1024, l.Bytes(lba.Range{Start: 2048, End: 4095}))
	assert.EqualValues(t, 2, l.Blocks(513))
	assert.EqualValues(t, 1, l.Blocks(512))
	assert.EqualValues(t, 0, l.Blocks(0))
	assert.EqualValues(t, 1, l.Floor(1023))
}

func TestNewRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")

	f, err := os.Create(path)
	require.NoError(t, err)

	defer f.Close() //nolint:errcheck

	l, err := lba.New(f)
	require.NoError(t, err)

	assert.EqualValues(t, 512, l.LogicalBlockSize)
	assert.EqualValues(t, 512, l.PhysicalBlockSize)
}
