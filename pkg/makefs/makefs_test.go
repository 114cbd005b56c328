// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package makefs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/gptflash/pkg/makefs"
)

type call struct {
	name string
	args []string
}

func TestMake(t *testing.T) {
	var calls []call

	runner := makefs.RunnerFunc(func(_ context.Context, name string, args ...string) (string, error) {
		calls = append(calls, call{name: name, args: args})

		return "mke2fs 1.47.0", nil
	})

	output, err := makefs.Make(context.Background(), "ext4", "/dev/disk/by-partuuid/abc", makefs.WithRunner(runner))
	require.NoError(t, err)

	assert.Equal(t, "mke2fs 1.47.0", output)
	assert.Equal(t, []call{{name: "mkfs.ext4", args: []string{"/dev/disk/by-partuuid/abc"}}}, calls)

	calls = nil

	_, err = makefs.Make(context.Background(), "f2fs", "/dev/sda9", makefs.WithRunner(runner), makefs.WithToolPrefix("/sbin/mkfs"))
	require.NoError(t, err)

	assert.Equal(t, []call{{name: "/sbin/mkfs.f2fs", args: []string{"/dev/sda9"}}}, calls)
}

func TestMakeFailure(t *testing.T) {
	runner := makefs.RunnerFunc(func(context.Context, string, ...string) (string, error) {
		return "Device size reported to be zero.", errors.New("exit status 1")
	})

	output, err := makefs.Make(context.Background(), "ext4", "/dev/sda1", makefs.WithRunner(runner))
	require.Error(t, err)

	assert.Equal(t, "Device size reported to be zero.", output)
	assert.Contains(t, err.Error(), "mkfs.ext4 /dev/sda1 failed: exit status 1")
	assert.Contains(t, err.Error(), "Device size reported to be zero.")
}

func TestMakeInvalid(t *testing.T) {
	runner := makefs.RunnerFunc(func(context.Context, string, ...string) (string, error) {
		t.Fatal("runner should not be called")

		return "", nil
	})

	for _, kind := range []string{"", "../../bin/sh", "ext4 -F"} {
		_, err := makefs.Make(context.Background(), kind, "/dev/sda1", makefs.WithRunner(runner))
		assert.Error(t, err, kind)
	}

	_, err := makefs.Make(context.Background(), "ext4", "", makefs.WithRunner(runner))
	assert.Error(t, err)
}
