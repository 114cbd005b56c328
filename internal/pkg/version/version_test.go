/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

package version_test

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/gptflash/internal/pkg/version"
)

func TestPrint(t *testing.T) {
	v := &version.Version{
		Name:      "gptflash",
		Tag:       "v0.1.0",
		SHA:       "4a2c1f0",
		GoVersion: runtime.Version(),
		Os:        "linux",
		Arch:      "arm64",
	}

	var short strings.Builder

	require.NoError(t, v.PrintShortVersion(&short))
	assert.Equal(t, "gptflash v0.1.0-4a2c1f0\n", short.String())

	var long strings.Builder

	require.NoError(t, v.PrintLongVersion(&long))
	assert.Contains(t, long.String(), "Tag:         v0.1.0")
	assert.Contains(t, long.String(), "OS/Arch:     linux/arm64")
}

func TestNewVersion(t *testing.T) {
	v := version.NewVersion()

	assert.Equal(t, "gptflash", v.Name)
	assert.Equal(t, runtime.GOOS, v.Os)
}
