// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package conditions

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/siderolabs/gptflash/pkg/retry"
)

type file struct {
	name    string
	retryer retry.Retryer
}

func (f file) Wait(ctx context.Context) error {
	err := f.retryer.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return retry.UnexpectedError(err)
		}

		_, err := os.Stat(f.name)
		if err == nil {
			return nil
		}

		if errors.Is(err, fs.ErrNotExist) {
			return retry.ExpectedError(err)
		}

		return retry.UnexpectedError(err)
	})

	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("waiting for %s: %w", f, err)
	}
}

func (f file) String() string {
	return fmt.Sprintf("file %q to exist", f.name)
}

// WaitForFileToExist is a condition that will wait for the existence of a file.
//
// The file is checked once and then again on every retry of retryer. Symlinks
// are followed, so a dangling link does not count.
func WaitForFileToExist(filename string, retryer retry.Retryer) Condition {
	return file{name: filename, retryer: retryer}
}
