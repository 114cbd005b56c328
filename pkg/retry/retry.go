// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package retry re-runs a function a bounded number of times.
package retry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/siderolabs/gen/xslices"
)

// RetryableFunc represents a function that can be retried.
type RetryableFunc func() error

// Retryer defines the requirements for retrying a function.
type Retryer interface {
	Retry(RetryableFunc) error
}

// TimeoutError represents a timeout error.
type TimeoutError struct{}

func (TimeoutError) Error() string {
	return "timeout"
}

// IsTimeout reports whether the retry budget was exhausted.
func IsTimeout(err error) bool {
	return errors.As(err, &TimeoutError{})
}

type expectedError struct{ error }

func (e expectedError) Unwrap() error { return e.error }

type unexpectedError struct{ error }

func (e unexpectedError) Unwrap() error { return e.error }

// ExpectedError error represents an error that is expected by the retrying
// function. This error is ignored.
func ExpectedError(err error) error {
	return expectedError{err}
}

// UnexpectedError error represents an error that is unexpected by the retrying
// function. This error is fatal.
//
// Errors which are neither expected nor unexpected are fatal as well.
func UnexpectedError(err error) error {
	return unexpectedError{err}
}

func newErrorSet(errs ...error) error {
	return multierror.Append(&multierror.Error{ErrorFormat: formatErrors}, errs...)
}

func formatErrors(errs []error) string {
	lines := xslices.Map(errs, func(err error) string { return err.Error() })

	return fmt.Sprintf("%d error(s) occurred:\n\t%s", len(errs), strings.Join(lines, "\n\t"))
}

// classify returns the error to report and whether another attempt is allowed.
func classify(err error) (error, bool) {
	var expected expectedError

	if errors.As(err, &expected) {
		return expected.error, true
	}

	var unexpected unexpectedError

	if errors.As(err, &unexpected) {
		return unexpected.error, false
	}

	return err, false
}
