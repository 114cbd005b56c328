// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package retry

import (
	"math/rand/v2"
	"time"
)

type constantRetryer struct {
	retries int
	options *Options
}

// Constant initializes and returns a Retryer which runs the function once and
// then up to retries more times, sleeping Units (plus jitter) before each retry.
func Constant(retries int, setters ...Option) Retryer {
	return constantRetryer{
		retries: retries,
		options: NewDefaultOptions(setters...),
	}
}

// Retry implements the Retryer interface.
func (c constantRetryer) Retry(f RetryableFunc) error {
	var last error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.options.Sleep(c.interval())
		}

		err := f()
		if err == nil {
			return nil
		}

		var retryable bool

		if last, retryable = classify(err); !retryable {
			return newErrorSet(last)
		}
	}

	return newErrorSet(last, TimeoutError{})
}

func (c constantRetryer) interval() time.Duration {
	if c.options.Jitter <= 0 {
		return c.options.Units
	}

	return c.options.Units + rand.N(c.options.Jitter)
}
