// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package conditions provides waiters for external state.
package conditions

import (
	"context"
	"fmt"
)

// Condition is a state Wait blocks on until it is reached.
type Condition interface {
	fmt.Stringer
	Wait(ctx context.Context) error
}
