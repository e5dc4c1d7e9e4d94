// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package e2ehelpers

import (
	"context"
	"fmt"
	"time"
)

// Predicate reports whether a polled condition holds. An error counts as
// "not yet" and is reported only if the poll times out.
type Predicate func(ctx context.Context) (bool, error)

// Poll evaluates pred immediately and then every interval until it returns
// true or timeout elapses. On timeout the returned error wraps
// ErrTimeoutWaiting and, when present, the last predicate error. If ctx
// ends first its error is returned as is.
func Poll(ctx context.Context, timeout, interval time.Duration, pred Predicate) error {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		ok, err := pred(timeoutCtx)
		if err == nil && ok {
			return nil
		}
		if err != nil {
			lastErr = err
		}
		select {
		case <-ticker.C:
		case <-timeoutCtx.Done():
			if err := ctx.Err(); err != nil {
				return err
			}
			if lastErr != nil {
				return fmt.Errorf("%w after %s: %w", ErrTimeoutWaiting, timeout, lastErr)
			}
			return fmt.Errorf("%w after %s", ErrTimeoutWaiting, timeout)
		}
	}
}
