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

import "errors"

var (
	// ErrDriverUnavailable means no browser backend could be launched. Tests
	// treat it as an environment limitation and skip.
	ErrDriverUnavailable = errors.New("no browser driver available")

	// ErrNavigation means the target URL could not be loaded.
	ErrNavigation = errors.New("navigation failed")

	// ErrTimeoutWaiting means an element did not reach the expected state in time.
	ErrTimeoutWaiting = errors.New("timeout waiting")

	// ErrElementNotInteractable means the UI rejected an action on an element.
	ErrElementNotInteractable = errors.New("element not interactable")

	// ErrSessionClosed is returned by actions on a closed session.
	ErrSessionClosed = errors.New("session closed")
)
