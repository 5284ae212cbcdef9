// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the wall clock for testability. Production code
// injects Real(); tests inject Fake() and move time explicitly.
//
// Socket deadlines are the one exception: the kernel compares them to
// real time, so they are computed with time.Now directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}
