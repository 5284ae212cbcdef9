// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeClock(t *testing.T) {
	t.Parallel()
	epoch := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := Fake(epoch)

	if !fake.Now().Equal(epoch) {
		t.Fatalf("Now = %v, want %v", fake.Now(), epoch)
	}
	fake.Advance(90 * time.Second)
	if want := epoch.Add(90 * time.Second); !fake.Now().Equal(want) {
		t.Errorf("after Advance, Now = %v, want %v", fake.Now(), want)
	}
	fake.Set(epoch)
	if !fake.Now().Equal(epoch) {
		t.Errorf("after Set, Now = %v, want %v", fake.Now(), epoch)
	}
}
