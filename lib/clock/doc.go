// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source. The lottery
// server reads the clock to timestamp the draw and to report uptime;
// tests substitute a [FakeClock] so those values are deterministic.
package clock
