// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWriterPipedIsJSON(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	logger := NewWriter(&buffer, false, slog.LevelInfo)
	logger.Info("bets stored", "agency", 3, "count", 20)

	var record map[string]any
	if err := json.Unmarshal(buffer.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buffer.String())
	}
	if record["msg"] != "bets stored" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["agency"] != float64(3) {
		t.Errorf("agency = %v", record["agency"])
	}
}

func TestNewWriterTerminalIsText(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	logger := NewWriter(&buffer, true, slog.LevelInfo)
	logger.Info("agency ready", "agency", 1)

	output := buffer.String()
	if !strings.Contains(output, `msg="agency ready"`) || !strings.Contains(output, "agency=1") {
		t.Errorf("unexpected text output: %q", output)
	}
}

func TestNewWriterHonorsLevel(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	logger := NewWriter(&buffer, false, slog.LevelWarn)
	logger.Info("dropped")
	logger.Debug("dropped")
	if buffer.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buffer.String())
	}
	logger.Warn("kept")
	if !strings.Contains(buffer.String(), "kept") {
		t.Errorf("warn not logged: %q", buffer.String())
	}
}
