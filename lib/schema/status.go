// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "time"

// Operator socket action names.
const (
	ActionStatus  = "status"
	ActionWinners = "winners"
)

// StatusResponse is the data of a "status" action.
type StatusResponse struct {
	Version   string    `json:"version"`
	StartedAt time.Time `json:"started_at"`

	// UptimeSeconds is measured by the server clock at request time.
	UptimeSeconds float64 `json:"uptime_seconds"`

	// ExpectedAgencies is the configured agency amount.
	ExpectedAgencies int `json:"expected_agencies"`

	// ReadyAgencies lists the agencies that finished, ascending.
	ReadyAgencies []int `json:"ready_agencies"`

	LotteryDone bool `json:"lottery_done"`

	// WinnerCounts maps agency to its number of winners. Absent until
	// the lottery is done.
	WinnerCounts map[uint8]int `json:"winner_counts,omitempty"`

	ActiveConnections   int64  `json:"active_connections"`
	AcceptedConnections uint64 `json:"accepted_connections"`
}

// WinnersRequest is the body of a "winners" action.
type WinnersRequest struct {
	Action string `json:"action"`
	Agency uint8  `json:"agency"`
}

// WinnersResponse is the data of a "winners" action.
type WinnersResponse struct {
	Agency    uint8    `json:"agency"`
	Documents []string `json:"documents"`
}
