// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bureau-foundation/lottery/lib/clock"
	"github.com/bureau-foundation/lottery/lib/codec"
	"github.com/bureau-foundation/lottery/lib/schema"
	"github.com/bureau-foundation/lottery/lib/service"
	"github.com/bureau-foundation/lottery/lib/version"
	"github.com/bureau-foundation/lottery/lottery"
	"github.com/bureau-foundation/lottery/server"
)

// statusService answers operator queries about a running lottery.
type statusService struct {
	coordinator *lottery.Coordinator
	server      *server.Server
	clock       clock.Clock
	startedAt   time.Time
}

func (s *statusService) registerActions(socketServer *service.SocketServer) {
	socketServer.Handle(schema.ActionStatus, s.handleStatus)
	socketServer.Handle(schema.ActionWinners, s.handleWinners)
}

func (s *statusService) handleStatus(ctx context.Context, raw []byte) (any, error) {
	barrier := s.coordinator.Status()
	ready := make([]int, len(barrier.Ready))
	for index, agency := range barrier.Ready {
		ready[index] = int(agency)
	}
	return schema.StatusResponse{
		Version:             version.Info(),
		StartedAt:           s.startedAt,
		UptimeSeconds:       s.clock.Now().Sub(s.startedAt).Seconds(),
		ExpectedAgencies:    barrier.Expected,
		ReadyAgencies:       ready,
		LotteryDone:         barrier.Done,
		WinnerCounts:        barrier.WinnerCounts,
		ActiveConnections:   s.server.ActiveConnections(),
		AcceptedConnections: s.server.AcceptedConnections(),
	}, nil
}

// handleWinners never blocks: an operator polling before the draw gets
// an error instead of a hung socket.
func (s *statusService) handleWinners(ctx context.Context, raw []byte) (any, error) {
	var request schema.WinnersRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid winners request: %w", err)
	}
	if request.Agency == 0 {
		return nil, errors.New("agency is required")
	}

	documents, err := s.coordinator.QueryWinners(request.Agency)
	if errors.Is(err, lottery.ErrNotDone) {
		return nil, errors.New("lottery not done")
	}
	if err != nil {
		return nil, err
	}
	return schema.WinnersResponse{Agency: request.Agency, Documents: documents}, nil
}
