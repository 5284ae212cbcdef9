// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/bureau-foundation/lottery/lib/bet"
	"github.com/bureau-foundation/lottery/lottery"
	"github.com/bureau-foundation/lottery/protocol"
)

// recordingHandler answers every call with a fixed reply and records
// which agencies reached it.
type recordingHandler struct {
	bets     []uint8
	finishes []uint8
	winners  []uint8

	finishReply protocol.Packet
}

func (h *recordingHandler) HandleBets(_ context.Context, agency uint8, bets []protocol.ProtocolBet) protocol.Packet {
	h.bets = append(h.bets, agency)
	return protocol.NewReply(uint32(len(bets)), "STORED")
}

func (h *recordingHandler) HandleFinish(_ context.Context, agency uint8) protocol.Packet {
	h.finishes = append(h.finishes, agency)
	if h.finishReply != nil {
		return h.finishReply
	}
	return protocol.NewReply(1, "ready")
}

func (h *recordingHandler) HandleWinners(_ context.Context, agency uint8) protocol.Packet {
	h.winners = append(h.winners, agency)
	return &protocol.ReplyWinnersPacket{AgencyID: agency, Documents: []uint32{}}
}

func requireBadPacket(t *testing.T, reply protocol.Packet, message string) {
	t.Helper()
	want := protocol.NewError(protocol.CodeInvalidPacket, message)
	if !reflect.DeepEqual(reply, want) {
		t.Fatalf("reply = %+v, want %+v", reply, want)
	}
}

func TestRouterSessionLifecycle(t *testing.T) {
	t.Parallel()

	handler := &recordingHandler{}
	router := NewRouter(handler, nil)
	ctx := context.Background()

	if router.State() != NotStarted {
		t.Fatalf("initial state = %s, want not_started", router.State())
	}

	reply := router.Handle(ctx, &protocol.BetStartPacket{AgencyID: 3})
	if want := protocol.NewReply(0, "session_active"); !reflect.DeepEqual(reply, want) {
		t.Fatalf("BetStart reply = %+v, want %+v", reply, want)
	}
	if agency, active := router.Agency(); !active || agency != 3 {
		t.Fatalf("Agency() = %d, %v; want 3, true", agency, active)
	}

	router.Handle(ctx, &protocol.BetPacket{AgencyID: 3, Bets: []protocol.ProtocolBet{{}}})
	router.Handle(ctx, &protocol.BetFinishPacket{AgencyID: 3})
	if router.State() != NotStarted {
		t.Fatalf("state after finish = %s, want not_started", router.State())
	}
	if _, active := router.Agency(); active {
		t.Fatal("Agency() reports an active session after finish")
	}

	// The connection can carry a second session.
	router.Handle(ctx, &protocol.BetStartPacket{AgencyID: 4})
	router.Handle(ctx, &protocol.BetFinishPacket{AgencyID: 4})

	if !reflect.DeepEqual(handler.bets, []uint8{3}) {
		t.Errorf("bets forwarded for %v, want [3]", handler.bets)
	}
	if !reflect.DeepEqual(handler.finishes, []uint8{3, 4}) {
		t.Errorf("finishes forwarded for %v, want [3 4]", handler.finishes)
	}
}

func TestRouterOrderingViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   []protocol.Packet
		packet  protocol.Packet
		message string
	}{
		{
			name:    "bet before start",
			packet:  &protocol.BetPacket{AgencyID: 1},
			message: MessageNotStarted,
		},
		{
			name:    "finish before start",
			packet:  &protocol.BetFinishPacket{AgencyID: 1},
			message: MessageNotStarted,
		},
		{
			name:    "second start",
			setup:   []protocol.Packet{&protocol.BetStartPacket{AgencyID: 1}},
			packet:  &protocol.BetStartPacket{AgencyID: 1},
			message: MessageAlreadyActive,
		},
		{
			name:    "bet for another agency",
			setup:   []protocol.Packet{&protocol.BetStartPacket{AgencyID: 3}},
			packet:  &protocol.BetPacket{AgencyID: 5},
			message: MessageAgencyMismatch,
		},
		{
			name:    "finish for another agency",
			setup:   []protocol.Packet{&protocol.BetStartPacket{AgencyID: 3}},
			packet:  &protocol.BetFinishPacket{AgencyID: 5},
			message: MessageAgencyMismatch,
		},
		{
			name:    "bet after finish",
			setup:   []protocol.Packet{&protocol.BetStartPacket{AgencyID: 2}, &protocol.BetFinishPacket{AgencyID: 2}},
			packet:  &protocol.BetPacket{AgencyID: 2},
			message: MessageNotStarted,
		},
		{
			name:    "server reply packet",
			packet:  protocol.NewReply(0, "hello"),
			message: MessageUnknownPacket,
		},
		{
			name:    "server error packet",
			packet:  protocol.NewError(protocol.CodeInvalidBet, "nope"),
			message: MessageUnknownPacket,
		},
		{
			name:    "server winners packet",
			packet:  &protocol.ReplyWinnersPacket{AgencyID: 1},
			message: MessageUnknownPacket,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			handler := &recordingHandler{}
			router := NewRouter(handler, nil)
			ctx := context.Background()
			for _, packet := range test.setup {
				router.Handle(ctx, packet)
			}
			betsBefore, finishesBefore := len(handler.bets), len(handler.finishes)

			requireBadPacket(t, router.Handle(ctx, test.packet), test.message)

			if len(handler.bets) != betsBefore || len(handler.finishes) != finishesBefore {
				t.Errorf("rejected packet reached the handler: bets %v finishes %v", handler.bets, handler.finishes)
			}
		})
	}
}

func TestRouterStartRejectionKeepsSession(t *testing.T) {
	t.Parallel()

	router := NewRouter(&recordingHandler{}, nil)
	ctx := context.Background()
	router.Handle(ctx, &protocol.BetStartPacket{AgencyID: 3})
	router.Handle(ctx, &protocol.BetStartPacket{AgencyID: 9})

	if agency, active := router.Agency(); !active || agency != 3 {
		t.Errorf("Agency() = %d, %v; want 3, true", agency, active)
	}
}

func TestRouterFailedFinishKeepsSession(t *testing.T) {
	t.Parallel()

	handler := &recordingHandler{finishReply: protocol.NewError(protocol.CodeInvalidBet, "lottery computation failed")}
	router := NewRouter(handler, nil)
	ctx := context.Background()
	router.Handle(ctx, &protocol.BetStartPacket{AgencyID: 1})
	router.Handle(ctx, &protocol.BetFinishPacket{AgencyID: 1})

	if router.State() != Active {
		t.Errorf("state after failed finish = %s, want active", router.State())
	}
}

func TestRouterWinnersInAnyState(t *testing.T) {
	t.Parallel()

	handler := &recordingHandler{}
	router := NewRouter(handler, nil)
	ctx := context.Background()

	router.Handle(ctx, &protocol.GetWinnersPacket{AgencyID: 7})
	router.Handle(ctx, &protocol.BetStartPacket{AgencyID: 1})
	reply := router.Handle(ctx, &protocol.GetWinnersPacket{AgencyID: 8})

	if _, ok := reply.(*protocol.ReplyWinnersPacket); !ok {
		t.Fatalf("GetWinners reply = %T, want *protocol.ReplyWinnersPacket", reply)
	}
	if !reflect.DeepEqual(handler.winners, []uint8{7, 8}) {
		t.Errorf("winners forwarded for %v, want [7 8]", handler.winners)
	}
}

// sliceStorage is a minimal lottery.Storage where number 7777 wins.
type sliceStorage struct {
	mu   sync.Mutex
	bets []bet.Bet
}

func (s *sliceStorage) StoreBets(_ context.Context, bets []bet.Bet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bets = append(s.bets, bets...)
	return nil
}

func (s *sliceStorage) LoadBets(_ context.Context, visit func(bet.Bet) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stored := range s.bets {
		if err := visit(stored); err != nil {
			return err
		}
	}
	return nil
}

func (s *sliceStorage) HasWon(b bet.Bet) bool { return b.Number == "7777" }

func TestAgencyMismatchNeverReachesLottery(t *testing.T) {
	t.Parallel()

	coordinator, err := lottery.NewCoordinator(lottery.Config{
		AgencyAmount: 5,
		Storage:      &sliceStorage{},
	})
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	ctx := context.Background()

	impostor := NewRouter(coordinator, nil)
	impostor.Handle(ctx, &protocol.BetStartPacket{AgencyID: 3})
	winning := protocol.ProtocolBet{FirstName: "A", LastName: "B", Document: 555, Birthdate: 20000101, Number: 7777}
	requireBadPacket(t, impostor.Handle(ctx, &protocol.BetPacket{AgencyID: 5, Bets: []protocol.ProtocolBet{winning}}), MessageAgencyMismatch)

	for agency := uint8(1); agency <= 5; agency++ {
		router := NewRouter(coordinator, nil)
		router.Handle(ctx, &protocol.BetStartPacket{AgencyID: agency})
		router.Handle(ctx, &protocol.BetFinishPacket{AgencyID: agency})
	}

	want := &protocol.ReplyWinnersPacket{AgencyID: 5, Documents: []uint32{}}
	if got := impostor.Handle(ctx, &protocol.GetWinnersPacket{AgencyID: 5}); !reflect.DeepEqual(got, want) {
		t.Errorf("winners for agency 5 = %+v, want %+v", got, want)
	}
}
