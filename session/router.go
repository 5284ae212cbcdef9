// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"log/slog"

	"github.com/bureau-foundation/lottery/protocol"
)

// Handler receives the packets a Router accepts.
type Handler interface {
	HandleBets(ctx context.Context, agency uint8, bets []protocol.ProtocolBet) protocol.Packet
	HandleFinish(ctx context.Context, agency uint8) protocol.Packet
	HandleWinners(ctx context.Context, agency uint8) protocol.Packet
}

// State is the session state of a Router.
type State int

const (
	NotStarted State = iota
	Active
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// Session rejection messages, sent as BAD_PACKET errors.
const (
	MessageAlreadyActive  = "session already active"
	MessageNotStarted     = "session not started"
	MessageAgencyMismatch = "agency id mismatch"
	MessageUnknownPacket  = "unknown packet type"
)

// Router is the state machine for one connection.
type Router struct {
	handler Handler
	logger  *slog.Logger
	state   State
	agency  uint8
}

// NewRouter creates a Router in the NotStarted state. A nil logger
// discards output.
func NewRouter(handler Handler, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Router{handler: handler, logger: logger}
}

// State returns the current session state.
func (r *Router) State() State { return r.state }

// Agency returns the agency of the active session. The second result
// is false when no session is active.
func (r *Router) Agency() (uint8, bool) {
	return r.agency, r.state == Active
}

// Handle processes one received packet and returns the reply to send.
// The reply is never nil.
func (r *Router) Handle(ctx context.Context, packet protocol.Packet) protocol.Packet {
	switch packet := packet.(type) {
	case *protocol.BetStartPacket:
		return r.start(packet.AgencyID)

	case *protocol.BetPacket:
		if reject := r.checkAgency(packet.AgencyID); reject != nil {
			return reject
		}
		return r.handler.HandleBets(ctx, packet.AgencyID, packet.Bets)

	case *protocol.BetFinishPacket:
		if reject := r.checkAgency(packet.AgencyID); reject != nil {
			return reject
		}
		reply := r.handler.HandleFinish(ctx, packet.AgencyID)
		if _, ok := reply.(*protocol.ReplyPacket); ok {
			r.logger.Info("session ended", "agency", r.agency)
			r.state = NotStarted
			r.agency = 0
		}
		return reply

	case *protocol.GetWinnersPacket:
		return r.handler.HandleWinners(ctx, packet.AgencyID)

	case *protocol.ReplyPacket, *protocol.ErrorPacket, *protocol.ReplyWinnersPacket:
		r.logger.Warn("client sent a server packet", "type", packet.Type())
		return protocol.NewError(protocol.CodeInvalidPacket, MessageUnknownPacket)

	default:
		return protocol.NewError(protocol.CodeInvalidPacket, MessageUnknownPacket)
	}
}

func (r *Router) start(agency uint8) protocol.Packet {
	if r.state == Active {
		r.logger.Warn("duplicate session start",
			"agency", agency,
			"active_agency", r.agency,
		)
		return protocol.NewError(protocol.CodeInvalidPacket, MessageAlreadyActive)
	}
	r.state = Active
	r.agency = agency
	r.logger.Info("session started", "agency", agency)
	return protocol.NewReply(0, "session_active")
}

// checkAgency returns the rejection for a Bet or BetFinish from agency,
// or nil when the packet belongs to the active session.
func (r *Router) checkAgency(agency uint8) protocol.Packet {
	if r.state != Active {
		r.logger.Warn("packet outside session", "agency", agency)
		return protocol.NewError(protocol.CodeInvalidPacket, MessageNotStarted)
	}
	if agency != r.agency {
		r.logger.Warn("agency id mismatch",
			"agency", agency,
			"session_agency", r.agency,
		)
		return protocol.NewError(protocol.CodeInvalidPacket, MessageAgencyMismatch)
	}
	return nil
}
