// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/lottery/lib/netutil"
	"github.com/bureau-foundation/lottery/protocol"
	"github.com/bureau-foundation/lottery/session"
	"github.com/bureau-foundation/lottery/transport"
)

// ErrServerClosed is returned by Serve after Shutdown has been called.
var ErrServerClosed = errors.New("server: closed")

// Handler is the coordinator the workers route business packets to.
// Close must release every call blocked in HandleWinners.
type Handler interface {
	session.Handler
	Close()
}

// Config holds the per-connection timeouts.
type Config struct {
	// IdleTimeout is how long a worker blocks in one read before it
	// re-checks for shutdown. Defaults to DefaultIdleTimeout.
	IdleTimeout time.Duration

	// WriteTimeout bounds sending one reply. Defaults to
	// DefaultWriteTimeout.
	WriteTimeout time.Duration

	// Logger receives connection lifecycle messages. If nil, a no-op
	// logger is used.
	Logger *slog.Logger
}

const (
	DefaultIdleTimeout  = time.Second
	DefaultWriteTimeout = 10 * time.Second
)

// acceptRetryDelay spaces out retries after an unexpected Accept
// error, such as running out of file descriptors.
const acceptRetryDelay = 50 * time.Millisecond

// State is the lifecycle state of a Server.
type State int32

const (
	Running State = iota
	ShuttingDown
)

func (s State) String() string {
	if s == ShuttingDown {
		return "shutting_down"
	}
	return "running"
}

// Server serves the lottery protocol on one listener.
type Server struct {
	handler      Handler
	idleTimeout  time.Duration
	writeTimeout time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	state    State
	listener net.Listener
	cancel   context.CancelFunc

	workers  sync.WaitGroup
	active   atomic.Int64
	accepted atomic.Uint64
}

// New creates a Server routing to handler.
func New(handler Handler, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	idleTimeout := cfg.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Server{
		handler:      handler,
		idleTimeout:  idleTimeout,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Serve accepts connections on listener until Shutdown is called, ctx
// is cancelled, or the listener is closed. It takes ownership of
// listener and returns after all workers have exited. A Server serves
// at most once.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.state == ShuttingDown || s.listener != nil {
		s.mu.Unlock()
		listener.Close()
		return ErrServerClosed
	}
	s.listener = listener
	s.cancel = cancel
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, s.Shutdown)
	defer stop()

	s.logger.Info("server listening", "address", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.State() == ShuttingDown || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			time.Sleep(acceptRetryDelay) //nolint:realclock accept backoff
			continue
		}

		s.accepted.Add(1)
		s.workers.Add(1)
		go func() {
			defer s.workers.Done()
			s.serveConnection(ctx, conn)
		}()
	}

	// Covers a listener closed by someone other than Shutdown.
	s.Shutdown()
	s.workers.Wait()
	s.logger.Info("server stopped", "connections_served", s.accepted.Load())
	return nil
}

// Shutdown stops accepting connections, cancels every worker's
// context, and closes the handler. It does not wait; Serve returns once
// the workers are gone. Calling Shutdown more than once is safe.
func (s *Server) Shutdown() {
	s.mu.Lock()
	if s.state == ShuttingDown {
		s.mu.Unlock()
		return
	}
	s.state = ShuttingDown
	listener, cancel := s.listener, s.cancel
	s.mu.Unlock()

	s.logger.Info("server shutting down", "active_connections", s.active.Load())
	if listener != nil {
		listener.Close()
	}
	if cancel != nil {
		cancel()
	}
	s.handler.Close()
}

// State returns the lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ActiveConnections returns the number of connections being served.
func (s *Server) ActiveConnections() int64 {
	return s.active.Load()
}

// AcceptedConnections returns the number of connections accepted since
// Serve started.
func (s *Server) AcceptedConnections() uint64 {
	return s.accepted.Load()
}

func (s *Server) serveConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	s.active.Add(1)
	defer s.active.Add(-1)

	logger := s.logger.With("remote", conn.RemoteAddr().String())
	logger.Debug("connection accepted")

	packets := transport.New(conn, transport.Options{
		PollInterval: s.idleTimeout,
		WriteTimeout: s.writeTimeout,
	})
	router := session.NewRouter(s.handler, logger)

	for {
		packet, err := packets.Recv(ctx)
		if err != nil {
			s.logReceiveError(ctx, logger, err)
			return
		}

		reply := router.Handle(ctx, packet)
		if err := packets.Send(reply); err != nil {
			if netutil.IsExpectedCloseError(err) {
				logger.Debug("peer went away before reply", "type", reply.Type(), "error", err)
			} else {
				logger.Warn("sending reply failed", "type", reply.Type(), "error", err)
			}
			return
		}

		if rejection, ok := reply.(*protocol.ErrorPacket); ok && rejection.Code == protocol.CodeInvalidPacket {
			logger.Info("closing connection after protocol violation", "message", rejection.Message)
			return
		}
	}
}

func (s *Server) logReceiveError(ctx context.Context, logger *slog.Logger, err error) {
	var decodeErr *protocol.DecodeError
	switch {
	case errors.Is(err, io.EOF):
		logger.Debug("connection closed by peer")
	case ctx.Err() != nil:
		logger.Debug("connection closed for shutdown")
	case errors.As(err, &decodeErr):
		logger.Warn("closing connection after malformed packet", "error", err)
	case netutil.IsExpectedCloseError(err):
		logger.Debug("connection lost", "error", err)
	default:
		logger.Warn("connection failed", "error", err)
	}
}
