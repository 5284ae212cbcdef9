// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bureau-foundation/lottery/protocol"
)

// Conn is the subset of net.Conn the packet transport needs. Read
// deadlines let a blocked receive wake periodically to notice
// cancellation.
type Conn interface {
	io.Reader
	io.Writer
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// ConnectionError reports a failure that leaves the connection
// unusable: a short read at end of stream, a failed or stalled write,
// or bytes that do not decode to a packet. Callers must close the
// connection after receiving one.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// errZeroWrite is the cause attached when a Write makes no progress
// without reporting an error.
var errZeroWrite = errors.New("connection broken: zero-length write")

// maxZeroReads bounds consecutive (0, nil) reads before the reader is
// treated as stuck. io.Reader permits such reads but discourages them.
const maxZeroReads = 100

// Options tunes a PacketConn.
type Options struct {
	// PollInterval is the read deadline applied to each blocking read.
	// When it elapses the read is retried after checking the context,
	// so it bounds how long a receive takes to observe cancellation.
	// Zero disables deadlines: reads block until data or EOF.
	PollInterval time.Duration

	// WriteTimeout bounds the time to write one packet. Zero means no
	// deadline.
	WriteTimeout time.Duration
}

// PacketConn sends and receives whole protocol packets over a byte
// stream, completing short reads and short writes. A PacketConn is not
// safe for concurrent use; each connection has one owning goroutine.
type PacketConn struct {
	conn    Conn
	options Options
}

// New wraps conn. The caller keeps ownership of conn and closes it.
func New(conn Conn, options Options) *PacketConn {
	return &PacketConn{conn: conn, options: options}
}

// Send serializes packet and writes all of its bytes.
func (c *PacketConn) Send(packet protocol.Packet) error {
	data, err := protocol.Marshal(packet)
	if err != nil {
		return err
	}

	if c.options.WriteTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.options.WriteTimeout)); err != nil { //nolint:realclock socket deadlines are wall-clock
			return &ConnectionError{Op: "setting write deadline", Err: err}
		}
	}

	written := 0
	for written < len(data) {
		count, err := c.conn.Write(data[written:])
		written += count
		if err != nil {
			return &ConnectionError{Op: fmt.Sprintf("writing %s packet", packet.Type()), Err: err}
		}
		if count == 0 {
			return &ConnectionError{Op: fmt.Sprintf("writing %s packet", packet.Type()), Err: errZeroWrite}
		}
	}
	return nil
}

// Recv reads one packet. It returns io.EOF when the peer closed the
// stream cleanly before sending any byte of a new header; that is the
// normal end of a conversation, not a failure. A stream that ends
// inside a header or payload, or whose bytes fail to decode, yields a
// *ConnectionError. When ctx is cancelled Recv returns ctx.Err().
func (c *PacketConn) Recv(ctx context.Context) (protocol.Packet, error) {
	var headerBytes [protocol.HeaderSize]byte
	read, err := c.readFull(ctx, headerBytes[:])
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil, err
		}
		if read == 0 && errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &ConnectionError{Op: "reading header", Err: err}
	}

	header, err := protocol.DecodeHeader(headerBytes[:])
	if err != nil {
		return nil, &ConnectionError{Op: "decoding header", Err: err}
	}

	payload := make([]byte, header.PayloadLength)
	if _, err := c.readFull(ctx, payload); err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil, err
		}
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &ConnectionError{Op: fmt.Sprintf("reading %s payload", header.MessageType), Err: err}
	}

	packet, err := protocol.Decode(header, payload)
	if err != nil {
		return nil, &ConnectionError{Op: "decoding payload", Err: err}
	}
	return packet, nil
}

// readFull fills buffer, looping over short reads and retrying reads
// that hit the poll deadline. It returns the number of bytes read so
// the caller can tell a clean end of stream from a truncated one.
func (c *PacketConn) readFull(ctx context.Context, buffer []byte) (int, error) {
	filled := 0
	zeroReads := 0
	for filled < len(buffer) {
		if err := ctx.Err(); err != nil {
			return filled, err
		}
		if c.options.PollInterval > 0 {
			if err := c.conn.SetReadDeadline(time.Now().Add(c.options.PollInterval)); err != nil { //nolint:realclock socket deadlines are wall-clock
				return filled, err
			}
		}

		count, err := c.conn.Read(buffer[filled:])
		filled += count
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			if errors.Is(err, io.EOF) && filled == len(buffer) {
				return filled, nil
			}
			return filled, err
		}
		if count == 0 {
			zeroReads++
			if zeroReads >= maxZeroReads {
				return filled, io.ErrNoProgress
			}
			continue
		}
		zeroReads = 0
	}
	return filled, nil
}
