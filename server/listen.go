// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// Listen opens a TCP listener on address with SO_REUSEADDR set and, if
// backlog is positive, the pending-connection queue limited to backlog.
// The Go runtime always listens with the system maximum, so the backlog
// is applied by calling listen(2) again on the bound socket.
func Listen(ctx context.Context, address string, backlog int) (*net.TCPListener, error) {
	config := net.ListenConfig{
		Control: func(network, address string, raw syscall.RawConn) error {
			var sockoptErr error
			if err := raw.Control(func(fd uintptr) {
				sockoptErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			}); err != nil {
				return err
			}
			if sockoptErr != nil {
				return fmt.Errorf("setting SO_REUSEADDR: %w", sockoptErr)
			}
			return nil
		},
	}

	listener, err := config.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", address, err)
	}
	tcpListener := listener.(*net.TCPListener)

	if backlog > 0 {
		if err := setBacklog(tcpListener, backlog); err != nil {
			tcpListener.Close()
			return nil, err
		}
	}
	return tcpListener, nil
}

func setBacklog(listener *net.TCPListener, backlog int) error {
	raw, err := listener.SyscallConn()
	if err != nil {
		return fmt.Errorf("accessing listener socket: %w", err)
	}
	var listenErr error
	if err := raw.Control(func(fd uintptr) {
		listenErr = unix.Listen(int(fd), backlog)
	}); err != nil {
		return fmt.Errorf("accessing listener socket: %w", err)
	}
	if listenErr != nil {
		return fmt.Errorf("setting listen backlog %d: %w", backlog, listenErr)
	}
	return nil
}
