// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/lottery/lib/codec"
	"github.com/bureau-foundation/lottery/lib/testutil"
)

type echoRequest struct {
	Action string `cbor:"action"`
	Agency uint8  `cbor:"agency"`
}

type echoResult struct {
	Agency uint8 `cbor:"agency"`
}

// startSocketServer serves an "echo" action that returns the request's
// agency, a "fail" action that always errors, and a "ping" action with
// no data.
func startSocketServer(t *testing.T) string {
	t.Helper()
	socketPath := filepath.Join(testutil.SocketDir(t), "status.sock")

	server := NewSocketServer(socketPath, nil)
	server.Handle("echo", func(_ context.Context, raw []byte) (any, error) {
		var request echoRequest
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		return echoResult{Agency: request.Agency}, nil
	})
	server.Handle("fail", func(context.Context, []byte) (any, error) {
		return nil, errors.New("lottery not done")
	})
	server.Handle("ping", func(context.Context, []byte) (any, error) {
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := testutil.RequireReceive(t, done, 5*time.Second, "waiting for socket server to stop"); err != nil {
			t.Errorf("Serve: %v", err)
		}
		if _, err := os.Stat(socketPath); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("socket file left behind: %v", err)
		}
	})

	// Serve listens asynchronously; a successful ping means the accept
	// loop is running.
	client := NewClient(socketPath)
	for range 500 {
		if client.Call(context.Background(), "ping", nil, nil) == nil {
			return socketPath
		}
		time.Sleep(10 * time.Millisecond) //nolint:realclock waiting for listener
	}
	t.Fatalf("socket %s never started serving", socketPath)
	return ""
}

func TestClientCall(t *testing.T) {
	t.Parallel()

	client := NewClient(startSocketServer(t))
	ctx := context.Background()

	var result echoResult
	if err := client.Call(ctx, "echo", map[string]any{"agency": 4}, &result); err != nil {
		t.Fatalf("Call echo: %v", err)
	}
	if result.Agency != 4 {
		t.Errorf("echo agency = %d, want 4", result.Agency)
	}

	if err := client.Call(ctx, "ping", nil, nil); err != nil {
		t.Errorf("Call ping: %v", err)
	}
}

func TestClientServiceErrors(t *testing.T) {
	t.Parallel()

	client := NewClient(startSocketServer(t))
	tests := []struct {
		action  string
		message string
	}{
		{"fail", "lottery not done"},
		{"missing", `unknown action "missing"`},
		{"", "missing required field: action"},
	}
	for _, test := range tests {
		err := client.Call(context.Background(), test.action, nil, nil)
		var serviceErr *ServiceError
		if !errors.As(err, &serviceErr) {
			t.Errorf("Call(%q) error = %v, want *ServiceError", test.action, err)
			continue
		}
		if serviceErr.Message != test.message {
			t.Errorf("Call(%q) message = %q, want %q", test.action, serviceErr.Message, test.message)
		}
	}
}

func TestMalformedRequest(t *testing.T) {
	t.Parallel()

	socketPath := startSocketServer(t)
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	// A CBOR text string, not a map.
	if _, err := conn.Write([]byte{0x63, 'a', 'b', 'c'}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var response Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if response.OK || response.Error == "" {
		t.Errorf("response = %+v, want an invalid request error", response)
	}
}

func TestSocketPermissions(t *testing.T) {
	t.Parallel()

	socketPath := startSocketServer(t)
	info, err := os.Stat(socketPath)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("socket mode = %o, want 600", mode)
	}
}

func TestCallWithoutServer(t *testing.T) {
	t.Parallel()

	client := NewClient(filepath.Join(testutil.SocketDir(t), "absent.sock"))
	err := client.Call(context.Background(), "status", nil, nil)
	var serviceErr *ServiceError
	if err == nil || errors.As(err, &serviceErr) {
		t.Errorf("Call without server = %v, want a connection error", err)
	}
}
