// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestUpgrader() websocket.Upgrader {
	return websocket.Upgrader{}
}

// echoServer upgrades each request and answers every chat request with a
// canned response, mimicking the backend's /ws endpoint.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := newTestUpgrader()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			var req ChatRequest
			if err := json.Unmarshal(data, &req); err != nil {
				continue
			}
			resp, _ := json.Marshal(ChatResponse{Response: "echo: " + req.Message})
			if err := ws.WriteMessage(websocket.TextMessage, resp); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestConnOpenSendReceiveClose(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	opened := make(chan struct{})
	received := make(chan string, 1)
	var closeCount atomic.Int32

	conn := NewConn(wsURL(srv), Callbacks{
		OnOpen:    func() { close(opened) },
		OnMessage: func(data []byte) { received <- DecodeResponse(data) },
		OnClose:   func() { closeCount.Add(1) },
	})

	if err := conn.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	select {
	case <-opened:
	case <-time.After(5 * time.Second):
		t.Fatal("OnOpen never fired")
	}
	if conn.State() != StateOpen {
		t.Errorf("Expected open state, got %v", conn.State())
	}

	if err := conn.Send(ChatRequest{Message: "Hi"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	select {
	case msg := <-received:
		if msg != "echo: Hi" {
			t.Errorf("Expected 'echo: Hi', got %q", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("No response received")
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if conn.State() != StateClosed {
		t.Errorf("Expected closed state, got %v", conn.State())
	}

	// Double close is a safe no-op and OnClose fires exactly once.
	if err := conn.Close(); err != nil {
		t.Fatalf("Double close should be a no-op, got %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if n := closeCount.Load(); n != 1 {
		t.Errorf("OnClose should fire exactly once, fired %d times", n)
	}
}

func TestConnSendBeforeOpen(t *testing.T) {
	conn := NewConn("ws://127.0.0.1:0/ws", Callbacks{})

	err := conn.Send(ChatRequest{Message: "Hi"})
	if !IsNotConnected(err) {
		t.Errorf("Expected NotConnected, got %v", err)
	}
}

func TestConnDuplicateOpen(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	conn := NewConn(wsURL(srv), Callbacks{})
	if err := conn.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()

	err := conn.Open(context.Background())
	if !IsAlreadyConnected(err) {
		t.Errorf("Expected AlreadyConnected, got %v", err)
	}
}

func TestConnOpenAfterCloseFails(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	conn := NewConn(wsURL(srv), Callbacks{})
	if err := conn.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	conn.Close()

	if err := conn.Open(context.Background()); err == nil {
		t.Error("A closed conn must not reopen; reconnect uses a fresh Conn")
	}
}

func TestConnDialFailure(t *testing.T) {
	errs := make(chan error, 1)
	conn := NewConn("ws://127.0.0.1:1/ws", Callbacks{
		OnError: func(err error) { errs <- err },
	})

	err := conn.Open(context.Background())
	if err == nil {
		t.Fatal("Expected dial failure")
	}
	if !IsTransport(err) {
		t.Errorf("Expected transport error, got %v", err)
	}
	if conn.State() != StateErrored {
		t.Errorf("Expected errored state, got %v", conn.State())
	}
	select {
	case <-errs:
	case <-time.After(time.Second):
		t.Error("OnError never fired")
	}
}

func TestConnServerDrop(t *testing.T) {
	upgrader := newTestUpgrader()
	drop := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		<-drop
		// Drop without a close handshake to simulate a transport fault.
		ws.UnderlyingConn().Close()
	}))
	defer srv.Close()

	errs := make(chan error, 1)
	closed := make(chan struct{})
	conn := NewConn(wsURL(srv), Callbacks{
		OnError: func(err error) { errs <- err },
		OnClose: func() { close(closed) },
	})
	if err := conn.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	close(drop)

	select {
	case err := <-errs:
		if !IsTransport(err) {
			t.Errorf("Expected transport error, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnError never fired after server drop")
	}
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("OnClose never fired after server drop")
	}
	if conn.State() != StateErrored {
		t.Errorf("Expected errored state, got %v", conn.State())
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateIdle:       "idle",
		StateConnecting: "connecting",
		StateOpen:       "open",
		StateClosing:    "closing",
		StateClosed:     "closed",
		StateErrored:    "errored",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State %d: expected %q, got %q", state, want, got)
		}
	}
}
