// Test Harness
//
// Copyright (c) 2025, 2026  The go-rps authors
//
// This file is part of go-rps.
//
// go-rps is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// go-rps is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with go-rps. If not, see
// <http://www.gnu.org/licenses/>

package session

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-rps"
	"go-rps/conf"
	"go-rps/proto"
)

// pipe is a connection stub that records every sent frame.  Reads
// report EOF immediately; the tests drive the dispatcher directly
// instead of going through a read loop.
type pipe struct {
	mu         sync.Mutex
	out        []string
	closed     bool
	readClosed bool
}

func (p *pipe) Read([]byte) (int, error) { return 0, nil }

func (p *pipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = append(p.out, strings.TrimSuffix(string(b), "\r\n"))
	return len(b), nil
}

func (p *pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *pipe) CloseRead() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readClosed = true
	return nil
}

// lines drains and returns everything sent since the last call.
func (p *pipe) lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.out
	p.out = nil
	return out
}

func (p *pipe) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *pipe) isReadClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readClosed
}

// seqReader is a deterministic entropy source; successive reads keep
// counting upward so every generated token is distinct.
type seqReader struct{ n byte }

func (r *seqReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.n
		r.n++
	}
	return len(p), nil
}

// harness drives a server with a controllable clock.
type harness struct {
	t   *testing.T
	s   *Server
	now time.Time
}

func makeHarness(t *testing.T) *harness {
	h := &harness{
		t:   t,
		now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	h.s = MakeServer(&conf.Conf{Results: make(chan *rps.Result, 8)})
	h.s.now = func() time.Time { return h.now }
	h.s.entropy = &seqReader{}
	return h
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

// tick runs one supervisor sweep at the current time.
func (h *harness) tick() {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.s.checkClients(h.now)
	h.s.checkRooms(h.now)
}

// tickRooms sweeps only the round timers, for tests that jump the
// clock without simulating client heartbeats.
func (h *harness) tickRooms() {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.s.checkRooms(h.now)
}

func (h *harness) connect() (*proto.Client, *pipe) {
	p := &pipe{}
	cl := proto.MakeClient(p, "test")
	_, ok := h.s.admit(cl)
	require.True(h.t, ok)
	return cl, p
}

// login connects a client and authenticates it, returning its session
// token.
func (h *harness) login(nick string) (*proto.Client, *pipe, string) {
	cl, p := h.connect()
	require.True(h.t, h.s.Line(cl, "HELLO "+nick))

	out := p.lines()
	require.Len(h.t, out, 1)
	require.True(h.t, strings.HasPrefix(out[0], "WELCOME "),
		"expected WELCOME, got %q", out[0])
	return cl, p, strings.TrimPrefix(out[0], "WELCOME ")
}

// lobby puts alice and bob together into room 1.
func (h *harness) lobby() (alice, bob *proto.Client, pa, pb *pipe) {
	alice, pa, _ = h.login("alice")
	bob, pb, _ = h.login("bob")

	h.s.Line(alice, "CREATE g1")
	h.s.Line(bob, "JOIN 1")
	pa.lines()
	pb.lines()
	return alice, bob, pa, pb
}

// playing brings alice and bob into a running game, first round
// started.
func (h *harness) playing() (alice, bob *proto.Client, pa, pb *pipe) {
	alice, bob, pa, pb = h.lobby()
	h.s.Line(alice, "READY")
	h.s.Line(bob, "READY")
	pa.lines()
	pb.lines()
	return alice, bob, pa, pb
}

func (h *harness) session(cl *proto.Client) *Session {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.s.findByClient(cl)
}

func (h *harness) room(id int) *Room {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.s.roomByID(id)
}
