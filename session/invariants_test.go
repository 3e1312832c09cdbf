// Registry Invariant Tests
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
	"fmt"
	"math/rand"
	"testing"
	"time"

	"go-rps"
	"go-rps/proto"
)

// checkInvariants asserts the structural invariants that every
// command sequence must preserve: unique nicks and tokens, coherent
// room back-references and accurate occupant counts.
func (h *harness) checkInvariants() {
	h.t.Helper()
	s := h.s
	s.mu.Lock()
	defer s.mu.Unlock()

	nicks := make(map[string]bool)
	tokens := make(map[string]bool)
	for _, sess := range s.clients {
		if sess == nil {
			continue
		}
		if sess.nick != "" {
			if nicks[sess.nick] {
				h.t.Fatalf("duplicate nick %q", sess.nick)
			}
			nicks[sess.nick] = true
		}
		if sess.token != "" {
			if tokens[sess.token] {
				h.t.Fatalf("duplicate token %q", sess.token)
			}
			tokens[sess.token] = true
		}

		if sess.roomID != -1 {
			r := s.roomByID(sess.roomID)
			if r == nil {
				h.t.Fatalf("%s references dead room %d",
					sess.nick, sess.roomID)
			}
			if r.p1 != sess && r.p2 != sess {
				h.t.Fatalf("%s not seated in room %d",
					sess.nick, sess.roomID)
			}
		}
	}

	for i := range s.rooms {
		r := &s.rooms[i]
		if r.id == 0 {
			continue
		}
		count := 0
		for _, p := range []*Session{r.p1, r.p2} {
			if p == nil {
				continue
			}
			count++
			if p.roomID != r.id {
				h.t.Fatalf("occupant %s of room %d points at %d",
					p.nick, r.id, p.roomID)
			}
		}
		if count != r.count {
			h.t.Fatalf("room %d counts %d occupants, has %d",
				r.id, r.count, count)
		}
	}
}

// TestCommandSequenceInvariants throws a deterministic pseudo-random
// command stream at the server and checks the registry invariants
// after every step.
func TestCommandSequenceInvariants(t *testing.T) {
	h := makeHarness(t)
	rng := rand.New(rand.NewSource(7))

	var clients []*proto.Client
	for i := 0; i < 8; i++ {
		cl, _ := h.connect()
		clients = append(clients, cl)
	}

	lines := []string{
		"HELLO p%d", "LIST", "CREATE room%d", "JOIN %d", "READY",
		"LEAVE", "MOVE R", "MOVE P", "MOVE S", "GET_OPP", "PONG",
		"RECONNECT %d", "GARBAGE",
	}

	for step := 0; step < 2000; step++ {
		cl := clients[rng.Intn(len(clients))]
		line := lines[rng.Intn(len(lines))]
		switch line {
		case "HELLO p%d", "CREATE room%d":
			line = fmt.Sprintf(line, rng.Intn(16))
		case "JOIN %d", "RECONNECT %d":
			line = fmt.Sprintf(line, rng.Intn(8))
		}
		h.s.Line(cl, line)

		// Let timers fire now and then
		if rng.Intn(20) == 0 {
			h.advance(time.Duration(rng.Intn(int(rps.SoftTimeout))))
			h.tick()
		}

		h.checkInvariants()
	}
}
