// Session Resumption Tests
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-rps"
	"go-rps/proto"
)

// softTimeout lets the given client go silent until the supervisor
// marks it soft, while the other client keeps answering pings.
func (h *harness) softTimeout(silent, alive *proto.Client) {
	h.advance(rps.SoftTimeout)
	if alive != nil {
		h.s.Line(alive, "PONG")
	}
	h.tick()
	require.Equal(h.t, rps.Soft, h.session(silent).heartbeat)
}

func TestReconnectAuth(t *testing.T) {
	h := makeHarness(t)
	alice, _, token := h.login("alice")
	h.softTimeout(alice, nil)

	cl, p := h.connect()
	h.s.Line(cl, "RECONNECT "+token)
	assert.Equal(t, []string{"REC_OK C", "R_LIST 0"}, p.lines())

	sess := h.session(cl)
	assert.Equal(t, "alice", sess.nick)
	assert.Equal(t, rps.StateAuth, sess.state)

	// The old session is gone; the nick is not duplicated
	assert.Same(t, sess, h.s.findByNick("alice"))
}

func TestReconnectLobby(t *testing.T) {
	h := makeHarness(t)
	alice, bob, _, pb := h.lobby()
	token := h.session(alice).token

	h.s.Line(alice, "READY")
	pb.lines()

	h.softTimeout(alice, bob)
	// The ready state is lost with the soft timeout
	assert.Equal(t, "OPP_INF alice N_R", pb.lines()[0])

	cl, p := h.connect()
	h.s.Line(cl, "RECONNECT "+token)
	assert.Equal(t, []string{"REC_OK L"}, p.lines())

	sess := h.session(cl)
	assert.Equal(t, rps.StateInLobby, sess.state)
	assert.Same(t, sess, h.room(1).p1)
}

func TestReconnectPlaying(t *testing.T) {
	h := makeHarness(t)
	alice, bob, pa, pb := h.playing()
	token := h.session(alice).token

	h.s.Line(alice, "MOVE R")
	pa.lines()

	h.softTimeout(alice, bob)
	assert.Equal(t, "G_PAUSE", pb.lines()[0])
	assert.Equal(t, rps.RoomPaused, h.room(1).state)

	// The round timer is suspended while the game is paused
	h.advance(rps.RoundTimeout)
	h.s.Line(bob, "PONG")
	h.tickRooms()
	assert.Equal(t, 1, h.room(1).round)

	cl, p := h.connect()
	h.s.Line(cl, "RECONNECT "+token)

	// The recorded move is reported masked, never by value
	assert.Equal(t, []string{"REC_OK G 0 0 1 X"}, p.lines())
	assert.Equal(t, []string{"G_RES 1 0 0"}, pb.lines())

	r := h.room(1)
	assert.Equal(t, rps.RoomPlaying, r.state)
	assert.True(t, r.awaiting)
	assert.Equal(t, h.now, r.roundStart)
	assert.Same(t, h.session(cl), r.p1)

	// Play resumes: bob answers and the round resolves
	h.s.Line(bob, "MOVE S")
	assert.Equal(t, []string{"M_ACC", "R_RE alice S R 0 1", "R_ST 2"}, pb.lines())
	assert.Equal(t, []string{"R_RE alice R S 1 0", "R_ST 2"}, p.lines())
}

func TestReconnectRefusals(t *testing.T) {
	h := makeHarness(t)

	t.Run("unknown-token", func(t *testing.T) {
		cl, p := h.connect()
		h.s.Line(cl, "RECONNECT deadbeef")
		assert.Equal(t, []string{"ERR 110 cannot_reconnect_now"}, p.lines())
		assert.True(t, p.isReadClosed())
	})

	t.Run("missing-token", func(t *testing.T) {
		cl, p := h.connect()
		h.s.Line(cl, "RECONNECT")
		assert.Equal(t, []string{"ERR 100 BAD_FORMAT missing_token"}, p.lines())
		assert.True(t, p.isReadClosed())
	})

	t.Run("already-authenticated", func(t *testing.T) {
		cl, p, token := h.login("carol")
		h.s.Line(cl, "RECONNECT "+token)
		assert.Equal(t, []string{"ERR 101 INVALID_STATE not_connected"}, p.lines())
		assert.True(t, p.isReadClosed())
	})

	t.Run("session-still-live", func(t *testing.T) {
		_, _, token := h.login("dave")
		cl, p := h.connect()
		h.s.Line(cl, "RECONNECT "+token)
		assert.Equal(t, []string{"ERR 110 cannot_reconnect_now"}, p.lines())
		assert.True(t, p.isReadClosed())
	})
}

func TestClosedKeepsSoftSession(t *testing.T) {
	h := makeHarness(t)
	alice, _, _ := h.login("alice")
	h.softTimeout(alice, nil)

	// The worker exits after the forced read shutdown, but the
	// session must survive for a later RECONNECT
	h.s.Closed(alice)
	assert.NotNil(t, h.s.findByNick("alice"))
}

func TestClosedRemovesLiveSession(t *testing.T) {
	h := makeHarness(t)
	alice, _, _ := h.login("alice")

	h.s.Closed(alice)
	assert.Nil(t, h.s.findByNick("alice"))
}
