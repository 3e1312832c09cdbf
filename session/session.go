// Session State and Client Registry
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
	"crypto/rand"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"go-rps"
	"go-rps/conf"
	"go-rps/proto"
)

// Session is the server-side state of one connected player.  All
// fields except cl are guarded by the server's global lock.
type Session struct {
	cl        *proto.Client
	nick      string
	token     string
	state     rps.ClientState
	roomID    int // -1 while not in a room
	lastSeen  time.Time
	lastPing  time.Time
	heartbeat rps.Heartbeat
	replaced  bool // session has been adopted by a RECONNECT
	streak    int  // consecutive invalid commands
}

// Server owns every client session and room.  One coarse lock guards
// all of it: each protocol transition touches several entities at
// once (client, room, opponent) and must be observed atomically by
// the other workers and by the supervisor.
type Server struct {
	conf *conf.Conf

	mu       sync.Mutex
	clients  [rps.MaxClients]*Session
	rooms    [rps.MaxRooms]Room
	nextRoom int

	// Injected for tests; wall clock and token entropy are
	// external collaborators.
	now     func() time.Time
	entropy io.Reader

	stop chan struct{}
}

func MakeServer(c *conf.Conf) *Server {
	return &Server{
		conf:     c,
		nextRoom: 1,
		now:      time.Now,
		entropy:  rand.Reader,
		stop:     make(chan struct{}),
	}
}

// Accept admits a freshly accepted connection and starts its worker.
// Called from the TCP listener and the WebSocket upgrader.
func (s *Server) Accept(cl *proto.Client) {
	if _, ok := s.admit(cl); !ok {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				rps.Log.Error().Stringer("client", cl).
					Interface("panic", r).Msg("Worker crashed")
				cl.Send("ERR 500 SERVER_ERROR")
				cl.Close()
			}
		}()
		cl.Serve(s)
	}()
}

// admit creates the session record and registers it.  A full table
// turns the connection away with ERR 200.
func (s *Server) admit(cl *proto.Client) (*Session, bool) {
	sess := &Session{
		cl:        cl,
		state:     rps.StateConnected,
		roomID:    -1,
		token:     s.genToken(),
		lastSeen:  s.now(),
		lastPing:  s.now(),
		heartbeat: rps.Live,
	}

	if !s.register(sess) {
		rps.Log.Warn().Stringer("client", cl).Msg("Turning connection away, server full")
		cl.Send("ERR 200 SERVER_FULL")
		cl.Close()
		return nil, false
	}
	return sess, true
}

// register inserts the session into the first free slot.  It takes
// the global lock itself; every other registry operation expects the
// caller to hold it.
func (s *Server) register(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.clients {
		if s.clients[i] == nil {
			s.clients[i] = sess
			clientsActive.Inc()
			return true
		}
	}
	return false
}

func (s *Server) unregister(sess *Session) {
	for i := range s.clients {
		if s.clients[i] == sess {
			s.clients[i] = nil
			clientsActive.Dec()
			return
		}
	}
}

func (s *Server) findByClient(cl *proto.Client) *Session {
	for _, sess := range s.clients {
		if sess != nil && sess.cl == cl {
			return sess
		}
	}
	return nil
}

func (s *Server) findByNick(nick string) *Session {
	if nick == "" {
		return nil
	}
	for _, sess := range s.clients {
		if sess != nil && sess.nick == nick {
			return sess
		}
	}
	return nil
}

// findByToken ignores sessions without a token and returns at most
// one match.
func (s *Server) findByToken(token string) *Session {
	if token == "" {
		return nil
	}
	for _, sess := range s.clients {
		if sess != nil && sess.token == token {
			return sess
		}
	}
	return nil
}

// genToken draws a fresh 30-character hexadecimal session handle.
func (s *Server) genToken() string {
	buf := make([]byte, rps.TokenLen/2)
	if _, err := io.ReadFull(s.entropy, buf); err != nil {
		panic("Entropy source failed: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
