// Protocol Dispatch
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
	"strconv"
	"strings"

	"go-rps"
	"go-rps/proto"
)

// Line routes one inbound frame.  Every handler runs while the
// global lock is held; its sends and state changes are observed
// atomically by the other workers and the supervisor.
func (s *Server) Line(cl *proto.Client, line string) bool {
	verb, args := proto.Split(line)
	if verb == "" {
		// Empty lines are ignored and do not refresh last_seen
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findByClient(cl)
	if sess == nil {
		return false
	}
	sess.lastSeen = s.now()
	countCommand(verb)

	quit := false
	switch verb {
	case "HELLO":
		s.hello(sess, args)
	case "LIST":
		s.list(sess)
	case "CREATE":
		s.create(sess, args)
	case "JOIN":
		s.join(sess, args)
	case "READY":
		s.ready(sess)
	case "LEAVE":
		s.leave(sess)
	case "MOVE":
		s.move(sess, args)
	case "GET_OPP":
		s.getOpponent(sess)
	case "PONG":
		// Nothing beyond the last_seen refresh above
	case "RECONNECT":
		s.reconnect(sess, args)
	case "QUIT":
		sess.streak = 0
		sess.cl.Send("OK bye")
		quit = true
	default:
		s.invalid(sess, 100, "BAD_FORMAT unknown_command")
	}

	return !quit && sess.streak < rps.MaxInvalidStreak
}

// Malformed handles a frame that exceeded the line limit.
func (s *Server) Malformed(cl *proto.Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findByClient(cl)
	if sess == nil {
		return false
	}
	sess.lastSeen = s.now()
	s.invalid(sess, 100, "BAD_FORMAT line_too_long")
	return sess.streak < rps.MaxInvalidStreak
}

// Closed is the worker's terminal cleanup.  A soft-timed-out session
// stays registered so a RECONNECT may still adopt it; the supervisor
// finalises it after the hard timeout.
func (s *Server) Closed(cl *proto.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findByClient(cl)
	if sess == nil {
		// Adopted by a RECONNECT or already finalised
		return
	}
	if sess.replaced {
		return
	}
	if sess.heartbeat == rps.Soft {
		rps.Log.Info().Str("nick", sess.nick).
			Msg("Client disconnected, waiting for reconnect")
		return
	}

	rps.Log.Info().Str("nick", sess.nick).Msg("Client fully disconnected")
	s.hardDisconnect(sess)
	s.unregister(sess)
}

// invalid reports a protocol error that counts towards the streak.
// The third consecutive error force-closes the read half.
func (s *Server) invalid(sess *Session, code int, rest string) {
	sess.cl.Send("ERR %d %s", code, rest)
	protocolErrors.WithLabelValues(strconv.Itoa(code)).Inc()
	sess.streak++
	if sess.streak >= rps.MaxInvalidStreak {
		rps.Log.Info().Str("nick", sess.nick).
			Msg("Exceeded invalid message limit, disconnecting")
		sess.cl.CloseRead()
	}
}

// refuse reports a protocol error that leaves the streak alone.
func (s *Server) refuse(sess *Session, code int, rest string) {
	sess.cl.Send("ERR %d %s", code, rest)
	protocolErrors.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (s *Server) hello(sess *Session, args string) {
	nick := proto.Arg(args)
	if nick == "" {
		s.invalid(sess, 100, "BAD_FORMAT missing_nick")
		return
	}
	if len(nick) > rps.NickMax {
		s.invalid(sess, 100, "BAD_FORMAT nick_too_long")
		return
	}
	if sess.state != rps.StateConnected {
		s.invalid(sess, 101, "INVALID_STATE")
		return
	}
	sess.streak = 0

	if s.findByNick(nick) != nil {
		s.refuse(sess, 107, "NICKNAME_TAKEN")
		return
	}

	sess.nick = nick
	sess.token = s.genToken()
	sess.state = rps.StateAuth
	sess.cl.Send("WELCOME %s", sess.token)
}

func (s *Server) list(sess *Session) {
	if sess.state != rps.StateAuth {
		s.invalid(sess, 101, "INVALID_STATE not_auth")
		return
	}
	sess.streak = 0
	s.sendRoomList(sess)
}

// sendRoomList emits the room table snapshot, also used after a
// RECONNECT into the Auth state.
func (s *Server) sendRoomList(sess *Session) {
	count := 0
	for i := range s.rooms {
		if s.rooms[i].id != 0 {
			count++
		}
	}

	sess.cl.Send("R_LIST %d", count)
	for i := range s.rooms {
		r := &s.rooms[i]
		if r.id == 0 {
			continue
		}
		sess.cl.Send("ROOM %d %s %d/2 %s", r.id, r.name, r.count, r.state)
	}
}

func (s *Server) create(sess *Session, args string) {
	if sess.state != rps.StateAuth {
		s.invalid(sess, 101, "INVALID_STATE")
		return
	}
	if args == "" {
		s.invalid(sess, 100, "BAD_FORMAT missing_room_name")
		return
	}
	if strings.Contains(args, " ") {
		s.invalid(sess, 100, "BAD_FORMAT invalid_room_name")
		return
	}
	name := proto.Arg(args)
	if name == "" {
		s.invalid(sess, 100, "BAD_FORMAT missing_room_name")
		return
	}
	if len(name) > rps.RoomNameMax {
		s.invalid(sess, 100, "BAD_FORMAT room_name_too_long")
		return
	}
	sess.streak = 0

	r := s.createRoom(name)
	if r == nil {
		s.refuse(sess, 200, "SERVER_FULL")
		return
	}

	// The creator takes the first seat
	s.addPlayer(sess, r)
	sess.cl.Send("R_CREATED %d", r.id)
}

func (s *Server) join(sess *Session, args string) {
	if sess.state != rps.StateAuth {
		s.invalid(sess, 101, "INVALID_STATE")
		return
	}
	idStr := proto.Arg(args)
	if idStr == "" {
		s.invalid(sess, 100, "BAD_FORMAT missing_room_id")
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		s.invalid(sess, 100, "BAD_FORMAT invalid_room_id")
		return
	}

	r := s.roomByID(id)
	if r == nil {
		s.invalid(sess, 104, "UNKNOWN_ROOM")
		return
	}
	if r.state != rps.RoomOpen {
		s.invalid(sess, 106, "ROOM_WRONG_STATE")
		return
	}
	sess.streak = 0

	s.addPlayer(sess, r)
	sess.cl.Send("R_JOINED %d", r.id)

	if r.count == 2 {
		r.opponent(sess).cl.Send("P_JOINED %s", sess.nick)
	}
}

func (s *Server) ready(sess *Session) {
	if sess.state != rps.StateInLobby {
		s.invalid(sess, 101, "INVALID_STATE not_in_lobby")
		return
	}
	r := s.roomByID(sess.roomID)
	if r == nil {
		s.invalid(sess, 104, "UNKNOWN_ROOM")
		return
	}
	sess.streak = 0

	sess.state = rps.StateReady
	sess.cl.Send("OK you_are_ready")

	if r.count == 1 {
		return
	}
	opp := r.opponent(sess)
	opp.cl.Send("P_READY %s", sess.nick)

	if opp.state == rps.StateReady {
		s.startGame(r)
	}
}

func (s *Server) leave(sess *Session) {
	if sess.state != rps.StateInLobby && sess.state != rps.StateReady {
		s.invalid(sess, 101, "INVALID_STATE cannot_leave_now")
		return
	}
	r := s.roomByID(sess.roomID)
	if r == nil {
		s.invalid(sess, 104, "UNKNOWN_ROOM")
		return
	}
	if r.state != rps.RoomOpen && r.state != rps.RoomFull {
		s.invalid(sess, 101, "INVALID_STATE cannot_leave_now")
		return
	}
	sess.streak = 0

	id := r.id
	s.removePlayer(sess, r)
	sess.roomID = -1
	sess.state = rps.StateAuth
	sess.cl.Send("OK left_room %d", id)
}

func (s *Server) move(sess *Session, args string) {
	if sess.state != rps.StatePlaying {
		s.invalid(sess, 101, "INVALID_STATE")
		return
	}
	r := s.roomByID(sess.roomID)
	if r == nil {
		s.invalid(sess, 104, "UNKNOWN_ROOM")
		return
	}
	if r.state != rps.RoomPlaying {
		s.invalid(sess, 101, "INVALID_STATE room_not_playing")
		return
	}
	if !r.awaiting {
		s.invalid(sess, 101, "INVALID_STATE not_accepting_moves")
		return
	}
	m, ok := rps.ParseMove(proto.Arg(args))
	if !ok {
		s.invalid(sess, 100, "BAD_FORMAT invalid_move")
		return
	}
	sess.streak = 0

	// A second move in the same round must not mutate move state
	if r.p1 == sess {
		if r.moveP1 != rps.NoMove {
			s.refuse(sess, 101, "INVALID_STATE move_already_sent")
			return
		}
		r.moveP1 = m
	} else {
		if r.moveP2 != rps.NoMove {
			s.refuse(sess, 101, "INVALID_STATE move_already_sent")
			return
		}
		r.moveP2 = m
	}

	sess.cl.Send("M_ACC")

	if r.moveP1 != rps.NoMove && r.moveP2 != rps.NoMove {
		r.awaiting = false
		s.resolveRound(r)
	}
}

func (s *Server) getOpponent(sess *Session) {
	if sess.state != rps.StateInLobby && sess.state != rps.StateReady {
		s.invalid(sess, 101, "INVALID_STATE not_in_lobby")
		return
	}
	r := s.roomByID(sess.roomID)
	if r == nil {
		s.invalid(sess, 104, "UNKNOWN_ROOM")
		return
	}
	sess.streak = 0

	if r.count == 1 {
		sess.cl.Send("OPP_INF NONE")
		return
	}
	opp := r.opponent(sess)
	status := "NOT_READY"
	if opp.state == rps.StateReady {
		status = "READY"
	}
	sess.cl.Send("OPP_INF %s %s", opp.nick, status)
}
