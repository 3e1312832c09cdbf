// Session Resumption
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
	"go-rps"
	"go-rps/proto"
)

// reconnect adopts a soft-timed-out session onto a fresh connection.
// Only a client that has not yet said HELLO may attempt it, and every
// refusal closes the attempt's read half: a client that cannot resume
// has nothing further to say on this connection.
func (s *Server) reconnect(sess *Session, args string) {
	if sess.state != rps.StateConnected {
		s.invalid(sess, 101, "INVALID_STATE not_connected")
		sess.cl.CloseRead()
		return
	}

	token := proto.Arg(args)
	if token == "" {
		s.invalid(sess, 100, "BAD_FORMAT missing_token")
		sess.cl.CloseRead()
		return
	}

	old := s.findByToken(token)
	if old == nil || old == sess || old.heartbeat != rps.Soft {
		s.invalid(sess, 110, "cannot_reconnect_now")
		sess.cl.CloseRead()
		return
	}
	// Adopt the old session's identity and place
	sess.nick = old.nick
	sess.token = old.token
	sess.state = old.state
	sess.roomID = old.roomID
	sess.streak = old.streak
	sess.heartbeat = rps.Live
	sess.lastSeen = s.now()
	sess.lastPing = s.now()
	old.replaced = true

	switch sess.state {
	case rps.StateAuth:
		sess.cl.Send("REC_OK C")
		s.sendRoomList(sess)

	case rps.StateInLobby, rps.StateReady:
		if r := s.roomByID(sess.roomID); r != nil {
			s.replaceInRoom(r, old, sess)
		}
		sess.cl.Send("REC_OK L")

	case rps.StatePlaying:
		r := s.roomByID(sess.roomID)
		if r == nil {
			sess.cl.Send("ERR 104 UNKNOWN_ROOM")
			break
		}
		s.replaceInRoom(r, old, sess)

		// Resume play with a fresh round timer
		r.state = rps.RoomPlaying
		r.awaiting = true
		r.roundStart = s.now()

		own := r.moveP2
		if r.p1 == sess {
			own = r.moveP1
		}
		sess.cl.Send("REC_OK G %d %d %d%s",
			r.scoreP1, r.scoreP2, r.round, moveMarker(own))

		if opp := r.opponent(sess); opp != nil {
			theirs := r.moveP1
			if r.p1 == sess {
				theirs = r.moveP2
			}
			opp.cl.Send("G_RES %d %d %d%s",
				r.round, r.scoreP1, r.scoreP2, moveMarker(theirs))
		}

	default:
		sess.cl.Send("REC_OK CONNECTED")
	}

	rps.Log.Info().Str("nick", sess.nick).Msg("Client reconnected")
	reconnects.Inc()
	s.unregister(old)
}

func (s *Server) replaceInRoom(r *Room, old, sess *Session) {
	if r.p1 == old {
		r.p1 = sess
	} else if r.p2 == old {
		r.p2 = sess
	}
}

// moveMarker renders whether a move has been recorded this round
// without revealing which one.
func moveMarker(m rps.Move) string {
	if m == rps.NoMove {
		return ""
	}
	return " X"
}
