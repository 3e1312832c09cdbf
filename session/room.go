// Room Registry
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
	"time"

	"go-rps"
)

// Room is one match slot.  A zero id marks the slot as empty.  Rooms
// reference sessions directly while sessions carry only the room id;
// this keeps invalidation after RECONNECT a single-pointer update.
type Room struct {
	id     int
	name   string
	p1, p2 *Session
	count  int
	state  rps.RoomState

	round      int
	scoreP1    int
	scoreP2    int
	moveP1     rps.Move
	moveP2     rps.Move
	roundStart time.Time
	started    time.Time
	awaiting   bool
}

// createRoom claims the first empty slot.  Ids are assigned
// monotonically from 1 and never reused.
func (s *Server) createRoom(name string) *Room {
	for i := range s.rooms {
		if s.rooms[i].id != 0 {
			continue
		}
		r := &s.rooms[i]
		*r = Room{
			id:    s.nextRoom,
			name:  name,
			state: rps.RoomOpen,
		}
		s.nextRoom++
		roomsActive.Inc()
		return r
	}
	return nil
}

func (s *Server) roomByID(id int) *Room {
	if id < 0 {
		return nil
	}
	for i := range s.rooms {
		if s.rooms[i].id == id {
			return &s.rooms[i]
		}
	}
	return nil
}

// opponent returns the other occupant, or nil while the room is not
// full.
func (r *Room) opponent(sess *Session) *Session {
	if r.count < 2 {
		return nil
	}
	switch sess {
	case r.p1:
		return r.p2
	case r.p2:
		return r.p1
	default:
		return nil
	}
}

// addPlayer seats the session in the room and moves it into the
// lobby.  The second occupant closes the room.
func (s *Server) addPlayer(sess *Session, r *Room) {
	if r.p1 == nil {
		r.p1 = sess
	} else {
		r.p2 = sess
	}
	r.count++
	if r.count == 2 {
		r.state = rps.RoomFull
	}
	sess.roomID = r.id
	sess.state = rps.StateInLobby
}

// removePlayer takes the session out of the room.  A remaining
// occupant is canonicalised to p1, notified, and the room reopens; a
// room left empty is released.
func (s *Server) removePlayer(sess *Session, r *Room) {
	if sess != r.p1 && sess != r.p2 {
		return
	}

	if r.count == 2 {
		if r.p1 == sess {
			r.p1 = r.p2
		}
		r.p2 = nil
		r.count--
		r.state = rps.RoomOpen
		r.p1.cl.Send("PLAYER_LEFT %s", sess.nick)
		return
	}

	s.releaseRoom(r)
}

// releaseRoom clears the slot for reuse.
func (s *Server) releaseRoom(r *Room) {
	if r.id == 0 {
		return
	}
	*r = Room{}
	roomsActive.Dec()
}
