// Match Engine
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
)

// startGame moves a full room with two ready players into play.
func (s *Server) startGame(r *Room) {
	r.state = rps.RoomPlaying
	r.round = 0
	r.scoreP1 = 0
	r.scoreP2 = 0
	r.started = s.now()

	r.p1.cl.Send("G_ST")
	r.p2.cl.Send("G_ST")
	r.p1.state = rps.StatePlaying
	r.p2.state = rps.StatePlaying

	rps.Log.Info().
		Int("room", r.id).
		Str("p1", r.p1.nick).
		Str("p2", r.p2.nick).
		Msg("Game starting")

	s.startNextRound(r)
}

func (s *Server) startNextRound(r *Room) {
	r.round++
	r.moveP1 = rps.NoMove
	r.moveP2 = rps.NoMove
	r.roundStart = s.now()
	r.awaiting = true

	r.p1.cl.Send("R_ST %d", r.round)
	r.p2.cl.Send("R_ST %d", r.round)
	roundsPlayed.Inc()
}

// resolveRound settles a round once both moves are in.  Each player
// sees the result from their own side: own move, own score first.
func (s *Server) resolveRound(r *Room) {
	var winner string
	switch {
	case r.moveP1 == r.moveP2:
		winner = "DRAW"
	case r.moveP1.Beats(r.moveP2):
		r.scoreP1++
		winner = r.p1.nick
	default:
		r.scoreP2++
		winner = r.p2.nick
	}

	r.p1.cl.Send("R_RE %s %c %c %d %d",
		winner, r.moveP1, r.moveP2, r.scoreP1, r.scoreP2)
	r.p2.cl.Send("R_RE %s %c %c %d %d",
		winner, r.moveP2, r.moveP1, r.scoreP2, r.scoreP1)

	if r.scoreP1 >= rps.WinThreshold || r.scoreP2 >= rps.WinThreshold {
		s.endGame(r)
	} else {
		s.startNextRound(r)
	}
}

// endGame announces the winner, archives the result and returns both
// players to the room list.
func (s *Server) endGame(r *Room) {
	winner := r.p2.nick
	if r.scoreP1 >= rps.WinThreshold {
		winner = r.p1.nick
	}

	r.p1.cl.Send("G_END %s", winner)
	r.p2.cl.Send("G_END %s", winner)

	s.record(&rps.Result{
		Room:    r.name,
		P1:      r.p1.nick,
		P2:      r.p2.nick,
		Winner:  winner,
		ScoreP1: r.scoreP1,
		ScoreP2: r.scoreP2,
		Rounds:  r.round,
		Started: r.started,
		Ended:   s.now(),
	})
	gamesFinished.Inc()

	for _, p := range []*Session{r.p1, r.p2} {
		p.state = rps.StateAuth
		p.roomID = -1
	}
	s.releaseRoom(r)
}

// roundTimeout closes a round whose timer expired.  A lone mover wins
// the round, a double miss is a draw; missing moves show up as X.
func (s *Server) roundTimeout(r *Room) {
	if r.state == rps.RoomPaused {
		return
	}
	r.awaiting = false
	timeoutsTotal.WithLabelValues("round").Inc()

	if r.moveP1 == rps.NoMove && r.moveP2 != rps.NoMove {
		r.scoreP2++
	} else if r.moveP2 == rps.NoMove && r.moveP1 != rps.NoMove {
		r.scoreP1++
	}

	m1, m2 := byte('X'), byte('X')
	if r.moveP1 != rps.NoMove {
		m1 = byte(r.moveP1)
	}
	if r.moveP2 != rps.NoMove {
		m2 = byte(r.moveP2)
	}

	r.p1.cl.Send("R_RE T %c %c %d %d", m1, m2, r.scoreP1, r.scoreP2)
	r.p2.cl.Send("R_RE T %c %c %d %d", m2, m1, r.scoreP2, r.scoreP1)

	if r.scoreP1 >= rps.WinThreshold || r.scoreP2 >= rps.WinThreshold {
		s.endGame(r)
	} else {
		s.startNextRound(r)
	}
}

// record hands a finished match to the database manager without ever
// blocking under the global lock.
func (s *Server) record(res *rps.Result) {
	if s.conf == nil || s.conf.Results == nil {
		return
	}
	select {
	case s.conf.Results <- res:
	default:
		rps.Log.Warn().Str("room", res.Room).Msg("Result channel full, dropping record")
	}
}
