// Heartbeat Supervisor
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
	"context"
	"time"

	"go-rps"
)

func (*Server) String() string {
	return "Session Supervisor"
}

// Start runs the periodic sweep that drives pings, the soft and hard
// client timeouts and the per-round move timer.
func (s *Server) Start(ctx context.Context) error {
	tick := time.NewTicker(rps.Tick)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case <-tick.C:
		}

		now := s.now()
		s.mu.Lock()
		s.checkClients(now)
		s.checkRooms(now)
		s.mu.Unlock()
	}
}

func (s *Server) Shutdown() {
	close(s.stop)
}

func (s *Server) checkClients(now time.Time) {
	for _, sess := range s.clients {
		if sess == nil {
			continue
		}
		idle := now.Sub(sess.lastSeen)

		switch sess.heartbeat {
		case rps.Live:
			if idle >= rps.SoftTimeout {
				rps.Log.Info().Str("nick", sess.nick).
					Dur("idle", idle).Msg("Client soft timeout")
				sess.heartbeat = rps.Soft
				timeoutsTotal.WithLabelValues("soft").Inc()
				s.softTimeout(sess)
				sess.cl.CloseRead()
				continue
			}
			if now.Sub(sess.lastPing) >= rps.PingInterval {
				sess.cl.Send("PING")
				sess.lastPing = now
			}

		case rps.Soft:
			if idle >= rps.HardTimeout {
				rps.Log.Info().Str("nick", sess.nick).
					Msg("Client hard timeout")
				sess.heartbeat = rps.Hard
				timeoutsTotal.WithLabelValues("hard").Inc()
				s.hardDisconnect(sess)
				s.unregister(sess)
				sess.cl.CloseRead()
			}
		}
	}
}

// softTimeout suspends whatever the silent client was doing: a ready
// player is demoted back to the lobby, a running game is paused.
func (s *Server) softTimeout(sess *Session) {
	switch sess.state {
	case rps.StateInLobby, rps.StateReady:
		r := s.roomByID(sess.roomID)
		if r == nil {
			return
		}
		sess.state = rps.StateInLobby
		if opp := r.opponent(sess); opp != nil {
			opp.cl.Send("OPP_INF %s N_R", sess.nick)
		}

	case rps.StatePlaying:
		r := s.roomByID(sess.roomID)
		if r == nil {
			return
		}
		r.state = rps.RoomPaused
		r.awaiting = false
		if opp := r.opponent(sess); opp != nil {
			opp.cl.Send("G_PAUSE")
		}
		rps.Log.Info().Int("room", r.id).Msg("Game paused")
	}
}

// hardDisconnect finalises a session that will never come back.  A
// session already adopted via RECONNECT needs no cleanup.
func (s *Server) hardDisconnect(sess *Session) {
	if sess.replaced {
		return
	}

	switch sess.state {
	case rps.StateInLobby, rps.StateReady:
		if r := s.roomByID(sess.roomID); r != nil {
			s.removePlayer(sess, r)
		}

	case rps.StatePlaying:
		r := s.roomByID(sess.roomID)
		if r == nil {
			return
		}
		if opp := r.opponent(sess); opp != nil {
			opp.cl.Send("G_END opp_l")
			opp.state = rps.StateAuth
			opp.roomID = -1

			s.record(&rps.Result{
				Room:    r.name,
				P1:      r.p1.nick,
				P2:      r.p2.nick,
				Winner:  opp.nick,
				ScoreP1: r.scoreP1,
				ScoreP2: r.scoreP2,
				Rounds:  r.round,
				Forfeit: true,
				Started: r.started,
				Ended:   s.now(),
			})
			gamesForfeited.Inc()
		}
		rps.Log.Info().Int("room", r.id).Str("nick", sess.nick).
			Msg("Game forfeited by disconnect")
		s.releaseRoom(r)
	}
}

// checkRooms fires the round timer.  Paused rooms are skipped inside
// roundTimeout so the timer is effectively suspended with the game.
func (s *Server) checkRooms(now time.Time) {
	for i := range s.rooms {
		r := &s.rooms[i]
		if r.id == 0 || r.state != rps.RoomPlaying || !r.awaiting {
			continue
		}
		if now.Sub(r.roundStart) >= rps.RoundTimeout {
			s.roundTimeout(r)
		}
	}
}
