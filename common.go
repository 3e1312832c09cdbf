// Common types and constants
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

package rps

import (
	"fmt"
	"time"
)

type (
	ClientState uint8
	RoomState   uint8
	Heartbeat   uint8
	Move        byte
)

// Client lifecycle states
const (
	StateConnected ClientState = iota
	StateAuth
	StateInLobby
	StateReady
	StatePlaying
)

// Room lifecycle states
const (
	RoomOpen RoomState = iota
	RoomFull
	RoomPlaying
	RoomPaused
)

// Heartbeat progression of a client
const (
	Live Heartbeat = iota
	Soft
	Hard
)

// Legal moves; NoMove marks an empty move slot
const (
	NoMove   Move = 0
	Rock     Move = 'R'
	Paper    Move = 'P'
	Scissors Move = 'S'
)

const (
	// Upper bound on concurrently connected clients
	MaxClients = 128
	// Upper bound on concurrently managed rooms
	MaxRooms = 64
	// Maximal length of a protocol line, CRLF included
	LineMax = 512
	// Maximal nickname length in bytes
	NickMax = 32
	// Maximal room name length in bytes
	RoomNameMax = 32
	// Length of a session token (hexadecimal characters)
	TokenLen = 30
	// Score a player has to reach to win a match
	WinThreshold = 5
	// Consecutive invalid messages tolerated before disconnecting
	MaxInvalidStreak = 3
)

const (
	// Time a player has to submit a move
	RoundTimeout = 10 * time.Second
	// Interval between heartbeat pings
	PingInterval = 3 * time.Second
	// Silence before a client is declared soft-timed-out
	SoftTimeout = 6 * time.Second
	// Silence before a soft-timed-out session is abandoned
	HardTimeout = 45 * time.Second
	// Granularity of the supervisor loop
	Tick = 200 * time.Millisecond
)

// Default listening address, used when no arguments are passed
const (
	DefaultBindIP = "0.0.0.0"
	DefaultPort   = 2500
)

func (s ClientState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateAuth:
		return "auth"
	case StateInLobby:
		return "in-lobby"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	default:
		panic(fmt.Sprintf("Illegal client state: %d", uint8(s)))
	}
}

// String returns the wire name of a room state, as used by R_LIST.
func (s RoomState) String() string {
	switch s {
	case RoomOpen:
		return "OPEN"
	case RoomFull:
		return "FULL"
	case RoomPlaying:
		return "PLAYING"
	case RoomPaused:
		return "PAUSED"
	default:
		panic(fmt.Sprintf("Illegal room state: %d", uint8(s)))
	}
}

func (h Heartbeat) String() string {
	switch h {
	case Live:
		return "live"
	case Soft:
		return "soft"
	case Hard:
		return "hard"
	default:
		panic(fmt.Sprintf("Illegal heartbeat state: %d", uint8(h)))
	}
}

// Beats reports whether m wins over o in the canonical cycle.
func (m Move) Beats(o Move) bool {
	return (m == Rock && o == Scissors) ||
		(m == Paper && o == Rock) ||
		(m == Scissors && o == Paper)
}

// ParseMove accepts exactly the tokens "R", "P" and "S".
func ParseMove(tok string) (Move, bool) {
	switch tok {
	case "R":
		return Rock, true
	case "P":
		return Paper, true
	case "S":
		return Scissors, true
	default:
		return NoMove, false
	}
}

// Result describes one finished match, as handed to the database
// manager.  Forfeit is set when the match ended because a player
// dropped out instead of a score reaching the win threshold.
type Result struct {
	Room    string
	P1, P2  string
	Winner  string
	ScoreP1 int
	ScoreP2 int
	Rounds  int
	Forfeit bool
	Started time.Time
	Ended   time.Time
}
