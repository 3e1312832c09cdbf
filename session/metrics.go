// Instrumentation
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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	clientsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rps_clients_active",
		Help: "Currently registered client sessions",
	})

	roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rps_rooms_active",
		Help: "Currently allocated rooms",
	})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rps_commands_total",
		Help: "Dispatched commands by verb",
	}, []string{"verb"})

	protocolErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rps_protocol_errors_total",
		Help: "ERR lines sent to clients by code",
	}, []string{"code"})

	gamesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rps_games_finished_total",
		Help: "Matches that reached the win threshold",
	})

	gamesForfeited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rps_games_forfeited_total",
		Help: "Matches abandoned by a disconnecting player",
	})

	roundsPlayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rps_rounds_total",
		Help: "Rounds started",
	})

	reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rps_reconnects_total",
		Help: "Sessions successfully adopted via RECONNECT",
	})

	timeoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rps_timeouts_total",
		Help: "Timeout events by kind (soft, hard, round)",
	}, []string{"kind"})
)

// knownVerbs keeps the verb label cardinality bounded; anything else
// is counted as "unknown".
var knownVerbs = map[string]bool{
	"HELLO": true, "LIST": true, "CREATE": true, "JOIN": true,
	"READY": true, "LEAVE": true, "MOVE": true, "GET_OPP": true,
	"PONG": true, "RECONNECT": true, "QUIT": true,
}

func countCommand(verb string) {
	if !knownVerbs[verb] {
		verb = "unknown"
	}
	commandsTotal.WithLabelValues(verb).Inc()
}
