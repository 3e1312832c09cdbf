// Shared logging
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
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger.  cmd/server adjusts the level from
// the configuration; everything below info is protocol tracing.
var Log = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.TimeOnly,
}).With().Timestamp().Logger()

// SetLogLevel applies a level by name, ignoring unknown names.
func SetLogLevel(name string) {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		Log.Warn().Str("level", name).Msg("Unknown log level")
		return
	}
	Log = Log.Level(lvl)
}
