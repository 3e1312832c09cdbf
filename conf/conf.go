// Configuration Specification
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

package conf

import (
	"go-rps"
)

// Internal representation of the configuration file.  Every value can
// also be set through the environment after the file has been read.
type conf struct {
	Log struct {
		Level string `toml:"level" env:"LEVEL"`
	} `toml:"log" envPrefix:"RPS_LOG_"`
	Proto struct {
		Bind      string `toml:"bind" env:"BIND"`
		Port      uint16 `toml:"port" env:"PORT"`
		Websocket bool   `toml:"websocket" env:"WEBSOCKET"`
	} `toml:"proto" envPrefix:"RPS_"`
	Database struct {
		File string `toml:"file" env:"FILE"`
	} `toml:"database" envPrefix:"RPS_DB_"`
	Web struct {
		Enabled bool   `toml:"enabled" env:"ENABLED"`
		Port    uint16 `toml:"port" env:"PORT"`
	} `toml:"web" envPrefix:"RPS_WEB_"`
}

// Public configuration
type Conf struct {
	// Log level by name ("debug" traces every protocol line)
	LogLevel string

	// Protocol Configuration
	BindIP    string // Address the TCP listener binds to
	TCPPort   uint16 // Port for accepting connections
	WebSocket bool   // Is the WebSocket transport enabled

	// Database Configuration
	Database string // File to store match records in, "" disables
	DB       DatabaseManager

	// Finished matches, consumed by the database manager
	Results chan *rps.Result

	// Website configuration
	WebInterface bool   // Has the web interface been enabled?
	WebPort      uint16 // Port that the web server listens on

	// Internal state
	man []Manager // List of system managers
	run bool      // Running flag
}

// Configuration object used by default
var defaultConfig = Conf{
	LogLevel: "info",

	// Protocol Configuration
	BindIP:    rps.DefaultBindIP,
	TCPPort:   rps.DefaultPort,
	WebSocket: true,

	// Database configuration
	Database: "rps.db",

	// Website configuration
	WebInterface: true,
	WebPort:      8080,
}
