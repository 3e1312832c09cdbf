// Entry point
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

package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"

	"go-rps"
	"go-rps/conf"
	"go-rps/db"
	"go-rps/proto"
	"go-rps/session"
	"go-rps/web"
)

// Default file name for the configuration file
const defconf = "rps.toml"

func main() {
	var (
		confFile = flag.String("conf", defconf, "Name of configuration file")
		dumpConf = flag.Bool("dump-config", false, "Dump default configuration")
	)

	flag.Parse()
	if flag.NArg() > 2 {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Too many arguments passed to %s.\nUsage: %s [flags] [bind_ip [port]]\n",
			os.Args[0], os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load the configuration from disk (if available)
	config, err := conf.Open(*confFile)
	if err != nil {
		if !os.IsNotExist(err) || *confFile != defconf {
			rps.Log.Fatal().Err(err).Msg("Loading configuration")
		}
		config = conf.Default()
	}

	// Dump the configuration onto the disk if requested
	if *dumpConf {
		if err := config.Dump(os.Stdout); err != nil {
			rps.Log.Fatal().Err(err).Msg("Dumping default configuration")
		}
		os.Exit(0)
	}

	rps.SetLogLevel(config.LogLevel)

	// Positional arguments override the configured listen address;
	// invalid values fall back with a warning instead of aborting.
	if flag.NArg() >= 1 {
		bind := flag.Arg(0)
		if net.ParseIP(bind) == nil {
			rps.Log.Warn().Str("bind", bind).
				Msgf("Invalid bind address, using %s", config.BindIP)
		} else {
			config.BindIP = bind
		}
	}
	if flag.NArg() >= 2 {
		port, err := strconv.ParseUint(flag.Arg(1), 10, 16)
		if err != nil || port == 0 {
			rps.Log.Warn().Str("port", flag.Arg(1)).
				Msgf("Invalid port, using %d", config.TCPPort)
		} else {
			config.TCPPort = uint16(port)
		}
	}

	// Enable the database
	db.Prepare(config)

	// The session server handles every connection, from TCP and
	// WebSocket alike, and doubles as the timeout supervisor.
	srv := session.MakeServer(config)
	config.Register(srv)
	config.Register(proto.MakeListener(config.BindIP, config.TCPPort, srv.Accept))

	// Enable the web interface
	web.Prepare(config, srv.Accept)

	// Launch the server
	if err := config.Start(); err != nil {
		rps.Log.Fatal().Err(err).Msg("Server failed")
	}
}
