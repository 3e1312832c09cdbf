// Configuration loading and dumping
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
	"io"
	"os"

	"go-rps"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Parse a configuration from R
func load(r io.Reader) (*Conf, error) {
	var data conf
	data.Log.Level = defaultConfig.LogLevel
	data.Proto.Bind = defaultConfig.BindIP
	data.Proto.Port = defaultConfig.TCPPort
	data.Proto.Websocket = defaultConfig.WebSocket
	data.Database.File = defaultConfig.Database
	data.Web.Enabled = defaultConfig.WebInterface
	data.Web.Port = defaultConfig.WebPort

	if r != nil {
		_, err := toml.NewDecoder(r).Decode(&data)
		if err != nil {
			return nil, err
		}
	}

	// The environment takes precedence over the file
	if err := env.Parse(&data); err != nil {
		return nil, err
	}

	c := defaultConfig
	c.LogLevel = data.Log.Level
	c.BindIP = data.Proto.Bind
	c.TCPPort = data.Proto.Port
	c.WebSocket = data.Proto.Websocket
	c.Database = data.Database.File
	c.WebInterface = data.Web.Enabled
	c.WebPort = data.Web.Port
	c.Results = make(chan *rps.Result, rps.MaxRooms)

	return &c, nil
}

// Open a configuration file and return it
func Open(name string) (*Conf, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return load(file)
}

// Return the default configuration, with the environment applied
func Default() *Conf {
	c, err := load(nil)
	if err != nil {
		rps.Log.Warn().Err(err).Msg("Ignoring environment overrides")
		c = &defaultConfig
		c.Results = make(chan *rps.Result, rps.MaxRooms)
	}
	return c
}

// Serialise the configuration into a writer
func (c *Conf) Dump(wr io.Writer) error {
	var data conf

	data.Log.Level = c.LogLevel
	data.Proto.Bind = c.BindIP
	data.Proto.Port = c.TCPPort
	data.Proto.Websocket = c.WebSocket
	data.Database.File = c.Database
	data.Web.Enabled = c.WebInterface
	data.Web.Port = c.WebPort

	return toml.NewEncoder(wr).Encode(data)
}
