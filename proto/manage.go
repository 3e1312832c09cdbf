// TCP interface
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

package proto

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"go-rps"
)

type Listener struct {
	bind   string
	port   uint16
	conn   net.Listener
	accept func(*Client)
}

func MakeListener(bind string, port uint16, accept func(*Client)) *Listener {
	return &Listener{bind: bind, port: port, accept: accept}
}

func (*Listener) String() string {
	return "TCP Handler"
}

func (t *Listener) Start(ctx context.Context) error {
	addr := net.JoinHostPort(t.bind, strconv.Itoa(int(t.port)))
	var err error
	t.conn, err = net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	rps.Log.Info().Str("addr", addr).Msg("Server listening")
	for {
		conn, err := t.conn.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			rps.Log.Warn().Err(err).Msg("Accept failed")
			continue
		}

		rps.Log.Debug().Stringer("addr", conn.RemoteAddr()).Msg("New connection")
		t.accept(MakeClient(conn, conn.RemoteAddr().String()))
	}
}

func (t *Listener) Shutdown() {
	if t.conn == nil {
		return
	}
	if err := t.conn.Close(); err != nil {
		rps.Log.Warn().Err(err).Msg("Closing listener")
	}
}
