// Websocket interface
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

package web

import (
	"io"
	"net/http"

	"github.com/gorilla/websocket"

	"go-rps"
	"go-rps/proto"
)

// adapted from https://github.com/gorilla/websocket/issues/282

// wsrwc is a read-write-closer using websockets
type wsrwc struct {
	*websocket.Conn
	r io.Reader
}

// Convert a write call to a Websocket message
func (c *wsrwc) Write(p []byte) (int, error) {
	err := c.WriteMessage(websocket.TextMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// Convert a read call into a Websocket query
func (c *wsrwc) Read(p []byte) (int, error) {
	for {
		if c.r == nil {
			// Advance to next message.
			var err error
			_, c.r, err = c.NextReader()
			if err != nil {
				return 0, err
			}
		}
		n, err := c.r.Read(p)
		if err == io.EOF {
			// At end of message.
			c.r = nil
			if n > 0 {
				return n, nil
			} else {
				// No data read, continue to next message.
				continue
			}
		}
		return n, err
	}
}

// Upgrade a HTTP connection to a WebSocket and hand it to the session
// server like any other transport.
func (s *web) upgrader() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		}).Upgrade(w, r, nil)
		if err != nil {
			rps.Log.Debug().Err(err).Msg("Unable to upgrade connection")
			return
		}

		addr := conn.RemoteAddr().String()
		rps.Log.Debug().Str("addr", addr).Msg("New websocket connection")
		s.accept(proto.MakeClient(&wsrwc{Conn: conn}, addr))
	}
}
