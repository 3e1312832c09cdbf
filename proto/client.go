// Client Communication Management
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
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go-rps"
)

// Deadline for a single outbound write, where the transport supports
// deadlines.  A peer that cannot drain a line within this window is
// treated as lost.
const writeTimeout = 5 * time.Second

// Handler consumes the frames of one connection.  Line and Malformed
// return false to stop the read loop; Closed runs exactly once after
// the loop has exited.
type Handler interface {
	Line(*Client, string) bool
	Malformed(*Client) bool
	Closed(*Client)
}

// Client wraps a network connection (TCP or WebSocket) into a
// protocol peer.  All writes go through Send, which emits exactly one
// complete frame per call so that concurrent writers never interleave
// bytes.
type Client struct {
	iolock sync.Mutex // IO lock
	rwc    io.ReadWriteCloser
	addr   string
}

func MakeClient(rwc io.ReadWriteCloser, addr string) *Client {
	return &Client{rwc: rwc, addr: addr}
}

// String will return a string representation for a client for
// internal use
func (cl *Client) String() string {
	return cl.addr
}

// Send formats a line, appends CRLF and writes it as a single send.
// A short write is reported as an error; the caller treats the
// connection as lost.
func (cl *Client) Send(format string, args ...interface{}) error {
	line := fmt.Sprintf(format, args...)

	cl.iolock.Lock()
	defer cl.iolock.Unlock()

	rps.Log.Debug().Str("client", cl.addr).Str("line", line).Msg("Send")

	if c, ok := cl.rwc.(net.Conn); ok {
		c.SetWriteDeadline(time.Now().Add(writeTimeout))
	}

	buf := append([]byte(line), '\r', '\n')
	n, err := cl.rwc.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return io.ErrShortWrite
	}
	return nil
}

// Serve reads frames until the connection fails, the handler asks to
// stop, or the peer disappears.  The connection is closed and the
// handler notified before Serve returns.
func (cl *Client) Serve(h Handler) {
	defer h.Closed(cl)
	defer cl.rwc.Close()

	fr := MakeFramer(cl.rwc)
	for {
		line, err := fr.Next()
		switch {
		case err == ErrTooLong:
			if !h.Malformed(cl) {
				return
			}
		case err != nil:
			return
		default:
			rps.Log.Debug().Str("client", cl.addr).Str("line", line).Msg("Recv")
			if !h.Line(cl, line) {
				return
			}
		}
	}
}

// CloseRead shuts down the receive direction so that a blocked Serve
// loop observes EOF.  Transports without half-close are closed
// entirely.
func (cl *Client) CloseRead() {
	type readCloser interface{ CloseRead() error }
	if rc, ok := cl.rwc.(readCloser); ok {
		rc.CloseRead()
		return
	}
	cl.rwc.Close()
}

// Close tears the connection down in both directions.
func (cl *Client) Close() {
	cl.rwc.Close()
}
