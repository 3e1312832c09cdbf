// Line Framing Tests
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
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-rps"
)

func TestFramer(t *testing.T) {
	for _, tt := range []struct {
		name   string
		input  string
		frames []string
	}{
		{"crlf", "HELLO alice\r\nLIST\r\n", []string{"HELLO alice", "LIST"}},
		{"bare-lf", "HELLO alice\nLIST\n", []string{"HELLO alice", "LIST"}},
		{"empty-frame", "\r\nPONG\r\n", []string{"", "PONG"}},
		{"no-final-newline", "LIST\r\nQUIT", []string{"LIST", "QUIT"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			f := MakeFramer(strings.NewReader(tt.input))
			for _, want := range tt.frames {
				line, err := f.Next()
				require.NoError(t, err)
				assert.Equal(t, want, line)
			}
			_, err := f.Next()
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestFramerTooLong(t *testing.T) {
	long := strings.Repeat("a", 2*rps.LineMax)
	f := MakeFramer(strings.NewReader(long + "\r\nLIST\r\n"))

	_, err := f.Next()
	assert.Equal(t, ErrTooLong, err)

	// The oversized frame must be consumed up to its boundary
	line, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, "LIST", line)
}

func TestFramerMaximalLine(t *testing.T) {
	// A line that exactly fills the frame limit, CRLF included
	max := strings.Repeat("a", rps.LineMax-2)
	f := MakeFramer(strings.NewReader(max + "\r\n"))

	line, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, max, line)
}

func TestSplit(t *testing.T) {
	for _, tt := range []struct {
		line, verb, args string
	}{
		{"HELLO alice", "HELLO", "alice"},
		{"LIST", "LIST", ""},
		{"  JOIN 1", "JOIN", "1"},
		{"MOVE R extra", "MOVE", "R extra"},
		{"", "", ""},
	} {
		verb, args := Split(tt.line)
		assert.Equal(t, tt.verb, verb, tt.line)
		assert.Equal(t, tt.args, args, tt.line)
	}
}

func TestArg(t *testing.T) {
	assert.Equal(t, "alice", Arg("alice"))
	assert.Equal(t, "alice", Arg(" alice bob"))
	assert.Equal(t, "", Arg(""))
	assert.Equal(t, "", Arg("   "))
}
