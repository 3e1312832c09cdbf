// Line Framing
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
	"bufio"
	"errors"
	"io"
	"strings"

	"go-rps"
)

// ErrTooLong marks a frame that exceeded the line limit.  The
// oversized frame has been consumed up to its terminating newline
// when this is returned.
var ErrTooLong = errors.New("line exceeds frame limit")

// Framer splits an input stream into protocol frames.  Frames are
// CRLF-terminated; a lone LF is tolerated, trailing CR and LF bytes
// are stripped.
type Framer struct {
	br *bufio.Reader
}

func MakeFramer(r io.Reader) *Framer {
	return &Framer{br: bufio.NewReaderSize(r, rps.LineMax)}
}

// Next returns the next frame.  A final frame without a newline is
// returned as-is before io.EOF is reported.
func (f *Framer) Next() (string, error) {
	var truncated bool
	for {
		s, err := f.br.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			// Keep consuming until the frame boundary
			truncated = true
			continue
		}
		if len(s) == 0 && err != nil {
			return "", err
		}
		if truncated {
			return "", ErrTooLong
		}
		return trimCRLF(string(s)), nil
	}
}

func trimCRLF(s string) string {
	return strings.TrimRight(s, "\r\n")
}

// Split separates a frame into its verb and the argument remainder.
// Leading whitespace before the verb is skipped; the remainder is
// returned verbatim.
func Split(line string) (verb, args string) {
	line = strings.TrimLeft(line, " ")
	verb, args, _ = strings.Cut(line, " ")
	return verb, args
}

// Arg returns the first whitespace-separated token of an argument
// string, or "" if there is none.
func Arg(args string) string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
