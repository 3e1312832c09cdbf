// Manager Registry and Supervision
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
	"context"
	"fmt"
	"os"
	"os/signal"

	"go-rps"

	"golang.org/x/sync/errgroup"
)

type Manager interface {
	fmt.Stringer
	Start(context.Context) error
	Shutdown()
}

type DatabaseManager interface {
	Manager

	// Recent finished matches, newest first
	RecentMatches(context.Context, int) ([]*rps.Result, error)
}

func (c *Conf) Register(m Manager) {
	if c.run {
		panic(fmt.Sprintf("Late register: %#v", m))
	}

	if s, ok := m.(DatabaseManager); ok {
		c.DB = s
	}

	c.man = append(c.man, m)
}

// Start runs every registered manager and blocks until an interrupt
// is caught or a manager fails.  All managers are shut down before
// the first error, if any, is returned.
func (c *Conf) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	for _, m := range c.man {
		m := m
		rps.Log.Debug().Stringer("manager", m).Msg("Starting")
		g.Go(func() error { return m.Start(ctx) })
	}
	c.run = true

	<-ctx.Done()

	rps.Log.Debug().Msg("Waiting for managers to shut down")
	for _, m := range c.man {
		rps.Log.Debug().Stringer("manager", m).Msg("Shutting down")
		m.Shutdown()
	}
	return g.Wait()
}
