// Web interface manager
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
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-rps"
	"go-rps/conf"
	"go-rps/proto"
)

type web struct {
	conf   *conf.Conf
	accept func(*proto.Client)
	srv    *http.Server
}

func (s *web) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.index)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /")
	})

	if s.conf.WebSocket {
		rps.Log.Info().Msg("Accepting websocket connections on /socket")
		mux.HandleFunc("/socket", s.upgrader())
	}

	tmpl = template.Must(template.New("").ParseFS(html, "*.tmpl"))

	addr := fmt.Sprintf(":%d", s.conf.WebPort)
	rps.Log.Info().Str("addr", addr).Msg("Listening via HTTP")
	s.srv = &http.Server{Addr: addr, Handler: mux}

	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *web) Shutdown() {
	if s.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		rps.Log.Warn().Err(err).Msg("Shutting down web server")
	}
}

func (*web) String() string { return "Web Server" }

// Prepare registers the web interface.  accept receives clients that
// arrive over the WebSocket transport, exactly like TCP ones.
func Prepare(c *conf.Conf, accept func(*proto.Client)) {
	if !c.WebInterface {
		return
	}

	c.Register(&web{conf: c, accept: accept})
}
