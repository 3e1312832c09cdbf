// Web interface
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
	"embed"
	"html/template"
	"net/http"

	"go-rps"
)

//go:embed *.tmpl
var html embed.FS

var tmpl *template.Template

// index lists the most recently finished matches.
func (s *web) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var matches []*rps.Result
	if s.conf.DB != nil {
		var err error
		matches, err = s.conf.DB.RecentMatches(r.Context(), 50)
		if err != nil {
			rps.Log.Error().Err(err).Msg("Querying recent matches")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	err := tmpl.ExecuteTemplate(w, "index.tmpl", struct {
		Matches []*rps.Result
	}{matches})
	if err != nil {
		rps.Log.Error().Err(err).Msg("Rendering index")
	}
}
