// Database management
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

package db

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"path"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-rps"
	"go-rps/conf"
)

//go:embed *.sql
var sqlDir embed.FS

// db archives finished matches.  It consumes results from the
// channel the match engine writes to, so the engine never touches
// SQLite while holding the global lock.
type db struct {
	read  *sql.DB
	write *sql.DB

	// Statements are loaded from the embedded ./*.sql files:
	// "create-" files run once at startup, "select-" files are
	// prepared on READ, the rest on WRITE.
	queries  map[string]*sql.Stmt
	commands map[string]*sql.Stmt

	results <-chan *rps.Result
}

func (*db) String() string { return "Database Manager" }

func (db *db) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			db.drain()
			return nil
		case res, ok := <-db.results:
			if !ok {
				return nil
			}
			db.save(context.Background(), res)
		}
	}
}

func (db *db) Shutdown() {
	if _, err := db.write.Exec("PRAGMA optimize;"); err != nil {
		rps.Log.Warn().Err(err).Msg("Optimizing database")
	}
	if err := db.write.Close(); err != nil {
		rps.Log.Warn().Err(err).Msg("Closing write connection")
	}
	if err := db.read.Close(); err != nil {
		rps.Log.Warn().Err(err).Msg("Closing read connection")
	}
}

// drain writes out anything still buffered at shutdown.
func (db *db) drain() {
	for {
		select {
		case res := <-db.results:
			db.save(context.Background(), res)
		default:
			return
		}
	}
}

func (db *db) save(ctx context.Context, res *rps.Result) {
	_, err := db.commands["insert-match"].ExecContext(ctx,
		res.Room, res.P1, res.P2, res.Winner,
		res.ScoreP1, res.ScoreP2, res.Rounds, res.Forfeit,
		res.Started.Unix(), res.Ended.Unix())
	if err != nil {
		rps.Log.Error().Err(err).Str("room", res.Room).Msg("Recording match")
		return
	}
	rps.Log.Debug().Str("room", res.Room).Str("winner", res.Winner).
		Msg("Match recorded")
}

func (db *db) RecentMatches(ctx context.Context, limit int) ([]*rps.Result, error) {
	rows, err := db.queries["select-recent"].QueryContext(ctx, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*rps.Result
	for rows.Next() {
		var (
			res            rps.Result
			started, ended int64
		)
		err = rows.Scan(&res.Room, &res.P1, &res.P2, &res.Winner,
			&res.ScoreP1, &res.ScoreP2, &res.Rounds, &res.Forfeit,
			&started, &ended)
		if err != nil {
			return nil, err
		}
		res.Started = time.Unix(started, 0)
		res.Ended = time.Unix(ended, 0)
		out = append(out, &res)
	}
	return out, rows.Err()
}

// Prepare opens the database and registers the manager.  A blank
// database file disables archiving entirely.
func Prepare(c *conf.Conf) {
	if c.Database == "" {
		return
	}

	read, err := sql.Open("sqlite3", c.Database)
	if err != nil {
		rps.Log.Fatal().Err(err).Str("file", c.Database).Msg("Opening database")
	}
	read.SetConnMaxLifetime(0)
	read.SetMaxIdleConns(1)

	write, err := sql.Open("sqlite3", c.Database)
	if err != nil {
		rps.Log.Fatal().Err(err).Str("file", c.Database).Msg("Opening database")
	}
	write.SetConnMaxLifetime(0)
	write.SetMaxIdleConns(1)
	write.SetMaxOpenConns(1)

	db := &db{
		read:     read,
		write:    write,
		queries:  make(map[string]*sql.Stmt),
		commands: make(map[string]*sql.Stmt),
		results:  c.Results,
	}

	for _, pragma := range []string{
		"journal_mode = WAL",
		"synchronous = normal",
		"temp_store = memory",
	} {
		if _, err = db.write.Exec("PRAGMA " + pragma + ";"); err != nil {
			rps.Log.Fatal().Err(err).Str("pragma", pragma).Msg("Configuring database")
		}
	}

	entries, err := sqlDir.ReadDir(".")
	if err != nil {
		rps.Log.Fatal().Err(err).Msg("Listing embedded queries")
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		base := path.Base(entry.Name())
		data, err := fs.ReadFile(sqlDir, entry.Name())
		if err != nil {
			rps.Log.Fatal().Err(err).Str("file", base).Msg("Loading query")
		}

		name := strings.TrimSuffix(base, ".sql")
		switch {
		case strings.HasPrefix(name, "create-"):
			_, err = db.write.Exec(string(data))
		case strings.HasPrefix(name, "select-"):
			db.queries[name], err = db.read.Prepare(string(data))
		default:
			db.commands[name], err = db.write.Prepare(string(data))
		}
		if err != nil {
			rps.Log.Fatal().Err(err).Str("query", name).Msg("Preparing query")
		}
	}

	c.Register(conf.DatabaseManager(db))
}
