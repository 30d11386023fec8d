/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

// SQLDebugEnv enables the colored query hook: "1" prints failed queries,
// "2" prints every query.
const SQLDebugEnv = "SIEVE_SQL_DEBUG"

var bunSqlSilentMode atomic.Bool

// EnableBunSqlSilent mutes the query hooks, e.g. while migrations run.
func EnableBunSqlSilent(b bool) {
	bunSqlSilentMode.Store(b)
}

var operationColors = map[string]*color.Color{
	"SELECT": color.New(color.FgGreen),
	"INSERT": color.New(color.FgBlue),
	"UPDATE": color.New(color.FgYellow),
	"DELETE": color.New(color.FgMagenta),
}

// QueryHook prints queries colored by operation.
type QueryHook struct {
	envName string
	writer  io.Writer
}

var _ bun.QueryHook = (*QueryHook)(nil)

func NewQueryHook(envName string, w io.Writer) *QueryHook {
	if w == nil {
		w = os.Stderr
	}
	return &QueryHook{envName: envName, writer: w}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() {
		return
	}
	env := os.Getenv(h.envName)
	if env == "" || env == "0" {
		return
	}
	if env != "2" {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	c, ok := operationColors[event.Operation()]
	if !ok {
		c = color.New(color.FgRed)
	}
	line := fmt.Sprintf("%s %s %12s  %s",
		time.Now().Format("2006-01-02 15:04:05.000"),
		color.CyanString("[BUN]"),
		time.Since(event.StartTime).Round(time.Microsecond),
		c.Sprint(event.Query),
	)
	if event.Err != nil {
		line += "\t" + color.New(color.BgRed).Sprintf(" %T: %v ", event.Err, event.Err)
	}
	_, _ = fmt.Fprintln(h.writer, line)
}

// slowQueryHook reports successful queries slower than slowTime.
type slowQueryHook struct {
	slowTime time.Duration
	logger   Logger
}

func (h *slowQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *slowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if event.Err != nil || h.logger == nil || bunSqlSilentMode.Load() {
		return
	}
	duration := time.Since(event.StartTime)
	if duration > h.slowTime {
		h.logger.Warn("Database slow query detected",
			"duration", duration,
			"slow_threshold", h.slowTime,
			"query", event.Query,
		)
	}
}
