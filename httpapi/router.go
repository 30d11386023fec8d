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

// Package httpapi exposes the filter engine over HTTP with chi.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/sieve/database"
	"github.com/tomoncle/sieve/filter"
	"github.com/tomoncle/sieve/models"
	"github.com/tomoncle/sieve/types"
	"github.com/tomoncle/sieve/utils"
	"github.com/uptrace/bun"
)

var logger = utils.NewLogger("HTTP")

const defaultMaxBodyBytes = 1 << 20

// Options configures the router returned by NewRouter.
type Options struct {
	// Gate resolves the scope of every search. Defaults to ClientGate.
	Gate Gate
	// Health reports database health for /healthz. Defaults to
	// database.GetHealthStatus.
	Health func(ctx context.Context) *database.HealthStatus
	// MaxPageSize caps the window size of every search. Zero disables it.
	MaxPageSize int
	// MaxBodyBytes limits search request bodies.
	MaxBodyBytes int64
}

// DBProvider returns the database a request runs against, or nil when none
// is available. It is called once per request.
type DBProvider func() bun.IDB

// StaticDB always serves db.
func StaticDB(db bun.IDB) DBProvider {
	return func() bun.IDB { return db }
}

// GlobalDB serves the process-wide database and follows its reconnects.
func GlobalDB() bun.IDB {
	if db := database.GetDB(); db != nil {
		return db
	}
	return nil
}

// NewRouter mounts the search endpoints of every entity on a chi router.
func NewRouter(db DBProvider, o Options) chi.Router {
	if o.Gate == nil {
		o.Gate = ClientGate
	}
	if o.Health == nil {
		o.Health = database.GetHealthStatus
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = defaultMaxBodyBytes
	}
	var engineOpts []filter.Option
	if o.MaxPageSize > 0 {
		engineOpts = append(engineOpts, filter.WithMaxPageSize(o.MaxPageSize))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", healthHandler(o.Health))
	r.Route("/api", func(r chi.Router) {
		r.Use(maxBodySize(o.MaxBodyBytes))
		Mount(r, "users", db, filter.NewEngine(models.UserColumns, engineOpts...), o.Gate, models.NewUserResponse)
		Mount(r, "packages", db, filter.NewEngine(models.PackageColumns, engineOpts...), o.Gate, models.NewPackageResponse)
		Mount(r, "messages", db, filter.NewEngine(models.MessageColumns, engineOpts...), o.Gate, models.NewMessageResponse)
		Mount(r, "user-groups", db, filter.NewEngine(models.UserGroupColumns, engineOpts...), o.Gate, models.NewUserGroupResponse)
	})
	return r
}

// Mount registers POST /{entity}/search for engine on r. Rows are converted
// with mapper before they are written.
func Mount[T any, R any](r chi.Router, entity string, db DBProvider, engine *filter.Engine[T], gate Gate, mapper func(*T) R) {
	r.Post("/"+entity+"/search", func(w http.ResponseWriter, req *http.Request) {
		scope, err := gate(req)
		if err != nil {
			writeError(w, req, err)
			return
		}
		var body types.PaginationRequest
		if err := decodeJSONRequest(req, &body); err != nil {
			writeError(w, req, err)
			return
		}
		conn := db()
		if conn == nil {
			writeError(w, req, database.ErrNotConnected)
			return
		}
		page, err := engine.Search(req.Context(), conn, scope, &body)
		if err != nil {
			writeError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, types.MapPage(page, mapper))
	})
}

func healthHandler(health func(ctx context.Context) *database.HealthStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := health(r.Context())
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, status)
	}
}

// decodeJSONRequest reads a search body. An empty body decodes to the zero
// request, which pagination validation then rejects.
func decodeJSONRequest(r *http.Request, out any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(out)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return &bodyError{err: err}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Warn("failed to write response")
	}
}

func maxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeError(w, r, &http.MaxBytesError{Limit: limit})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		logger.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       path,
			"status":     ww.Status(),
			"elapsed":    time.Since(start).String(),
		}).Debug("request served")
	})
}
