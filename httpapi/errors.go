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

package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/sieve/database"
	"github.com/tomoncle/sieve/filter"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type bodyError struct{ err error }

func (e *bodyError) Error() string { return "invalid request body: " + e.err.Error() }

func (e *bodyError) Unwrap() error { return e.err }

// writeError maps err to a status code. Rejected requests are the caller's
// fault; anything else is logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fe *filter.Error
	var be *bodyError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &fe):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: string(fe.Kind), Message: fe.Error()})
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "PayloadTooLarge", Message: "request body too large"})
	case errors.As(err, &be):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "InvalidRequestBody", Message: be.Error()})
	case errors.Is(err, ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized", Message: err.Error()})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "Forbidden", Message: err.Error()})
	case errors.Is(err, database.ErrNotConnected):
		logger.WithField("request_id", middleware.GetReqID(r.Context())).Warn("search without a database connection")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Unavailable", Message: err.Error()})
	default:
		fields := logrus.Fields{"request_id": middleware.GetReqID(r.Context()), "path": r.URL.Path}
		if ok, kind := database.IsSqlError(err); ok {
			fields["sql_error"] = kind.String()
		}
		logger.WithFields(fields).WithError(err).Error("search failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "InternalError", Message: "internal server error"})
	}
}
