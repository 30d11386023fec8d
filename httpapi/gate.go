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
	"strings"

	"github.com/google/uuid"
	"github.com/tomoncle/sieve/filter"
	"github.com/tomoncle/sieve/models"
)

// ClientIDHeader carries the caller's client id.
const ClientIDHeader = "X-Client-ID"

var (
	ErrUnauthorized = errors.New("caller is not authenticated")
	ErrForbidden    = errors.New("caller may not access this resource")
)

// Gate decides whether a request may search and returns the scope every
// query of that request runs under. Failures should be ErrUnauthorized or
// ErrForbidden.
type Gate func(r *http.Request) (filter.Scope, error)

// ClientGate scopes searches to the client named by the X-Client-ID header.
func ClientGate(r *http.Request) (filter.Scope, error) {
	raw := strings.TrimSpace(r.Header.Get(ClientIDHeader))
	if raw == "" {
		return nil, ErrUnauthorized
	}
	clientID, err := uuid.Parse(raw)
	if err != nil || clientID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	return models.ClientScope(clientID), nil
}

// AllowClients wraps gate so that only the listed clients pass.
func AllowClients(gate Gate, allowed ...uuid.UUID) Gate {
	set := make(map[uuid.UUID]struct{}, len(allowed))
	for _, id := range allowed {
		set[id] = struct{}{}
	}
	return func(r *http.Request) (filter.Scope, error) {
		scope, err := gate(r)
		if err != nil {
			return nil, err
		}
		id, _ := uuid.Parse(strings.TrimSpace(r.Header.Get(ClientIDHeader)))
		if _, ok := set[id]; !ok {
			return nil, ErrForbidden
		}
		return scope, nil
	}
}
