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

package models

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tomoncle/sieve/database"
	"github.com/tomoncle/sieve/filter"
	"github.com/uptrace/bun"
)

var registerOnce sync.Once

// RegisterModels adds every entity to the database model registry so that
// migrations create their tables. Calling it more than once is harmless.
func RegisterModels() {
	registerOnce.Do(func() {
		database.RegisteredModel(database.NewModelAdapter((*User)(nil), 10))
		database.RegisteredModel(database.NewModelAdapter((*UserGroup)(nil), 20))
		database.RegisteredModel(database.NewModelAdapter((*Package)(nil), 30))
		database.RegisteredModel(database.NewModelAdapter((*Message)(nil), 40))
	})
}

// ValidateRegistries checks every column registry against its bun model.
func ValidateRegistries(db *bun.DB) error {
	checks := []func(*bun.DB) error{
		UserColumns.Validate,
		UserGroupColumns.Validate,
		PackageColumns.Validate,
		MessageColumns.Validate,
	}
	for _, check := range checks {
		if err := check(db); err != nil {
			return fmt.Errorf("invalid column registry: %w", err)
		}
	}
	return nil
}

// ClientScope restricts every query to rows owned by clientID.
func ClientScope(clientID uuid.UUID) filter.Scope {
	return filter.ScopeEq("client_id", clientID)
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
