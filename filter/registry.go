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

package filter

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/tomoncle/sieve/types"
	"github.com/uptrace/bun"
)

// ColumnDescriptor binds a client-facing column name to its semantic type and
// the bun column it reads.
type ColumnDescriptor struct {
	Name   string
	Type   types.ColumnType
	Column string
}

func String(name, column string) ColumnDescriptor {
	return ColumnDescriptor{Name: name, Type: types.ColumnString, Column: column}
}

func Number(name, column string) ColumnDescriptor {
	return ColumnDescriptor{Name: name, Type: types.ColumnNumber, Column: column}
}

func Boolean(name, column string) ColumnDescriptor {
	return ColumnDescriptor{Name: name, Type: types.ColumnBoolean, Column: column}
}

func Date(name, column string) ColumnDescriptor {
	return ColumnDescriptor{Name: name, Type: types.ColumnDate, Column: column}
}

// Registry is the whitelist of filterable columns of entity T. It is built
// once at startup and only read afterwards, so it is safe for concurrent use.
type Registry[T any] struct {
	entity  string
	key     string
	columns map[string]ColumnDescriptor
}

// NewRegistry builds the registry of entity T. It panics on an empty or
// duplicated name, a missing column or an unknown type.
func NewRegistry[T any](entity string, columns ...ColumnDescriptor) *Registry[T] {
	r := &Registry[T]{
		entity:  entity,
		key:     "id",
		columns: make(map[string]ColumnDescriptor, len(columns)),
	}
	for _, c := range columns {
		if c.Name == "" || c.Column == "" {
			panic(fmt.Sprintf("filter: %s registry: column %+v needs a name and a column", entity, c))
		}
		if !c.Type.IsValid() {
			panic(fmt.Sprintf("filter: %s registry: column %q has unknown type %d", entity, c.Name, c.Type))
		}
		if _, dup := r.columns[c.Name]; dup {
			panic(fmt.Sprintf("filter: %s registry: duplicate column %q", entity, c.Name))
		}
		r.columns[c.Name] = c
	}
	return r
}

// WithKey returns a copy of the registry ordering rows by column instead of "id".
func (r *Registry[T]) WithKey(column string) *Registry[T] {
	cp := *r
	cp.key = column
	return &cp
}

func (r *Registry[T]) Entity() string { return r.entity }

// Key is the column used to order rows inside a window.
func (r *Registry[T]) Key() string { return r.key }

// Resolve looks name up by exact match.
func (r *Registry[T]) Resolve(name string) (ColumnDescriptor, error) {
	c, ok := r.columns[name]
	if !ok {
		return ColumnDescriptor{}, rejectToken(KindInvalidColumnName, name)
	}
	return c, nil
}

// Columns returns the registered columns sorted by name.
func (r *Registry[T]) Columns() []ColumnDescriptor {
	out := make([]ColumnDescriptor, 0, len(r.columns))
	for _, c := range r.columns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Validate checks that the key and every registered column exist on the bun
// model of T.
func (r *Registry[T]) Validate(db *bun.DB) error {
	table := db.Table(reflect.TypeOf((*T)(nil)).Elem())
	if !table.HasField(r.key) {
		return fmt.Errorf("filter: %s registry: key column %q not found on table %s", r.entity, r.key, table.Name)
	}
	for _, c := range r.Columns() {
		if !table.HasField(c.Column) {
			return fmt.Errorf("filter: %s registry: column %q maps to unknown field %q on table %s",
				r.entity, c.Name, c.Column, table.Name)
		}
	}
	return nil
}
