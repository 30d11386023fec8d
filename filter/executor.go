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
	"context"

	"github.com/tomoncle/sieve/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// Scope is the mandatory caller-side restriction, such as tenant ownership,
// ANDed into every query. End users cannot reach it through filters.
type Scope func(q *bun.SelectQuery) *bun.SelectQuery

// ScopeEq restricts rows to column = value.
func ScopeEq(column string, value any) Scope {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? = ?", bun.Ident(column), value)
	}
}

// Unscoped is the explicit scope of entities visible to every caller.
var Unscoped Scope = func(q *bun.SelectQuery) *bun.SelectQuery { return q }

// Execute counts and loads one window of T matching scope, the soft-delete
// policy and c. Errors from the store are returned unchanged.
func Execute[T any](ctx context.Context, db bun.IDB, r *Registry[T], scope Scope, c Composite,
	includeDeleted bool, pageIndex, pageSize int) (*types.Page[T], error) {
	if scope == nil {
		return nil, ErrScopeRequired
	}

	var rows []*T
	query := buildQuery(db, &rows, scope, c, includeDeleted)

	page := types.NewEmptyPage[T](pageIndex, pageSize)
	total, err := query.Count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return page, nil
	}
	err = query.
		OrderExpr("?TableAlias.? ASC", bun.Ident(r.Key())).
		Offset(pageIndex * pageSize).
		Limit(pageSize).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	page.TotalCount = total
	if rows != nil {
		page.Data = rows
	}
	return page, nil
}

func buildQuery[T any](db bun.IDB, rows *[]*T, scope Scope, c Composite, includeDeleted bool) *bun.SelectQuery {
	query := db.NewSelect().Model(rows)
	query = query.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery { return scope(q) })
	if includeDeleted && softDeletable(query) {
		query = query.WhereAllWithDeleted()
	}
	return c.Apply(query, db.Dialect().Name())
}

func softDeletable(q *bun.SelectQuery) bool {
	tm, ok := q.GetModel().(interface{ Table() *schema.Table })
	return ok && tm.Table().SoftDeleteField != nil
}
