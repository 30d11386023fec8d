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

package repository

import (
	"context"

	"github.com/tomoncle/sieve/filter"
	"github.com/tomoncle/sieve/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines basic CRUD operations for a generic entity type.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	Create(ctx context.Context, entity ...*T) error

	Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error

	Update(ctx context.Context, entity *T) error

	// Delete soft deletes the row when the model has a soft_delete column.
	Delete(ctx context.Context, id any) error

	// ForceDelete removes the row even when the model is soft deletable.
	ForceDelete(ctx context.Context, id any) error
}

// TransactionRepository defines CRUD operations executed within a transaction.
type TransactionRepository[T any] interface {
	CreateWithTx(ctx context.Context, tx bun.Tx, entity ...*T) error
	UpsertWithTx(ctx context.Context, tx bun.Tx, fields []string, duplicateKeys []string, entity ...*T) error
	UpdateWithTx(ctx context.Context, tx bun.Tx, entity *T) error
	DeleteWithTx(ctx context.Context, tx bun.Tx, id any) error
}

// SearchRepository runs caller supplied filters through the filter engine.
type SearchRepository[T any] interface {
	Search(ctx context.Context, scope filter.Scope, req *types.PaginationRequest) (*types.Page[T], error)
	SearchWithTx(ctx context.Context, tx bun.Tx, scope filter.Scope, req *types.PaginationRequest) (*types.Page[T], error)
}

// Repository combines CRUD, search and transactional operations and
// exposes Bun query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	SearchRepository[T]
	TransactionRepository[T]
	Engine() *filter.Engine[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
