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

package sieve

import (
	"context"
	"sync"

	"github.com/tomoncle/sieve/database"
	"github.com/tomoncle/sieve/filter"
	"github.com/tomoncle/sieve/repository"
	"github.com/tomoncle/sieve/types"
	"github.com/uptrace/bun"
)

type Service[T any] interface {
	// Get returns a single entity by its key.
	Get(ctx context.Context, id any) (*T, error)

	// Search returns one window of entities visible within scope that
	// match the request filters.
	Search(ctx context.Context, scope filter.Scope, req *types.PaginationRequest) (*types.Page[T], error)

	// Update modifies an existing entity.
	Update(ctx context.Context, model *T) error

	// Delete removes an entity by its key, softly when the model allows it.
	Delete(ctx context.Context, id any) error

	// Save inserts one or more new entities.
	Save(ctx context.Context, model ...*T) error

	// SaveOrUpdate upserts entities based on fields and duplicate keys.
	SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error

	// SaveWithTx inserts entities within an existing transaction.
	SaveWithTx(ctx context.Context, tx bun.Tx, model ...*T) error

	// UpdateWithTx updates an entity within a transaction.
	UpdateWithTx(ctx context.Context, tx bun.Tx, model *T) error

	// DeleteWithTx removes an entity within a transaction.
	DeleteWithTx(ctx context.Context, tx bun.Tx, id any) error

	// SelectBuilder returns a Bun select query builder for the entity.
	SelectBuilder() *bun.SelectQuery
}

type baseServiceImpl[T any] struct {
	db       *bun.DB
	registry *filter.Registry[T]
	opts     []filter.Option

	mu     sync.Mutex
	repo   repository.Repository[T]
	repoDB *bun.DB
}

// NewService returns a Service for T. A nil db follows the global database
// connection, including the handles it opens on reconnect.
func NewService[T any](db *bun.DB, registry *filter.Registry[T], opts ...filter.Option) Service[T] {
	return &baseServiceImpl[T]{db: db, registry: registry, opts: opts}
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	db := s.db
	if db == nil {
		db = database.GetDB()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil || s.repoDB != db {
		s.repo = repository.NewRepository(db, s.registry, s.opts...)
		s.repoDB = db
	}
	return s.repo
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model ...*T) error {
	return s.baseRepo().Create(ctx, model...)
}

func (s *baseServiceImpl[T]) SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error {
	return s.baseRepo().Upsert(ctx, fields, duplicateKeys, model...)
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	return s.baseRepo().GetOne(ctx, id)
}

func (s *baseServiceImpl[T]) Search(ctx context.Context, scope filter.Scope, req *types.PaginationRequest) (*types.Page[T], error) {
	return s.baseRepo().Search(ctx, scope, req)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, model *T) error {
	return s.baseRepo().Update(ctx, model)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) error {
	return s.baseRepo().Delete(ctx, id)
}

func (s *baseServiceImpl[T]) SaveWithTx(ctx context.Context, tx bun.Tx, model ...*T) error {
	return s.baseRepo().CreateWithTx(ctx, tx, model...)
}

func (s *baseServiceImpl[T]) UpdateWithTx(ctx context.Context, tx bun.Tx, model *T) error {
	return s.baseRepo().UpdateWithTx(ctx, tx, model)
}

func (s *baseServiceImpl[T]) DeleteWithTx(ctx context.Context, tx bun.Tx, id any) error {
	return s.baseRepo().DeleteWithTx(ctx, tx, id)
}

func (s *baseServiceImpl[T]) SelectBuilder() *bun.SelectQuery {
	return s.baseRepo().NewSelect()
}
