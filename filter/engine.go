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

	"github.com/sirupsen/logrus"
	"github.com/tomoncle/sieve/types"
	"github.com/tomoncle/sieve/utils"
	"github.com/uptrace/bun"
)

var logger = utils.NewLogger("FILTER")

type engineOptions struct {
	maxPageSize int
}

type Option func(*engineOptions)

// WithMaxPageSize rejects windows larger than n rows. Zero disables the cap.
func WithMaxPageSize(n int) Option {
	return func(o *engineOptions) { o.maxPageSize = n }
}

// Plan is a fully validated request, ready to execute.
type Plan struct {
	PageIndex      int
	PageSize       int
	Composite      Composite
	IncludeDeleted bool
}

// Engine runs filter requests for entity T. It holds no per-call state.
type Engine[T any] struct {
	registry *Registry[T]
	opts     engineOptions
}

func NewEngine[T any](registry *Registry[T], opts ...Option) *Engine[T] {
	e := &Engine[T]{registry: registry}
	for _, opt := range opts {
		opt(&e.opts)
	}
	return e
}

func (e *Engine[T]) Registry() *Registry[T] { return e.registry }

// Prepare validates req in a fixed order: pagination, then column, operator
// and value of each filter, then the logic operator. The first failure wins.
func (e *Engine[T]) Prepare(req *types.PaginationRequest) (*Plan, error) {
	if req == nil {
		req = &types.PaginationRequest{}
	}
	pageIndex, pageSize, err := ValidatePagination(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	if e.opts.maxPageSize > 0 && pageSize > e.opts.maxPageSize {
		return nil, ErrPageSizeExceedsLimit
	}

	preds := make([]Predicate, 0, len(req.Filters))
	for _, cond := range req.Filters {
		p, err := Compile(e.registry, cond)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	composite, err := Combine(preds, req.LogicOperator)
	if err != nil {
		return nil, err
	}
	return &Plan{
		PageIndex:      pageIndex,
		PageSize:       pageSize,
		Composite:      composite,
		IncludeDeleted: req.IncludeDeleted,
	}, nil
}

// Search validates req and runs it against db within scope.
func (e *Engine[T]) Search(ctx context.Context, db bun.IDB, scope Scope, req *types.PaginationRequest) (*types.Page[T], error) {
	if scope == nil {
		return nil, ErrScopeRequired
	}
	plan, err := e.Prepare(req)
	if err != nil {
		logger.WithFields(logrus.Fields{"entity": e.registry.Entity(), "kind": KindOf(err)}).
			Debugf("rejected filter request: %v", err)
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"entity":          e.registry.Entity(),
		"page_index":      plan.PageIndex,
		"page_size":       plan.PageSize,
		"include_deleted": plan.IncludeDeleted,
	}).Debugf("where %s", plan.Composite)

	return Execute(ctx, db, e.registry, scope, plan.Composite, plan.IncludeDeleted, plan.PageIndex, plan.PageSize)
}
