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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/sieve/types"
)

func TestEngineScenarios(t *testing.T) {
	db := newSQLiteDB(t)
	engine := NewEngine(accountColumns)
	ctx := context.Background()

	t.Run("equals within window", func(t *testing.T) {
		req := types.NewPaginationRequest(0, 10, cond("loginName", OpEquals, "admin@example.com"))
		page, err := engine.Search(ctx, db, tenantOne, req)
		require.NoError(t, err)
		assert.Equal(t, 1, page.TotalCount)
		assert.Equal(t, 0, page.PageIndex)
		assert.Equal(t, 10, page.PageSize)
		assert.Equal(t, []string{"admin@example.com"}, loginNames(page.Data))
	})

	t.Run("unknown column", func(t *testing.T) {
		req := types.NewPaginationRequest(0, 10, cond("invalidColumn", OpEquals, "test"))
		_, err := engine.Search(ctx, db, tenantOne, req)
		assert.EqualError(t, err, "InvalidColumnName: invalidColumn")
	})

	t.Run("invalid logic operator", func(t *testing.T) {
		req := types.NewPaginationRequest(0, 10,
			cond("firstName", OpEquals, "Ada"),
			cond("lastName", OpEquals, "Lovelace"),
		).WithLogic("INVALID")
		_, err := engine.Search(ctx, db, tenantOne, req)
		assert.ErrorIs(t, err, ErrInvalidLogicOperator)
	})

	t.Run("inverted window", func(t *testing.T) {
		req := types.NewPaginationRequest(10, 5, cond("invalidColumn", "nope", "x"))
		_, err := engine.Search(ctx, db, tenantOne, req)
		assert.ErrorIs(t, err, ErrStartIndexNotBeforeEnd)
	})

	t.Run("number greater than zero", func(t *testing.T) {
		req := types.NewPaginationRequest(0, 10, cond("loginAttempts", OpGreater, "0"))
		page, err := engine.Search(ctx, db, tenantOne, req)
		require.NoError(t, err)
		for _, row := range page.Data {
			assert.Greater(t, row.LoginAttempts, 0)
		}
		assert.Equal(t, []int64{2, 3}, ids(page.Data))
	})

	t.Run("no filters", func(t *testing.T) {
		page, err := engine.Search(ctx, db, tenantOne, types.NewPaginationRequest(0, 2))
		require.NoError(t, err)
		assert.Equal(t, 3, page.TotalCount)
		assert.Equal(t, []int64{1, 2}, ids(page.Data))
		for _, row := range page.Data {
			assert.True(t, row.DeletedAt.IsZero())
		}
	})
}

func TestEngineSingleFilterIgnoresLogic(t *testing.T) {
	db := newSQLiteDB(t)
	req := types.NewPaginationRequest(0, 10, cond("firstName", OpEquals, "Ada")).WithLogic("XOR")
	page, err := NewEngine(accountColumns).Search(context.Background(), db, tenantOne, req)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
}

func TestEngineTotalIgnoresWindow(t *testing.T) {
	db := newSQLiteDB(t)
	engine := NewEngine(accountColumns)
	ctx := context.Background()

	windows := [][2]int{{0, 1}, {0, 10}, {1, 2}, {2, 3}, {5, 7}, {100, 200}}
	for _, w := range windows {
		req := types.NewPaginationRequest(w[0], w[1], cond("loginName", OpEndsWith, ".com"))
		page, err := engine.Search(ctx, db, tenantOne, req)
		require.NoError(t, err)
		assert.Equal(t, 3, page.TotalCount, "window %v", w)
		assert.LessOrEqual(t, len(page.Data), w[1]-w[0])
	}
}

func TestEngineIncludeDeleted(t *testing.T) {
	db := newSQLiteDB(t)
	req := types.NewPaginationRequest(0, 10, cond("firstName", OpEquals, "Dave"))
	engine := NewEngine(accountColumns)

	page, err := engine.Search(context.Background(), db, tenantOne, req)
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalCount)

	page, err = engine.Search(context.Background(), db, tenantOne, req.WithDeleted())
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	assert.False(t, page.Data[0].DeletedAt.IsZero())
}

func TestEnginePrepareOrder(t *testing.T) {
	engine := NewEngine(accountColumns)

	tests := []struct {
		name string
		req  *types.PaginationRequest
		want error
	}{
		{
			name: "pagination before column",
			req:  types.NewPaginationRequest(-1, 10, cond("invalidColumn", OpEquals, "x")),
			want: ErrStartIndexNegative,
		},
		{
			name: "filters checked in order",
			req:  types.NewPaginationRequest(0, 10, cond("firstName", "~", "x"), cond("invalidColumn", OpEquals, "x")),
			want: ErrInvalidOperator,
		},
		{
			name: "value before logic",
			req:  types.NewPaginationRequest(0, 10, cond("active", OpIs, "maybe"), cond("firstName", OpEquals, "x")).WithLogic("XOR"),
			want: ErrValueParse,
		},
		{
			name: "first failing filter wins",
			req:  types.NewPaginationRequest(0, 10, cond("nope", OpEquals, "x"), cond("loginAttempts", OpIs, "x")),
			want: ErrInvalidColumnName,
		},
		{
			name: "nil request",
			req:  nil,
			want: ErrEndIndexNotPositive,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := engine.Prepare(tt.req)
			assert.Nil(t, plan)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsRequestError(err))
		})
	}
}

func TestEnginePreparePlan(t *testing.T) {
	req := types.NewPaginationRequest(20, 30,
		cond("active", OpIs, "true"),
		cond("score", OpGreater, "1.5"),
	).WithLogic("or").WithDeleted()

	plan, err := NewEngine(accountColumns).Prepare(req)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.PageIndex)
	assert.Equal(t, 10, plan.PageSize)
	assert.True(t, plan.IncludeDeleted)
	assert.Equal(t, types.LogicOr, plan.Composite.Logic)
	assert.Equal(t, "active is true OR score > 1.5", plan.Composite.String())
}

func TestEngineMaxPageSize(t *testing.T) {
	engine := NewEngine(accountColumns, WithMaxPageSize(50))

	_, err := engine.Prepare(types.NewPaginationRequest(0, 51))
	assert.ErrorIs(t, err, ErrPageSizeExceedsLimit)
	assert.EqualError(t, err, "InvalidPagination: PageSizeExceedsLimit")

	_, err = engine.Prepare(types.NewPaginationRequest(50, 100))
	assert.NoError(t, err)

	_, err = NewEngine(accountColumns).Prepare(types.NewPaginationRequest(0, 1_000_000))
	assert.NoError(t, err)
}

func TestEngineRequiresScope(t *testing.T) {
	db, mock := newMockDB(t)
	_, err := NewEngine(accountColumns).Search(context.Background(), db, nil, types.NewPaginationRequest(0, 10))
	assert.ErrorIs(t, err, ErrScopeRequired)
	assert.False(t, IsRequestError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngineRejectsBeforeQuerying(t *testing.T) {
	db, mock := newMockDB(t)
	req := types.NewPaginationRequest(0, 10, cond("loginAttempts", OpGreater, "lots"))
	_, err := NewEngine(accountColumns).Search(context.Background(), db, tenantOne, req)
	assert.ErrorIs(t, err, ErrValueParse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngineConcurrentSearches(t *testing.T) {
	db := newSQLiteDB(t)
	engine := NewEngine(accountColumns)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := types.NewPaginationRequest(0, 10, cond("loginAttempts", OpGreaterEq, "0"))
			if i%2 == 1 {
				req = types.NewPaginationRequest(0, 10, cond("active", OpIs, "true"))
			}
			page, err := engine.Search(context.Background(), db, tenantOne, req)
			if err == nil && page.TotalCount == 0 {
				err = assert.AnError
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
