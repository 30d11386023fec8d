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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/sieve/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

func TestOperatorsPerType(t *testing.T) {
	assert.Equal(t, []string{OpContains, OpEndsWith, OpEquals, OpStartsWith}, Operators(types.ColumnString))
	assert.Equal(t, []string{OpLess, OpLessEq, OpGreater, OpGreaterEq, OpEquals}, Operators(types.ColumnNumber))
	assert.Equal(t, []string{OpIs}, Operators(types.ColumnBoolean))
	assert.Equal(t, []string{OpLess, OpLessEq, OpGreater, OpGreaterEq, OpEquals}, Operators(types.ColumnDate))
}

func TestResolveOperatorRejectsForeignTokens(t *testing.T) {
	tests := []struct {
		columnType types.ColumnType
		token      string
	}{
		{types.ColumnString, OpGreater},
		{types.ColumnString, OpIs},
		{types.ColumnString, "Equals"},
		{types.ColumnString, "like"},
		{types.ColumnNumber, OpContains},
		{types.ColumnNumber, OpIs},
		{types.ColumnNumber, "!="},
		{types.ColumnBoolean, OpEquals},
		{types.ColumnBoolean, "IS"},
		{types.ColumnDate, OpStartsWith},
		{types.ColumnDate, ""},
	}
	for _, tt := range tests {
		t.Run(tt.columnType.Name()+"/"+tt.token, func(t *testing.T) {
			_, err := ResolveOperator(tt.columnType, tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidOperator)
			assert.EqualError(t, err, "InvalidOperator: "+tt.token)
		})
	}
}

func TestResolveOperatorAcceptsWhitelist(t *testing.T) {
	for _, ct := range []types.ColumnType{types.ColumnString, types.ColumnNumber, types.ColumnBoolean, types.ColumnDate} {
		for _, token := range Operators(ct) {
			op, err := ResolveOperator(ct, token)
			require.NoError(t, err)
			assert.Equal(t, token, op.Token)
		}
	}
}

func TestMatchRendersPerDialect(t *testing.T) {
	op, err := ResolveOperator(types.ColumnString, OpContains)
	require.NoError(t, err)
	col := bun.Ident("login_name")

	expr, args := op.render(dialect.PG, col, "50%_off")
	assert.Equal(t, "?TableAlias.? LIKE ? ESCAPE ?", expr)
	assert.Equal(t, []any{col, `%50\%\_off%`, `\`}, args)

	expr, args = op.render(dialect.MySQL, col, "a")
	assert.Equal(t, "?TableAlias.? LIKE BINARY ? ESCAPE ?", expr)
	assert.Equal(t, []any{col, "%a%", `\`}, args)

	expr, args = op.render(dialect.SQLite, col, "a*b?")
	assert.Equal(t, "?TableAlias.? GLOB ?", expr)
	assert.Equal(t, []any{col, "*a[*]b[?]*"}, args)
}

func TestMatchAnchors(t *testing.T) {
	col := bun.Ident("c")
	starts, _ := ResolveOperator(types.ColumnString, OpStartsWith)
	ends, _ := ResolveOperator(types.ColumnString, OpEndsWith)

	_, args := starts.render(dialect.SQLite, col, "ad")
	assert.Equal(t, "ad*", args[1])
	_, args = ends.render(dialect.SQLite, col, ".com")
	assert.Equal(t, "*.com", args[1])
	_, args = starts.render(dialect.PG, col, `a\b`)
	assert.Equal(t, `a\\b%`, args[1])
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, "plain", escapeGlob("plain"))
	assert.Equal(t, "[[]x]", escapeGlob("[x]"))
}

func TestCompareDateExpandsDay(t *testing.T) {
	col := bun.Ident("created_at")
	d := day{start: at("2024-05-01T00:00:00Z"), end: at("2024-05-02T00:00:00Z")}

	tests := []struct {
		token string
		expr  string
		args  []any
	}{
		{OpEquals, "(?TableAlias.? >= ? AND ?TableAlias.? < ?)", []any{col, d.start, col, d.end}},
		{OpGreater, "?TableAlias.? >= ?", []any{col, d.end}},
		{OpGreaterEq, "?TableAlias.? >= ?", []any{col, d.start}},
		{OpLess, "?TableAlias.? < ?", []any{col, d.start}},
		{OpLessEq, "?TableAlias.? < ?", []any{col, d.end}},
	}
	for _, tt := range tests {
		op, err := ResolveOperator(types.ColumnDate, tt.token)
		require.NoError(t, err)
		expr, args := op.render(dialect.PG, col, d)
		assert.Equal(t, tt.expr, expr, tt.token)
		assert.Equal(t, tt.args, args, tt.token)
	}

	op, _ := ResolveOperator(types.ColumnDate, OpGreater)
	instant := at("2024-05-01T12:00:00Z")
	expr, args := op.render(dialect.PG, col, instant)
	assert.Equal(t, "?TableAlias.? > ?", expr)
	assert.Equal(t, []any{col, instant}, args)
}
