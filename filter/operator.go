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
	"sort"
	"strings"
	"time"

	"github.com/tomoncle/sieve/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Operator tokens accepted by the catalog.
const (
	OpEquals     = "equals"
	OpContains   = "contains"
	OpStartsWith = "startsWith"
	OpEndsWith   = "endsWith"
	OpGreater    = ">"
	OpGreaterEq  = ">="
	OpLess       = "<"
	OpLessEq     = "<="
	OpIs         = "is"
)

// renderFunc produces a WHERE fragment and its arguments for one column.
type renderFunc func(d dialect.Name, col bun.Ident, v any) (string, []any)

// Operator is a whitelisted comparison for one column type.
type Operator struct {
	Token  string
	render renderFunc
}

var catalog = map[types.ColumnType]map[string]Operator{
	types.ColumnString: {
		OpEquals:     {OpEquals, compare("=")},
		OpContains:   {OpContains, match(true, true)},
		OpStartsWith: {OpStartsWith, match(false, true)},
		OpEndsWith:   {OpEndsWith, match(true, false)},
	},
	types.ColumnNumber: {
		OpEquals:    {OpEquals, compare("=")},
		OpGreater:   {OpGreater, compare(">")},
		OpGreaterEq: {OpGreaterEq, compare(">=")},
		OpLess:      {OpLess, compare("<")},
		OpLessEq:    {OpLessEq, compare("<=")},
	},
	types.ColumnBoolean: {
		OpIs: {OpIs, compare("=")},
	},
	types.ColumnDate: {
		OpEquals:    {OpEquals, compareDate("=")},
		OpGreater:   {OpGreater, compareDate(">")},
		OpGreaterEq: {OpGreaterEq, compareDate(">=")},
		OpLess:      {OpLess, compareDate("<")},
		OpLessEq:    {OpLessEq, compareDate("<=")},
	},
}

// ResolveOperator looks token up in the whitelist of column type t.
func ResolveOperator(t types.ColumnType, token string) (Operator, error) {
	op, ok := catalog[t][token]
	if !ok {
		return Operator{}, rejectToken(KindInvalidOperator, token)
	}
	return op, nil
}

// Operators lists the tokens allowed for column type t.
func Operators(t types.ColumnType) []string {
	out := make([]string, 0, len(catalog[t]))
	for token := range catalog[t] {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

func compare(sqlOp string) renderFunc {
	return func(_ dialect.Name, col bun.Ident, v any) (string, []any) {
		return "?TableAlias.? " + sqlOp + " ?", []any{col, v}
	}
}

// day is a date-only value covering [start, end).
type day struct {
	start time.Time
	end   time.Time
}

func compareDate(sqlOp string) renderFunc {
	plain := compare(sqlOp)
	return func(d dialect.Name, col bun.Ident, v any) (string, []any) {
		dv, ok := v.(day)
		if !ok {
			return plain(d, col, v)
		}
		switch sqlOp {
		case ">":
			return "?TableAlias.? >= ?", []any{col, dv.end}
		case ">=":
			return "?TableAlias.? >= ?", []any{col, dv.start}
		case "<":
			return "?TableAlias.? < ?", []any{col, dv.start}
		case "<=":
			return "?TableAlias.? < ?", []any{col, dv.end}
		default:
			return "(?TableAlias.? >= ? AND ?TableAlias.? < ?)", []any{col, dv.start, col, dv.end}
		}
	}
}

// match renders a case-sensitive containment test. Wildcards in the value
// are escaped so they only ever match themselves.
func match(anyPrefix, anySuffix bool) renderFunc {
	return func(d dialect.Name, col bun.Ident, v any) (string, []any) {
		s, _ := v.(string)
		switch d {
		case dialect.SQLite:
			return "?TableAlias.? GLOB ?", []any{col, wrap(escapeGlob(s), "*", anyPrefix, anySuffix)}
		case dialect.MySQL:
			return "?TableAlias.? LIKE BINARY ? ESCAPE ?", []any{col, wrap(escapeLike(s), "%", anyPrefix, anySuffix), `\`}
		default:
			return "?TableAlias.? LIKE ? ESCAPE ?", []any{col, wrap(escapeLike(s), "%", anyPrefix, anySuffix), `\`}
		}
	}
}

func wrap(s, wildcard string, prefix, suffix bool) string {
	if prefix {
		s = wildcard + s
	}
	if suffix {
		s += wildcard
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

var globEscaper = strings.NewReplacer(`[`, `[[]`, `*`, `[*]`, `?`, `[?]`)

func escapeGlob(s string) string { return globEscaper.Replace(s) }
