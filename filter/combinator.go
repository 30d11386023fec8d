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
	"strings"

	"github.com/tomoncle/sieve/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Composite folds compiled predicates with one flat logic operator. The zero
// value matches every row.
type Composite struct {
	Logic      types.LogicOperator
	Predicates []Predicate
}

// MatchAll reports whether the composite places no restriction on rows.
func (c Composite) MatchAll() bool { return len(c.Predicates) == 0 }

// Combine builds the composite predicate. The logic operator is only
// validated when two or more predicates have to be joined.
func Combine(preds []Predicate, logicOperator string) (Composite, error) {
	switch len(preds) {
	case 0:
		return Composite{Logic: types.LogicAnd}, nil
	case 1:
		return Composite{Logic: types.LogicAnd, Predicates: preds}, nil
	}
	op, ok := types.ParseLogicOperator(logicOperator)
	if !ok {
		return Composite{}, rejectToken(KindInvalidLogicOperator, logicOperator)
	}
	return Composite{Logic: op, Predicates: preds}, nil
}

// Apply adds the composite to q as a single parenthesized group.
func (c Composite) Apply(q *bun.SelectQuery, d dialect.Name) *bun.SelectQuery {
	if c.MatchAll() {
		return q
	}
	return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, p := range c.Predicates {
			expr, args := p.SQL(d)
			if c.Logic == types.LogicOr {
				q = q.WhereOr(expr, args...)
			} else {
				q = q.Where(expr, args...)
			}
		}
		return q
	})
}

func (c Composite) String() string {
	if c.MatchAll() {
		return "TRUE"
	}
	parts := make([]string, len(c.Predicates))
	for i, p := range c.Predicates {
		parts[i] = p.String()
	}
	return strings.Join(parts, " "+string(c.Logic)+" ")
}
