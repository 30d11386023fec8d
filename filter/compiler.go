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
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tomoncle/sieve/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

const dayLayout = "2006-01-02"

// Predicate is one compiled condition: a registered column, a whitelisted
// operator and a value already parsed into the column's type.
type Predicate struct {
	Column   ColumnDescriptor
	Operator Operator
	Value    any
}

// SQL renders the predicate for dialect d.
func (p Predicate) SQL(d dialect.Name) (string, []any) {
	return p.Operator.render(d, bun.Ident(p.Column.Column), p.Value)
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %v", p.Column.Name, p.Operator.Token, p.Value)
}

// Compile validates c against the registry and the operator catalog, in that
// order, and parses its value. It performs no I/O.
func Compile[T any](r *Registry[T], c types.FilterCondition) (Predicate, error) {
	col, err := r.Resolve(c.Column)
	if err != nil {
		return Predicate{}, err
	}
	op, err := ResolveOperator(col.Type, c.Operator)
	if err != nil {
		return Predicate{}, err
	}
	v, err := parseValue(col, c.Value)
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Column: col, Operator: op, Value: v}, nil
}

func parseValue(col ColumnDescriptor, raw string) (any, error) {
	switch col.Type {
	case types.ColumnString:
		return raw, nil
	case types.ColumnNumber:
		return parseNumber(col, raw)
	case types.ColumnBoolean:
		switch {
		case strings.EqualFold(raw, "true"):
			return true, nil
		case strings.EqualFold(raw, "false"):
			return false, nil
		}
		return nil, valueError(col, raw, nil)
	case types.ColumnDate:
		return parseDate(col, raw)
	}
	return nil, valueError(col, raw, nil)
}

func parseNumber(col ColumnDescriptor, raw string) (any, error) {
	s := strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, valueError(col, raw, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, valueError(col, raw, nil)
	}
	return f, nil
}

func parseDate(col ColumnDescriptor, raw string) (any, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(dayLayout, s, time.UTC)
	if err != nil {
		return nil, valueError(col, raw, err)
	}
	return day{start: t, end: t.AddDate(0, 0, 1)}, nil
}

func valueError(col ColumnDescriptor, raw string, cause error) error {
	return &Error{
		Kind:   KindValueParse,
		Detail: fmt.Sprintf("column %s expects a %s value, got %q", col.Name, col.Type, raw),
		Err:    cause,
	}
}
