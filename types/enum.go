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

package types

import "strings"

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// ColumnType is the semantic type a filterable column is declared with.
type ColumnType int

const (
	ColumnString ColumnType = iota
	ColumnNumber
	ColumnBoolean
	ColumnDate
)

var _ BaseEnum = ColumnString

var columnTypeNames = map[ColumnType][2]string{
	ColumnString:  {"string", "free text compared case-sensitively"},
	ColumnNumber:  {"number", "integer or decimal value"},
	ColumnBoolean: {"boolean", "literal true or false"},
	ColumnDate:    {"date", "RFC3339 timestamp or YYYY-MM-DD day"},
}

func (t ColumnType) IsValid() bool {
	_, ok := columnTypeNames[t]
	return ok
}

func (t ColumnType) Number() int {
	if !t.IsValid() {
		return IllegalValue
	}
	return int(t)
}

func (t ColumnType) Name() string {
	if v, ok := columnTypeNames[t]; ok {
		return v[0]
	}
	return IllegalName
}

func (t ColumnType) String() string { return t.Name() }

func (t ColumnType) Desc() string {
	if v, ok := columnTypeNames[t]; ok {
		return v[1]
	}
	return IllegalDesc
}

// LogicOperator is the single boolean combinator applied across all filters.
type LogicOperator string

const (
	LogicAnd LogicOperator = "AND"
	LogicOr  LogicOperator = "OR"
)

// ParseLogicOperator normalizes s; an empty value means AND.
// The second result reports whether s named a supported operator.
func ParseLogicOperator(s string) (LogicOperator, bool) {
	switch op := LogicOperator(strings.ToUpper(strings.TrimSpace(s))); op {
	case "":
		return LogicAnd, true
	case LogicAnd, LogicOr:
		return op, true
	default:
		return op, false
	}
}
