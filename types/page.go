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

// FilterCondition is a single (column, operator, value) triple supplied by a
// caller. Value is always text and is parsed by the column's declared type.
type FilterCondition struct {
	Column   string `json:"column" yaml:"column"`
	Operator string `json:"operator" yaml:"operator"`
	Value    string `json:"value" yaml:"value"`
}

// NewFilterCondition creates a filter condition.
func NewFilterCondition(column, operator, value string) FilterCondition {
	return FilterCondition{Column: column, Operator: operator, Value: value}
}

// PaginationRequest describes an absolute zero-based [Start, End) row window,
// the filters to apply and how to combine them.
type PaginationRequest struct {
	Start          int               `json:"start"`
	End            int               `json:"end"`
	Filters        []FilterCondition `json:"filters,omitempty"`
	LogicOperator  string            `json:"logicOperator,omitempty"`
	IncludeDeleted bool              `json:"includeDeleted,omitempty"`
}

// NewPaginationRequest constructs a request for the [start, end) window.
func NewPaginationRequest(start, end int, filters ...FilterCondition) *PaginationRequest {
	return &PaginationRequest{Start: start, End: end, Filters: filters, LogicOperator: string(LogicAnd)}
}

// WithLogic sets the logic operator and returns the request.
func (p *PaginationRequest) WithLogic(op string) *PaginationRequest {
	p.LogicOperator = op
	return p
}

// WithDeleted includes soft-deleted rows and returns the request.
func (p *PaginationRequest) WithDeleted() *PaginationRequest {
	p.IncludeDeleted = true
	return p
}

// Page holds one window of rows along with the total number of matching rows.
type Page[T any] struct {
	Data       []*T `json:"data"`
	TotalCount int  `json:"totalCount"`
	PageIndex  int  `json:"pageIndex"`
	PageSize   int  `json:"pageSize"`
}

// NewEmptyPage constructs a page with no rows.
func NewEmptyPage[T any](pageIndex, pageSize int) *Page[T] {
	return &Page[T]{Data: make([]*T, 0), PageIndex: pageIndex, PageSize: pageSize}
}

// MapPage converts every row of p with fn, keeping the page metadata.
func MapPage[T any, R any](p *Page[T], fn func(*T) R) *Page[R] {
	if p == nil {
		return nil
	}
	out := &Page[R]{
		Data:       make([]*R, 0, len(p.Data)),
		TotalCount: p.TotalCount,
		PageIndex:  p.PageIndex,
		PageSize:   p.PageSize,
	}
	for _, row := range p.Data {
		r := fn(row)
		out.Data = append(out.Data, &r)
	}
	return out
}
