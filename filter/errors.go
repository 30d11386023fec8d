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

import "errors"

// Kind classifies a rejected request.
type Kind string

const (
	KindInvalidPagination    Kind = "InvalidPagination"
	KindInvalidColumnName    Kind = "InvalidColumnName"
	KindInvalidOperator      Kind = "InvalidOperator"
	KindInvalidLogicOperator Kind = "InvalidLogicOperator"
	KindValueParse           Kind = "ValueParseError"
)

// Pagination failure details.
const (
	StartIndexCannotBeNegative    = "StartIndexCannotBeNegative"
	EndIndexMustBeGreaterThanZero = "EndIndexMustBeGreaterThanZero"
	StartIndexMustBeLessThanEnd   = "StartIndexMustBeLessThanEnd"
	PageSizeExceedsLimit          = "PageSizeExceedsLimit"
)

// Error is returned for every request the engine refuses to run. Errors
// returned by the backing store are never wrapped in an Error.
type Error struct {
	Kind   Kind
	Detail string
	Err    error

	// token marks Detail as the caller's own input, echoed even when empty
	token bool
}

// rejectToken reports a column, operator or logic token that is not accepted.
func rejectToken(kind Kind, token string) *Error {
	return &Error{Kind: kind, Detail: token, token: true}
}

func (e *Error) Error() string {
	if e.Detail == "" && !e.token {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind. A target with a Detail must
// also match the detail exactly.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Detail == "" || t.Detail == e.Detail)
}

var (
	ErrInvalidPagination    = &Error{Kind: KindInvalidPagination}
	ErrInvalidColumnName    = &Error{Kind: KindInvalidColumnName}
	ErrInvalidOperator      = &Error{Kind: KindInvalidOperator}
	ErrInvalidLogicOperator = &Error{Kind: KindInvalidLogicOperator}
	ErrValueParse           = &Error{Kind: KindValueParse}

	ErrStartIndexNegative     = &Error{Kind: KindInvalidPagination, Detail: StartIndexCannotBeNegative}
	ErrEndIndexNotPositive    = &Error{Kind: KindInvalidPagination, Detail: EndIndexMustBeGreaterThanZero}
	ErrStartIndexNotBeforeEnd = &Error{Kind: KindInvalidPagination, Detail: StartIndexMustBeLessThanEnd}
	ErrPageSizeExceedsLimit   = &Error{Kind: KindInvalidPagination, Detail: PageSizeExceedsLimit}

	// ErrScopeRequired reports a caller that did not supply a scoping
	// predicate. It is a programming error, not a bad request.
	ErrScopeRequired = errors.New("filter: scoping predicate is required")
)

// IsRequestError reports whether err is a caller-input validation failure.
func IsRequestError(err error) bool {
	var fe *Error
	return errors.As(err, &fe)
}

// KindOf returns the kind of a request error, or "" for any other error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
