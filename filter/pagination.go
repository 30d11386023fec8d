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

// ValidatePagination converts the absolute [start, end) row window into a
// page index and a page size.
//
// The page index is start/(end-start), so successive windows only line up
// when every call in a listing uses the same window size.
func ValidatePagination(start, end int) (pageIndex int, pageSize int, err error) {
	switch {
	case start < 0:
		return 0, 0, ErrStartIndexNegative
	case end <= 0:
		return 0, 0, ErrEndIndexNotPositive
	case start >= end:
		return 0, 0, ErrStartIndexNotBeforeEnd
	}
	pageSize = end - start
	return start / pageSize, pageSize, nil
}
