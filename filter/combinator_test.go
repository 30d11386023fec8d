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
)

func mustCompile(t *testing.T, c types.FilterCondition) Predicate {
	t.Helper()
	p, err := Compile(accountColumns, c)
	require.NoError(t, err)
	return p
}

func TestCombineEmptyMatchesAll(t *testing.T) {
	c, err := Combine(nil, "garbage")
	require.NoError(t, err)
	assert.True(t, c.MatchAll())
	assert.Equal(t, "TRUE", c.String())
}

func TestCombineSingleSkipsLogicValidation(t *testing.T) {
	p := mustCompile(t, cond("firstName", OpEquals, "Ada"))
	for _, logic := range []string{"XOR", "", "INVALID", "and"} {
		c, err := Combine([]Predicate{p}, logic)
		require.NoError(t, err, logic)
		assert.Len(t, c.Predicates, 1)
	}
}

func TestCombineParsesLogic(t *testing.T) {
	preds := []Predicate{
		mustCompile(t, cond("firstName", OpEquals, "Ada")),
		mustCompile(t, cond("lastName", OpEquals, "axb")),
	}
	tests := []struct {
		in   string
		want types.LogicOperator
	}{
		{"AND", types.LogicAnd},
		{"OR", types.LogicOr},
		{"or", types.LogicOr},
		{" And ", types.LogicAnd},
		{"", types.LogicAnd},
	}
	for _, tt := range tests {
		c, err := Combine(preds, tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, c.Logic, tt.in)
	}

	c, _ := Combine(preds, "OR")
	assert.Equal(t, "firstName equals Ada OR lastName equals axb", c.String())
}

func TestCombineRejectsUnknownLogic(t *testing.T) {
	preds := []Predicate{
		mustCompile(t, cond("firstName", OpEquals, "Ada")),
		mustCompile(t, cond("lastName", OpEquals, "Lovelace")),
	}
	for _, logic := range []string{"INVALID", "XOR", "&&", "NOT"} {
		_, err := Combine(preds, logic)
		require.Error(t, err, logic)
		assert.ErrorIs(t, err, ErrInvalidLogicOperator)
		assert.EqualError(t, err, "InvalidLogicOperator: "+logic)
	}
}
