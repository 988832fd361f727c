// MIT License
//
// Copyright (c) 2024-2026 decadezzz
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package nodepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsDuplicateKinds(t *testing.T) {
	_, err := New("sharding",
		WithNamedItem("tables"),
		WithUniqueItem("tables"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateItemKind)

	_, err = New("sharding",
		WithNamedItem("tables"),
		WithNamedItem("tables"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateItemKind)
}

func TestNewRejectsInvalidSegments(t *testing.T) {
	_, err := New("")
	require.Error(t, err)

	_, err = New("shar/ding")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPathSegment)

	_, err = New("sharding", WithNamedItem("ta/bles"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPathSegment)
}

func TestSchemaPreservesDeclarationOrder(t *testing.T) {
	nodePath, err := New("sharding",
		WithNamedItem("tables"),
		WithNamedItem("auto_tables"),
		WithNamedItem("binding_tables"),
		WithUniqueItem("default_database_strategy"),
		WithUniqueItem("default_table_strategy"))
	require.NoError(t, err)

	namedKinds := make([]string, 0, len(nodePath.NamedItems()))
	for _, item := range nodePath.NamedItems() {
		namedKinds = append(namedKinds, item.Kind())
	}
	assert.Equal(t, []string{"tables", "auto_tables", "binding_tables"}, namedKinds)

	uniqueKinds := make([]string, 0, len(nodePath.UniqueItems()))
	for _, item := range nodePath.UniqueItems() {
		uniqueKinds = append(uniqueKinds, item.Kind())
	}
	assert.Equal(t, []string{"default_database_strategy", "default_table_strategy"}, uniqueKinds)
	assert.Equal(t, "sharding", nodePath.RuleType())
}

func TestNamedItemFindNameByItemPath(t *testing.T) {
	nodePath, err := New("sharding", WithNamedItem("tables"))
	require.NoError(t, err)
	tables := nodePath.NamedItems()[0]

	testCases := []struct {
		path     string
		expected string
		matched  bool
	}{
		{"/metadata/foo_db/rules/sharding/tables/t_order", "t_order", true},
		{"/metadata/foo_db/rules/sharding/tables/t_order/active_version", "t_order", true},
		{"/metadata/foo_db/rules/sharding/tables/t_order/versions/5", "t_order", true},
		{"/metadata/foo_db/rules/sharding/tables", "", false},
		{"/metadata/foo_db/rules/sharding/auto_tables/t_order", "", false},
		{"/metadata/foo_db/rules/encrypt/tables/t_order", "", false},
		{"/metadata/foo_db/rules/sharding/tables/t_order/unknown", "", false},
		{"/nodes/compute_nodes/online/proxy", "", false},
		{"", "", false},
	}
	for _, testCase := range testCases {
		name, ok := tables.FindNameByItemPath(testCase.path)
		assert.Equal(t, testCase.matched, ok, "path=%s", testCase.path)
		assert.Equal(t, testCase.expected, name, "path=%s", testCase.path)
	}
}

func TestNamedItemNameCannotSpanSegments(t *testing.T) {
	nodePath, err := New("sharding", WithNamedItem("tables"))
	require.NoError(t, err)
	tables := nodePath.NamedItems()[0]

	// a crafted path must not yield a name containing a separator
	name, ok := tables.FindNameByItemPath("/metadata/foo_db/rules/sharding/tables/t_order/extra/active_version")
	assert.False(t, ok)
	assert.Empty(t, name)
}

func TestUniqueItemIsActiveVersionPath(t *testing.T) {
	nodePath, err := New("encrypt", WithUniqueItem("algorithm"))
	require.NoError(t, err)
	algorithm := nodePath.UniqueItems()[0]

	assert.True(t, algorithm.IsActiveVersionPath("/metadata/foo_db/rules/encrypt/algorithm/active_version"))
	assert.False(t, algorithm.IsActiveVersionPath("/metadata/foo_db/rules/encrypt/algorithm"))
	assert.False(t, algorithm.IsActiveVersionPath("/metadata/foo_db/rules/encrypt/algorithm/versions/0"))
	assert.False(t, algorithm.IsActiveVersionPath("/metadata/foo_db/rules/encrypt/other/active_version"))
	assert.False(t, algorithm.IsActiveVersionPath("/metadata/foo_db/rules/sharding/algorithm/active_version"))
}

func TestItemPathBuilders(t *testing.T) {
	nodePath, err := New("sharding",
		WithNamedItem("tables"),
		WithUniqueItem("default_table_strategy"))
	require.NoError(t, err)

	tables := nodePath.NamedItems()[0]
	assert.Equal(t, "/metadata/foo_db/rules/sharding/tables/t_order", tables.BasePath("foo_db", "t_order"))
	assert.Equal(t, "/metadata/foo_db/rules/sharding/tables/t_order/active_version",
		tables.ActiveVersionPath("foo_db", "t_order"))

	strategy := nodePath.UniqueItems()[0]
	assert.Equal(t, "/metadata/foo_db/rules/sharding/default_table_strategy", strategy.BasePath("foo_db"))
	assert.Equal(t, "/metadata/foo_db/rules/sharding/default_table_strategy/active_version",
		strategy.ActiveVersionPath("foo_db"))

	// the builders and the matchers agree with each other
	name, ok := tables.FindNameByItemPath(tables.ActiveVersionPath("foo_db", "t_order"))
	require.True(t, ok)
	assert.Equal(t, "t_order", name)
	assert.True(t, strategy.IsActiveVersionPath(strategy.ActiveVersionPath("foo_db")))
}

func TestFindDatabaseName(t *testing.T) {
	database, ok := FindDatabaseName("/metadata/foo_db/rules/sharding/tables/t_order")
	require.True(t, ok)
	assert.Equal(t, "foo_db", database)

	database, ok = FindDatabaseName("/metadata/bar_db")
	require.True(t, ok)
	assert.Equal(t, "bar_db", database)

	_, ok = FindDatabaseName("/nodes/compute_nodes/online/proxy")
	assert.False(t, ok)

	_, ok = FindDatabaseName("/metadata")
	assert.False(t, ok)
}

func TestRulePath(t *testing.T) {
	assert.Equal(t, "/metadata/foo_db/rules/sharding", RulePath("foo_db", "sharding"))
}
