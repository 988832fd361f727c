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

package changed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decadezzz/shardingsphere/nodepath"
)

func shardingNodePath(t *testing.T) *nodepath.DatabaseRuleNodePath {
	t.Helper()
	nodePath, err := nodepath.New("sharding",
		nodepath.WithNamedItem("tables"),
		nodepath.WithNamedItem("auto_tables"),
		nodepath.WithUniqueItem("default_database_strategy"),
		nodepath.WithUniqueItem("default_table_strategy"))
	require.NoError(t, err)
	return nodePath
}

func encryptNodePath(t *testing.T) *nodepath.DatabaseRuleNodePath {
	t.Helper()
	nodePath, err := nodepath.New("encrypt",
		nodepath.WithNamedItem("tables"),
		nodepath.WithUniqueItem("algorithm"))
	require.NoError(t, err)
	return nodePath
}

func TestAlterBuilderNamedItem(t *testing.T) {
	change, ok := AlterBuilder{}.Build(shardingNodePath(t), "foo_db",
		"/metadata/foo_db/rules/sharding/tables/t_order/active_version", 5)
	require.True(t, ok)
	assert.Equal(t, AlterNamedRuleItem{
		DatabaseName:  "foo_db",
		ItemName:      "t_order",
		ItemType:      "sharding.tables",
		ActiveVersion: 5,
	}, change)
}

func TestAlterBuilderUniqueItem(t *testing.T) {
	change, ok := AlterBuilder{}.Build(shardingNodePath(t), "foo_db",
		"/metadata/foo_db/rules/sharding/default_table_strategy/active_version", 2)
	require.True(t, ok)
	assert.Equal(t, AlterUniqueRuleItem{
		DatabaseName:  "foo_db",
		ItemType:      "sharding.default_table_strategy",
		ActiveVersion: 2,
	}, change)
}

func TestAlterBuilderNoMatch(t *testing.T) {
	testCases := []string{
		"/metadata/foo_db/rules/encrypt/tables/t_order/active_version",
		"/metadata/foo_db/rules/sharding/unknown_kind/t_order/active_version",
		"/metadata/foo_db/schemas/foo_schema/tables/t_order",
		"/nodes/compute_nodes/online/proxy",
		"",
	}
	for _, path := range testCases {
		change, ok := AlterBuilder{}.Build(shardingNodePath(t), "foo_db", path, 1)
		assert.False(t, ok, "path=%s", path)
		assert.Nil(t, change, "path=%s", path)
	}
}

func TestDropBuilderNamedItem(t *testing.T) {
	change, ok := DropBuilder{}.Build(shardingNodePath(t), "foo_db",
		"/metadata/foo_db/rules/sharding/tables/t_order/active_version")
	require.True(t, ok)
	assert.Equal(t, DropNamedRuleItem{
		DatabaseName: "foo_db",
		ItemName:     "t_order",
		ItemType:     "sharding.tables",
	}, change)
}

func TestDropBuilderUniqueItem(t *testing.T) {
	change, ok := DropBuilder{}.Build(encryptNodePath(t), "foo_db",
		"/metadata/foo_db/rules/encrypt/algorithm/active_version")
	require.True(t, ok)
	assert.Equal(t, DropUniqueRuleItem{
		DatabaseName: "foo_db",
		ItemType:     "encrypt.algorithm",
	}, change)
}

func TestDropBuilderNoMatch(t *testing.T) {
	change, ok := DropBuilder{}.Build(encryptNodePath(t), "foo_db",
		"/metadata/foo_db/rules/sharding/tables/t_order/active_version")
	assert.False(t, ok)
	assert.Nil(t, change)
}

// Named items are scanned before unique ones, so a path that lives under a
// named kind always decodes to the named change, stably across runs.
func TestBuildersPreferNamedOverUnique(t *testing.T) {
	nodePath, err := nodepath.New("sharding",
		nodepath.WithNamedItem("strategies"),
		nodepath.WithUniqueItem("default"))
	require.NoError(t, err)

	path := "/metadata/foo_db/rules/sharding/strategies/default/active_version"

	for i := 0; i < 100; i++ {
		change, ok := AlterBuilder{}.Build(nodePath, "foo_db", path, 3)
		require.True(t, ok)
		named, isNamed := change.(AlterNamedRuleItem)
		require.True(t, isNamed)
		assert.Equal(t, "default", named.ItemName)
		assert.Equal(t, "sharding.strategies", named.ItemType)

		dropChange, ok := DropBuilder{}.Build(nodePath, "foo_db", path)
		require.True(t, ok)
		_, isNamedDrop := dropChange.(DropNamedRuleItem)
		assert.True(t, isNamedDrop)
	}
}

func TestBuildersScanInDeclarationOrder(t *testing.T) {
	// both kinds would match the same path shape; the first declared wins
	first, err := nodepath.New("sharding",
		nodepath.WithNamedItem("tables"),
		nodepath.WithNamedItem("auto_tables"))
	require.NoError(t, err)

	change, ok := AlterBuilder{}.Build(first, "foo_db",
		"/metadata/foo_db/rules/sharding/auto_tables/t_order/active_version", 1)
	require.True(t, ok)
	assert.Equal(t, "sharding.auto_tables", change.(AlterNamedRuleItem).ItemType)
}

func TestRuleItemChangeItemKeys(t *testing.T) {
	alterNamed := AlterNamedRuleItem{DatabaseName: "foo_db", ItemName: "t_order", ItemType: "sharding.tables", ActiveVersion: 1}
	dropNamed := DropNamedRuleItem{DatabaseName: "foo_db", ItemName: "t_order", ItemType: "sharding.tables"}
	assert.Equal(t, alterNamed.ItemKey(), dropNamed.ItemKey())

	alterUnique := AlterUniqueRuleItem{DatabaseName: "foo_db", ItemType: "encrypt.algorithm", ActiveVersion: 1}
	dropUnique := DropUniqueRuleItem{DatabaseName: "foo_db", ItemType: "encrypt.algorithm"}
	assert.Equal(t, alterUnique.ItemKey(), dropUnique.ItemKey())

	assert.NotEqual(t, alterNamed.ItemKey(), alterUnique.ItemKey())
	otherName := AlterNamedRuleItem{DatabaseName: "foo_db", ItemName: "t_item", ItemType: "sharding.tables", ActiveVersion: 1}
	assert.NotEqual(t, alterNamed.ItemKey(), otherName.ItemKey())
}
