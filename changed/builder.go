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
	"github.com/decadezzz/shardingsphere/nodepath"
)

// Builders scan a schema's named items before its unique items, each in the
// schema's declaration order. The precedence is deliberate so that a
// misconfigured schema with overlapping kinds still decodes reproducibly
// instead of depending on map iteration order. A false second return value
// means the path does not belong to the schema; that is the expected result
// for the majority of watch events and never an error.

// AlterBuilder decodes watch events that carry a new active version into
// alter rule item changes. It is stateless and safe for concurrent use.
type AlterBuilder struct{}

// Build attempts to decode an alter change for the given schema. The active
// version must have been parsed by the caller; a watch event without a valid
// version is a drop, not an alter.
func (AlterBuilder) Build(nodePath *nodepath.DatabaseRuleNodePath, databaseName, path string, activeVersion int) (RuleItemChange, bool) {
	for _, named := range nodePath.NamedItems() {
		if itemName, ok := named.FindNameByItemPath(path); ok {
			return AlterNamedRuleItem{
				DatabaseName:  databaseName,
				ItemName:      itemName,
				ItemType:      itemType(nodePath, named.Kind()),
				ActiveVersion: activeVersion,
			}, true
		}
	}
	for _, unique := range nodePath.UniqueItems() {
		if unique.IsActiveVersionPath(path) {
			return AlterUniqueRuleItem{
				DatabaseName:  databaseName,
				ItemType:      itemType(nodePath, unique.Kind()),
				ActiveVersion: activeVersion,
			}, true
		}
	}
	return nil, false
}

// DropBuilder decodes watch events that signal item removal into drop rule
// item changes. It is stateless and safe for concurrent use.
type DropBuilder struct{}

// Build attempts to decode a drop change for the given schema.
func (DropBuilder) Build(nodePath *nodepath.DatabaseRuleNodePath, databaseName, path string) (RuleItemChange, bool) {
	for _, named := range nodePath.NamedItems() {
		if itemName, ok := named.FindNameByItemPath(path); ok {
			return DropNamedRuleItem{
				DatabaseName: databaseName,
				ItemName:     itemName,
				ItemType:     itemType(nodePath, named.Kind()),
			}, true
		}
	}
	for _, unique := range nodePath.UniqueItems() {
		if unique.IsActiveVersionPath(path) {
			return DropUniqueRuleItem{
				DatabaseName: databaseName,
				ItemType:     itemType(nodePath, unique.Kind()),
			}, true
		}
	}
	return nil, false
}

func itemType(nodePath *nodepath.DatabaseRuleNodePath, kind string) string {
	return nodePath.RuleType() + "." + kind
}
