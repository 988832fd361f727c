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
	"fmt"
	"regexp"

	"github.com/decadezzz/shardingsphere/metadata"
)

// NamedItemPath recognizes registry paths of one named, multi-valued item kind
// (for example one sharding strategy per table). The matcher is an anchored
// expression compiled at schema construction; the item name segment cannot
// contain a path separator.
type NamedItemPath struct {
	ruleType    string
	kind        string
	itemPattern *regexp.Regexp
}

func newNamedItemPath(ruleType, kind string) *NamedItemPath {
	// matches <rule root>/<kind>/<name>, optionally followed by the item's
	// active-version marker or one of its version nodes
	expr := fmt.Sprintf(`^/%s/[^/]+/%s/%s/%s/([^/]+)(?:%s|%s/\d+)?$`,
		metadataRootNode,
		rulesNode,
		regexp.QuoteMeta(ruleType),
		regexp.QuoteMeta(kind),
		regexp.QuoteMeta(metadata.ActiveVersionPath("")),
		regexp.QuoteMeta(metadata.VersionsPath("")))
	return &NamedItemPath{
		ruleType:    ruleType,
		kind:        kind,
		itemPattern: regexp.MustCompile(expr),
	}
}

// Kind returns the item kind key of this matcher.
func (x *NamedItemPath) Kind() string {
	return x.kind
}

// FindNameByItemPath extracts the item name from an observed path. It returns
// false when the path does not structurally belong to this item kind.
func (x *NamedItemPath) FindNameByItemPath(path string) (string, bool) {
	matches := x.itemPattern.FindStringSubmatch(path)
	if matches == nil {
		return "", false
	}
	return matches[1], true
}

// BasePath returns the registry base path of a named item, suitable for
// deriving its version paths through the metadata package.
func (x *NamedItemPath) BasePath(databaseName, itemName string) string {
	return RulePath(databaseName, x.ruleType) + "/" + x.kind + "/" + itemName
}

// ActiveVersionPath returns the active-version marker path of a named item.
func (x *NamedItemPath) ActiveVersionPath(databaseName, itemName string) string {
	return metadata.ActiveVersionPath(x.BasePath(databaseName, itemName))
}
