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

// UniqueItemPath recognizes the registry paths of one unique, singleton item
// kind (for example a single default strategy per database).
type UniqueItemPath struct {
	ruleType      string
	kind          string
	activePattern *regexp.Regexp
}

func newUniqueItemPath(ruleType, kind string) *UniqueItemPath {
	// matches exactly the singleton's active-version marker path
	expr := fmt.Sprintf(`^/%s/[^/]+/%s/%s/%s%s$`,
		metadataRootNode,
		rulesNode,
		regexp.QuoteMeta(ruleType),
		regexp.QuoteMeta(kind),
		regexp.QuoteMeta(metadata.ActiveVersionPath("")))
	return &UniqueItemPath{
		ruleType:      ruleType,
		kind:          kind,
		activePattern: regexp.MustCompile(expr),
	}
}

// Kind returns the item kind key of this matcher.
func (x *UniqueItemPath) Kind() string {
	return x.kind
}

// IsActiveVersionPath reports whether path is exactly the active-version
// marker path of this singleton item, per the metadata package convention.
func (x *UniqueItemPath) IsActiveVersionPath(path string) bool {
	return x.activePattern.MatchString(path)
}

// BasePath returns the registry base path of the singleton item, suitable for
// deriving its version paths through the metadata package.
func (x *UniqueItemPath) BasePath(databaseName string) string {
	return RulePath(databaseName, x.ruleType) + "/" + x.kind
}

// ActiveVersionPath returns the active-version marker path of the singleton.
func (x *UniqueItemPath) ActiveVersionPath(databaseName string) string {
	return metadata.ActiveVersionPath(x.BasePath(databaseName))
}
