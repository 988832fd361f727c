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

// Package nodepath maps rule configuration items onto registry paths and back.
//
// A database rule subtree is laid out as
//
//	/metadata/<database>/rules/<ruleType>/<kind>/<name>/active_version   (named items)
//	/metadata/<database>/rules/<ruleType>/<kind>/active_version          (unique items)
//
// with version nodes per the metadata package conventions. Matching is done
// with anchored expressions built once at schema construction, never by ad hoc
// path splitting, so item names containing unusual characters cannot confuse
// the matchers as long as they carry no path separator.
package nodepath

import (
	"errors"
	"fmt"
	"regexp"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/decadezzz/shardingsphere/internal/validation"
)

const (
	metadataRootNode = "metadata"
	rulesNode        = "rules"

	// pathSegmentPattern constrains rule types and item kinds to single,
	// separator-free path segments.
	pathSegmentPattern = `^[\w\-.]+$`
)

var (
	// ErrDuplicateItemKind is returned when a schema declares the same item
	// kind twice across the union of its named and unique items.
	ErrDuplicateItemKind = errors.New("duplicate rule item kind")

	// ErrInvalidPathSegment is returned when a rule type or item kind is not a
	// valid single path segment.
	ErrInvalidPathSegment = errors.New("invalid path segment")

	databaseNamePattern = regexp.MustCompile(`^/` + metadataRootNode + `/([^/]+)(?:/.*)?$`)
)

// FindDatabaseName extracts the database name from an observed registry path.
// It returns false when the path does not belong to the metadata subtree.
func FindDatabaseName(path string) (string, bool) {
	matches := databaseNamePattern.FindStringSubmatch(path)
	if matches == nil {
		return "", false
	}
	return matches[1], true
}

// RulePath returns the registry path of a rule type subtree for a database.
func RulePath(databaseName, ruleType string) string {
	return fmt.Sprintf("/%s/%s/%s/%s", metadataRootNode, databaseName, rulesNode, ruleType)
}

// DatabaseRuleNodePath is the path schema of one rule type: the ordered set of
// its named and unique item kinds together with their path matchers. Instances
// are immutable after construction and safe for concurrent use.
type DatabaseRuleNodePath struct {
	ruleType    string
	namedItems  []*NamedItemPath
	uniqueItems []*UniqueItemPath
}

// Option configures a DatabaseRuleNodePath at construction time.
type Option func(*schemaBuilder)

type schemaBuilder struct {
	namedKinds  []string
	uniqueKinds []string
}

// WithNamedItem declares a named, multi-valued item kind. Declaration order is
// preserved and is the order matchers are consulted in.
func WithNamedItem(kind string) Option {
	return func(b *schemaBuilder) {
		b.namedKinds = append(b.namedKinds, kind)
	}
}

// WithUniqueItem declares a unique, singleton item kind. Declaration order is
// preserved and is the order matchers are consulted in.
func WithUniqueItem(kind string) Option {
	return func(b *schemaBuilder) {
		b.uniqueKinds = append(b.uniqueKinds, kind)
	}
}

// New creates the path schema of the given rule type. Item kinds must be
// unique across the union of named and unique declarations so that matching
// stays deterministic by construction.
func New(ruleType string, opts ...Option) (*DatabaseRuleNodePath, error) {
	builder := &schemaBuilder{}
	for _, opt := range opts {
		opt(builder)
	}

	if err := validateSchema(ruleType, builder); err != nil {
		return nil, err
	}

	nodePath := &DatabaseRuleNodePath{
		ruleType:    ruleType,
		namedItems:  make([]*NamedItemPath, 0, len(builder.namedKinds)),
		uniqueItems: make([]*UniqueItemPath, 0, len(builder.uniqueKinds)),
	}
	for _, kind := range builder.namedKinds {
		nodePath.namedItems = append(nodePath.namedItems, newNamedItemPath(ruleType, kind))
	}
	for _, kind := range builder.uniqueKinds {
		nodePath.uniqueItems = append(nodePath.uniqueItems, newUniqueItemPath(ruleType, kind))
	}
	return nodePath, nil
}

// RuleType returns the stable identifier of the owning rule type.
func (x *DatabaseRuleNodePath) RuleType() string {
	return x.ruleType
}

// NamedItems returns the named item matchers in declaration order.
func (x *DatabaseRuleNodePath) NamedItems() []*NamedItemPath {
	return x.namedItems
}

// UniqueItems returns the unique item matchers in declaration order.
func (x *DatabaseRuleNodePath) UniqueItems() []*UniqueItemPath {
	return x.uniqueItems
}

func validateSchema(ruleType string, builder *schemaBuilder) error {
	chain := validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("ruleType", ruleType)).
		AddValidator(validation.NewPatternValidator(pathSegmentPattern, ruleType,
			fmt.Errorf("%w: rule type %q", ErrInvalidPathSegment, ruleType)))

	allKinds := append(append([]string{}, builder.namedKinds...), builder.uniqueKinds...)
	for _, kind := range allKinds {
		chain.
			AddValidator(validation.NewEmptyStringValidator("itemKind", kind)).
			AddValidator(validation.NewPatternValidator(pathSegmentPattern, kind,
				fmt.Errorf("%w: item kind %q", ErrInvalidPathSegment, kind)))
	}
	if err := chain.Validate(); err != nil {
		return err
	}

	kinds := mapset.NewThreadUnsafeSet[string]()
	for _, kind := range allKinds {
		if !kinds.Add(kind) {
			return fmt.Errorf("%w: %s", ErrDuplicateItemKind, kind)
		}
	}
	return nil
}
