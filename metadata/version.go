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

// Package metadata holds the registry path conventions shared by every node in
// the cluster. Paths must be reproduced bit-exact for interoperability.
package metadata

import "strconv"

const (
	activeVersionNode = "active_version"
	versionsNode      = "versions"
)

// ActiveVersionPath returns the active-version marker path for the given base
// path. Every component recognizing "the active version of item X changed"
// must use this exact convention.
func ActiveVersionPath(basePath string) string {
	return basePath + "/" + activeVersionNode
}

// VersionsPath returns the versions directory path for the given base path.
func VersionsPath(basePath string) string {
	return basePath + "/" + versionsNode
}

// VersionPath returns the path of a specific version node under the given base
// path. The version is rendered as a plain base-10 integer, no padding.
func VersionPath(basePath string, version int) string {
	return VersionsPath(basePath) + "/" + strconv.Itoa(version)
}

// Version represents the version history coordinates of one metadata item in
// the registry. It is a transient path-formatting value, never persisted
// itself. The base path must not end with a separator and version numbers are
// non-negative.
type Version struct {
	basePath        string
	currentVersion  int
	previousVersion int
}

// NewVersion creates a Version for the given base path and version pair.
func NewVersion(basePath string, currentVersion, previousVersion int) Version {
	return Version{
		basePath:        basePath,
		currentVersion:  currentVersion,
		previousVersion: previousVersion,
	}
}

// BasePath returns the base path of the metadata item.
func (v Version) BasePath() string {
	return v.basePath
}

// CurrentVersion returns the current version number.
func (v Version) CurrentVersion() int {
	return v.currentVersion
}

// PreviousVersion returns the previous version number.
func (v Version) PreviousVersion() int {
	return v.previousVersion
}

// ActiveVersionPath returns the active-version marker path of the item.
func (v Version) ActiveVersionPath() string {
	return ActiveVersionPath(v.basePath)
}

// VersionsPath returns the versions directory path of the item.
func (v Version) VersionsPath() string {
	return VersionsPath(v.basePath)
}

// VersionPath returns the path of the given version node of the item.
func (v Version) VersionPath(version int) string {
	return VersionPath(v.basePath, version)
}
