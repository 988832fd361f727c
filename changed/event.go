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

// Package changed decodes raw registry watch events into typed rule item
// change events the rest of the system can apply.
package changed

// RuleItemChange is the closed set of decoded rule item change events:
// AlterNamedRuleItem, AlterUniqueRuleItem, DropNamedRuleItem and
// DropUniqueRuleItem. Events are transient; ownership is transferred to the
// rule application logic as soon as they are produced.
type RuleItemChange interface {
	// ItemKey identifies the logical item the change applies to. Changes
	// sharing an item key must be applied in the order they were decoded.
	ItemKey() string

	ruleItemChange()
}

// AlterNamedRuleItem signals that a named rule item switched to a new active
// version.
type AlterNamedRuleItem struct {
	DatabaseName  string
	ItemName      string
	ItemType      string
	ActiveVersion int
}

// AlterUniqueRuleItem signals that a singleton rule item switched to a new
// active version.
type AlterUniqueRuleItem struct {
	DatabaseName  string
	ItemType      string
	ActiveVersion int
}

// DropNamedRuleItem signals that a named rule item was removed. A dropped item
// carries no active version by definition.
type DropNamedRuleItem struct {
	DatabaseName string
	ItemName     string
	ItemType     string
}

// DropUniqueRuleItem signals that a singleton rule item was removed.
type DropUniqueRuleItem struct {
	DatabaseName string
	ItemType     string
}

func (AlterNamedRuleItem) ruleItemChange()  {}
func (AlterUniqueRuleItem) ruleItemChange() {}
func (DropNamedRuleItem) ruleItemChange()   {}
func (DropUniqueRuleItem) ruleItemChange()  {}

// ItemKey implements RuleItemChange.
func (x AlterNamedRuleItem) ItemKey() string {
	return itemKey(x.DatabaseName, x.ItemType, x.ItemName)
}

// ItemKey implements RuleItemChange.
func (x AlterUniqueRuleItem) ItemKey() string {
	return itemKey(x.DatabaseName, x.ItemType, "")
}

// ItemKey implements RuleItemChange.
func (x DropNamedRuleItem) ItemKey() string {
	return itemKey(x.DatabaseName, x.ItemType, x.ItemName)
}

// ItemKey implements RuleItemChange.
func (x DropUniqueRuleItem) ItemKey() string {
	return itemKey(x.DatabaseName, x.ItemType, "")
}

func itemKey(databaseName, itemType, itemName string) string {
	return databaseName + ":" + itemType + ":" + itemName
}
