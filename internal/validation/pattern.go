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

package validation

import (
	"fmt"
	"regexp"
)

// patternValidator checks a value against a regular expression compiled once
// at construction. Callers pass patterns known at compile time, typically
// path segment shapes; an invalid pattern panics there rather than being
// silently treated as a mismatch on every Validate.
type patternValidator struct {
	expression *regexp.Regexp
	value      string
	customErr  error
}

var _ Validator = (*patternValidator)(nil)

// NewPatternValidator creates a validator matching value against pattern.
// When customErr is nil a generic violation error is reported instead.
func NewPatternValidator(pattern, value string, customErr error) Validator {
	return &patternValidator{
		expression: regexp.MustCompile(pattern),
		value:      value,
		customErr:  customErr,
	}
}

// Validate implements Validator.
func (x *patternValidator) Validate() error {
	if !x.expression.MatchString(x.value) {
		if x.customErr != nil {
			return x.customErr
		}
		return fmt.Errorf("the value [%s] is invalid", x.value)
	}
	return nil
}
