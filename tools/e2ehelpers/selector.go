// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package e2ehelpers

import (
	"fmt"
	"strings"
)

// By is the lookup strategy of a Selector.
type By string

const (
	ByCSS   By = "css"
	ByID    By = "id"
	ByXPath By = "xpath"
)

// Selector identifies a DOM element.
type Selector struct {
	By    By
	Value string
}

// CSS returns a CSS selector.
func CSS(value string) Selector { return Selector{By: ByCSS, Value: value} }

// ID returns a selector matching the element with the given id attribute.
func ID(value string) Selector { return Selector{By: ByID, Value: value} }

// XPath returns an XPath selector.
func XPath(value string) Selector { return Selector{By: ByXPath, Value: value} }

// ButtonText matches the first button whose own text contains label.
func ButtonText(label string) Selector {
	return XPath(fmt.Sprintf("//button[contains(text(), %s)]", xpathLiteral(label)))
}

func (s Selector) String() string {
	return fmt.Sprintf("%s=%s", s.By, s.Value)
}

// Query returns the selector as a CSS query or XPath expression, and whether
// it is XPath.
func (s Selector) Query() (string, bool) {
	switch s.By {
	case ByID:
		return "#" + s.Value, false
	case ByXPath:
		return s.Value, true
	default:
		return s.Value, false
	}
}

// fileSafe turns the selector into something usable in a file name.
func (s Selector) fileSafe() string {
	r := strings.NewReplacer(
		"/", "_", "\\", "_", " ", "_", "'", "", "\"", "",
		"[", "_", "]", "_", "(", "_", ")", "_", "#", "", ".", "", ",", "_",
		"=", "_", ":", "_", "*", "_", "@", "", ">", "_",
	)
	out := strings.Trim(r.Replace(s.Value), "_")
	if len(out) > 60 {
		out = out[:60]
	}
	if out == "" {
		out = string(s.By)
	}
	return out
}

// xpathLiteral quotes s for use inside an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}
