// Package selectors resolves logical product fields from ordered lists of
// DOM selectors.
package selectors

import (
	"fmt"
	"regexp"
	"strings"

	"product-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

var reAttrName = regexp.MustCompile(`^[a-zA-Z_:][-a-zA-Z0-9_:.]*$`)

// Self addresses the element the selector runs against rather than a descendant
const Self = "&"

// Selector is a parsed selector string. A trailing "@attr" asks for an
// attribute value instead of the element text: "#landingImage@data-old-hires".
// "&@value" reads an attribute of the root element itself.
type Selector struct {
	CSS  string
	Attr string
}

// Parse splits a raw selector into its CSS and attribute parts
func Parse(raw string) Selector {
	raw = strings.TrimSpace(raw)
	at := strings.LastIndex(raw, "@")
	if at <= 0 {
		return Selector{CSS: raw}
	}
	attr := raw[at+1:]
	if !reAttrName.MatchString(attr) || strings.Contains(attr, "]") {
		return Selector{CSS: raw}
	}
	return Selector{CSS: strings.TrimSpace(raw[:at]), Attr: attr}
}

func (s Selector) String() string {
	if s.Attr == "" {
		return s.CSS
	}
	return s.CSS + "@" + s.Attr
}

// Validate reports whether raw compiles as a selector
func Validate(raw string) error {
	sel := Parse(raw)
	if sel.CSS == "" {
		return fmt.Errorf("%w: empty selector", types.ErrInvalidSelector)
	}
	if sel.CSS == Self {
		return nil
	}
	if _, err := cascadia.Compile(sel.CSS); err != nil {
		return fmt.Errorf("%w: %q: %v", types.ErrInvalidSelector, raw, err)
	}
	return nil
}

// Engine runs selector chains against a document or a sub-tree of it
type Engine struct {
	logger types.Logger
}

// NewEngine creates a selector engine
func NewEngine(logger types.Logger) *Engine {
	return &Engine{logger: logger}
}

// First returns the value of the first selector, in list order, that matches
// an element with a non-empty value. No scoring and no combining.
func (e *Engine) First(root *goquery.Selection, sels []string) (string, bool) {
	if root == nil {
		return "", false
	}
	for _, raw := range sels {
		if value := e.firstValue(root, Parse(raw)); value != "" {
			return value, true
		}
	}
	return "", false
}

// All unions the values of every selector in the list, preserving
// first-seen order. The result is never nil.
func (e *Engine) All(root *goquery.Selection, sels []string) []string {
	out := []string{}
	if root == nil {
		return out
	}
	seen := make(map[string]bool)
	for _, raw := range sels {
		for _, value := range e.allValues(root, Parse(raw)) {
			if !seen[value] {
				seen[value] = true
				out = append(out, value)
			}
		}
	}
	return out
}

// Blocks returns the union of elements matched by every selector, used for
// repeated regions such as variant axes, seller offers and reviews
func (e *Engine) Blocks(root *goquery.Selection, sels []string) *goquery.Selection {
	var union *goquery.Selection
	if root == nil {
		return &goquery.Selection{}
	}
	for _, raw := range sels {
		found := e.find(root, Parse(raw).CSS)
		if found.Length() == 0 {
			continue
		}
		if union == nil {
			union = found
		} else {
			union = union.AddSelection(found)
		}
	}
	if union == nil {
		return root.Slice(0, 0)
	}
	return union
}

// FirstBlock returns the elements matched by the first selector that matches anything
func (e *Engine) FirstBlock(root *goquery.Selection, sels []string) *goquery.Selection {
	if root == nil {
		return &goquery.Selection{}
	}
	for _, raw := range sels {
		if found := e.find(root, Parse(raw).CSS); found.Length() > 0 {
			return found
		}
	}
	return root.Slice(0, 0)
}

// Matches reports whether any selector matches root itself or one of its descendants
func (e *Engine) Matches(root *goquery.Selection, sels []string) bool {
	if root == nil || root.Length() == 0 {
		return false
	}
	for _, raw := range sels {
		css := Parse(raw).CSS
		if css == "" || css == Self {
			continue
		}
		if e.is(root, css) || e.find(root, css).Length() > 0 {
			return true
		}
	}
	return false
}

func (e *Engine) is(root *goquery.Selection, css string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return root.Is(css)
}

func (e *Engine) firstValue(root *goquery.Selection, sel Selector) (value string) {
	e.find(root, sel.CSS).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		value = valueOf(s, sel.Attr)
		return value == ""
	})
	return value
}

func (e *Engine) allValues(root *goquery.Selection, sel Selector) []string {
	var values []string
	e.find(root, sel.CSS).Each(func(_ int, s *goquery.Selection) {
		if value := valueOf(s, sel.Attr); value != "" {
			values = append(values, value)
		}
	})
	return values
}

// find evaluates one selector in isolation. A selector that blows up on an
// unexpected tree counts as a miss.
func (e *Engine) find(root *goquery.Selection, css string) (found *goquery.Selection) {
	defer func() {
		if r := recover(); r != nil {
			if e.logger != nil {
				e.logger.Debugf("Selector %q failed: %v", css, r)
			}
			found = root.Slice(0, 0)
		}
	}()
	switch css {
	case "":
		return root.Slice(0, 0)
	case Self:
		return root
	}
	return root.Find(css)
}

// valueOf returns trimmed text, or an attribute value. For srcset-style
// attributes the last (largest) candidate wins.
func valueOf(s *goquery.Selection, attr string) string {
	if attr == "" {
		return strings.Join(strings.Fields(s.Text()), " ")
	}
	value, ok := s.Attr(attr)
	if !ok {
		return ""
	}
	value = strings.TrimSpace(value)
	if strings.HasSuffix(attr, "srcset") {
		return lastSrcsetCandidate(value)
	}
	return value
}

func lastSrcsetCandidate(srcset string) string {
	candidates := strings.Split(srcset, ",")
	for i := len(candidates) - 1; i >= 0; i-- {
		fields := strings.Fields(candidates[i])
		if len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}
