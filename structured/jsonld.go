// Package structured reads machine-readable product data embedded in a page:
// JSON-LD blocks and the inline page-state objects storefronts hydrate from.
package structured

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReadJSONLD returns the first JSON-LD node typed Product, or nil
func ReadJSONLD(doc *goquery.Document) map[string]any {
	return FindJSONLD(doc, "Product")
}

// FindJSONLD returns the first JSON-LD node whose @type matches typeName.
// Blocks are scanned in document order and never merged. A block may hold a
// single object, an array of objects, or an object with an @graph array.
func FindJSONLD(doc *goquery.Document, typeName string) (found map[string]any) {
	if doc == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			found = nil
		}
	}()

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, err := decode(s.Text())
		if err != nil {
			return true
		}
		found = findTyped(v, typeName, 0)
		return found == nil
	})
	return found
}

func findTyped(v any, typeName string, depth int) map[string]any {
	if depth > 4 {
		return nil
	}
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			if m := findTyped(item, typeName, depth+1); m != nil {
				return m
			}
		}
	case map[string]any:
		if HasType(node, typeName) {
			return node
		}
		if graph, ok := node["@graph"]; ok {
			return findTyped(graph, typeName, depth+1)
		}
	}
	return nil
}

// HasType reports whether a JSON-LD node's @type (string or array) includes typeName
func HasType(node map[string]any, typeName string) bool {
	switch t := node["@type"].(type) {
	case string:
		return typeMatches(t, typeName)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && typeMatches(s, typeName) {
				return true
			}
		}
	}
	return false
}

func typeMatches(value, typeName string) bool {
	value = strings.TrimPrefix(strings.TrimPrefix(value, "https://schema.org/"), "http://schema.org/")
	return strings.EqualFold(value, typeName)
}

// ReadJSONScript decodes the JSON body of the first element matching selector,
// e.g. script[data-product-json] or script#__NEXT_DATA__
func ReadJSONScript(doc *goquery.Document, selector string) (found map[string]any) {
	if doc == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			found = nil
		}
	}()

	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, err := decode(s.Text())
		if err != nil {
			return true
		}
		found, _ = v.(map[string]any)
		return found == nil
	})
	return found
}

// decode parses JSON keeping numbers as json.Number so long ids stay exact
func decode(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	// Some templates wrap the payload in an HTML comment or CDATA section
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "<!--"), "-->")
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "//<![CDATA["), "//]]>")

	dec := json.NewDecoder(bytes.NewReader([]byte(strings.TrimSpace(raw))))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
