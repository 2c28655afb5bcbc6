package structured

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Blob describes an inline page-state object. Signature identifies the
// script that carries it; Anchor, when set, marks where the object starts
// relative to the signature ("data:" inside window.runParams = {...}).
type Blob struct {
	Signature string
	Anchor    string
}

// ReadBlob finds the first script containing the blob's signature and decodes
// the balanced JSON object that follows it. Returns nil on any failure.
func ReadBlob(doc *goquery.Document, blob Blob) (found map[string]any) {
	if doc == nil || blob.Signature == "" {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			found = nil
		}
	}()

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		body := s.Text()
		idx := strings.Index(body, blob.Signature)
		if idx < 0 {
			return true
		}
		start := idx + len(blob.Signature)
		if blob.Anchor != "" {
			rel := strings.Index(body[start:], blob.Anchor)
			if rel < 0 {
				return true
			}
			start += rel + len(blob.Anchor)
		}

		obj := BalancedObject(body[start:])
		if obj == "" {
			return true
		}
		v, err := decode(obj)
		if err != nil {
			return true
		}
		found, _ = v.(map[string]any)
		return found == nil
	})
	return found
}

// BalancedObject returns the first {...} object in s, honouring string
// literals and escapes. Returns "" when the braces never balance.
func BalancedObject(s string) string {
	open := strings.IndexByte(s, '{')
	if open < 0 {
		return ""
	}

	depth := 0
	inString := false
	var quote byte
	escaped := false

	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				inString = false
			}
			continue
		}

		switch c {
		case '"', '\'':
			inString = true
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[open : i+1]
			}
		}
	}
	return ""
}
