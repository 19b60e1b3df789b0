// Package sanitize turns untrusted generator output into markup that is safe
// to serve verbatim as text/html. The engine is a total function over
// strings: any input, however malformed, produces a renderable document that
// contains no executable content beyond the single pinned stylesheet loader.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// emptyDocument is returned on the unreachable parse/render failure paths so
// the engine stays total.
const emptyDocument = `<!DOCTYPE html><html><head><script src="` + StylesheetLoaderURL + `"></script></head><body></body></html>`

// Sanitize filters the document against the element and attribute policy and
// rebuilds its head so that exactly one stylesheet loader script is present.
// The transformation operates on the parsed node tree end to end; the output
// is a fixpoint, so Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(raw string) string {
	parsed, err := html.Parse(strings.NewReader(raw))
	if err != nil || parsed == nil {
		return emptyDocument
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	appendCleanChildren(doc, parsed)

	head := ensureHead(doc)
	head.AppendChild(&html.Node{
		Type: html.ElementNode,
		Data: "script",
		Attr: []html.Attribute{{Key: "src", Val: StylesheetLoaderURL}},
	})

	var builder strings.Builder
	if err := html.Render(&builder, doc); err != nil {
		return emptyDocument
	}

	return builder.String()
}

// appendCleanChildren copies the filtered children of src onto dst. Removed
// elements vanish with their subtree, disallowed elements are unwrapped so
// their children survive, and style bodies pass through the CSS filter.
func appendCleanChildren(dst, src *html.Node) {
	for child := src.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			dst.AppendChild(&html.Node{Type: html.TextNode, Data: child.Data})
		case html.ElementNode:
			name := strings.ToLower(child.Data)
			if elementRemoved(name) {
				continue
			}
			if !elementAllowed(name) {
				appendCleanChildren(dst, child)
				continue
			}

			replacement := &html.Node{
				Type:      html.ElementNode,
				Data:      child.Data,
				DataAtom:  child.DataAtom,
				Namespace: child.Namespace,
				Attr:      filterAttributes(name, child.Attr),
			}

			if name == "style" {
				if filtered := filterStylesheet(textContent(child)); filtered != "" {
					replacement.AppendChild(&html.Node{Type: html.TextNode, Data: filtered})
				}
			} else {
				appendCleanChildren(replacement, child)
			}

			dst.AppendChild(replacement)
		case html.CommentNode, html.DoctypeNode:
			continue
		default:
			appendCleanChildren(dst, child)
		}
	}
}

func filterAttributes(element string, attrs []html.Attribute) []html.Attribute {
	if len(attrs) == 0 {
		return nil
	}

	kept := make([]html.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Namespace != "" {
			continue
		}

		key := strings.ToLower(attr.Key)
		if strings.HasPrefix(key, "on") {
			continue
		}
		if !attributeAllowed(element, key) {
			continue
		}

		value := attr.Val
		if key == "style" {
			value = filterDeclarations(value)
			if value == "" {
				continue
			}
		}

		if _, isURL := urlAttributes[key]; isURL && !safeURL(element, value) {
			continue
		}

		kept = append(kept, html.Attribute{Key: attr.Key, Val: value})
	}

	if len(kept) == 0 {
		return nil
	}
	return kept
}

// safeURL rejects executable URI schemes. Control characters and whitespace
// are stripped before the scheme check because parsers ignore them inside
// scheme names ("jav\tascript:").
func safeURL(element, raw string) bool {
	cleaned := make([]rune, 0, len(raw))
	for _, r := range raw {
		if r <= 0x20 || r == 0x7f {
			continue
		}
		cleaned = append(cleaned, r)
	}

	value := strings.ToLower(string(cleaned))
	switch {
	case strings.HasPrefix(value, "javascript:"), strings.HasPrefix(value, "vbscript:"):
		return false
	case strings.HasPrefix(value, "data:"):
		return element == "img" && strings.HasPrefix(value, "data:image/")
	}
	return true
}

// ensureHead locates the head node of the cleaned document, creating the
// html/head chain when the filtered input lacks one.
func ensureHead(doc *html.Node) *html.Node {
	htmlNode := findChildElement(doc, "html")
	if htmlNode == nil {
		htmlNode = &html.Node{Type: html.ElementNode, Data: "html"}
		doc.AppendChild(htmlNode)
	}

	head := findChildElement(htmlNode, "head")
	if head == nil {
		head = &html.Node{Type: html.ElementNode, Data: "head"}
		if htmlNode.FirstChild != nil {
			htmlNode.InsertBefore(head, htmlNode.FirstChild)
		} else {
			htmlNode.AppendChild(head)
		}
	}

	return head
}

func findChildElement(node *html.Node, name string) *html.Node {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && strings.EqualFold(child.Data, name) {
			return child
		}
	}
	return nil
}

func textContent(node *html.Node) string {
	var builder strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			builder.WriteString(child.Data)
		}
	}
	return builder.String()
}
