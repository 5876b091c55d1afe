package media

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Script is one <script> element of a post page.
type Script struct {
	// Type is the lowercased type attribute, empty for classic scripts.
	Type string

	// ID is the id attribute.
	ID string

	// Src is the src attribute of external scripts.
	Src string

	// Text is the raw script body.
	Text string
}

// IsJSON reports whether the script carries a JSON payload.
func (s Script) IsJSON() bool {
	return s.Type == "application/json"
}

// IsLDJSON reports whether the script carries JSON-LD structured data.
func (s Script) IsLDJSON() bool {
	return s.Type == "application/ld+json"
}

// Document is a post page parsed once and shared by every strategy.
type Document struct {
	// Shortcode is the post the page was fetched for.
	Shortcode string

	// Markup is the raw page.
	Markup string

	// Scripts are the page's script elements in document order.
	Scripts []Script

	// Meta maps meta property or name attributes to their content.
	// The first occurrence of a key wins.
	Meta map[string]string
}

// ParseDocument parses markup into a Document.
func ParseDocument(shortcode string, markup []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Shortcode: shortcode,
		Markup:    string(markup),
		Scripts:   make([]Script, 0),
		Meta:      make(map[string]string),
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script":
				doc.Scripts = append(doc.Scripts, Script{
					Type: strings.ToLower(strings.TrimSpace(getAttr(n, "type"))),
					ID:   getAttr(n, "id"),
					Src:  getAttr(n, "src"),
					Text: nodeText(n),
				})
			case "meta":
				key := getAttr(n, "property")
				if key == "" {
					key = getAttr(n, "name")
				}
				if key != "" {
					if _, ok := doc.Meta[key]; !ok {
						doc.Meta[key] = getAttr(n, "content")
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return doc, nil
}

// JSONScripts returns the application/json scripts in document order.
func (d *Document) JSONScripts() []Script {
	return d.filter(Script.IsJSON)
}

// LDJSONScripts returns the application/ld+json scripts in document order.
func (d *Document) LDJSONScripts() []Script {
	return d.filter(Script.IsLDJSON)
}

func (d *Document) filter(keep func(Script) bool) []Script {
	out := make([]Script, 0)
	for _, s := range d.Scripts {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// getAttr returns the value of the named attribute, or "".
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// nodeText concatenates the text children of n. Script bodies are raw text
// and arrive as a single child.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}
