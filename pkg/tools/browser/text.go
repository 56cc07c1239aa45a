package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// cleanVisibleText trims every line, drops blank lines and truncates the
// result to maxLen characters.
func cleanVisibleText(raw string, maxLen int) string {
	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return truncateRunes(strings.Join(kept, "\n"), maxLen)
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

// visibleTextFromHTML approximates innerText from serialized page HTML.
// Used when script evaluation fails, for example during a navigation.
func visibleTextFromHTML(rawHTML string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			tag := strings.ToLower(n.Data)
			if isSkippedElement(tag) || isHidden(n) {
				return
			}
			if isBlockElement(tag) {
				b.WriteString("\n")
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(strings.Join(strings.Fields(n.Data), " "))
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlockElement(strings.ToLower(n.Data)) {
			b.WriteString("\n")
		}
	}
	walk(doc)
	return b.String(), nil
}

// isSkippedElement returns true for elements whose text is never rendered
func isSkippedElement(tagName string) bool {
	switch tagName {
	case "head", "script", "style", "noscript", "template", "iframe", "embed", "object", "svg":
		return true
	}
	return false
}

// isBlockElement returns true for elements that start a new line
func isBlockElement(tagName string) bool {
	switch tagName {
	case "p", "div", "section", "article", "header", "footer", "main", "nav", "aside",
		"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "table", "tr",
		"form", "blockquote", "pre", "br", "hr", "dl", "dt", "dd":
		return true
	}
	return false
}

func isHidden(n *html.Node) bool {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if attr.Val == "true" {
				return true
			}
		case "style":
			style := strings.ReplaceAll(strings.ToLower(attr.Val), " ", "")
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}
