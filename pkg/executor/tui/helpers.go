package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// formatTokenCount formats a token count with K/M suffixes for readability
func formatTokenCount(count int) string {
	if count >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(count)/1000000)
	}
	if count >= 1000 {
		return fmt.Sprintf("%.1fK", float64(count)/1000)
	}
	return fmt.Sprintf("%d", count)
}

// highlightArgs renders tool arguments as syntax-highlighted JSON.
func highlightArgs(args map[string]interface{}) string {
	if len(args) == 0 {
		return ""
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprint(args)
	}
	var b strings.Builder
	if err := quick.Highlight(&b, string(raw), "json", "terminal256", "monokai"); err != nil {
		return string(raw)
	}
	return b.String()
}

// truncate shortens s to at most n runes, marking the cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// formatEntry wraps text to the terminal width and styles it. With iconOnly
// only the label is styled.
func formatEntry(icon string, text string, style lipgloss.Style, width int, iconOnly bool) string {
	wrapWidth := width - 4
	if wrapWidth <= 0 {
		wrapWidth = 80
	}

	wrapped := wordWrap(icon+text, wrapWidth)
	if iconOnly {
		return strings.Replace(wrapped, icon, style.Render(icon), 1)
	}
	return style.Render(wrapped)
}

// wordWrap wraps text at word boundaries by display width, keeping paragraph
// breaks. Words wider than the line are split.
func wordWrap(text string, width int) string {
	if width <= 0 {
		width = 80
	}

	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}

		line := ""
		for _, word := range words {
			for runewidth.StringWidth(word) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					head = string([]rune(word)[:1])
				}
				out = append(out, head)
				word = word[len(head):]
			}
			switch {
			case word == "":
			case line == "":
				line = word
			case runewidth.StringWidth(line)+1+runewidth.StringWidth(word) > width:
				out = append(out, line)
				line = word
			default:
				line += " " + word
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// updateTextAreaHeight grows the input box with its content, up to MaxHeight.
func (m *model) updateTextAreaHeight() {
	width := m.textarea.Width() - 2
	if width <= 0 {
		width = 78
	}

	lines := 0
	for _, line := range strings.Split(m.textarea.Value(), "\n") {
		w := runewidth.StringWidth(line)
		lines += max(1, (w+width-1)/width)
	}
	lines = min(max(lines, 1), m.textarea.MaxHeight)

	if lines != m.textarea.Height() {
		m.textarea.SetHeight(lines)
		if m.ready {
			m.recalculateLayout()
		}
	}
}
