package browser

import (
	"context"
	"fmt"
	"strings"
)

// Surface executes primitive page-level actions against the live browser
// session. Every action returns human-readable text; failures are encoded in
// that text and never returned as errors or panics.
//
// The active page may change between calls (for example when a click opens a
// new tab), so callers must not assume page identity is stable.
type Surface interface {
	Navigate(ctx context.Context, url string) string
	ClickElement(ctx context.Context, elementID int) string
	TypeText(ctx context.Context, elementID int, text string) string
	PressKey(ctx context.Context, key string) string
	ReadVisibleText(ctx context.Context) string
	Wait(ctx context.Context, seconds int) string

	// DescribePage enumerates the currently addressable elements. The list is
	// regenerated on every call.
	DescribePage(ctx context.Context) (*PageDescription, error)
}

// Element is one addressable element of the current page.
type Element struct {
	ID    int    `json:"id"`
	Tag   string `json:"tagName"`
	Label string `json:"text"`
	Type  string `json:"type"`
	Role  string `json:"role"`
}

// PageDescription grounds element_id arguments for the model.
type PageDescription struct {
	URL      string
	Title    string
	Elements []Element
}

// String renders the description in the format the model is prompted with.
func (p *PageDescription) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current URL: %s\n", p.URL)
	if p.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", p.Title)
	}
	b.WriteString("Interactive Elements:\n")
	for _, el := range p.Elements {
		fmt.Fprintf(&b, "[%d] %s '%s'\n", el.ID, strings.ToLower(el.Tag), el.Label)
	}
	return b.String()
}
