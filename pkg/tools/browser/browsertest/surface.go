// Package browsertest provides an in-memory browser.Surface for tests.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/entrhq/webpilot/pkg/tools/browser"
)

// Call records one surface operation.
type Call struct {
	Op   string
	Args []interface{}
}

// Surface is a scripted browser.Surface. Result strings follow the driver's
// wording; elements not listed in Elements produce the driver's click error.
type Surface struct {
	mu       sync.Mutex
	calls    []Call
	url      string
	Elements []browser.Element
	Text     string

	// Override, when set, replaces the default result of an operation.
	Override func(op string, args ...interface{}) (string, bool)
}

// New returns a surface positioned on about:blank.
func New() *Surface {
	return &Surface{url: "about:blank"}
}

func (s *Surface) record(op string, args ...interface{}) (string, bool) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Op: op, Args: args})
	override := s.Override
	s.mu.Unlock()
	if override != nil {
		return override(op, args...)
	}
	return "", false
}

// Calls returns a copy of the recorded operations.
func (s *Surface) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Ops returns the names of the recorded operations in order.
func (s *Surface) Ops() []string {
	calls := s.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

func (s *Surface) Navigate(_ context.Context, url string) string {
	if r, ok := s.record("navigate", url); ok {
		return r
	}
	if !strings.Contains(url, "http") {
		url = "https://" + url
	}
	s.mu.Lock()
	s.url = url
	s.mu.Unlock()
	return fmt.Sprintf("Navigated to %s", url)
}

func (s *Surface) ClickElement(_ context.Context, id int) string {
	if r, ok := s.record("click_element", id); ok {
		return r
	}
	for _, el := range s.Elements {
		if el.ID == id {
			return fmt.Sprintf("Clicked element %d", id)
		}
	}
	return fmt.Sprintf("Error clicking %d: element not found", id)
}

func (s *Surface) TypeText(_ context.Context, id int, text string) string {
	if r, ok := s.record("type_text", id, text); ok {
		return r
	}
	return fmt.Sprintf("Typed '%s' into element %d", text, id)
}

func (s *Surface) PressKey(_ context.Context, key string) string {
	if r, ok := s.record("press_key", key); ok {
		return r
	}
	return fmt.Sprintf("Pressed key: %s", key)
}

func (s *Surface) ReadVisibleText(context.Context) string {
	if r, ok := s.record("read_visible_text"); ok {
		return r
	}
	return s.Text
}

func (s *Surface) Wait(_ context.Context, seconds int) string {
	if r, ok := s.record("wait", seconds); ok {
		return r
	}
	return fmt.Sprintf("Waited %ds", seconds)
}

func (s *Surface) DescribePage(context.Context) (*browser.PageDescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	els := make([]browser.Element, len(s.Elements))
	copy(els, s.Elements)
	return &browser.PageDescription{URL: s.url, Elements: els}, nil
}

var _ browser.Surface = (*Surface)(nil)
