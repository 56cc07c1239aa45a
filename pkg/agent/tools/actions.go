package tools

import (
	"context"

	"github.com/entrhq/webpilot/pkg/tools/browser"
)

// NavigateTool loads a URL or switches to a tab already showing it.
type NavigateTool struct{}

func (NavigateTool) Name() string { return "navigate" }

func (NavigateTool) Description() string {
	return "Open the given web address in the browser. If a tab already shows this address, switch to it instead."
}

func (NavigateTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{"url": stringProperty("Full URL to open. https:// is added when no scheme is given.")},
		[]string{"url"},
	)
}

func (NavigateTool) Kind() Kind { return KindAction }

func (t NavigateTool) Prepare(args Arguments) (*Step, error) {
	url, err := args.String("url", false)
	if err != nil {
		return nil, err
	}
	return actionStep(t.Name(), func(ctx context.Context, s browser.Surface) string {
		return s.Navigate(ctx, url)
	}), nil
}

// ClickElementTool clicks an element addressed by its page-description id.
type ClickElementTool struct{}

func (ClickElementTool) Name() string { return "click_element" }

func (ClickElementTool) Description() string {
	return "Click the element with the given ID from the Interactive Elements list of the current page."
}

func (ClickElementTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{"element_id": integerProperty("Element ID")},
		[]string{"element_id"},
	)
}

func (ClickElementTool) Kind() Kind { return KindAction }

func (t ClickElementTool) Prepare(args Arguments) (*Step, error) {
	id, err := args.Int("element_id")
	if err != nil {
		return nil, err
	}
	return actionStep(t.Name(), func(ctx context.Context, s browser.Surface) string {
		return s.ClickElement(ctx, id)
	}), nil
}

// TypeTextTool fills an input element.
type TypeTextTool struct{}

func (TypeTextTool) Name() string { return "type_text" }

func (TypeTextTool) Description() string {
	return "Type text into the input field with the given element ID. Existing content is replaced."
}

func (TypeTextTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"element_id": integerProperty("Element ID"),
			"text":       stringProperty("Text to enter"),
		},
		[]string{"element_id", "text"},
	)
}

func (TypeTextTool) Kind() Kind { return KindAction }

func (t TypeTextTool) Prepare(args Arguments) (*Step, error) {
	id, err := args.Int("element_id")
	if err != nil {
		return nil, err
	}
	// An empty string clears the field.
	text, err := args.String("text", true)
	if err != nil {
		return nil, err
	}
	return actionStep(t.Name(), func(ctx context.Context, s browser.Surface) string {
		return s.TypeText(ctx, id, text)
	}), nil
}

// PressKeyTool sends one keyboard key to the page.
type PressKeyTool struct{}

func (PressKeyTool) Name() string { return "press_key" }

func (PressKeyTool) Description() string {
	return "Press a keyboard key (Enter, Tab, Escape, ArrowDown, etc)."
}

func (PressKeyTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{"key": stringProperty("Key name")},
		[]string{"key"},
	)
}

func (PressKeyTool) Kind() Kind { return KindAction }

func (t PressKeyTool) Prepare(args Arguments) (*Step, error) {
	key, err := args.String("key", false)
	if err != nil {
		return nil, err
	}
	return actionStep(t.Name(), func(ctx context.Context, s browser.Surface) string {
		return s.PressKey(ctx, key)
	}), nil
}

// ReadVisibleTextTool returns the visible text of the current page.
type ReadVisibleTextTool struct{}

func (ReadVisibleTextTool) Name() string { return "read_visible_text" }

func (ReadVisibleTextTool) Description() string {
	return "Read all visible text on the current page. Useful for reading lists of emails, articles or search results without clicking."
}

func (ReadVisibleTextTool) Schema() map[string]interface{} {
	return BaseToolSchema(map[string]interface{}{}, nil)
}

func (ReadVisibleTextTool) Kind() Kind { return KindAction }

func (t ReadVisibleTextTool) Prepare(Arguments) (*Step, error) {
	return actionStep(t.Name(), func(ctx context.Context, s browser.Surface) string {
		return s.ReadVisibleText(ctx)
	}), nil
}

// WaitTool pauses before the next action.
type WaitTool struct{}

func (WaitTool) Name() string { return "wait" }

func (WaitTool) Description() string {
	return "Wait the given number of seconds. Use it after clicks that open new pages or change the interface (filters, sign-in)."
}

func (WaitTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{"seconds": integerProperty("Seconds to wait (usually 3-5)")},
		[]string{"seconds"},
	)
}

func (WaitTool) Kind() Kind { return KindAction }

func (t WaitTool) Prepare(args Arguments) (*Step, error) {
	seconds, err := args.Int("seconds")
	if err != nil {
		return nil, err
	}
	if seconds < 0 {
		return nil, &ArgumentError{Tool: t.Name(), Param: "seconds", Reason: "must not be negative"}
	}
	return actionStep(t.Name(), func(ctx context.Context, s browser.Surface) string {
		return s.Wait(ctx, seconds)
	}), nil
}
