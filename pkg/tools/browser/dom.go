package browser

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// describeScript stamps visible interactive elements with data-agent-id and
// returns them in document order.
var describeScript = `() => {
	const elements = document.querySelectorAll('a, button, input, textarea, [role="button"], [role="link"]');
	const items = [];
	let counter = 1;

	elements.forEach((el) => {
		const rect = el.getBoundingClientRect();
		if (rect.width === 0 || rect.height === 0 || window.getComputedStyle(el).visibility === 'hidden') return;

		const id = counter++;
		el.setAttribute('` + elementIDAttribute + `', id);

		let text = el.innerText || el.getAttribute('placeholder') || el.getAttribute('aria-label') || "";
		text = text.replace(/\s+/g, ' ').trim().substring(0, ` + strconv.Itoa(elementLabelMaxLength) + `);

		items.push({
			id: id,
			tagName: el.tagName.toLowerCase(),
			text: text,
			type: el.getAttribute('type') || '',
			role: el.getAttribute('role') || ''
		});
	});

	return items;
}`

// elementSelector addresses an element stamped by describeScript.
func elementSelector(id int) string {
	return fmt.Sprintf(`[%s="%d"]`, elementIDAttribute, id)
}

// parseElements converts the value returned by describeScript into Elements.
// Playwright hands back generic maps and slices, so the value is round-tripped
// through JSON instead of type-switching every field.
func parseElements(result interface{}) ([]Element, error) {
	if result == nil {
		return nil, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode element list: %w", err)
	}
	var els []Element
	if err := json.Unmarshal(data, &els); err != nil {
		return nil, fmt.Errorf("unexpected element list: %w", err)
	}
	return els, nil
}
