// Package browser provides the Automation Surface: primitive page-level
// actions executed against a live Chromium session through Playwright.
//
// # Architecture
//
// The package is built around three pieces:
//
//  1. Surface: the interface the orchestrator dispatches tool invocations to
//  2. Driver: the Playwright implementation owning the browser, its context and the active page
//  3. Policy: an optional host block list consulted before every navigation
//     and after every click or key press, which may have navigated on their own
//
// # Element addressing
//
// DescribePage runs a script that stamps every visible interactive element
// (links, buttons, inputs, textareas and role=button/link) with a
// data-agent-id attribute numbered from 1. ClickElement and TypeText address
// elements through that attribute, so ids are only meaningful for the page
// state produced by the most recent DescribePage call.
//
// # Failure model
//
// Driver actions never return errors. Every failure, including Playwright
// errors and panics raised by the driver connection, is rendered into the
// returned text so the model can read it and adapt:
//
//	Error clicking 999: timeout 2500ms exceeded
//
// # Session persistence
//
// Cookies and local storage are loaded from Options.StateFile at start and
// written back on Close, so sign-ins survive restarts.
//
// # Tab handling
//
// The driver follows newly opened tabs after a click and re-targets the
// newest tab when the active page has been closed. Callers must not assume
// page identity is stable across two consecutive actions.
//
// A click or key press that lands on a blocked host is undone: a new tab is
// closed, a same-tab navigation goes back in history, and the action reports
// failure text naming the blocking pattern.
package browser
