package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/webpilot/pkg/logging"
)

var errNotStarted = errors.New("browser not started")

// Driver is the Playwright implementation of Surface. It owns one headed
// Chromium instance, one browser context and a pointer to the active page.
type Driver struct {
	opts Options
	log  *logging.Logger

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page
}

// NewDriver creates a driver. Start must be called before any action.
func NewDriver(opts Options, logger *logging.Logger) *Driver {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Driver{opts: opts.withDefaults(), log: logger}
}

// Start launches Chromium and opens the first tab, restoring saved storage
// state when the state file exists.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pw != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Discard driver output so it does not interfere with the TUI
	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if !d.opts.SkipInstall {
		if err := playwright.Install(runOpts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(d.opts.Headless),
		SlowMo:   playwright.Float(float64(d.opts.SlowMo.Milliseconds())),
		Args: []string{
			fmt.Sprintf("--window-size=%d,%d", d.opts.Width, d.opts.Height),
			fmt.Sprintf("--window-position=%d,%d", d.opts.PositionX, d.opts.PositionY),
			antiAutomationFlag,
		},
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := d.newContext(b)
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return fmt.Errorf("failed to create page: %w", err)
	}

	d.pw, d.browser, d.bctx, d.page = pw, b, bctx, page
	d.log.Infof("Browser started (headless=%v, state=%q)", d.opts.Headless, d.opts.StateFile)
	return nil
}

// newContext creates the browser context, loading saved storage state when
// available and falling back to a fresh context if the state is unreadable.
func (d *Driver) newContext(b playwright.Browser) (playwright.BrowserContext, error) {
	viewport := &playwright.Size{Width: d.opts.Width, Height: d.opts.Height}

	if d.opts.StateFile != "" {
		if err := os.MkdirAll(filepath.Dir(d.opts.StateFile), 0750); err != nil {
			d.log.Warnf("Cannot create state directory: %v", err)
		}
		if _, err := os.Stat(d.opts.StateFile); err == nil {
			bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
				Viewport:         viewport,
				StorageStatePath: playwright.String(d.opts.StateFile),
			})
			if err == nil {
				return bctx, nil
			}
			d.log.Warnf("Error loading state %s: %v", d.opts.StateFile, err)
		}
	}

	return b.NewContext(playwright.BrowserNewContextOptions{Viewport: viewport})
}

// Close saves storage state and shuts the browser down. Errors from an
// already closed browser are ignored.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pw == nil {
		return nil
	}

	if d.bctx != nil && d.opts.StateFile != "" {
		if _, err := d.bctx.StorageState(d.opts.StateFile); err != nil {
			d.log.Warnf("Failed to save storage state: %v", err)
		}
	}
	if d.browser != nil {
		_ = d.browser.Close()
	}
	err := d.pw.Stop()

	d.pw, d.browser, d.bctx, d.page = nil, nil, nil, nil
	d.log.Infof("Browser closed")
	return err
}

// guard runs fn with the driver locked and converts panics from the
// Playwright connection into failure text.
func (d *Driver) guard(fail func(error) string, fn func() string) (out string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("Recovered from driver panic: %v", r)
			out = fail(fmt.Errorf("%v", r))
		}
	}()
	return fn()
}

// ready checks ctx and makes sure the active page is usable.
// Must be called with d.mu held.
func (d *Driver) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.pw == nil {
		return errNotStarted
	}
	d.ensurePageActive()
	if d.page == nil {
		return errNotStarted
	}
	return nil
}

// ensurePageActive pings the current page and, when it is gone, re-targets
// the newest tab or opens a new one.
func (d *Driver) ensurePageActive() {
	if d.browser == nil || !d.browser.IsConnected() {
		return
	}

	if d.page != nil && !d.page.IsClosed() {
		if _, err := d.page.Evaluate("1"); err == nil {
			return
		}
	}

	if pages := d.bctx.Pages(); len(pages) > 0 {
		d.page = pages[len(pages)-1]
		_ = d.page.BringToFront()
		d.log.Debugf("Re-targeted active page: %s", d.page.URL())
		return
	}

	page, err := d.bctx.NewPage()
	if err != nil {
		d.log.Warnf("Failed to open replacement page: %v", err)
		d.page = nil
		return
	}
	d.page = page
}

func (d *Driver) waitDOMContent() error {
	return d.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	})
}

// sleep pauses for dur or until ctx is done.
func sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return nil
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// checkPolicy returns an error when the host of rawURL is on the block list.
func (d *Driver) checkPolicy(rawURL string) error {
	if ok, pattern := d.opts.Policy.Allows(rawURL); !ok {
		return fmt.Errorf("%s is blocked by pattern %q", rawURL, pattern)
	}
	return nil
}

// leaveBlockedPage undoes a click or key press that landed on a blocked host.
// A new tab is closed and prev becomes active again; a same-tab navigation is
// reverted with history back, or about:blank when there is no history.
// Must be called with d.mu held.
func (d *Driver) leaveBlockedPage(prev playwright.Page) error {
	err := d.checkPolicy(d.page.URL())
	if err == nil {
		return nil
	}
	d.log.Warnf("Left blocked page: %v", err)
	if d.page != prev {
		_ = d.page.Close()
		d.page = prev
		_ = d.page.BringToFront()
		return err
	}
	if resp, backErr := d.page.GoBack(); backErr != nil || resp == nil {
		_, _ = d.page.Goto("about:blank")
	}
	return err
}

// Navigate opens url, or switches to a tab already showing it.
func (d *Driver) Navigate(ctx context.Context, rawURL string) string {
	fail := func(err error) string { return fmt.Sprintf("Error navigating: %v", err) }
	return d.guard(fail, func() string {
		target := normalizeURL(rawURL)
		if err := d.checkPolicy(target); err != nil {
			return fail(err)
		}
		if err := d.ready(ctx); err != nil {
			return fail(err)
		}

		if sameURL(d.page.URL(), target) {
			return fmt.Sprintf("Already on this page: %s", target)
		}

		pages := d.bctx.Pages()
		urls := make([]string, len(pages))
		for i, p := range pages {
			urls[i] = p.URL()
		}
		if i := findTab(urls, target); i >= 0 {
			d.page = pages[i]
			_ = d.page.BringToFront()
			return fmt.Sprintf("Switched to existing tab: %s", d.page.URL())
		}

		if _, err := d.page.Goto(target); err != nil {
			return fail(err)
		}
		if err := d.waitDOMContent(); err != nil {
			return fail(err)
		}
		return fmt.Sprintf("Navigated to %s", target)
	})
}

// ClickElement clicks the element stamped with id and follows a newly opened tab.
func (d *Driver) ClickElement(ctx context.Context, id int) string {
	fail := func(err error) string { return fmt.Sprintf("Error clicking %d: %v", id, err) }
	return d.guard(fail, func() string {
		if err := d.ready(ctx); err != nil {
			return fail(err)
		}

		prev := d.page
		before := len(d.bctx.Pages())
		err := d.page.Click(elementSelector(id), playwright.PageClickOptions{
			Timeout: playwright.Float(float64(d.opts.ClickTimeout.Milliseconds())),
			Force:   playwright.Bool(true),
		})
		if err != nil {
			return fail(err)
		}

		if err := sleep(ctx, d.opts.ClickSettle); err != nil {
			return fail(err)
		}

		if pages := d.bctx.Pages(); len(pages) > before {
			d.page = pages[len(pages)-1]
			_ = d.page.BringToFront()
			if err := d.waitDOMContent(); err != nil {
				d.log.Warnf("New tab did not finish loading: %v", err)
			}
			if err := d.leaveBlockedPage(prev); err != nil {
				return fail(err)
			}
			return fmt.Sprintf("Clicked %d, opened NEW TAB: %s", id, d.page.URL())
		}
		if err := d.leaveBlockedPage(prev); err != nil {
			return fail(err)
		}
		return fmt.Sprintf("Clicked element %d", id)
	})
}

// TypeText replaces the content of the input stamped with id.
func (d *Driver) TypeText(ctx context.Context, id int, text string) string {
	fail := func(err error) string { return fmt.Sprintf("Error typing: %v", err) }
	return d.guard(fail, func() string {
		if err := d.ready(ctx); err != nil {
			return fail(err)
		}
		err := d.page.Fill(elementSelector(id), text, playwright.PageFillOptions{
			Timeout: playwright.Float(float64(d.opts.FillTimeout.Milliseconds())),
		})
		if err != nil {
			return fail(err)
		}
		return fmt.Sprintf("Typed '%s' into element %d", text, id)
	})
}

// PressKey sends key to the active page.
func (d *Driver) PressKey(ctx context.Context, key string) string {
	fail := func(err error) string { return fmt.Sprintf("Error pressing key: %v", err) }
	return d.guard(fail, func() string {
		if err := d.ready(ctx); err != nil {
			return fail(err)
		}
		prev := d.page
		if err := d.page.Keyboard().Press(key); err != nil {
			return fail(err)
		}
		if err := sleep(ctx, d.opts.KeySettle); err != nil {
			return fail(err)
		}
		if err := d.leaveBlockedPage(prev); err != nil {
			return fail(err)
		}
		return fmt.Sprintf("Pressed key: %s", key)
	})
}

// ReadVisibleText returns the cleaned innerText of the page body, falling back
// to parsing the serialized HTML when script evaluation fails.
func (d *Driver) ReadVisibleText(ctx context.Context) string {
	fail := func(err error) string { return fmt.Sprintf("Error reading text: %v", err) }
	return d.guard(fail, func() string {
		if err := d.ready(ctx); err != nil {
			return fail(err)
		}

		raw, evalErr := d.page.Evaluate("document.body.innerText")
		text, ok := raw.(string)
		if evalErr != nil || !ok {
			if evalErr == nil {
				evalErr = fmt.Errorf("unexpected innerText value %T", raw)
			}
			content, err := d.page.Content()
			if err != nil {
				return fail(evalErr)
			}
			text, err = visibleTextFromHTML(content)
			if err != nil {
				return fail(evalErr)
			}
			d.log.Debugf("innerText failed (%v), used HTML fallback", evalErr)
		}
		return cleanVisibleText(text, d.opts.MaxTextLength)
	})
}

// Wait pauses for the given number of seconds, capped at Options.MaxWait.
// It does not hold the driver lock while sleeping.
func (d *Driver) Wait(ctx context.Context, seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	dur := d.opts.MaxWait
	if maxSeconds := int(d.opts.MaxWait / time.Second); seconds > maxSeconds {
		d.log.Infof("Wait of %ds capped to %s", seconds, d.opts.MaxWait)
		seconds = maxSeconds
	} else {
		dur = time.Duration(seconds) * time.Second
	}
	if err := sleep(ctx, dur); err != nil {
		return fmt.Sprintf("Error waiting: %v", err)
	}
	return fmt.Sprintf("Waited %ds", seconds)
}

// DescribePage stamps and lists the addressable elements of the active page.
func (d *Driver) DescribePage(ctx context.Context) (desc *PageDescription, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			desc, err = nil, fmt.Errorf("error reading DOM: %v", r)
		}
	}()

	if err := d.ready(ctx); err != nil {
		return nil, err
	}

	result, err := d.page.Evaluate(describeScript)
	if err != nil {
		return nil, fmt.Errorf("error reading DOM: %w", err)
	}
	elements, err := parseElements(result)
	if err != nil {
		return nil, err
	}

	title, _ := d.page.Title()
	return &PageDescription{
		URL:      d.page.URL(),
		Title:    title,
		Elements: elements,
	}, nil
}

var _ Surface = (*Driver)(nil)
