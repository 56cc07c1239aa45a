package browser

import (
	"path/filepath"
	"time"
)

// Default configuration values
const (
	DefaultWindowWidth   = 1280
	DefaultWindowHeight  = 900
	DefaultSlowMo        = 100 * time.Millisecond
	DefaultClickTimeout  = 2500 * time.Millisecond
	DefaultFillTimeout   = 2000 * time.Millisecond
	DefaultClickSettle   = time.Second
	DefaultKeySettle     = 500 * time.Millisecond
	DefaultMaxTextLength = 25000
	DefaultMaxWait       = 60 * time.Second
	DefaultUserDataDir   = "user_data"

	defaultStateFileName  = "state.json"
	elementLabelMaxLength = 100
	elementIDAttribute    = "data-agent-id"
	antiAutomationFlag    = "--disable-blink-features=AutomationControlled"
)

// Options configures the Playwright driver.
type Options struct {
	// Headless hides the browser window. The operator normally watches the
	// browser, so the default is a headed window.
	Headless bool

	// Window geometry of the headed browser.
	Width     int
	Height    int
	PositionX int
	PositionY int

	// SlowMo delays every Playwright operation.
	SlowMo time.Duration

	// StateFile stores cookies and local storage between runs. Empty disables persistence.
	StateFile string

	ClickTimeout time.Duration
	FillTimeout  time.Duration

	// ClickSettle and KeySettle are pauses after a click or key press that give
	// the page time to react.
	ClickSettle time.Duration
	KeySettle   time.Duration

	// MaxTextLength bounds read_visible_text output in characters.
	MaxTextLength int

	// MaxWait caps the wait action.
	MaxWait time.Duration

	// SkipInstall skips the Playwright driver/browser download check on start.
	SkipInstall bool

	// Policy, when set, is consulted before every navigation.
	Policy *Policy
}

// DefaultOptions returns the driver defaults.
func DefaultOptions() Options {
	return Options{
		Width:         DefaultWindowWidth,
		Height:        DefaultWindowHeight,
		SlowMo:        DefaultSlowMo,
		StateFile:     filepath.Join(DefaultUserDataDir, defaultStateFileName),
		ClickTimeout:  DefaultClickTimeout,
		FillTimeout:   DefaultFillTimeout,
		ClickSettle:   DefaultClickSettle,
		KeySettle:     DefaultKeySettle,
		MaxTextLength: DefaultMaxTextLength,
		MaxWait:       DefaultMaxWait,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.ClickTimeout <= 0 {
		o.ClickTimeout = d.ClickTimeout
	}
	if o.FillTimeout <= 0 {
		o.FillTimeout = d.FillTimeout
	}
	if o.MaxTextLength <= 0 {
		o.MaxTextLength = d.MaxTextLength
	}
	if o.MaxWait <= 0 {
		o.MaxWait = d.MaxWait
	}
	return o
}
