// Package browser provides the Playwright-backed implementation of the
// engine's PageDriver interface, plus the lifecycle management around the
// Chromium instance it runs in.
package browser

import (
	"fmt"
	"io"

	"github.com/playwright-community/playwright-go"

	"github.com/Setiyoaryo/TicketAutomation/pkg/config"
	"github.com/Setiyoaryo/TicketAutomation/pkg/logging"
)

// userAgent pins a desktop Chrome identity; the intranet serves a different
// login flow to unknown agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// stealthScript hides the automation marker the frontend checks on login.
const stealthScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

var launchArgs = []string{
	"--start-maximized",
	"--disable-gpu",
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-extensions",
	"--disable-blink-features=AutomationControlled",
}

// Manager owns the Playwright runtime, the browser process, and the single
// browser context all sessions share. One Manager per run.
type Manager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	cfg     *config.Config
	log     *logging.Logger
}

// NewManager installs the Playwright driver if needed, launches Chromium, and
// prepares a context with the stealth and proxy settings applied.
func NewManager(cfg *config.Config, log *logging.Logger) (*Manager, error) {
	// Discard driver output so it does not interleave with the run log
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args:     launchArgs,
	}
	if cfg.ProxyServer != "" {
		log.Infof("using proxy server %s", cfg.ProxyServer)
		launchOpts.Proxy = &playwright.Proxy{Server: cfg.ProxyServer}
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	if err := context.AddInitScript(playwright.Script{Content: playwright.String(stealthScript)}); err != nil {
		context.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to add init script: %w", err)
	}

	log.Infof("browser launched (headless: %v)", cfg.Headless)
	return &Manager{
		pw:      pw,
		browser: browser,
		context: context,
		cfg:     cfg,
		log:     log,
	}, nil
}

// NewSession opens a fresh page in the shared context.
func (m *Manager) NewSession() (*Session, error) {
	page, err := m.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(float64(m.cfg.DefaultTimeout.Milliseconds()))

	return &Session{page: page, log: m.log}, nil
}

// Close tears down the context, the browser process, and the Playwright
// runtime. Safe to call once at the end of a run.
func (m *Manager) Close() error {
	var errs []error
	if m.context != nil {
		if err := m.context.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if m.pw != nil {
		if err := m.pw.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing browser: %v", errs)
	}
	m.log.Infof("browser closed")
	return nil
}
