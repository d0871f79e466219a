// Package helpers is the browser-driven harness shared by every scenario:
// browser lifecycle with failure diagnostics, session establishment, the
// resilient locator policy, and guaranteed cleanup of synthetic records.
package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/wkconnect/wk-crm-tests/internal/config"
)

// BrowserHelper provides browser setup and teardown for tests.
type BrowserHelper struct {
	Playwright *playwright.Playwright
	Browser    playwright.Browser
	Context    playwright.BrowserContext
	Page       playwright.Page
	Config     *config.Config
	t          *testing.T
	tracing    bool
}

// NewBrowserHelper creates a new browser helper instance.
func NewBrowserHelper(t *testing.T) *BrowserHelper {
	return &BrowserHelper{
		Config: config.Get(),
		t:      t,
	}
}

// Setup initializes playwright, launches Chromium and opens a page with the
// suite's bounded default timeouts. Tracing starts immediately so a failing
// scenario has a trace from its first action.
func (b *BrowserHelper) Setup() error {
	var pw *playwright.Playwright
	var err error
	if os.Getenv("PLAYWRIGHT_PREINSTALLED") != "1" {
		if err = playwright.Install(); err != nil {
			return fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}
	pw, err = playwright.Run()
	if err != nil {
		// Fallback: attempt install driver explicitly then retry
		_ = playwright.Install()
		pw, err = playwright.Run()
		if err != nil {
			return fmt.Errorf("could not start playwright after retry: %w", err)
		}
	}
	b.Playwright = pw

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.Config.Headless),
		SlowMo:   playwright.Float(float64(b.Config.SlowMo)),
	})
	if err != nil {
		return fmt.Errorf("could not launch browser: %w", err)
	}
	b.Browser = browser

	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
	}
	if b.Config.Videos {
		ctxOpts.RecordVideo = &playwright.RecordVideo{
			Dir: filepath.Join(b.Config.RunDir(), "videos"),
		}
	}
	context, err := browser.NewContext(ctxOpts)
	if err != nil {
		return fmt.Errorf("could not create context: %w", err)
	}
	b.Context = context

	if b.Config.Trace {
		err = context.Tracing().Start(playwright.TracingStartOptions{
			Screenshots: playwright.Bool(true),
			Snapshots:   playwright.Bool(true),
			Title:       playwright.String(b.t.Name()),
		})
		if err != nil {
			return fmt.Errorf("could not start tracing: %w", err)
		}
		b.tracing = true
	}

	page, err := context.NewPage()
	if err != nil {
		return fmt.Errorf("could not create page: %w", err)
	}
	b.Page = page

	page.SetDefaultTimeout(float64(b.Config.ActionTimeout.Milliseconds()))
	page.SetDefaultNavigationTimeout(float64(b.Config.NavigationTimeout.Milliseconds()))

	return nil
}

// TearDown closes the browser and exports diagnostics when the test failed:
// trace, full-page screenshot, and the recorded video. Artifacts of passing
// tests are discarded.
func (b *BrowserHelper) TearDown() {
	failed := b.t.Failed()

	if b.tracing && b.Context != nil {
		if failed {
			path := b.artifactPath("traces", ".zip")
			_ = b.Context.Tracing().Stop(path)
		} else {
			_ = b.Context.Tracing().Stop()
		}
	}

	if failed && b.Config.Screenshots && b.Page != nil {
		_, _ = b.Page.Screenshot(playwright.PageScreenshotOptions{
			Path:     playwright.String(b.artifactPath("screenshots", ".png")),
			FullPage: playwright.Bool(true),
		})
	}

	var video playwright.Video
	if b.Config.Videos && b.Page != nil {
		video = b.Page.Video()
	}

	if b.Page != nil {
		_ = b.Page.Close()
	}
	if b.Context != nil {
		_ = b.Context.Close()
	}
	// Video files are finalized on context close; drop them for passing tests.
	if video != nil && !failed {
		_ = video.Delete()
	}
	if b.Browser != nil {
		_ = b.Browser.Close()
	}
	if b.Playwright != nil {
		_ = b.Playwright.Stop()
	}
}

func (b *BrowserHelper) artifactPath(kind, ext string) string {
	dir := filepath.Join(b.Config.RunDir(), kind)
	_ = os.MkdirAll(dir, 0o755)
	name := strings.ReplaceAll(b.t.Name(), "/", "_")
	return filepath.Join(dir, fmt.Sprintf("%s_%d%s", name, time.Now().Unix(), ext))
}

// NavigateTo navigates to a path relative to the base URL and waits for the
// DOM to be ready. Navigation is bounded by the configured navigation timeout.
func (b *BrowserHelper) NavigateTo(path string) error {
	url := b.Config.BaseURL + path
	_, err := b.Page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// WaitForIdle waits for in-flight requests to settle.
func (b *BrowserHelper) WaitForIdle() error {
	return b.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	})
}

// Settle pauses for the configured settle delay. Used only where the absence
// of a state change is the assertion (e.g. rejected logins), since there is
// no event to wait for.
func (b *BrowserHelper) Settle() {
	b.Page.WaitForTimeout(float64(b.Config.SettleDelay.Milliseconds()))
}
