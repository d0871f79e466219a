package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/wkconnect/wk-crm-tests/internal/creds"
)

// probeWindow bounds per-candidate existence checks inside the locator
// fallback chain. Short on purpose: the page itself is already loaded when a
// strategy runs, so a miss here means the candidate is the wrong one, not
// that the page is slow.
const probeWindow = 2 * time.Second

// EstablishError carries the diagnostic context collected when a login
// attempt does not reach the authenticated shell. Selector drift and UI
// changes are the dominant failure mode in this suite, so the error must be
// enough to diagnose a run without repeating it against production.
type EstablishError struct {
	Stage       string
	URL         string
	AlertText   string
	AlertMarkup string
	Err         error
}

func (e *EstablishError) Error() string {
	msg := fmt.Sprintf("establish session: %s failed (url=%s)", e.Stage, e.URL)
	if e.AlertText != "" {
		msg += fmt.Sprintf(" alert=%q", strings.TrimSpace(e.AlertText))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EstablishError) Unwrap() error { return e.Err }

// SessionEstablisher drives the login flow up to an observably authenticated
// application shell. One session per test; teardown of the browser context
// ends it, no explicit logout is required.
type SessionEstablisher struct {
	b *BrowserHelper
}

// NewSessionEstablisher creates a session establisher over the given browser.
func NewSessionEstablisher(b *BrowserHelper) *SessionEstablisher {
	return &SessionEstablisher{b: b}
}

// Establish logs in with the credential and blocks until the URL leaves the
// login route and the application shell (sidebar) is visible, or the
// navigation bound elapses.
func (s *SessionEstablisher) Establish(cred creds.Credential) error {
	if err := s.submitLogin(cred); err != nil {
		return err
	}

	if err := s.b.Page.WaitForURL(PostLoginURL, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(float64(s.b.Config.NavigationTimeout.Milliseconds())),
	}); err != nil {
		return s.fail("waiting for post-login navigation", err)
	}

	if err := WaitVisible(s.Shell(), s.b.Config.NavigationTimeout); err != nil {
		return s.fail("waiting for application shell", err)
	}
	return nil
}

// ExpectRejected submits a credential that must not work and asserts the page
// stays on the login route after the settle delay. It deliberately does not
// look at error copy: exact messages are unstable, staying on /login is not.
func (s *SessionEstablisher) ExpectRejected(cred creds.Credential) error {
	if err := s.submitLogin(cred); err != nil {
		return err
	}

	s.b.Settle()

	if url := s.b.Page.URL(); !strings.Contains(url, "/login") {
		return s.fail("asserting login rejection", fmt.Errorf("navigated away from login to %s", url))
	}
	return nil
}

// Shell returns the authenticated-shell marker: the sidebar carrying the CRM
// navigation. Its visibility is the canonical "logged in" signal.
func (s *SessionEstablisher) Shell() playwright.Locator {
	return s.b.Page.Locator("aside").Filter(playwright.LocatorFilterOptions{HasText: ShellHint})
}

func (s *SessionEstablisher) submitLogin(cred creds.Credential) error {
	if err := s.b.NavigateTo("/login"); err != nil {
		return s.fail("opening login page", err)
	}

	// Give the form itself the full action budget before the short
	// per-candidate probes start.
	form := s.b.Page.Locator("input")
	if err := WaitVisible(form, s.b.Config.ActionTimeout); err != nil {
		return s.fail("waiting for login form", err)
	}

	username, err := UsernameField().Resolve(s.b.Page, probeWindow)
	if err != nil {
		return s.fail("locating username field", err)
	}
	if err := username.Fill(cred.Username); err != nil {
		return s.fail("filling username", err)
	}

	password, err := PasswordField().Resolve(s.b.Page, probeWindow)
	if err != nil {
		return s.fail("locating password field", err)
	}
	if err := password.Fill(cred.Password); err != nil {
		return s.fail("filling password", err)
	}

	submit, err := LoginSubmit().Resolve(s.b.Page, probeWindow)
	if err != nil {
		return s.fail("locating login button", err)
	}
	if err := submit.Click(); err != nil {
		return s.fail("submitting login form", err)
	}
	return nil
}

// fail snapshots the page state into the error before returning it.
func (s *SessionEstablisher) fail(stage string, cause error) error {
	e := &EstablishError{
		Stage: stage,
		URL:   s.b.Page.URL(),
		Err:   cause,
	}
	alert := s.b.Page.Locator("[role='alert'], .alert, .error-message")
	if n, err := alert.Count(); err == nil && n > 0 {
		e.AlertText, _ = alert.First().TextContent()
		e.AlertMarkup, _ = alert.First().InnerHTML()
	}
	return e
}
