//go:build e2e

package e2e

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wkconnect/wk-crm-tests/internal/creds"
	"github.com/wkconnect/wk-crm-tests/tests/e2e/helpers"
)

// TestSmoke is a read-only health check of the core pages. One session is
// shared across the subtests; nothing here mutates data, so no cleanup runs.
func TestSmoke(t *testing.T) {
	cred, err := creds.Resolve(creds.RoleDefault)
	require.NoError(t, err, "default credentials must be configured")

	browser := helpers.NewBrowserHelper(t)
	require.NoError(t, browser.Setup(), "failed to setup browser")
	defer browser.TearDown()

	session := helpers.NewSessionEstablisher(browser)
	require.NoError(t, session.Establish(cred))

	t.Run("shell is visible after login", func(t *testing.T) {
		assert.NoError(t, helpers.WaitVisible(session.Shell(), browser.Config.ExpectTimeout))
	})

	t.Run("contact center loads", func(t *testing.T) {
		require.NoError(t, browser.NavigateTo("/contact-center"))
		require.NoError(t, browser.WaitForIdle())

		content := browser.Page.Locator("main, [role='main'], .content")
		assert.NoError(t, helpers.WaitVisible(content, browser.Config.ActionTimeout))

		tabs := browser.Page.Locator("button[role='tab'], [data-state]")
		assert.NoError(t, helpers.WaitVisible(tabs, browser.Config.ExpectTimeout))
	})

	t.Run("leads page loads", func(t *testing.T) {
		require.NoError(t, browser.NavigateTo("/crm/leads"))
		require.NoError(t, browser.WaitForIdle())

		content := browser.Page.Locator("main, [role='main'], .content")
		assert.NoError(t, helpers.WaitVisible(content, browser.Config.ActionTimeout))

		// Either the create button or the listing itself counts as alive.
		newLead := browser.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: helpers.NewLeadButton})
		if !helpers.ProbeVisible(newLead, browser.Config.ExpectTimeout) {
			listing := browser.Page.Locator("table, [role='table'], [data-testid*='lead']")
			assert.NoError(t, helpers.WaitVisible(listing, browser.Config.ExpectTimeout))
		}
	})

	t.Run("tasks page loads", func(t *testing.T) {
		require.NoError(t, browser.NavigateTo("/tasks"))
		require.NoError(t, browser.WaitForIdle())

		content := browser.Page.Locator("main, [role='main'], .content")
		assert.NoError(t, helpers.WaitVisible(content, browser.Config.ActionTimeout))
	})
}
