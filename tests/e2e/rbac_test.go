//go:build e2e

package e2e

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wkconnect/wk-crm-tests/internal/creds"
	"github.com/wkconnect/wk-crm-tests/internal/leakcheck"
	"github.com/wkconnect/wk-crm-tests/internal/rbac"
	"github.com/wkconnect/wk-crm-tests/tests/e2e/helpers"
)

// TestRBACMatrix walks the role/route manifest: every role logs in once and
// visits each of its routes, asserting allowed pages render their marker and
// denied pages show the denial indicator (or drop the content entirely).
func TestRBACMatrix(t *testing.T) {
	matrix, err := rbac.Default()
	require.NoError(t, err)

	for _, policy := range matrix.Roles {
		policy := policy
		t.Run(string(policy.Role), func(t *testing.T) {
			cred, err := creds.Resolve(policy.Role)
			require.NoError(t, err, "credentials for %s must be configured", policy.Role)

			browser := helpers.NewBrowserHelper(t)
			require.NoError(t, browser.Setup(), "failed to setup browser")
			defer browser.TearDown()

			session := helpers.NewSessionEstablisher(browser)
			require.NoError(t, session.Establish(cred))

			checker := helpers.NewAccessChecker(browser)
			for _, rc := range policy.Routes {
				rc := rc
				t.Run(fmt.Sprintf("%s %s", rc.Outcome, rc.Path), func(t *testing.T) {
					assert.NoError(t, checker.Check(rc))
				})
			}
		})
	}
}

// TestInboxScopeLeak captures the inbox list response emitted while the
// contact center opens for an L2 agent and verifies the backend returned
// exactly as many rows as it declared in meta.myCount.
func TestInboxScopeLeak(t *testing.T) {
	cred, err := creds.Resolve(creds.RoleL2)
	require.NoError(t, err, "L2 credentials must be configured")

	browser := helpers.NewBrowserHelper(t)
	require.NoError(t, browser.Setup(), "failed to setup browser")
	defer browser.TearDown()

	// Listener goes on before any navigation so the first inboxList call
	// cannot slip past it.
	capture := helpers.CaptureResponses(browser.Page, leakcheck.InboxEndpoint, http.MethodGet)

	session := helpers.NewSessionEstablisher(browser)
	require.NoError(t, session.Establish(cred))
	require.NoError(t, browser.NavigateTo("/contact-center"))

	body, err := capture.Wait(browser.Config.ScenarioTimeout)
	require.NoError(t, err, "inboxList response was not observed")

	payload, err := leakcheck.Parse(body)
	require.NoError(t, err, "inboxList envelope did not match the expected shape")

	checked, err := leakcheck.Verify(payload)
	require.NoError(t, err)
	if !checked {
		t.Log("server did not declare meta.myCount; strict scope check skipped (reduced guarantee)")
	}
}
