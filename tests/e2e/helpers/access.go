package helpers

import (
	"fmt"
	"strings"

	"github.com/wkconnect/wk-crm-tests/internal/rbac"
)

// AccessChecker verifies one role's view of one route against the RBAC
// matrix. Outcomes must be deterministic across runs; transient navigation
// errors surface as errors here and are retried by the runner, never recorded
// as a permission result.
type AccessChecker struct {
	b *BrowserHelper
}

// NewAccessChecker creates an access checker over the given browser.
func NewAccessChecker(b *BrowserHelper) *AccessChecker {
	return &AccessChecker{b: b}
}

// Check navigates to the route and asserts the expected outcome.
func (a *AccessChecker) Check(rc rbac.RouteCheck) error {
	if err := a.b.NavigateTo(rc.Path); err != nil {
		return err
	}

	switch rc.Outcome {
	case rbac.OutcomeAllowed:
		return a.expectAllowed(rc)
	case rbac.OutcomeDenied:
		return a.expectDenied(rc)
	default:
		return fmt.Errorf("route %s: unknown outcome %q", rc.Path, rc.Outcome)
	}
}

func (a *AccessChecker) expectAllowed(rc rbac.RouteCheck) error {
	marker := a.b.Page.GetByText(rc.MarkerPattern())
	if err := WaitVisible(marker, a.b.Config.NavigationTimeout); err != nil {
		return fmt.Errorf("route %s: content marker /%s/ not visible: %w", rc.Path, rc.Marker, err)
	}

	// An allowed page must not show the denial indicator anywhere.
	denied := a.b.Page.GetByText(AccessDenied)
	if n, err := denied.Count(); err == nil && n > 0 {
		return fmt.Errorf("route %s: allowed page shows an access-denied indicator", rc.Path)
	}
	return nil
}

// expectDenied accepts either an explicit denial indicator or the content
// being absent entirely (the app redirecting away from the route). What it
// never accepts is protected content rendering.
func (a *AccessChecker) expectDenied(rc rbac.RouteCheck) error {
	indicator := a.b.Page.GetByText(AccessDenied)
	if ProbeVisible(indicator, a.b.Config.ActionTimeout) {
		return nil
	}
	if url := a.b.Page.URL(); !strings.Contains(url, rc.Path) {
		// Redirected away: content absent, denial holds.
		return nil
	}
	return fmt.Errorf("route %s: no access-denied indicator and still on the route", rc.Path)
}
