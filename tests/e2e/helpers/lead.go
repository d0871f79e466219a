package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// TestMarkerPrefix marks every record the suite creates. The production
// database is shared and mutable; this prefix is the only isolation there is,
// so nothing in the suite may mutate a record without it.
const TestMarkerPrefix = "TEST_"

// NewLeadName returns a unique synthetic lead name. The timestamp suffix
// keeps repeated runs independent of each other.
func NewLeadName() string {
	return fmt.Sprintf("%sLead_%d", TestMarkerPrefix, time.Now().UnixMilli())
}

// IsTestRecord reports whether a display name carries the reserved marker.
func IsTestRecord(name string) bool {
	return strings.HasPrefix(name, TestMarkerPrefix)
}

// LeadForm is the synthetic data for one lead record. Only Name is required;
// the creation form gained and lost optional fields across CRM releases, so
// the others are filled only when present.
type LeadForm struct {
	Name  string
	Email string
	Phone string
	Value int
}

// SyntheticLead returns a fresh lead form with safe non-PII values.
func SyntheticLead() LeadForm {
	return LeadForm{
		Name:  NewLeadName(),
		Email: "test@wkconnect.de",
		Phone: "+49 151 00000000",
		Value: 0,
	}
}

// LeadHelper drives the lead creation surface.
type LeadHelper struct {
	b *BrowserHelper
}

// NewLeadHelper creates a lead helper over the given browser.
func NewLeadHelper(b *BrowserHelper) *LeadHelper {
	return &LeadHelper{b: b}
}

// Create opens the creation dialog, fills the form, submits, and waits for
// the record to appear in the listing. The dialog scopes every lookup so
// fields in the underlying page cannot shadow the form's.
func (l *LeadHelper) Create(form LeadForm) error {
	if !IsTestRecord(form.Name) {
		return fmt.Errorf("refusing to create lead %q without the %s marker", form.Name, TestMarkerPrefix)
	}

	if err := l.b.NavigateTo("/crm/leads?action=create"); err != nil {
		return err
	}

	dialog := l.b.Page.GetByRole(*playwright.AriaRoleDialog, playwright.PageGetByRoleOptions{Name: LeadDialogName})
	if err := WaitVisible(dialog, l.b.Config.ActionTimeout); err != nil {
		return fmt.Errorf("lead creation dialog did not open: %w", err)
	}

	if err := dialog.GetByLabel(LeadNameLabel).Fill(form.Name); err != nil {
		return fmt.Errorf("fill lead name: %w", err)
	}

	// Optional fields: probe, fill when present, absence is fine.
	if form.Email != "" {
		email := dialog.GetByLabel(EmailLabel)
		if ProbeVisible(email, probeWindow) {
			if err := email.First().Fill(form.Email); err != nil {
				return fmt.Errorf("fill lead email: %w", err)
			}
		}
	}
	if form.Phone != "" {
		phone := dialog.GetByLabel(PhoneLabel)
		if ProbeVisible(phone, probeWindow) {
			if err := phone.First().Fill(form.Phone); err != nil {
				return fmt.Errorf("fill lead phone: %w", err)
			}
		}
	}

	submit := dialog.GetByRole(*playwright.AriaRoleButton, playwright.LocatorGetByRoleOptions{Name: LeadSubmit})
	if err := submit.Click(); err != nil {
		return fmt.Errorf("submit lead form: %w", err)
	}

	if err := WaitHidden(dialog, l.b.Config.ActionTimeout); err != nil {
		return fmt.Errorf("lead creation dialog did not close: %w", err)
	}

	if err := l.WaitListed(form.Name); err != nil {
		return fmt.Errorf("created lead %q not visible in listing: %w", form.Name, err)
	}
	return nil
}

// WaitListed blocks until a lead with the given name shows up in the listing.
func (l *LeadHelper) WaitListed(name string) error {
	return WaitVisible(l.b.Page.GetByText(name), l.b.Config.ActionTimeout)
}
