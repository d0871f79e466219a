package helpers

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// CleanupAction records how a synthetic record was neutralized.
type CleanupAction string

const (
	CleanupArchived CleanupAction = "archived"
	CleanupDeleted  CleanupAction = "deleted"
	CleanupDemoted  CleanupAction = "demoted"
	CleanupAbsent   CleanupAction = "absent"
	CleanupRefused  CleanupAction = "refused"
	CleanupFailed   CleanupAction = "failed"
)

// Outcome is the non-propagating result of a cleanup attempt. Cleanup is
// best-effort hygiene: its errors are captured here and logged, never
// returned as a test failure.
type Outcome struct {
	Action CleanupAction
	Err    error
}

// Clean reports whether the record is gone or inert.
func (o Outcome) Clean() bool {
	switch o.Action {
	case CleanupArchived, CleanupDeleted, CleanupDemoted, CleanupAbsent:
		return true
	}
	return false
}

func (o Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s (%v)", o.Action, o.Err)
	}
	return string(o.Action)
}

// Cleaner removes synthetic leads with a layered fallback: archive if the
// action is offered, else delete (confirming a dialog when one appears), else
// open edit mode and demote the status to Lost. It runs after both passing
// and failing scenario bodies, on a fresh interaction budget.
type Cleaner struct {
	b   *BrowserHelper
	log *zap.SugaredLogger
}

// NewCleaner creates a cleaner. The logger must not be nil; cleanup's only
// output channel is the log.
func NewCleaner(b *BrowserHelper, log *zap.SugaredLogger) *Cleaner {
	return &Cleaner{b: b, log: log}
}

// RemoveLead neutralizes the lead with the given display name. It never
// returns an error: every internal failure ends up in the Outcome and the
// log. A record that cannot be found is treated as already clean.
func (c *Cleaner) RemoveLead(name string) Outcome {
	outcome := c.removeLead(name)
	switch {
	case outcome.Action == CleanupRefused:
		c.log.Warnw("cleanup refused", "lead", name, "reason", outcome.Err)
	case outcome.Err != nil:
		c.log.Errorw("cleanup failed", "lead", name, "error", outcome.Err)
	default:
		c.log.Infow("cleanup done", "lead", name, "action", outcome.Action)
	}
	return outcome
}

func (c *Cleaner) removeLead(name string) Outcome {
	// Hard guard: only records carrying the reserved marker may be touched.
	if !IsTestRecord(name) {
		return Outcome{Action: CleanupRefused, Err: fmt.Errorf("%q lacks the %s marker", name, TestMarkerPrefix)}
	}

	if err := c.b.NavigateTo("/crm/leads"); err != nil {
		return Outcome{Action: CleanupFailed, Err: err}
	}
	_ = c.b.WaitForIdle()

	card := c.b.Page.Locator(fmt.Sprintf(`div:has-text(%q)`, name)).First()
	if !ProbeVisible(card, 5*time.Second) {
		return Outcome{Action: CleanupAbsent}
	}
	if err := card.Click(); err != nil {
		return Outcome{Action: CleanupFailed, Err: fmt.Errorf("open lead %q: %w", name, err)}
	}
	_ = c.b.WaitForIdle()

	if done, outcome := c.tryArchive(); done {
		return outcome
	}
	if done, outcome := c.tryDelete(); done {
		return outcome
	}
	return c.demoteToLost(name)
}

func (c *Cleaner) tryArchive() (bool, Outcome) {
	archive := c.b.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: ArchiveButton})
	if !ProbeVisible(archive, probeWindow) {
		return false, Outcome{}
	}
	if err := archive.First().Click(); err != nil {
		return true, Outcome{Action: CleanupFailed, Err: fmt.Errorf("archive: %w", err)}
	}
	return true, Outcome{Action: CleanupArchived}
}

func (c *Cleaner) tryDelete() (bool, Outcome) {
	del := c.b.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: DeleteButton})
	if !ProbeVisible(del, probeWindow) {
		return false, Outcome{}
	}
	if err := del.First().Click(); err != nil {
		return true, Outcome{Action: CleanupFailed, Err: fmt.Errorf("delete: %w", err)}
	}
	confirm := c.b.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: ConfirmButton})
	if ProbeVisible(confirm, probeWindow) {
		if err := confirm.First().Click(); err != nil {
			return true, Outcome{Action: CleanupFailed, Err: fmt.Errorf("confirm delete: %w", err)}
		}
	}
	return true, Outcome{Action: CleanupDeleted}
}

// demoteToLost is the last rung: no archive or delete action was offered, so
// flip the record's status to the terminal Lost state and save.
func (c *Cleaner) demoteToLost(name string) Outcome {
	edit := c.b.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: EditButton})
	if !ProbeVisible(edit, probeWindow) {
		return Outcome{Action: CleanupFailed, Err: fmt.Errorf("lead %q: no archive, delete or edit action offered", name)}
	}
	if err := edit.First().Click(); err != nil {
		return Outcome{Action: CleanupFailed, Err: fmt.Errorf("open edit mode: %w", err)}
	}

	status := c.b.Page.Locator("#status, [id*='status']").First()
	if !ProbeVisible(status, probeWindow) {
		return Outcome{Action: CleanupFailed, Err: fmt.Errorf("lead %q: status control not found in edit mode", name)}
	}
	if err := status.Click(); err != nil {
		return Outcome{Action: CleanupFailed, Err: fmt.Errorf("open status dropdown: %w", err)}
	}

	lost := c.b.Page.GetByRole(*playwright.AriaRoleOption, playwright.PageGetByRoleOptions{Name: LostOption})
	if !ProbeVisible(lost, probeWindow) {
		return Outcome{Action: CleanupFailed, Err: fmt.Errorf("lead %q: Lost status option not offered", name)}
	}
	if err := lost.First().Click(); err != nil {
		return Outcome{Action: CleanupFailed, Err: fmt.Errorf("select Lost status: %w", err)}
	}

	save := c.b.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: SaveButton})
	if ProbeVisible(save, probeWindow) {
		if err := save.First().Click(); err != nil {
			return Outcome{Action: CleanupFailed, Err: fmt.Errorf("save demoted lead: %w", err)}
		}
	}
	return Outcome{Action: CleanupDemoted}
}
