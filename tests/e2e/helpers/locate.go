package helpers

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// The CRM renders Russian copy for most users and English for some accounts,
// and its ids/classes change between releases without notice. Element lookup
// therefore always goes through accessible role/label with a case-insensitive
// RU/EN alternation first; raw CSS selectors are fallback candidates only.

// Pattern builds a case-insensitive alternation for locale-tolerant matching.
func Pattern(terms ...string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + strings.Join(terms, "|"))
}

var (
	LoginHeading   = Pattern("w&k connect", "analytics")
	UsernameLabel  = Pattern("логин", "email", "username")
	PasswordLabel  = Pattern("пароль", "password")
	LoginButton    = Pattern("войти", "login", "sign in")
	ShellHint      = Pattern("crm", "лиды", "контакт")
	AccessDenied   = Pattern("доступ запрещ", "access denied", "forbidden")
	LeadDialogName = Pattern("создать новый лид", "create new lead")
	LeadNameLabel  = Pattern("название лида", "lead name")
	EmailLabel     = Pattern("email")
	PhoneLabel     = Pattern("телефон", "phone")
	LeadSubmit     = Pattern("создать лид", "create lead")
	NewLeadButton  = Pattern("новый лид", "new lead")
	ArchiveButton  = Pattern("архив", "archive")
	DeleteButton   = Pattern("удалить", "delete")
	ConfirmButton  = Pattern("подтвердить", "confirm", "^да$", "^yes$")
	EditButton     = Pattern("редактировать", "edit")
	LostOption     = Pattern("потерян", "lost")
	SaveButton     = Pattern("сохранить", "save")
)

// PostLoginURL matches any authenticated landing area.
var PostLoginURL = regexp.MustCompile(`/(crm|dashboard|contact-center|tasks)`)

// Candidate names one way of finding an element.
type Candidate struct {
	Name  string
	Build func(page playwright.Page) playwright.Locator
}

// Strategy is an ordered fallback chain of candidates. Each candidate gets a
// bounded existence probe; the first match wins. The order is the policy:
// accessible lookups come before structural ones.
type Strategy struct {
	Name       string
	Candidates []Candidate
}

// Resolve returns the first candidate present on the page. The error lists
// every candidate tried, because "which selector drifted" is the question a
// failing run has to answer.
func (s Strategy) Resolve(page playwright.Page, probe time.Duration) (playwright.Locator, error) {
	var tried []string
	for _, c := range s.Candidates {
		loc := c.Build(page)
		if Exists(loc, probe) {
			return loc.First(), nil
		}
		tried = append(tried, c.Name)
	}
	return nil, fmt.Errorf("locate %s: no candidate matched (tried %s)", s.Name, strings.Join(tried, ", "))
}

// Exists reports whether a locator matches anything within the probe window.
func Exists(loc playwright.Locator, probe time.Duration) bool {
	err := loc.First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(probe.Milliseconds())),
	})
	return err == nil
}

// ProbeVisible reports whether a locator becomes visible within the probe
// window. Absence is not an error; optional form fields use this.
func ProbeVisible(loc playwright.Locator, probe time.Duration) bool {
	err := loc.First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(probe.Milliseconds())),
	})
	return err == nil
}

// WaitVisible blocks until the locator is visible or the bound elapses.
func WaitVisible(loc playwright.Locator, timeout time.Duration) error {
	return loc.First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

// WaitHidden blocks until the locator is hidden or gone.
func WaitHidden(loc playwright.Locator, timeout time.Duration) error {
	return loc.First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

// UsernameField locates the login form's username input.
func UsernameField() Strategy {
	return Strategy{
		Name: "username field",
		Candidates: []Candidate{
			{Name: "label логин|email|username", Build: func(p playwright.Page) playwright.Locator {
				return p.GetByLabel(UsernameLabel)
			}},
			{Name: "#username", Build: func(p playwright.Page) playwright.Locator {
				return p.Locator("#username")
			}},
			{Name: "input[name=username]|input[type=email]", Build: func(p playwright.Page) playwright.Locator {
				return p.Locator("input[name='username'], input[type='email']")
			}},
		},
	}
}

// PasswordField locates the login form's password input.
func PasswordField() Strategy {
	return Strategy{
		Name: "password field",
		Candidates: []Candidate{
			{Name: "label пароль|password", Build: func(p playwright.Page) playwright.Locator {
				return p.GetByLabel(PasswordLabel)
			}},
			{Name: "#password", Build: func(p playwright.Page) playwright.Locator {
				return p.Locator("#password")
			}},
			{Name: "input[type=password]", Build: func(p playwright.Page) playwright.Locator {
				return p.Locator("input[type='password']")
			}},
		},
	}
}

// LoginSubmit locates the login form's submit control.
func LoginSubmit() Strategy {
	return Strategy{
		Name: "login button",
		Candidates: []Candidate{
			{Name: "role=button войти|login|sign in", Build: func(p playwright.Page) playwright.Locator {
				return p.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: LoginButton})
			}},
			{Name: "button[type=submit]", Build: func(p playwright.Page) playwright.Locator {
				return p.Locator("button[type='submit']")
			}},
		},
	}
}
