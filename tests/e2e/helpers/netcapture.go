package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ResponseCapture passively collects the first response matching a URL
// fragment while the page navigates. The suite never issues API calls of its
// own; it only observes traffic the application generates.
type ResponseCapture struct {
	fragment string
	ch       chan []byte
}

// CaptureResponses registers a listener on the page before navigation starts.
// Only responses whose URL contains fragment and whose request used method
// (when non-empty) are kept; the first body wins.
func CaptureResponses(page playwright.Page, fragment, method string) *ResponseCapture {
	rc := &ResponseCapture{
		fragment: fragment,
		ch:       make(chan []byte, 1),
	}
	page.OnResponse(func(resp playwright.Response) {
		if !strings.Contains(resp.URL(), fragment) {
			return
		}
		if method != "" && resp.Request().Method() != method {
			return
		}
		body, err := resp.Body()
		if err != nil {
			return
		}
		select {
		case rc.ch <- body:
		default:
		}
	})
	return rc
}

// Wait blocks until a matching response body arrived or the bound elapses.
func (rc *ResponseCapture) Wait(timeout time.Duration) ([]byte, error) {
	select {
	case body := <-rc.ch:
		return body, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("no response matching %q captured within %s", rc.fragment, timeout)
	}
}
