package verify

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

var expect = playwright.NewPlaywrightAssertions()

func milliseconds(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func OpenHome(page playwright.Page, appURL string) error {
	_, err := page.Goto(appURL)
	if err != nil {
		return fmt.Errorf("navigating to %s: %w", appURL, err)
	}
	return nil
}

func ClickLogin(page playwright.Page) error {
	err := page.GetByRole("button", playwright.PageGetByRoleOptions{Name: "Log in"}).Click()
	if err != nil {
		return fmt.Errorf("clicking log in button: %w", err)
	}
	return nil
}

// WaitForHome waits until the page is back on exactly appURL, which is where
// the identity provider sends the browser after a successful login.
func WaitForHome(page playwright.Page, appURL string, timeout time.Duration) error {
	err := expect.Page(page).ToHaveURL(appURL, playwright.PageAssertionsToHaveURLOptions{
		Timeout: milliseconds(timeout),
	})
	if err != nil {
		return fmt.Errorf("waiting for redirect back to %s (at %s): %w", appURL, page.URL(), err)
	}
	return nil
}

func ClickAdmin(page playwright.Page) error {
	err := page.GetByRole("link", playwright.PageGetByRoleOptions{Name: "Admin"}).Click()
	if err != nil {
		return fmt.Errorf("clicking admin link: %w", err)
	}
	return nil
}
