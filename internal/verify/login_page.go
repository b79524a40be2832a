package verify

import (
	"fmt"
	"regexp"
	"time"

	"github.com/playwright-community/playwright-go"
)

func WaitForLoginPage(page playwright.Page, pattern *regexp.Regexp, timeout time.Duration) error {
	err := expect.Page(page).ToHaveURL(pattern, playwright.PageAssertionsToHaveURLOptions{
		Timeout: milliseconds(timeout),
	})
	if err != nil {
		return fmt.Errorf("waiting for identity provider matching %q (at %s): %w", pattern, page.URL(), err)
	}
	return nil
}

// Login fills the identity provider's login form and submits it.
func Login(username, password string, page playwright.Page) error {
	err := page.Locator(`input[name="username"]`).Fill(username)
	if err != nil {
		return fmt.Errorf("filling username: %w", err)
	}

	err = page.Locator(`input[name="password"]`).Fill(password)
	if err != nil {
		return fmt.Errorf("filling password: %w", err)
	}

	err = page.Locator(`input[name="login"]`).Click()
	if err != nil {
		return fmt.Errorf("submitting login form: %w", err)
	}

	return nil
}
