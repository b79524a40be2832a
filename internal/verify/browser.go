package verify

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Launch starts the playwright driver and a chromium browser. The returned
// cleanup closes the browser and stops the driver; call it exactly once.
func Launch(cfg Config) (playwright.Browser, func(), error) {
	if cfg.InstallBrowsers {
		err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
		if err != nil {
			return nil, nil, fmt.Errorf("installing playwright browsers: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("running playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, nil, fmt.Errorf("launching chromium: %w", err)
	}

	cleanup := func() {
		browser.Close()
		pw.Stop()
	}

	return browser, cleanup, nil
}
