package verify

import (
	"fmt"
	"path/filepath"

	"github.com/playwright-community/playwright-go"
	"github.com/spf13/afero"
)

// SaveScreenshot captures page and writes the png to path on fsys, creating
// the parent directory if needed.
func SaveScreenshot(fsys afero.Fs, page playwright.Page, path string, fullPage bool) error {
	png, err := page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(fullPage),
	})
	if err != nil {
		return fmt.Errorf("taking screenshot: %w", err)
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("making screenshot directory: %w", err)
	}

	if err := afero.WriteFile(fsys, path, png, 0o644); err != nil {
		return fmt.Errorf("writing screenshot: %w", err)
	}

	return nil
}
