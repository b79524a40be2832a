package verify

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/playwright-community/playwright-go"
	"github.com/spf13/afero"
)

// Result records which screenshot a run produced. Err is nil when the admin
// page was reached and captured.
type Result struct {
	Screenshot string
	Err        error
	Users      []User
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Runner logs into the app through the identity provider, opens the admin
// page and screenshots it. Any failing step is screenshotted instead.
type Runner struct {
	playwright.Browser
	Config

	Fs     afero.Fs
	Logger *slog.Logger

	// Console receives one line per browser console message.
	Console io.Writer
}

// Run performs a single verification in a fresh browser context. Errors from
// the verification steps end up in Result.Err; the returned error is only for
// failing to get a page to verify with.
func (r *Runner) Run() (Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	console := r.Console
	if console == nil {
		console = os.Stdout
	}

	fsys := r.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	// launch a new browser context with no cookies
	context, err := r.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("creating browser context: %w", err)
	}
	defer context.Close()

	context.SetDefaultTimeout(float64(r.ActionTimeout.Milliseconds()))

	page, err := context.NewPage()
	if err != nil {
		return Result{}, fmt.Errorf("creating page: %w", err)
	}

	page.OnConsole(func(msg playwright.ConsoleMessage) {
		fmt.Fprintf(console, "BROWSER CONSOLE: %s\n", msg.Text())
	})

	users, err := r.verify(page, fsys, logger)
	if err != nil {
		logger.Error("an error occurred", "error", err)

		path := r.ErrorPath()
		if err := SaveScreenshot(fsys, page, path, false); err != nil {
			logger.Error("failed to save error screenshot", "error", err)
			path = ""
		} else {
			logger.Info("error screenshot saved", "path", path)
		}

		return Result{Screenshot: path, Err: err}, nil
	}

	return Result{Screenshot: r.SuccessPath(), Users: users}, nil
}

func (r *Runner) verify(page playwright.Page, fsys afero.Fs, logger *slog.Logger) ([]User, error) {
	if err := SignIn(page, r.Config, logger); err != nil {
		return nil, err
	}

	logger.Info("navigating to admin page")
	if err := ClickAdmin(page); err != nil {
		return nil, err
	}

	logger.Info("waiting for user table")
	if err := WaitForUserTable(page, r.TableTimeout); err != nil {
		return nil, err
	}

	// the table is the proof, its rows are informational
	users := listUsers(page, logger)

	logger.Info("taking screenshot")
	path := r.SuccessPath()
	if err := SaveScreenshot(fsys, page, path, true); err != nil {
		return nil, err
	}
	logger.Info("screenshot saved", "path", path)

	return users, nil
}

func listUsers(page playwright.Page, logger *slog.Logger) []User {
	buf, err := GetAdminPage(page)
	if err != nil {
		logger.Warn("failed to read admin page", "error", err)
		return nil
	}

	users, err := ParseAdminPage(buf)
	if err != nil {
		logger.Warn("failed to parse user table", "error", err)
		return nil
	}

	logger.Info("user table visible", "users", len(users))
	return users
}

// SignIn opens the app, follows its log in button to the identity provider,
// submits the credentials and waits to land back on the app root.
func SignIn(page playwright.Page, cfg Config, logger *slog.Logger) error {
	idp, err := cfg.IdPRegexp()
	if err != nil {
		return err
	}

	logger.Info("navigating to app", "url", cfg.AppURL)
	if err := OpenHome(page, cfg.AppURL); err != nil {
		return err
	}

	logger.Info("clicking log in button")
	if err := ClickLogin(page); err != nil {
		return err
	}

	logger.Info("waiting for identity provider login page", "pattern", idp.String(), "timeout", cfg.LoginTimeout.String())
	if err := WaitForLoginPage(page, idp, cfg.LoginTimeout); err != nil {
		return err
	}
	logger.Info("redirected to identity provider", "url", page.URL())

	if err := Login(cfg.Username, cfg.Password, page); err != nil {
		return err
	}

	logger.Info("waiting for redirect back to app", "timeout", cfg.RedirectTimeout.String())
	if err := WaitForHome(page, cfg.AppURL, cfg.RedirectTimeout); err != nil {
		return err
	}
	logger.Info("redirected back to app")

	return nil
}
