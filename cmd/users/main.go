package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/danielholmes839/admin-page-verification/internal/verify"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// prints the admin page's user table as yaml
func listUsers() error {
	godotenv.Load()

	// logs go to stderr so stdout stays valid yaml
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{}))

	cfg, err := verify.LoadConfig(afero.NewOsFs(), "./data/verify.yaml")
	if err != nil {
		return err
	}

	// setup browser
	browser, cleanup, err := verify.Launch(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	context, err := browser.NewContext()
	if err != nil {
		return err
	}
	defer context.Close()

	context.SetDefaultTimeout(float64(cfg.ActionTimeout.Milliseconds()))

	page, err := context.NewPage()
	if err != nil {
		return err
	}

	err = verify.SignIn(page, cfg, logger)
	if err != nil {
		return err
	}

	err = verify.ClickAdmin(page)
	if err != nil {
		return err
	}

	err = verify.WaitForUserTable(page, cfg.TableTimeout)
	if err != nil {
		return err
	}

	buf, err := verify.GetAdminPage(page)
	if err != nil {
		return err
	}

	users, err := verify.ParseAdminPage(buf)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(users)
	if err != nil {
		return err
	}

	fmt.Print(string(out))
	return nil
}

func main() {
	err := listUsers()
	if err != nil {
		panic(err)
	}
}
