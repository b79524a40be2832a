package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/danielholmes839/admin-page-verification/internal/verify"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

func launch() error {
	godotenv.Load()

	// setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{}))
	slog.SetDefault(logger)

	fs := afero.NewOsFs()

	cfg, err := verify.LoadConfig(fs, "./data/verify.yaml")
	if err != nil {
		return err
	}

	// setup playwright browser
	startup := time.Now()
	browser, cleanup, err := verify.Launch(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	dur := time.Since(startup)
	logger.Info("launched playwright browser", "dur", dur.String())

	runner := &verify.Runner{
		Browser: browser,
		Config:  cfg,
		Fs:      fs,
		Logger:  logger,
		Console: os.Stdout,
	}

	result, err := runner.Run()
	if err != nil {
		return err
	}

	if result.OK() {
		logger.Info("verification succeeded", "screenshot", result.Screenshot, "users", len(result.Users))
	} else {
		logger.Info("verification failed", "screenshot", result.Screenshot)
	}

	return nil
}

func main() {
	err := launch()
	if err != nil {
		panic(err)
	}
}
