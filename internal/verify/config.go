package verify

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	DefaultAppURL          = "http://localhost:3000/"
	DefaultIdPPattern      = ".*localhost:8080.*"
	DefaultUsername        = "adminuser"
	DefaultPassword        = "admin"
	DefaultOutputDir       = "jules-scratch/verification"
	DefaultSuccessFile     = "admin_page.png"
	DefaultErrorFile       = "error.png"
	DefaultLoginTimeout    = 10 * time.Second
	DefaultRedirectTimeout = 15 * time.Second
	DefaultTableTimeout    = 5 * time.Second
	DefaultActionTimeout   = 30 * time.Second
)

type Config struct {
	AppURL     string `yaml:"app_url"`
	IdPPattern string `yaml:"idp_pattern"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`

	OutputDir   string `yaml:"output_dir"`
	SuccessFile string `yaml:"success_file"`
	ErrorFile   string `yaml:"error_file"`

	// how long to wait for the identity provider, the redirect back to the
	// app and the admin user table respectively
	LoginTimeout    time.Duration `yaml:"login_timeout"`
	RedirectTimeout time.Duration `yaml:"redirect_timeout"`
	TableTimeout    time.Duration `yaml:"table_timeout"`

	// applies to navigation, clicks and fills
	ActionTimeout time.Duration `yaml:"action_timeout"`

	Headless        bool `yaml:"headless"`
	InstallBrowsers bool `yaml:"install_browsers"`
}

func DefaultConfig() Config {
	return Config{
		AppURL:          DefaultAppURL,
		IdPPattern:      DefaultIdPPattern,
		Username:        DefaultUsername,
		Password:        DefaultPassword,
		OutputDir:       DefaultOutputDir,
		SuccessFile:     DefaultSuccessFile,
		ErrorFile:       DefaultErrorFile,
		LoginTimeout:    DefaultLoginTimeout,
		RedirectTimeout: DefaultRedirectTimeout,
		TableTimeout:    DefaultTableTimeout,
		ActionTimeout:   DefaultActionTimeout,
		Headless:        true,
	}
}

// LoadConfig starts from the defaults, applies the yaml file at path if it
// exists and then any verify_* environment variables.
func LoadConfig(fsys afero.Fs, path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := afero.ReadFile(fsys, path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	text := map[string]*string{
		"verify_app_url":     &cfg.AppURL,
		"verify_idp_pattern": &cfg.IdPPattern,
		"verify_username":    &cfg.Username,
		"verify_password":    &cfg.Password,
		"verify_output_dir":  &cfg.OutputDir,
	}
	for key, dst := range text {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"verify_login_timeout":    &cfg.LoginTimeout,
		"verify_redirect_timeout": &cfg.RedirectTimeout,
		"verify_table_timeout":    &cfg.TableTimeout,
		"verify_action_timeout":   &cfg.ActionTimeout,
	}
	for key, dst := range durations {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		*dst = d
	}

	bools := map[string]*bool{
		"verify_headless":         &cfg.Headless,
		"verify_install_browsers": &cfg.InstallBrowsers,
	}
	for key, dst := range bools {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		*dst = b
	}

	return nil
}

func (cfg Config) Validate() error {
	u, err := url.Parse(cfg.AppURL)
	if err != nil {
		return fmt.Errorf("invalid app url %q: %w", cfg.AppURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid app url %q: must be absolute", cfg.AppURL)
	}

	if _, err := cfg.IdPRegexp(); err != nil {
		return err
	}

	if cfg.OutputDir == "" || cfg.SuccessFile == "" || cfg.ErrorFile == "" {
		return errors.New("output dir and screenshot file names must be set")
	}
	if cfg.SuccessFile == cfg.ErrorFile {
		return fmt.Errorf("success and error screenshots share the name %q", cfg.SuccessFile)
	}

	for name, d := range map[string]time.Duration{
		"login timeout":    cfg.LoginTimeout,
		"redirect timeout": cfg.RedirectTimeout,
		"table timeout":    cfg.TableTimeout,
		"action timeout":   cfg.ActionTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}

	return nil
}

func (cfg Config) IdPRegexp() (*regexp.Regexp, error) {
	re, err := regexp.Compile(cfg.IdPPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid identity provider pattern %q: %w", cfg.IdPPattern, err)
	}
	return re, nil
}

func (cfg Config) SuccessPath() string {
	return filepath.Join(cfg.OutputDir, cfg.SuccessFile)
}

func (cfg Config) ErrorPath() string {
	return filepath.Join(cfg.OutputDir, cfg.ErrorFile)
}
