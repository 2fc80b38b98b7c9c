// Package config resolves settings from, in rising priority: built-in
// defaults, config.toml in the config dir, a .env file, and the environment.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL   = "http://localhost:3000"
	DefaultCurrency = "R"
	DefaultOutDir   = "output"
	DefaultTimeout  = 60 * time.Second
)

type Config struct {
	APIURL    string   `toml:"api_url"`
	Currency  string   `toml:"currency"`
	OutDir    string   `toml:"out_dir"`
	TokenFile string   `toml:"token_file"`
	Timeout   Duration `toml:"timeout"`

	// Dir is where config.toml and the session file live.
	Dir string `toml:"-"`
}

// Duration reads "90s"-style strings from TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func Default(dir string) Config {
	return Config{
		APIURL:    DefaultAPIURL,
		Currency:  DefaultCurrency,
		OutDir:    DefaultOutDir,
		TokenFile: filepath.Join(dir, "session.json"),
		Timeout:   Duration{DefaultTimeout},
		Dir:       dir,
	}
}

// Dir returns SITEBOOK_CONFIG_DIR, or sitebook under the user config dir.
func Dir() string {
	if dir := os.Getenv("SITEBOOK_CONFIG_DIR"); dir != "" {
		return ExpandTilde(dir)
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ".sitebook"
	}
	return filepath.Join(base, "sitebook")
}

// Load builds the configuration. envFile may be empty to skip the .env step.
func Load(dir, envFile string, debug bool) (Config, error) {
	cfg := Default(dir)

	path := filepath.Join(dir, "config.toml")
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if debug {
			log.Printf("No config file at %s (optional)", path)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && debug {
			log.Printf("Error loading %s file (optional)", envFile)
		}
	}

	if v := os.Getenv("SITEBOOK_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("SITEBOOK_CURRENCY"); v != "" {
		cfg.Currency = v
	}
	if v := os.Getenv("OUT_DIR"); v != "" {
		cfg.OutDir = v
	}
	if v := os.Getenv("SITEBOOK_TOKEN_FILE"); v != "" {
		cfg.TokenFile = v
	}
	if v := os.Getenv("SITEBOOK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid SITEBOOK_TIMEOUT %q: %w", v, err)
		}
		cfg.Timeout = Duration{d}
	}

	cfg.OutDir = ExpandTilde(cfg.OutDir)
	cfg.TokenFile = ExpandTilde(cfg.TokenFile)
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return cfg, nil
}

func ExpandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
