package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/pkgage/pkg/buildinfo"
	pkgerrors "github.com/matzehuels/pkgage/pkg/errors"
	"github.com/matzehuels/pkgage/pkg/integrations"
	"github.com/matzehuels/pkgage/pkg/staleness"
)

// configEnv names an explicit config file, overriding the XDG location.
const configEnv = "PKGAGE_CONFIG"

// Config holds the registry settings of a run.
//
// It is read from a TOML file at $PKGAGE_CONFIG, else
// $XDG_CONFIG_HOME/pkgage/config.toml, else ~/.config/pkgage/config.toml:
//
//	timeout = "10s"       # per-request timeout
//	concurrency = 15      # parallel lookups per file, 0 = unlimited
//	user_agent = "pkgage" # User-Agent sent to PyPI
//
// A missing file leaves every setting at its default.
type Config struct {
	Timeout     time.Duration
	Concurrency int
	UserAgent   string
}

// fileConfig mirrors the TOML layout; nil fields were not set.
type fileConfig struct {
	Timeout     *string `toml:"timeout"`
	Concurrency *int    `toml:"concurrency"`
	UserAgent   *string `toml:"user_agent"`
}

// defaultConfig returns the settings used when no config file is present.
func defaultConfig() Config {
	return Config{
		Timeout:     integrations.DefaultTimeout,
		Concurrency: staleness.DefaultConcurrency,
		UserAgent:   buildinfo.UserAgent(),
	}
}

func (c Config) checkerConfig() staleness.Config {
	return staleness.Config{
		Timeout:     c.Timeout,
		UserAgent:   c.UserAgent,
		Concurrency: c.Concurrency,
	}
}

// configPath returns the config file location using the XDG standard
// (~/.config/pkgage/config.toml).
func configPath() (string, error) {
	if p := os.Getenv(configEnv); p != "" {
		return p, nil
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the config file, if any, on top of the defaults.
func loadConfig(logger *log.Logger) (Config, error) {
	path, err := configPath()
	if err != nil {
		logger.Debug("no config location, using defaults", "err", err)
		return defaultConfig(), nil
	}
	return loadConfigFile(path, logger)
}

func loadConfigFile(path string, logger *log.Logger) (Config, error) {
	cfg := defaultConfig()

	var raw fileConfig
	md, err := toml.DecodeFile(path, &raw)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidInput, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warn("ignoring unknown config keys", "path", path, "keys", strings.Join(keys, ", "))
	}

	if raw.Timeout != nil {
		d, err := time.ParseDuration(*raw.Timeout)
		if err != nil {
			return cfg, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidInput, err, "config %s: timeout", path)
		}
		if d <= 0 {
			return cfg, pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "config %s: timeout must be positive, got %s", path, d)
		}
		cfg.Timeout = d
	}
	if raw.Concurrency != nil {
		if *raw.Concurrency < 0 {
			return cfg, pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "config %s: concurrency must not be negative, got %d", path, *raw.Concurrency)
		}
		cfg.Concurrency = *raw.Concurrency
	}
	if raw.UserAgent != nil {
		ua := strings.TrimSpace(*raw.UserAgent)
		if ua == "" {
			return cfg, pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "config %s: user_agent must not be empty", path)
		}
		cfg.UserAgent = ua
	}

	logger.Debug("read config", "path", path)
	return cfg, nil
}
