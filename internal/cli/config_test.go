package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	pkgerrors "github.com/matzehuels/pkgage/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigPath(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		t.Setenv(configEnv, "/tmp/custom.toml")
		got, err := configPath()
		if err != nil {
			t.Fatal(err)
		}
		if got != "/tmp/custom.toml" {
			t.Errorf("configPath() = %q, want /tmp/custom.toml", got)
		}
	})

	t.Run("xdg", func(t *testing.T) {
		t.Setenv(configEnv, "")
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		got, err := configPath()
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join("/xdg", appName, "config.toml")
		if got != want {
			t.Errorf("configPath() = %q, want %q", got, want)
		}
	})

	t.Run("home", func(t *testing.T) {
		t.Setenv(configEnv, "")
		t.Setenv("XDG_CONFIG_HOME", "")
		got, err := configPath()
		if err != nil {
			t.Fatalf("configPath() error: %v", err)
		}
		home, _ := os.UserHomeDir()
		want := filepath.Join(home, ".config", appName, "config.toml")
		if got != want {
			t.Errorf("configPath() = %q, want %q", got, want)
		}
	})
}

func TestLoadConfigFile_Missing(t *testing.T) {
	cfg, err := loadConfigFile(filepath.Join(t.TempDir(), "none.toml"), log.New(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("loadConfigFile() error: %v", err)
	}
	if cfg != defaultConfig() {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, defaultConfig())
	}
	if cfg.Timeout != 10*time.Second || cfg.Concurrency != 15 {
		t.Errorf("defaults = %+v, want 10s timeout and 15 lookups", cfg)
	}
	if !strings.HasPrefix(cfg.UserAgent, "pkgage/") {
		t.Errorf("UserAgent = %q, want pkgage/ prefix", cfg.UserAgent)
	}
}

func TestLoadConfigFile_Values(t *testing.T) {
	path := writeConfig(t, `
timeout = "3s"
concurrency = 0
user_agent = "acme-ci"
`)
	cfg, err := loadConfigFile(path, log.New(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("loadConfigFile() error: %v", err)
	}
	want := Config{Timeout: 3 * time.Second, Concurrency: 0, UserAgent: "acme-ci"}
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfigFile_Partial(t *testing.T) {
	path := writeConfig(t, `concurrency = 4`)
	cfg, err := loadConfigFile(path, log.New(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("loadConfigFile() error: %v", err)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.Timeout != defaultConfig().Timeout {
		t.Errorf("Timeout = %v, want default", cfg.Timeout)
	}
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad duration", `timeout = "soon"`},
		{"zero timeout", `timeout = "0s"`},
		{"negative concurrency", `concurrency = -1`},
		{"empty user agent", `user_agent = "  "`},
		{"wrong type", `concurrency = "many"`},
		{"syntax", `timeout = `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := loadConfigFile(path, log.New(&bytes.Buffer{}))
			if !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidInput) {
				t.Errorf("loadConfigFile() error = %v, want %v", err, pkgerrors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestLoadConfigFile_UnknownKeys(t *testing.T) {
	var logs bytes.Buffer
	path := writeConfig(t, "timeout = \"5s\"\nretries = 3\n")

	if _, err := loadConfigFile(path, log.New(&logs)); err != nil {
		t.Fatalf("loadConfigFile() error: %v", err)
	}
	if !strings.Contains(logs.String(), "retries") {
		t.Errorf("unknown key should be logged, got:\n%s", logs.String())
	}
}
