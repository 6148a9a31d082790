package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pkgage/pkg/integrations/pypi"
	"github.com/matzehuels/pkgage/pkg/integrations/pypi/pypitest"
	"github.com/matzehuels/pkgage/pkg/observability"
	"github.com/matzehuels/pkgage/pkg/pipeline"
	"github.com/matzehuels/pkgage/pkg/staleness"
)

// newTestCLI returns a CLI talking to a fake registry with a fixed clock.
func newTestCLI(t *testing.T, logs *bytes.Buffer) (*CLI, *pypitest.Server) {
	t.Helper()
	t.Setenv(configEnv, filepath.Join(t.TempDir(), "config.toml"))

	srv := pypitest.New(t)
	srv.AddProject("requests", "2.25.0", map[string][]string{
		"2.18.4": {"2017-10-01T00:00:00", "2017-11-01T00:00:00"},
	})
	srv.AddProject("click", "7.0", map[string][]string{
		"7.0": {"2017-11-21T00:00:00"},
	})
	srv.AddProject("ghostpkg", "1.0", map[string][]string{
		"1.0": {"2016-01-01T00:00:00"},
	})

	c := New(logs, LogInfo)
	now := time.Date(2017, 12, 1, 0, 0, 0, 0, time.Local)
	c.checkerOpts = []staleness.Option{
		staleness.WithNow(func() time.Time { return now }),
		staleness.WithClientOptions(pypi.WithBaseURL(srv.URL)),
	}
	return c, srv
}

func execute(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	if args == nil {
		args = []string{} // nil makes cobra fall back to os.Args
	}
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommand_Report(t *testing.T) {
	var logs bytes.Buffer
	c, _ := newTestCLI(t, &logs)
	dir := t.TempDir()
	a := writeManifest(t, dir, "requirements.txt", "click==7.0\nrequests==2.18.4\nghostpkg==9.9.9\n")
	b := writeManifest(t, dir, "requirements-dev.txt", "")

	out, err := execute(t, c, a, b)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := "Packages from " + a + "\n" +
		" - requests 2.18.4: 30 days old\n" +
		" - click 7.0: LATEST\n" +
		"Packages from " + b + "\n"
	if out != want {
		t.Errorf("output =\n%s\nwant\n%s", out, want)
	}
	if !strings.Contains(logs.String(), "ghostpkg") {
		t.Errorf("missing version should be logged, got:\n%s", logs.String())
	}
}

func TestRootCommand_NoArgs(t *testing.T) {
	c, srv := newTestCLI(t, &bytes.Buffer{})

	out, err := execute(t, c)
	if !errors.Is(err, pipeline.ErrNoManifests) {
		t.Errorf("error = %v, want ErrNoManifests", err)
	}
	if out != "" {
		t.Errorf("output = %q, want nothing", out)
	}
	if srv.TotalHits() != 0 {
		t.Errorf("registry hits = %d, want 0", srv.TotalHits())
	}
}

func TestRootCommand_MissingFileSkipped(t *testing.T) {
	c, _ := newTestCLI(t, &bytes.Buffer{})
	dir := t.TempDir()
	a := writeManifest(t, dir, "requirements.txt", "click==7.0\n")

	out, err := execute(t, c, filepath.Join(dir, "gone.txt"), a)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	want := "Packages from " + a + "\n - click 7.0: LATEST\n"
	if out != want {
		t.Errorf("output =\n%s\nwant\n%s", out, want)
	}
}

func TestRootCommand_ParseFailure(t *testing.T) {
	c, _ := newTestCLI(t, &bytes.Buffer{})
	dir := t.TempDir()
	bad := writeManifest(t, dir, "bad.txt", "click=>7\n")
	good := writeManifest(t, dir, "good.txt", "click==7.0\n")

	out, err := execute(t, c, bad, good)
	if err == nil {
		t.Fatal("expected an error for the unparsable manifest")
	}
	want := "Packages from " + bad + "\n" +
		"Packages from " + good + "\n - click 7.0: LATEST\n"
	if out != want {
		t.Errorf("output =\n%s\nwant\n%s", out, want)
	}
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	c, srv := newTestCLI(t, &bytes.Buffer{})
	cfg := writeManifest(t, t.TempDir(), "config.toml", `timeout = "never"`)
	t.Setenv(configEnv, cfg)
	a := writeManifest(t, t.TempDir(), "requirements.txt", "click==7.0\n")

	if _, err := execute(t, c, a); err == nil {
		t.Error("expected an error for an invalid config")
	}
	if srv.TotalHits() != 0 {
		t.Errorf("registry hits = %d, want 0", srv.TotalHits())
	}
}

func TestEnableDebug(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	var logs bytes.Buffer
	c, _ := newTestCLI(t, &logs)
	c.EnableDebug()

	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}

	a := writeManifest(t, t.TempDir(), "requirements.txt", "click==7.0\n")
	if _, err := execute(t, c, a); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.Contains(logs.String(), "http response") {
		t.Errorf("debug mode should log registry traffic, got:\n%s", logs.String())
	}
}
