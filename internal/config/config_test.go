package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "wbreviews"}
	RegisterFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newTestCommand(t))
	require.NoError(t, err)

	require.Equal(t, DefaultPageLoadTimeout, cfg.PageLoadTimeout)
	require.Equal(t, DelayRange{Min: 1500 * time.Millisecond, Max: 2500 * time.Millisecond}, cfg.ScrollDelay)
	require.Equal(t, DelayRange{Min: 2 * time.Second, Max: 4 * time.Second}, cfg.InitialDelay)
	require.Equal(t, 5, cfg.NoChangeThreshold)
	require.Equal(t, 0, cfg.MaxScrollIterations)
	require.True(t, cfg.BrowserHeadless)
	require.Equal(t, DefaultOutputDir, cfg.OutputDir)
	require.Empty(t, cfg.Proxies)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCRAPER_PAGE_LOAD_TIMEOUT", "45")
	t.Setenv("SCRAPER_SCROLL_DELAY_MIN", "100")
	t.Setenv("SCRAPER_SCROLL_DELAY_MAX", "200")
	t.Setenv("SCRAPER_NO_CHANGE_ITERATIONS", "3")
	t.Setenv("SCRAPER_PROXIES", "http://a:1, http://b:2,,")
	t.Setenv("SCRAPER_LOG_LEVEL", "DEBUG")

	cfg, err := Load(newTestCommand(t))
	require.NoError(t, err)

	require.Equal(t, 45*time.Second, cfg.PageLoadTimeout)
	require.Equal(t, DelayRange{Min: 100 * time.Millisecond, Max: 200 * time.Millisecond}, cfg.ScrollDelay)
	require.Equal(t, 3, cfg.NoChangeThreshold)
	require.Equal(t, []string{"http://a:1", "http://b:2"}, cfg.Proxies)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("SCRAPER_NO_CHANGE_ITERATIONS", "3")
	t.Setenv("SCRAPER_OUTPUT_DIR", "/from/env")

	cmd := newTestCommand(t,
		"--no-change", "7",
		"--output-dir", "/from/flag",
		"--scroll-delay", "10-20",
		"--timeout", "5s",
		"--max-scrolls", "50",
		"--headful",
		"-v",
	)
	cfg, err := Load(cmd)
	require.NoError(t, err)

	require.Equal(t, 7, cfg.NoChangeThreshold)
	require.Equal(t, "/from/flag", cfg.OutputDir)
	require.Equal(t, DelayRange{Min: 10 * time.Millisecond, Max: 20 * time.Millisecond}, cfg.ScrollDelay)
	require.Equal(t, 5*time.Second, cfg.PageLoadTimeout)
	require.Equal(t, 50, cfg.MaxScrollIterations)
	require.False(t, cfg.BrowserHeadless)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraper.env")
	require.NoError(t, os.WriteFile(path, []byte("SCRAPER_USER_AGENT=test-agent\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SCRAPER_USER_AGENT") })

	cfg, err := Load(newTestCommand(t, "--env-file", path))
	require.NoError(t, err)
	require.Equal(t, "test-agent", cfg.UserAgent)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(newTestCommand(t, "--env-file", filepath.Join(t.TempDir(), "nope.env")))
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{name: "inverted scroll range", args: []string{"--scroll-delay", "3000-1000"}},
		{name: "zero timeout", args: []string{"--timeout", "0s"}},
		{name: "bad timeout", args: []string{"--timeout", "soon"}},
		{name: "bad env number", env: map[string]string{"SCRAPER_SCROLL_DELAY_MIN": "fast"}},
		{name: "zero threshold", env: map[string]string{"SCRAPER_NO_CHANGE_ITERATIONS": "0"}},
		{name: "threshold of one", args: []string{"--no-change", "1"}},
		{name: "negative bound", env: map[string]string{"SCRAPER_MAX_SCROLL_ITERATIONS": "-4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(newTestCommand(t, tt.args...))
			require.Error(t, err)
		})
	}
}

func TestParseDelayRange(t *testing.T) {
	r, err := ParseDelayRange("1500-2500")
	require.NoError(t, err)
	require.Equal(t, 1500*time.Millisecond, r.Min)
	require.Equal(t, 2500*time.Millisecond, r.Max)
	require.Equal(t, "1500-2500ms", r.String())

	r, err = ParseDelayRange("750ms")
	require.NoError(t, err)
	require.Equal(t, r.Min, r.Max)

	_, err = ParseDelayRange("a-b")
	require.Error(t, err)
}
