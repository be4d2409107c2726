package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// DelayRange is an inclusive range of randomized wait durations.
type DelayRange struct {
	Min time.Duration
	Max time.Duration
}

// String renders the range in milliseconds, e.g. "1500-2500ms".
func (r DelayRange) String() string {
	return fmt.Sprintf("%d-%dms", r.Min.Milliseconds(), r.Max.Milliseconds())
}

// ParseDelayRange parses "MIN-MAX" in milliseconds. A single number yields a fixed delay.
func ParseDelayRange(s string) (DelayRange, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "ms")
	lo, hi, found := strings.Cut(s, "-")
	if !found {
		hi = lo
	}
	min, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return DelayRange{}, fmt.Errorf("invalid delay range %q: %w", s, err)
	}
	max, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return DelayRange{}, fmt.Errorf("invalid delay range %q: %w", s, err)
	}
	return DelayRange{
		Min: time.Duration(min) * time.Millisecond,
		Max: time.Duration(max) * time.Millisecond,
	}, nil
}

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Readiness and loading
	PageLoadTimeout     time.Duration
	ScrollDelay         DelayRange
	InitialDelay        DelayRange
	NoChangeThreshold   int
	MaxScrollIterations int
	PollInterval        time.Duration

	// Browser
	BrowserHeadless bool
	ChromePath      string
	RemoteURL       string
	UserAgent       string
	Proxies         []string

	// Navigation throttling
	NavigateRPS   float64
	NavigateBurst int

	// Output
	OutputDir   string
	DebugPrefix string

	// HTTP API
	ListenAddr string
}

// Default returns a Config populated only with defaults.
func Default() *Config {
	return &Config{
		LogLevel:            DefaultLogLevel,
		JSONLog:             DefaultJSONLog,
		PageLoadTimeout:     DefaultPageLoadTimeout,
		ScrollDelay:         DelayRange{Min: DefaultScrollDelayMin, Max: DefaultScrollDelayMax},
		InitialDelay:        DelayRange{Min: DefaultInitialDelayMin, Max: DefaultInitialDelayMax},
		NoChangeThreshold:   DefaultNoChangeThreshold,
		MaxScrollIterations: DefaultMaxScrollIterations,
		PollInterval:        DefaultPollInterval,
		BrowserHeadless:     DefaultBrowserHeadless,
		UserAgent:           DefaultUserAgent,
		NavigateRPS:         DefaultNavigateRPS,
		NavigateBurst:       DefaultNavigateBurst,
		OutputDir:           DefaultOutputDir,
		DebugPrefix:         DefaultDebugPrefix,
		ListenAddr:          DefaultListenAddr,
	}
}

// Load builds a Config by combining defaults, an optional .env file, environment variables, and CLI flags.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	if err := loadEnvFile(cmd); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, cmd); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadEnvFile loads an explicit --env-file, or ./.env when present.
// Variables already set in the environment win over the file.
func loadEnvFile(cmd *cobra.Command) error {
	if cmd != nil {
		if f := cmd.Flags().Lookup("env-file"); f != nil && f.Value.String() != "" {
			if err := godotenv.Load(f.Value.String()); err != nil {
				return fmt.Errorf("failed to load env file: %w", err)
			}
			return nil
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getenv("JSON_LOG"); v != "" {
		cfg.JSONLog = v == "1" || strings.EqualFold(v, "true")
	}
	if v := getenv("PAGE_LOAD_TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPAGE_LOAD_TIMEOUT: %w", envPrefix, err)
		}
		cfg.PageLoadTimeout = time.Duration(secs) * time.Second
	}
	if err := envMillis("SCROLL_DELAY_MIN", &cfg.ScrollDelay.Min); err != nil {
		return err
	}
	if err := envMillis("SCROLL_DELAY_MAX", &cfg.ScrollDelay.Max); err != nil {
		return err
	}
	if err := envMillis("INITIAL_DELAY_MIN", &cfg.InitialDelay.Min); err != nil {
		return err
	}
	if err := envMillis("INITIAL_DELAY_MAX", &cfg.InitialDelay.Max); err != nil {
		return err
	}
	if err := envMillis("POLL_INTERVAL", &cfg.PollInterval); err != nil {
		return err
	}
	if err := envInt("NO_CHANGE_ITERATIONS", &cfg.NoChangeThreshold); err != nil {
		return err
	}
	if err := envInt("MAX_SCROLL_ITERATIONS", &cfg.MaxScrollIterations); err != nil {
		return err
	}
	if v := getenv("CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := getenv("REMOTE_URL"); v != "" {
		cfg.RemoteURL = v
	}
	if v := getenv("USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := getenv("PROXIES"); v != "" {
		cfg.Proxies = splitList(v)
	}
	if v := getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := getenv("DEBUG_PREFIX"); v != "" {
		cfg.DebugPrefix = v
	}
	if v := getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	return nil
}

func applyFlags(cfg *Config, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}
	flags := cmd.Flags()

	if f := flags.Lookup("verbose"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "debug"
	}
	if f := flags.Lookup("quiet"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "error"
	}
	if f := flags.Lookup("json"); f != nil && f.Value.String() == "true" {
		cfg.JSONLog = true
	}
	if f := flags.Lookup("timeout"); f != nil && f.Value.String() != "" {
		d, err := time.ParseDuration(f.Value.String())
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		cfg.PageLoadTimeout = d
	}
	if f := flags.Lookup("scroll-delay"); f != nil && f.Value.String() != "" {
		r, err := ParseDelayRange(f.Value.String())
		if err != nil {
			return err
		}
		cfg.ScrollDelay = r
	}
	if f := flags.Lookup("initial-delay"); f != nil && f.Value.String() != "" {
		r, err := ParseDelayRange(f.Value.String())
		if err != nil {
			return err
		}
		cfg.InitialDelay = r
	}
	if n, err := flags.GetInt("no-change"); err == nil && n > 0 {
		cfg.NoChangeThreshold = n
	}
	if n, err := flags.GetInt("max-scrolls"); err == nil && n >= 0 {
		cfg.MaxScrollIterations = n
	}
	if f := flags.Lookup("chrome-path"); f != nil && f.Value.String() != "" {
		cfg.ChromePath = f.Value.String()
	}
	if f := flags.Lookup("remote-url"); f != nil && f.Value.String() != "" {
		cfg.RemoteURL = f.Value.String()
	}
	if f := flags.Lookup("user-agent"); f != nil && f.Value.String() != "" {
		cfg.UserAgent = f.Value.String()
	}
	if proxies, err := flags.GetStringSlice("proxy"); err == nil && len(proxies) > 0 {
		cfg.Proxies = proxies
	}
	if f := flags.Lookup("output-dir"); f != nil && f.Value.String() != "" {
		cfg.OutputDir = f.Value.String()
	}
	if f := flags.Lookup("headful"); f != nil && f.Value.String() == "true" {
		cfg.BrowserHeadless = false
	}
	return nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

func envMillis(key string, dst *time.Duration) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	*dst = time.Duration(ms) * time.Millisecond
	return nil
}

func envInt(key string, dst *int) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
