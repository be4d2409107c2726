package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel            = "info"
	DefaultJSONLog             = false
	DefaultPageLoadTimeout     = 30 * time.Second
	DefaultScrollDelayMin      = 1500 * time.Millisecond
	DefaultScrollDelayMax      = 2500 * time.Millisecond
	DefaultInitialDelayMin     = 2000 * time.Millisecond
	DefaultInitialDelayMax     = 4000 * time.Millisecond
	DefaultNoChangeThreshold   = 5
	MinNoChangeThreshold       = 2 // a run of one count proves nothing
	DefaultMaxScrollIterations = 0 // unbounded
	DefaultPollInterval        = 500 * time.Millisecond
	DefaultBrowserHeadless     = true
	DefaultOutputDir           = "./output"
	DefaultDebugPrefix         = "error"
	DefaultListenAddr          = ":8080"
	DefaultNavigateRPS         = 1.0
	DefaultNavigateBurst       = 2
	DefaultBatchConcurrency    = 2
	DefaultMaxBatchConcurrency = 10
	DefaultUserAgent           = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// envPrefix namespaces every environment override.
const envPrefix = "SCRAPER_"
