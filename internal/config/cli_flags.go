package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Emit logs as JSON")
	cmd.PersistentFlags().String("env-file", "", "Path to a .env file with SCRAPER_* settings")
	cmd.PersistentFlags().String("timeout", "", "Page load timeout (e.g. 30s)")
	cmd.PersistentFlags().String("scroll-delay", "", "Scroll delay range in ms, e.g. 1500-2500")
	cmd.PersistentFlags().String("initial-delay", "", "Initial settle delay range in ms, e.g. 2000-4000")
	cmd.PersistentFlags().Int("no-change", 0, "Consecutive unchanged scrolls that end loading")
	cmd.PersistentFlags().Int("max-scrolls", -1, "Upper bound on scroll iterations (0 = unbounded)")
	cmd.PersistentFlags().String("chrome-path", "", "Chrome/Chromium executable")
	cmd.PersistentFlags().String("remote-url", "", "DevTools websocket URL of an already running browser")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().StringSlice("proxy", nil, "Proxy for browser sessions (repeatable, rotated per job)")
	cmd.PersistentFlags().String("output-dir", "", "Directory for generated CSV files")
	cmd.PersistentFlags().Bool("headful", false, "Show the browser window")
}
