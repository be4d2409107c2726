package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kutoven/wbreviews/internal/app"
	"github.com/kutoven/wbreviews/internal/config"
	"github.com/kutoven/wbreviews/internal/ui"
)

// shutdownTimeout bounds how long we wait for running jobs when a command exits.
const shutdownTimeout = 30 * time.Second

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wbreviews",
	Short: "Scrape Wildberries product reviews into CSV files",
	Long: `wbreviews drives a headless Chrome through a product feedback page,
scrolls until every review has rendered and writes them to a CSV file.

Run it once from the command line, or start the HTTP API with "serve".`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. ctx is cancelled on SIGINT/SIGTERM.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Error("Error: ")+err.Error())
		return 1
	}
	return 0
}

func init() {
	config.RegisterFlags(rootCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) { renderHelp(os.Stdout, cmd) })
	rootCmd.SetUsageFunc(func(cmd *cobra.Command) error {
		renderHelp(os.Stderr, cmd)
		return nil
	})

	// Initialize lazily so -h/--help never loads config.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		return nil
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = a.Close(ctx)
	}
}

// renderHelp prints a colorized help page for cmd.
func renderHelp(w io.Writer, cmd *cobra.Command) {
	section := func(title string) {
		fmt.Fprintf(w, "\n%s%s%s\n", ui.ColorBold+ui.ColorWhite, title, ui.ColorReset)
	}

	fmt.Fprintf(w, "\n%s%s%s\n", ui.ColorBold+ui.ColorCyan, strings.ToUpper(cmd.Name()), ui.ColorReset)
	if cmd.Short != "" {
		fmt.Fprintln(w, cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(w, "\n%s\n", cmd.Long)
	}

	section("Usage")
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s\n", ui.Highlight(cmd.UseLine()))
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s %s<command>%s %s[flags]%s\n",
			ui.Highlight(cmd.CommandPath()),
			ui.ColorYellow, ui.ColorReset,
			ui.ColorDim, ui.ColorReset)
	}

	if cmd.HasExample() {
		section("Examples")
		for _, line := range strings.Split(cmd.Example, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case line == "":
			case strings.HasPrefix(line, "#"):
				fmt.Fprintf(w, "  %s%s%s\n", ui.ColorDim, line, ui.ColorReset)
			default:
				fmt.Fprintf(w, "  %s\n", ui.Success("$ "+line))
			}
		}
	}

	if cmd.HasAvailableSubCommands() {
		section("Commands")
		width := 0
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() && len(c.Name()) > width {
				width = len(c.Name())
			}
		}
		for _, c := range cmd.Commands() {
			if !c.IsAvailableCommand() || c.Name() == "help" {
				continue
			}
			fmt.Fprintf(w, "  %s%s%s%s%s\n",
				ui.Highlight(c.Name()),
				strings.Repeat(" ", width-len(c.Name())+2),
				ui.ColorDim, c.Short, ui.ColorReset)
		}
	}

	if cmd.HasAvailableLocalFlags() {
		section("Flags")
		printFlags(w, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		section("Global Flags")
		printFlags(w, cmd.InheritedFlags().FlagUsages())
	}
	fmt.Fprintln(w)
}

// printFlags colors the flag column of pflag's usage output.
func printFlags(w io.Writer, usages string) {
	for _, line := range strings.Split(usages, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "-") {
			fmt.Fprintf(w, "      %s%s%s\n", ui.ColorDim, trimmed, ui.ColorReset)
			continue
		}
		flag, desc, _ := strings.Cut(trimmed, "  ")
		fmt.Fprintf(w, "  %s%-30s%s%s%s%s\n",
			ui.ColorGreen, flag, ui.ColorReset,
			ui.ColorDim, strings.TrimSpace(desc), ui.ColorReset)
	}
}
