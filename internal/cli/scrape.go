package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kutoven/wbreviews/internal/engine"
	"github.com/kutoven/wbreviews/internal/ui"
	"github.com/kutoven/wbreviews/pkg/models"
)

var (
	scrapeOutput      string
	scrapeConcurrency int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url> [url...]",
	Short: "Scrape reviews from one or more product feedback pages",
	Long: `Opens each feedback page in its own headless Chrome session, waits for the
review feed, scrolls until no new reviews appear and writes one CSV per page.

Every URL gets a fresh browser session. With several URLs, jobs run in
parallel up to --concurrency.`,
	Example: `  # Scrape one product into the default output directory
  wbreviews scrape "https://www.wildberries.ru/catalog/521896959/feedbacks?imtId=234818091"

  # Choose the CSV path
  wbreviews scrape "https://www.wildberries.ru/catalog/521896959/feedbacks" -o reviews.csv

  # Several products, two browsers at a time
  wbreviews scrape URL1 URL2 URL3 --concurrency=2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "CSV path (single URL only)")
	scrapeCmd.Flags().IntVarP(&scrapeConcurrency, "concurrency", "c", 2, "Parallel browser sessions when scraping several URLs (1-10)")
}

func runScrape(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	if scrapeOutput != "" && len(args) > 1 {
		return fmt.Errorf("--output can only be used with a single URL")
	}

	if len(args) > 1 {
		return runScrapeBatch(cmd, args)
	}

	job, err := a.Runner.NewJob(args[0])
	if err != nil {
		return err
	}
	if scrapeOutput != "" {
		job.OutputPath = scrapeOutput
	}

	var progress func(int)
	// Debug logs would tear the spinner line; quiet mode wants no chrome at all.
	lvl := zerolog.GlobalLevel()
	if ui.Interactive() && lvl > zerolog.DebugLevel && lvl < zerolog.ErrorLevel && !a.Config.JSONLog {
		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Loading reviews"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		progress = func(n int) { _ = bar.Set(n) }
	}

	res, err := a.Runner.Run(cmd.Context(), job, progress)
	if err != nil {
		printFailureHint(err, a.Config.OutputDir)
		return err
	}

	printJobSummary(res)
	return nil
}

func runScrapeBatch(cmd *cobra.Command, urls []string) error {
	a := GetAppFromCmd(cmd)

	fmt.Printf("%s %s\n\n", ui.Info("Scraping"), ui.Bold(fmt.Sprintf("%d pages with %d browser(s)...", len(urls), scrapeConcurrency)))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"URL", "Reviews", "Skipped", "Duration", "Result"})

	failed := 0
	for res := range a.Runner.RunBatch(cmd.Context(), urls, scrapeConcurrency) {
		outcome := ui.Success(filepath.Base(res.Job.OutputPath))
		if !res.Succeeded {
			failed++
			outcome = ui.Error(shortError(res.Error))
		}
		t.AppendRow(table.Row{
			res.Job.URL,
			res.Reviews,
			res.Skipped,
			res.Duration.Round(time.Second),
			outcome,
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()

	if failed > 0 {
		return fmt.Errorf("%d of %d job(s) failed", failed, len(urls))
	}
	return nil
}

func printJobSummary(res models.JobResult) {
	fmt.Printf("\n%s\n", ui.Bold("Summary:"))
	fmt.Printf("  %s %s\n", ui.Bold("Reviews:"), ui.Success(fmt.Sprintf("%d", res.Reviews)))
	if res.Skipped > 0 {
		fmt.Printf("  %s %s\n", ui.Bold("Skipped:"), ui.Warn(fmt.Sprintf("%d", res.Skipped)))
	}
	fmt.Printf("  %s %s\n", ui.Bold("Duration:"), res.Duration.Round(time.Millisecond))
	fmt.Printf("  %s %s\n", ui.Bold("Saved to:"), ui.Highlight(res.Job.OutputPath))
}

func printFailureHint(err error, outputDir string) {
	switch engine.CodeOf(err) {
	case engine.ErrCodeDriverInit:
		fmt.Fprintln(os.Stderr, ui.Info("Chrome could not be started. Set --chrome-path or SCRAPER_CHROME_PATH, or point --remote-url at a running browser."))
	case engine.ErrCodePageLoadTimeout:
		fmt.Fprintln(os.Stderr, ui.Info("Reviews never appeared. A screenshot and page source were saved to "+outputDir+"."))
	}
}

func shortError(err error) string {
	if err == nil {
		return "failed"
	}
	if code := engine.CodeOf(err); code != "" {
		return string(code)
	}
	msg := err.Error()
	if len(msg) > 60 {
		msg = msg[:57] + "..."
	}
	return msg
}
