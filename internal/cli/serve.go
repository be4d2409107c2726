package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/kutoven/wbreviews/internal/ui"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the HTTP API. GET /scrape?url=... accepts a job and returns at once;
the scrape runs in the background. GET /status lists generated CSV files.

On SIGINT/SIGTERM the server stops accepting requests and waits for running
jobs before exiting.`,
	Example: `  wbreviews serve --addr :8080
  curl "localhost:8080/scrape?url=https://www.wildberries.ru/catalog/521896959/feedbacks"
  curl localhost:8080/status`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from SCRAPER_LISTEN_ADDR or :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	addr := serveAddr
	if addr == "" {
		addr = a.Config.ListenAddr
	}

	if a.Config.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Server().Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", addr).Msg("HTTP API listening")
		errCh <- srv.ListenAndServe()
	}()
	fmt.Printf("%s %s\n", ui.Info("Listening on"), ui.Highlight(addr))

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-cmd.Context().Done():
	}

	a.Logger.Info().Msg("Shutting down HTTP API")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
