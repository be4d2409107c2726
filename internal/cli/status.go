package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/kutoven/wbreviews/internal/artifacts"
	"github.com/kutoven/wbreviews/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List generated CSV files, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return fmt.Errorf("application not initialized")
		}

		files, err := a.Artifacts.List()
		if errors.Is(err, artifacts.ErrNoOutputDir) {
			return fmt.Errorf("output directory %s does not exist", a.Config.OutputDir)
		}
		if err != nil {
			return err
		}

		if len(files) == 0 {
			fmt.Println(ui.Info("No CSV files found in " + a.Config.OutputDir))
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"File", "Size", "Modified"})
		for _, f := range files {
			t.AppendRow(table.Row{f.Name, formatBytes(f.SizeBytes), f.ModTime.Format("2006-01-02 15:04:05")})
		}
		t.AppendFooter(table.Row{fmt.Sprintf("%d file(s)", len(files)), "", ""})
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// formatBytes formats byte count as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
