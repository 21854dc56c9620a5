package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/scoreloom/internal/report"
	runpkg "github.com/KaramelBytes/scoreloom/internal/run"
	"github.com/KaramelBytes/scoreloom/internal/utils"
	"github.com/spf13/cobra"
)

var (
	reportTitle  string
	reportFormat string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report [run-dir]",
	Short: "Re-render the assessment report for a completed run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		root, err := utils.FindRunRoot(dir)
		if err != nil {
			return err
		}
		r, err := runpkg.LoadRun(root)
		if err != nil {
			return err
		}
		bundlePath := r.ArtifactPath("artifacts")
		if bundlePath == "" {
			return fmt.Errorf("run %s has no artifact bundle; re-run the pipeline first", r.Name)
		}
		data, err := os.ReadFile(bundlePath)
		if err != nil {
			return fmt.Errorf("read artifact bundle: %w", err)
		}
		arts := &report.Artifacts{}
		if err := json.Unmarshal(data, arts); err != nil {
			return fmt.Errorf("parse artifact bundle: %w", err)
		}
		if reportTitle != "" {
			arts.Title = reportTitle
		}

		out := reportOutput
		switch reportFormat {
		case "html":
			if out == "" {
				out = filepath.Join(root, "report.html")
			}
			html, err := report.RenderHTML(arts)
			if err != nil {
				return err
			}
			if err := utils.SafeWriteFile(out, html); err != nil {
				return err
			}
			r.AddArtifact("report_html", out)
		case "markdown", "md":
			if out == "" {
				out = filepath.Join(root, "report.md")
			}
			if err := utils.SafeWriteFile(out, []byte(report.RenderMarkdown(arts))); err != nil {
				return err
			}
			r.AddArtifact("report_md", out)
		case "xlsx":
			if out == "" {
				out = filepath.Join(root, "metrics.xlsx")
			}
			if err := report.WriteXLSX(out, arts); err != nil {
				return err
			}
			r.AddArtifact("metrics_xlsx", out)
		default:
			return fmt.Errorf("unknown format %q (want html, markdown, or xlsx)", reportFormat)
		}
		if err := r.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Report written: %s\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportTitle, "title", "", "override the report title")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "html", "output format: html|markdown|xlsx")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output path (default inside the run directory)")
}
