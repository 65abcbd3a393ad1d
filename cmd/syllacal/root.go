package main

import (
	"github.com/spf13/cobra"

	"github.com/syllacal/syllacal/internal/api"
	"github.com/syllacal/syllacal/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "syllacal",
	Short: "Turn syllabus PDFs into calendar files",
	Long: `syllacal reads course syllabi in PDF form and produces iCalendar
files you can import into any calendar app.

The pipeline includes:
  - PDF text extraction and validation
  - Line-oriented schedule extraction (meeting times, deadlines)
  - Optional LLM-backed extraction for free-form syllabi
  - Calendar generation with recurring lectures, deadlines, and
    study sessions`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.syllacal/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
