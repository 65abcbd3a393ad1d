package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/syllacal/syllacal/internal/api"
	"github.com/syllacal/syllacal/internal/config"
	"github.com/syllacal/syllacal/internal/pdftext"
	"github.com/syllacal/syllacal/internal/schedule"
)

var (
	extractSemesterStart string
	extractSemesterEnd   string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf> [more.pdf...]",
	Short: "Extract course schedules from syllabus PDFs locally",
	Long: `Extract runs the schedule pipeline on local files without a server:
validate each PDF, pull its text, and scan it for meeting times and
deadlines. Results are printed as structured records; a bad file is
reported and does not stop the rest of the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}))
		extractor := &schedule.Extractor{Logger: logger}

		if extractSemesterStart != "" || extractSemesterEnd != "" {
			sem := config.SemesterConfig{Start: extractSemesterStart, End: extractSemesterEnd}
			start, end, ok, err := sem.Dates()
			if err != nil {
				return err
			}
			if ok {
				extractor.SemesterStart = start
				extractor.SemesterEnd = end
			}
		}

		type fileResult struct {
			Filename string           `json:"filename" yaml:"filename"`
			Course   *schedule.Course `json:"course,omitempty" yaml:"course,omitempty"`
			Error    string           `json:"error,omitempty" yaml:"error,omitempty"`
		}
		results := make([]fileResult, 0, len(args))
		for _, path := range args {
			res := fileResult{Filename: path}
			if err := extractLocal(extractor, path, &res.Course); err != nil {
				res.Error = err.Error()
			}
			results = append(results, res)
		}

		return api.Output(results)
	},
}

func extractLocal(extractor *schedule.Extractor, path string, out **schedule.Course) error {
	if err := pdftext.Validate(path); err != nil {
		return err
	}
	text, err := pdftext.Extract(path)
	if err != nil {
		return fmt.Errorf("text extraction failed: %w", err)
	}
	course, err := extractor.Extract(path, text)
	if err != nil {
		return err
	}
	*out = &course
	return nil
}

func init() {
	extractCmd.Flags().StringVar(&extractSemesterStart, "semester-start", "", "semester start date (YYYY-MM-DD)")
	extractCmd.Flags().StringVar(&extractSemesterEnd, "semester-end", "", "semester end date (YYYY-MM-DD)")

	rootCmd.AddCommand(extractCmd)
}
