package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syllacal/syllacal/internal/ical"
	"github.com/syllacal/syllacal/internal/schedule"
	"github.com/syllacal/syllacal/internal/schema"
)

var (
	buildOut          string
	buildTimezone     string
	buildLectures     bool
	buildAssessments  bool
	buildStudyMode    string
	buildStudyCourses []string
)

// buildRequest mirrors the calendar generation payload accepted by the
// server, so the same records file works locally and over HTTP.
type buildRequest struct {
	Courses    []schedule.Course     `json:"courses"`
	StudyTasks []schedule.StudyTask  `json:"study_tasks"`
	Filters    schedule.FilterConfig `json:"filters"`
}

var buildCmd = &cobra.Command{
	Use:   "build <request.json|request.yaml>",
	Short: "Generate a calendar file from course records locally",
	Long: `Build reads course records, study tasks, and filters from a JSON or
YAML file and writes an iCalendar file without contacting a server.
Filter flags override the values in the records file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := readRequestJSON(args[0])
		if err != nil {
			return err
		}
		if err := schema.ValidateICSRequest(body); err != nil {
			return fmt.Errorf("invalid request: %w", err)
		}

		var req buildRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return fmt.Errorf("failed to decode %s: %w", args[0], err)
		}
		for i := range req.Courses {
			if req.Courses[i].ID == "" {
				req.Courses[i].ID = schedule.CourseID(req.Courses[i].Name, fmt.Sprintf("course-%d", i+1))
			}
		}

		if cmd.Flags().Changed("lectures") {
			req.Filters.IncludeLectures = buildLectures
		}
		if cmd.Flags().Changed("assessments") {
			req.Filters.IncludeAssignmentsAndExams = buildAssessments
		}
		if cmd.Flags().Changed("study-sessions") {
			req.Filters.IncludeStudySessions = schedule.StudySessionMode(buildStudyMode)
		}
		if cmd.Flags().Changed("study-courses") {
			req.Filters.StudyCourses = buildStudyCourses
		}

		loc, err := time.LoadLocation(buildTimezone)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", buildTimezone, err)
		}

		builder := &ical.Builder{Location: loc}
		cal, err := builder.Build(req.Courses, req.StudyTasks, req.Filters)
		if err != nil {
			return err
		}

		if err := os.WriteFile(buildOut, []byte(cal.Serialize()), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", buildOut, err)
		}
		fmt.Printf("Wrote %s\n", buildOut)
		return nil
	},
}

// readRequestJSON loads a records file, converting YAML to JSON so the
// same schema validation applies to both formats.
func readRequestJSON(path string) ([]byte, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	ext := filepath.Ext(path)
	if ext != ".yaml" && ext != ".yml" {
		return body, nil
	}
	var doc any
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	converted, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", path, err)
	}
	return converted, nil
}

func init() {
	buildCmd.Flags().StringVar(&buildOut, "out", "syllacal.ics", "output path")
	buildCmd.Flags().StringVar(&buildTimezone, "timezone", ical.DefaultTimezone, "IANA timezone for local times")
	buildCmd.Flags().BoolVar(&buildLectures, "lectures", true, "include recurring lecture events")
	buildCmd.Flags().BoolVar(&buildAssessments, "assessments", true, "include assignment and exam events")
	buildCmd.Flags().StringVar(&buildStudyMode, "study-sessions", "", "study session mode: none, all, or selectedCourses")
	buildCmd.Flags().StringSliceVar(&buildStudyCourses, "study-courses", nil, "course ids for the selectedCourses study mode")

	rootCmd.AddCommand(buildCmd)
}
