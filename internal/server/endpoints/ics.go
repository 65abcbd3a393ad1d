package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/syllacal/syllacal/internal/api"
	"github.com/syllacal/syllacal/internal/schedule"
	"github.com/syllacal/syllacal/internal/schema"
	"github.com/syllacal/syllacal/internal/svcctx"
)

// ICSRequest is the calendar generation payload.
type ICSRequest struct {
	Courses    []schedule.Course     `json:"courses"`
	StudyTasks []schedule.StudyTask  `json:"study_tasks"`
	Filters    schedule.FilterConfig `json:"filters"`
}

// ICSEndpoint handles POST /api/ics: structured course records in,
// an iCalendar document out.
type ICSEndpoint struct{}

var _ api.Endpoint = (*ICSEndpoint)(nil)

func (e *ICSEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/ics", e.handler
}

func (e *ICSEndpoint) RequiresInit() bool { return true }

func (e *ICSEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	builder := svcctx.BuilderFrom(r.Context())
	if builder == nil {
		writeError(w, http.StatusServiceUnavailable, "calendar builder not initialized")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 4<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read body: %v", err))
		return
	}
	if err := schema.ValidateICSRequest(body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request: %v", err))
		return
	}

	var req ICSRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err))
		return
	}
	for i := range req.Courses {
		if req.Courses[i].ID == "" {
			req.Courses[i].ID = schedule.CourseID(req.Courses[i].Name, fmt.Sprintf("course-%d", i+1))
		}
	}

	cal, err := builder.Build(req.Courses, req.StudyTasks, req.Filters)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="syllacal.ics"`)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, cal.Serialize())
}

func (e *ICSEndpoint) Command(getServerURL func() string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "ics <request.json>",
		Short: "Generate a calendar file from course records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			var req json.RawMessage = body

			client := api.NewClient(getServerURL())
			data, err := client.PostRaw(cmd.Context(), "/api/ics", req)
			if err != nil {
				return err
			}
			if out == "" {
				out = "syllacal.ics"
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Printf("Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output path (default syllacal.ics)")
	return cmd
}
