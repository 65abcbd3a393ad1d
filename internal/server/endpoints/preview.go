package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/syllacal/syllacal/internal/api"
	"github.com/syllacal/syllacal/internal/ical"
	"github.com/syllacal/syllacal/internal/schedule"
	"github.com/syllacal/syllacal/internal/schema"
	"github.com/syllacal/syllacal/internal/svcctx"
)

// PreviewRequest asks for the concrete event instances between two
// dates, for rendering a calendar preview without generating a file.
type PreviewRequest struct {
	Courses []schedule.Course `json:"courses"`
	From    string            `json:"from"`
	To      string            `json:"to"`
}

// PreviewResponse lists the occurrences inside the window.
type PreviewResponse struct {
	Occurrences []ical.Occurrence `json:"occurrences"`
}

// PreviewEndpoint handles POST /api/preview.
type PreviewEndpoint struct{}

var _ api.Endpoint = (*PreviewEndpoint)(nil)

func (e *PreviewEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/preview", e.handler
}

func (e *PreviewEndpoint) RequiresInit() bool { return true }

func (e *PreviewEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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
	if err := schema.ValidatePreviewRequest(body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request: %v", err))
		return
	}

	var req PreviewRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	from, err := parseISODate(req.From)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid from date: %v", err))
		return
	}
	to, err := parseISODate(req.To)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid to date: %v", err))
		return
	}

	occ, err := builder.Expand(req.Courses, from, to)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if occ == nil {
		occ = []ical.Occurrence{}
	}

	writeJSON(w, http.StatusOK, PreviewResponse{Occurrences: occ})
}

func parseISODate(s string) (schedule.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return schedule.Date{}, fmt.Errorf("%q is not a YYYY-MM-DD date", s)
	}
	return schedule.Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (e *PreviewEndpoint) Command(getServerURL func() string) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "preview <courses.json>",
		Short: "List concrete event occurrences in a date window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			var courses []schedule.Course
			if err := json.Unmarshal(body, &courses); err != nil {
				return fmt.Errorf("failed to decode %s: %w", args[0], err)
			}

			client := api.NewClient(getServerURL())
			var resp PreviewResponse
			req := PreviewRequest{Courses: courses, From: from, To: to}
			if err := client.Post(cmd.Context(), "/api/preview", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "window end (YYYY-MM-DD)")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}
