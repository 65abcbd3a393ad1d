package endpoints

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/syllacal/syllacal/internal/api"
	"github.com/syllacal/syllacal/internal/gemini"
	"github.com/syllacal/syllacal/internal/ical"
	"github.com/syllacal/syllacal/internal/pdftext"
	"github.com/syllacal/syllacal/internal/svcctx"
)

// LLMFileResult is the outcome for one syllabus on the LLM path. On
// success ICalText carries a complete count-terminated calendar
// document; Response always carries the model's raw reply when one
// was received, so failures stay diagnosable.
type LLMFileResult struct {
	Filename  string `json:"filename"`
	EventName string `json:"event_name,omitempty"`
	ICalText  string `json:"ical_text,omitempty"`
	Response  string `json:"response,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ParseLLMResponse is the response for the LLM parse endpoint.
type ParseLLMResponse struct {
	Results []LLMFileResult `json:"results"`
}

// ParseLLMEndpoint handles POST /api/parse/llm: syllabus PDFs in,
// per-file calendar documents out, with the schedule read by the LLM
// instead of the line-oriented extractor.
type ParseLLMEndpoint struct{}

var _ api.Endpoint = (*ParseLLMEndpoint)(nil)

func (e *ParseLLMEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/parse/llm", e.handler
}

func (e *ParseLLMEndpoint) RequiresInit() bool { return true }

func (e *ParseLLMEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	llm := svcctx.GeminiFrom(r.Context())
	if llm == nil {
		writeError(w, http.StatusServiceUnavailable, "LLM extraction is not configured; set gemini.api_key")
		return
	}
	builder := svcctx.BuilderFrom(r.Context())
	if builder == nil {
		writeError(w, http.StatusServiceUnavailable, "calendar builder not initialized")
		return
	}
	cm := svcctx.ConfigFrom(r.Context())
	if cm == nil {
		writeError(w, http.StatusServiceUnavailable, "config not initialized")
		return
	}
	logger := svcctx.LoggerFrom(r.Context())

	cfg := cm.Get()
	maxBytes := cfg.Upload.MaxFileBytes
	if maxBytes > 0 {
		maxFiles := int64(cfg.Upload.MaxFiles)
		if maxFiles < 1 {
			maxFiles = 1
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes*maxFiles+(1<<20))
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}
	if cfg.Upload.MaxFiles > 0 && len(files) > cfg.Upload.MaxFiles {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("too many files: %d exceeds limit of %d", len(files), cfg.Upload.MaxFiles))
		return
	}

	tempDir, err := os.MkdirTemp("", "syllacal-upload-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create temp dir: %v", err))
		return
	}
	defer os.RemoveAll(tempDir)

	// The LLM call is the bottleneck and rate-limited upstream, so
	// files run sequentially rather than through the worker pool.
	results := make([]LLMFileResult, len(files))
	for i, fh := range files {
		results[i] = parseLLMOne(r, llm, builder, tempDir, i, fh, maxBytes)
		if results[i].Error != "" && logger != nil {
			logger.Warn("LLM extraction failed", "filename", fh.Filename, "error", results[i].Error)
		}
	}

	writeJSON(w, http.StatusOK, ParseLLMResponse{Results: results})
}

func parseLLMOne(r *http.Request, llm *gemini.Client, builder *ical.Builder, tempDir string, i int, fh *multipart.FileHeader, maxBytes int64) LLMFileResult {
	res := LLMFileResult{Filename: fh.Filename}

	if maxBytes > 0 && fh.Size > maxBytes {
		res.Error = fmt.Sprintf("%s exceeds the %d byte upload limit", fh.Filename, maxBytes)
		return res
	}

	f, err := fh.Open()
	if err != nil {
		res.Error = fmt.Sprintf("failed to open upload: %v", err)
		return res
	}
	defer f.Close()

	destPath := filepath.Join(tempDir, fmt.Sprintf("%d-%s", i, filepath.Base(fh.Filename)))
	dst, err := os.Create(destPath)
	if err != nil {
		res.Error = fmt.Sprintf("failed to save upload: %v", err)
		return res
	}
	_, err = io.Copy(dst, f)
	dst.Close()
	if err != nil {
		res.Error = fmt.Sprintf("failed to save upload: %v", err)
		return res
	}

	if err := pdftext.Validate(destPath); err != nil {
		res.Error = fmt.Sprintf("%s is not a readable PDF", fh.Filename)
		return res
	}
	text, err := pdftext.Extract(destPath)
	if err != nil {
		res.Error = fmt.Sprintf("text extraction failed: %v", err)
		return res
	}

	meeting, raw, err := llm.ExtractMeeting(r.Context(), text)
	res.Response = raw
	if err != nil {
		res.Error = err.Error()
		return res
	}

	doc, err := builder.LegacyWeekly(ical.WeeklyEvent{
		Name:     meeting.EventName,
		Days:     meeting.Days,
		Start:    meeting.Start,
		End:      meeting.End,
		Location: meeting.Location,
		Weeks:    meeting.NumWeeks,
	})
	if err != nil {
		res.Error = fmt.Sprintf("LLM returned an unusable schedule: %v", err)
		return res
	}

	res.EventName = meeting.EventName
	res.ICalText = doc
	return res
}

func (e *ParseLLMEndpoint) Command(getServerURL func() string) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "parse-llm <file.pdf> [more.pdf...]",
		Short: "Extract schedules with the LLM and write calendar files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ParseLLMResponse
			if err := client.PostFiles(cmd.Context(), "/api/parse/llm", "files", args, &resp); err != nil {
				return err
			}
			if outDir == "" {
				return api.Output(resp)
			}
			for _, res := range resp.Results {
				if res.Error != "" {
					fmt.Fprintf(os.Stderr, "%s: %s\n", res.Filename, res.Error)
					continue
				}
				base := res.Filename[:len(res.Filename)-len(filepath.Ext(res.Filename))]
				out := filepath.Join(outDir, filepath.Base(base)+".ics")
				if err := os.WriteFile(out, []byte(res.ICalText), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				fmt.Printf("Wrote %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", "", "write per-file .ics documents to this directory instead of printing results")
	return cmd
}
