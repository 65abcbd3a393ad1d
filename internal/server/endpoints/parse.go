package endpoints

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/syllacal/syllacal/internal/api"
	"github.com/syllacal/syllacal/internal/pdftext"
	"github.com/syllacal/syllacal/internal/schedule"
	"github.com/syllacal/syllacal/internal/svcctx"
)

// FileResult is the outcome for one uploaded syllabus. Exactly one of
// Course and Error is set; a bad file never fails its batch.
type FileResult struct {
	Filename string           `json:"filename"`
	Course   *schedule.Course `json:"course,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// ParseResponse is the response for the batch parse endpoint.
type ParseResponse struct {
	Results []FileResult `json:"results"`
}

// ParseEndpoint handles POST /api/parse with multipart PDF uploads.
type ParseEndpoint struct{}

var _ api.Endpoint = (*ParseEndpoint)(nil)

func (e *ParseEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/parse", e.handler
}

func (e *ParseEndpoint) RequiresInit() bool { return true }

func (e *ParseEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	cm := svcctx.ConfigFrom(r.Context())
	if cm == nil {
		writeError(w, http.StatusServiceUnavailable, "config not initialized")
		return
	}
	cfg := cm.Get()
	maxBytes := cfg.Upload.MaxFileBytes
	if maxBytes > 0 {
		// Request-level cap: the per-file limit across the whole batch
		// plus form overhead. Individual files are checked again below
		// so one oversized upload reads as a per-file error, not a
		// truncated request.
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

	extractor := svcctx.ExtractorFrom(r.Context())
	if extractor == nil {
		writeError(w, http.StatusServiceUnavailable, "extractor not initialized")
		return
	}
	logger := svcctx.LoggerFrom(r.Context())

	tempDir, err := os.MkdirTemp("", "syllacal-upload-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create temp dir: %v", err))
		return
	}
	defer os.RemoveAll(tempDir)

	results := make([]FileResult, len(files))

	workers := cfg.Upload.Workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, fh := range files {
		wg.Add(1)
		go func(i int, fh *multipart.FileHeader) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = parseOne(extractor, tempDir, i, fh, maxBytes)
			if results[i].Error != "" && logger != nil {
				logger.Warn("syllabus rejected", "filename", fh.Filename, "error", results[i].Error)
			}
		}(i, fh)
	}
	wg.Wait()

	writeJSON(w, http.StatusOK, ParseResponse{Results: results})
}

// parseOne saves one upload to disk, validates it, and runs the
// extraction pipeline. Failures are reported per file.
func parseOne(extractor *schedule.Extractor, tempDir string, i int, fh *multipart.FileHeader, maxBytes int64) FileResult {
	filename := fh.Filename
	res := FileResult{Filename: filename}

	if maxBytes > 0 && fh.Size > maxBytes {
		res.Error = fmt.Sprintf("%s exceeds the %d byte upload limit", filename, maxBytes)
		return res
	}

	f, err := fh.Open()
	if err != nil {
		res.Error = fmt.Sprintf("failed to open upload: %v", err)
		return res
	}
	defer f.Close()

	// Index prefix avoids collisions between identically named uploads.
	destPath := filepath.Join(tempDir, fmt.Sprintf("%d-%s", i, filepath.Base(filename)))
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
		if errors.Is(err, pdftext.ErrInvalidFileKind) {
			res.Error = fmt.Sprintf("%s is not a readable PDF", filename)
		} else {
			res.Error = err.Error()
		}
		return res
	}

	text, err := pdftext.Extract(destPath)
	if err != nil {
		res.Error = fmt.Sprintf("text extraction failed: %v", err)
		return res
	}

	course, err := extractor.Extract(filename, text)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Course = &course
	return res
}

func (e *ParseEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file.pdf> [more.pdf...]",
		Short: "Extract course schedules from syllabus PDFs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ParseResponse
			if err := client.PostFiles(cmd.Context(), "/api/parse", "files", args, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
