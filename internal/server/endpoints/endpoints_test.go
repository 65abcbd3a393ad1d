package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/syllacal/syllacal/internal/config"
	"github.com/syllacal/syllacal/internal/ical"
	"github.com/syllacal/syllacal/internal/schedule"
	"github.com/syllacal/syllacal/internal/svcctx"
)

func testServices(t *testing.T, cfg config.Config) *svcctx.Services {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	n := 0
	return &svcctx.Services{
		Extractor: &schedule.Extractor{},
		Builder: &ical.Builder{
			Location: loc,
			Now: func() time.Time {
				return time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)
			},
			NewUID: func() string {
				n++
				return fmt.Sprintf("uid-%d@test", n)
			},
		},
		Config: config.NewStatic(cfg),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func doRequest(t *testing.T, handler http.HandlerFunc, req *http.Request, services *svcctx.Services) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ctx := svcctx.WithServices(context.Background(), services)
	handler(rec, req.WithContext(ctx))
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	ep := &HealthEndpoint{}
	method, path, handler := ep.Route()
	if method != "GET" || path != "/health" {
		t.Fatalf("route = %s %s", method, path)
	}

	req := httptest.NewRequest("GET", "/health", nil)
	rec := doRequest(t, handler, req, testServices(t, config.DefaultConfig()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q", resp.Status)
	}
	if resp.LLM != "not_configured" {
		t.Errorf("LLM = %q, want not_configured without a client", resp.LLM)
	}
}

const icsRequestBody = `{
  "courses": [
    {
      "name": "Intro to Systems",
      "meeting_blocks": [
        {
          "days": ["Mon", "Wed", "Fri"],
          "start_local": "13:30",
          "end_local": "14:20",
          "start_date": "2025-01-06",
          "end_date": "2025-04-25",
          "location": "ENG 201",
          "type": "lecture"
        }
      ],
      "assessments": []
    }
  ],
  "filters": {
    "includeLectures": true,
    "includeAssignmentsAndExams": true,
    "includeStudySessions": "none"
  }
}`

func TestICSEndpoint(t *testing.T) {
	_, _, handler := (&ICSEndpoint{}).Route()

	req := httptest.NewRequest("POST", "/api/ics", strings.NewReader(icsRequestBody))
	rec := doRequest(t, handler, req, testServices(t, config.DefaultConfig()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "syllacal.ics") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR;UNTIL=20250425T182000Z",
		"SUMMARY:Intro to Systems Lecture",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestICSEndpointRejectsMalformedBody(t *testing.T) {
	_, _, handler := (&ICSEndpoint{}).Route()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"not json", `{"courses": [`, http.StatusUnprocessableEntity},
		{"missing filters", `{"courses": []}`, http.StatusUnprocessableEntity},
		{"bad weekday name", strings.Replace(icsRequestBody, `"Mon"`, `"Monday"`, 1), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/ics", strings.NewReader(tt.body))
			rec := doRequest(t, handler, req, testServices(t, config.DefaultConfig()))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", rec.Code, tt.want, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Error == "" {
				t.Errorf("expected error payload, got %s", rec.Body.String())
			}
		})
	}
}

func TestPreviewEndpoint(t *testing.T) {
	_, _, handler := (&PreviewEndpoint{}).Route()

	body := `{
	  "courses": [
	    {
	      "name": "Systems",
	      "meeting_blocks": [
	        {
	          "days": ["Mon", "Wed"],
	          "start_local": "10:00",
	          "end_local": "11:00",
	          "start_date": "2025-01-06",
	          "end_date": "2025-01-31"
	        }
	      ],
	      "assessments": []
	    }
	  ],
	  "from": "2025-01-06",
	  "to": "2025-01-14"
	}`
	req := httptest.NewRequest("POST", "/api/preview", strings.NewReader(body))
	rec := doRequest(t, handler, req, testServices(t, config.DefaultConfig()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp PreviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Mondays Jan 6 and 13, Wednesday Jan 8.
	if len(resp.Occurrences) != 3 {
		t.Errorf("got %d occurrences, want 3: %+v", len(resp.Occurrences), resp.Occurrences)
	}
}

func TestPreviewEndpointRejectsInvertedWindow(t *testing.T) {
	_, _, handler := (&PreviewEndpoint{}).Route()

	body := `{"courses": [], "from": "2025-01-14", "to": "2025-01-06"}`
	req := httptest.NewRequest("POST", "/api/preview", strings.NewReader(body))
	rec := doRequest(t, handler, req, testServices(t, config.DefaultConfig()))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func multipartUpload(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestParseEndpointRejectsNonPDF(t *testing.T) {
	_, _, handler := (&ParseEndpoint{}).Route()

	buf, ct := multipartUpload(t, "files", map[string]string{"notes.txt": "not a pdf"})
	req := httptest.NewRequest("POST", "/api/parse", buf)
	req.Header.Set("Content-Type", ct)
	rec := doRequest(t, handler, req, testServices(t, config.DefaultConfig()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp ParseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(resp.Results))
	}
	res := resp.Results[0]
	if res.Filename != "notes.txt" {
		t.Errorf("Filename = %q", res.Filename)
	}
	if res.Course != nil {
		t.Error("non-PDF produced a course")
	}
	if !strings.Contains(res.Error, "not a readable PDF") {
		t.Errorf("Error = %q", res.Error)
	}
}

func TestParseEndpointBatchIsolation(t *testing.T) {
	_, _, handler := (&ParseEndpoint{}).Route()

	buf, ct := multipartUpload(t, "files", map[string]string{
		"a.txt": "junk",
		"b.txt": "junk",
	})
	req := httptest.NewRequest("POST", "/api/parse", buf)
	req.Header.Set("Content-Type", ct)
	rec := doRequest(t, handler, req, testServices(t, config.DefaultConfig()))

	if rec.Code != http.StatusOK {
		t.Fatalf("batch with bad files must still return 200, got %d", rec.Code)
	}
	var resp ParseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}
	for _, res := range resp.Results {
		if res.Error == "" {
			t.Errorf("result %q has no error", res.Filename)
		}
	}
}

func TestParseEndpointNoFiles(t *testing.T) {
	_, _, handler := (&ParseEndpoint{}).Route()

	buf, ct := multipartUpload(t, "files", nil)
	req := httptest.NewRequest("POST", "/api/parse", buf)
	req.Header.Set("Content-Type", ct)
	rec := doRequest(t, handler, req, testServices(t, config.DefaultConfig()))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestParseEndpointTooManyFiles(t *testing.T) {
	_, _, handler := (&ParseEndpoint{}).Route()

	cfg := config.DefaultConfig()
	cfg.Upload.MaxFiles = 1

	buf, ct := multipartUpload(t, "files", map[string]string{
		"a.pdf": "x",
		"b.pdf": "x",
	})
	req := httptest.NewRequest("POST", "/api/parse", buf)
	req.Header.Set("Content-Type", ct)
	rec := doRequest(t, handler, req, testServices(t, cfg))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestParseEndpointRejectsOversizedFile(t *testing.T) {
	_, _, handler := (&ParseEndpoint{}).Route()

	cfg := config.DefaultConfig()
	cfg.Upload.MaxFileBytes = 8

	buf, ct := multipartUpload(t, "files", map[string]string{
		"big.pdf": strings.Repeat("x", 64),
	})
	req := httptest.NewRequest("POST", "/api/parse", buf)
	req.Header.Set("Content-Type", ct)
	rec := doRequest(t, handler, req, testServices(t, cfg))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp ParseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(resp.Results))
	}
	res := resp.Results[0]
	if res.Course != nil {
		t.Error("oversized file produced a course")
	}
	if !strings.Contains(res.Error, "upload limit") {
		t.Errorf("Error = %q, want upload limit rejection", res.Error)
	}
}

func TestParseLLMEndpointWithoutClient(t *testing.T) {
	_, _, handler := (&ParseLLMEndpoint{}).Route()

	buf, ct := multipartUpload(t, "files", map[string]string{"syllabus.pdf": "x"})
	req := httptest.NewRequest("POST", "/api/parse/llm", buf)
	req.Header.Set("Content-Type", ct)
	rec := doRequest(t, handler, req, testServices(t, config.DefaultConfig()))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without an LLM client", rec.Code)
	}
}
