// Package gemini is the alternate extraction path: it sends raw
// syllabus text to Google's generative model under a fixed prompt
// contract and parses the semicolon-delimited reply into a structured
// weekly meeting. One best-effort attempt per invocation; retries are
// the caller's business.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrExtractionTimeout means the caller-imposed deadline expired
// before the model replied.
var ErrExtractionTimeout = errors.New("model extraction timed out")

// instruction is the fixed prompt contract. The reply shape and the
// 0=Monday day-index convention are load-bearing; ParseReply depends
// on both.
const instruction = "Please read this syllabus and find me the days that I have class and where, " +
	"and the start times and end times on those specific days. Please give your response in the format: " +
	"Class Name; [Day of the Week 1 (e.g., Monday = 0, Sunday = 6), Second Day of the Week (if applicable),... n-th Day of the Week]; " +
	"Start Time (HHMMSS); End Time (HHMMSS); Location, and Number of Weeks the class meets " +
	"(try your best to estimate if not specified, e.g. look for a final exam date and compare it to today's date). " +
	"Give each component separately. Don't add anything extra. Here is the syllabus text: "

// Config holds the model credential and tuning for the adapter.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Client wraps one generative model session.
type Client struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Gemini-backed extraction client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{
		client:  client,
		model:   client.GenerativeModel(cfg.Model),
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// ExtractMeeting sends the syllabus text to the model and parses the
// reply. The raw reply is returned alongside the result so callers
// can surface it in diagnostics. Deadline expiry maps to
// ErrExtractionTimeout.
func (c *Client) ExtractMeeting(ctx context.Context, syllabusText string) (WeeklyMeeting, string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(instruction+syllabusText))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return WeeklyMeeting{}, "", ErrExtractionTimeout
		}
		return WeeklyMeeting{}, "", fmt.Errorf("gemini: generate: %w", err)
	}

	raw := collectText(resp)
	c.logger.Debug("model reply", "reply", raw)

	meeting, err := ParseReply(raw)
	if err != nil {
		return WeeklyMeeting{}, raw, err
	}
	return meeting, raw, nil
}

// collectText concatenates the text parts of the first candidate.
func collectText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	return sb.String()
}
