// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/syllacal/syllacal/internal/config"
	"github.com/syllacal/syllacal/internal/gemini"
	"github.com/syllacal/syllacal/internal/ical"
	"github.com/syllacal/syllacal/internal/schedule"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Extractor *schedule.Extractor
	Gemini    *gemini.Client
	Builder   *ical.Builder
	Config    *config.Manager
	Logger    *slog.Logger
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// ExtractorFrom extracts the schedule extractor from context.
func ExtractorFrom(ctx context.Context) *schedule.Extractor {
	if s := ServicesFrom(ctx); s != nil {
		return s.Extractor
	}
	return nil
}

// GeminiFrom extracts the LLM client from context. Nil when the server
// was started without an API key.
func GeminiFrom(ctx context.Context) *gemini.Client {
	if s := ServicesFrom(ctx); s != nil {
		return s.Gemini
	}
	return nil
}

// BuilderFrom extracts the calendar builder from context.
func BuilderFrom(ctx context.Context) *ical.Builder {
	if s := ServicesFrom(ctx); s != nil {
		return s.Builder
	}
	return nil
}

// ConfigFrom extracts the config manager from context.
func ConfigFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Config
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}
