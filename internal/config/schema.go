package config

import (
	"fmt"
	"time"

	"github.com/syllacal/syllacal/internal/schedule"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Timezone string         `mapstructure:"timezone" yaml:"timezone"`
	Semester SemesterConfig `mapstructure:"semester" yaml:"semester"`
	Gemini   GeminiConfig   `mapstructure:"gemini" yaml:"gemini"`
	Upload   UploadConfig   `mapstructure:"upload" yaml:"upload"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SemesterConfig overrides the default semester window used when a
// syllabus does not state its own term dates. Dates are YYYY-MM-DD;
// empty values mean the built-in defaults apply.
type SemesterConfig struct {
	Start string `mapstructure:"start" yaml:"start"`
	End   string `mapstructure:"end" yaml:"end"`
}

// Dates parses the override window. ok is false when no override is
// configured.
func (s SemesterConfig) Dates() (start, end schedule.Date, ok bool, err error) {
	if s.Start == "" && s.End == "" {
		return schedule.Date{}, schedule.Date{}, false, nil
	}
	start, err = parseDate(s.Start)
	if err != nil {
		return schedule.Date{}, schedule.Date{}, false, fmt.Errorf("semester.start: %w", err)
	}
	end, err = parseDate(s.End)
	if err != nil {
		return schedule.Date{}, schedule.Date{}, false, fmt.Errorf("semester.end: %w", err)
	}
	if end.After(start) {
		return start, end, true, nil
	}
	return schedule.Date{}, schedule.Date{}, false, fmt.Errorf("semester.end %s is not after semester.start %s", s.End, s.Start)
}

func parseDate(s string) (schedule.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return schedule.Date{}, fmt.Errorf("%q is not a YYYY-MM-DD date", s)
	}
	return schedule.Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// GeminiConfig holds the LLM extraction settings. APIKey supports
// ${ENV_VAR} references.
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	Model          string `mapstructure:"model" yaml:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns the extraction deadline as a duration.
func (g GeminiConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// UploadConfig bounds syllabus uploads.
type UploadConfig struct {
	MaxFileBytes int64 `mapstructure:"max_file_bytes" yaml:"max_file_bytes"`
	MaxFiles     int   `mapstructure:"max_files" yaml:"max_files"`
	Workers      int   `mapstructure:"workers" yaml:"workers"`
}
