package config

// DefaultConfig returns the built-in configuration. A config file and
// SYLLACAL_ environment variables override these values.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Timezone: "America/New_York",
		Gemini: GeminiConfig{
			APIKey:         "${GEMINI_API_KEY}",
			Model:          "gemini-2.0-flash",
			TimeoutSeconds: 45,
		},
		Upload: UploadConfig{
			MaxFileBytes: 20 << 20,
			MaxFiles:     10,
			Workers:      4,
		},
	}
}
