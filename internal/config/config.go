// Package config loads runtime settings from the environment. Settings are
// read once into an explicit value and threaded as a parameter; nothing in
// the core consults process-wide state after startup.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings carries everything the backends and the batch loop need.
type Settings struct {
	Username       string
	Password       string
	CustomerNumber string

	// UseTest selects the vendor's test endpoints for the SOAP backends.
	UseTest bool
	// Backend is the configured default backend kind (promostandards,
	// standard, or webjson).
	Backend string

	// TimeoutSeconds is the per-request budget for every backend call.
	TimeoutSeconds int
	// RequestDelay is the politeness pause between batch requests. Not a
	// correctness mechanism.
	RequestDelay time.Duration

	// DefaultFormat is the export format when the output path does not
	// decide it (xlsx or csv).
	DefaultFormat string

	// WebJSONCookie and WebJSONHeaders override the web JSON backend's
	// header set when the site needs a session to answer.
	WebJSONCookie  string
	WebJSONHeaders map[string]string

	// DatabaseURL, when set, enables the snapshot store.
	DatabaseURL string
}

// Load reads settings from the environment. Call godotenv.Load first if a
// .env file should participate.
func Load() Settings {
	s := Settings{
		Username:       strings.TrimSpace(os.Getenv("SANMAR_USERNAME")),
		Password:       strings.TrimSpace(os.Getenv("SANMAR_PASSWORD")),
		CustomerNumber: strings.TrimSpace(os.Getenv("SANMAR_CUSTOMER_NUMBER")),
		UseTest:        boolEnv("SANMAR_USE_TEST"),
		Backend:        strings.ToLower(getEnv("SANMAR_BACKEND", "promostandards")),
		TimeoutSeconds: intEnv("HTTP_TIMEOUT_SECONDS", 25),
		RequestDelay:   time.Duration(intEnv("REQUEST_DELAY_MS", 500)) * time.Millisecond,
		DefaultFormat:  strings.ToLower(getEnv("OUTPUT_FORMAT", "xlsx")),
		WebJSONCookie:  strings.TrimSpace(os.Getenv("SANMAR_WEBJSON_COOKIE")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
	}

	// Extra headers arrive as a JSON object; a malformed value is ignored
	// rather than fatal, matching how the overrides have always behaved.
	if raw := strings.TrimSpace(os.Getenv("SANMAR_WEBJSON_HEADERS")); raw != "" {
		var headers map[string]string
		if err := json.Unmarshal([]byte(raw), &headers); err == nil {
			s.WebJSONHeaders = headers
		}
	}
	return s
}

// Timeout returns the per-request budget as a duration.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// MissingCredentials names the environment variables a backend needs that
// are not set. The web JSON backend needs none.
func (s Settings) MissingCredentials(backendKind string) []string {
	var missing []string
	switch backendKind {
	case "promostandards":
		if s.Username == "" {
			missing = append(missing, "SANMAR_USERNAME")
		}
		if s.Password == "" {
			missing = append(missing, "SANMAR_PASSWORD")
		}
	case "standard":
		if s.CustomerNumber == "" {
			missing = append(missing, "SANMAR_CUSTOMER_NUMBER")
		}
		if s.Username == "" {
			missing = append(missing, "SANMAR_USERNAME")
		}
		if s.Password == "" {
			missing = append(missing, "SANMAR_PASSWORD")
		}
	}
	return missing
}

// Validate reports the only unrecoverable condition in the system: a
// backend selected without the credentials it requires.
func (s Settings) Validate(backendKind string) error {
	if missing := s.MissingCredentials(backendKind); len(missing) > 0 {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func boolEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func intEnv(key string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}
