package config_test

import (
	"testing"
	"time"

	"sanmar-inventory/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SANMAR_USERNAME", "SANMAR_PASSWORD", "SANMAR_CUSTOMER_NUMBER",
		"SANMAR_USE_TEST", "SANMAR_BACKEND", "HTTP_TIMEOUT_SECONDS",
		"REQUEST_DELAY_MS", "OUTPUT_FORMAT", "SANMAR_WEBJSON_COOKIE",
		"SANMAR_WEBJSON_HEADERS", "DATABASE_URL",
	} {
		t.Setenv(key, "")
	}

	s := config.Load()
	if s.Backend != "promostandards" {
		t.Errorf("default backend = %s, want promostandards", s.Backend)
	}
	if s.TimeoutSeconds != 25 || s.Timeout() != 25*time.Second {
		t.Errorf("default timeout = %d, want 25", s.TimeoutSeconds)
	}
	if s.DefaultFormat != "xlsx" {
		t.Errorf("default format = %s, want xlsx", s.DefaultFormat)
	}
	if s.UseTest {
		t.Error("UseTest should default to false")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SANMAR_USERNAME", " alice ")
	t.Setenv("SANMAR_BACKEND", "WebJSON")
	t.Setenv("SANMAR_USE_TEST", "true")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "7")
	t.Setenv("SANMAR_WEBJSON_HEADERS", `{"Cookie": "a=b", "X-Extra": "1"}`)

	s := config.Load()
	if s.Username != "alice" {
		t.Errorf("username = %q, want trimmed alice", s.Username)
	}
	if s.Backend != "webjson" {
		t.Errorf("backend = %s, want lower-cased webjson", s.Backend)
	}
	if !s.UseTest || s.TimeoutSeconds != 7 {
		t.Errorf("flags not applied: %+v", s)
	}
	if s.WebJSONHeaders["X-Extra"] != "1" {
		t.Errorf("extra headers = %v", s.WebJSONHeaders)
	}
}

func TestLoad_MalformedHeaderJSONIgnored(t *testing.T) {
	t.Setenv("SANMAR_WEBJSON_HEADERS", "{not json")
	s := config.Load()
	if s.WebJSONHeaders != nil {
		t.Errorf("malformed header override should be ignored, got %v", s.WebJSONHeaders)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings config.Settings
		backend  string
		wantErr  bool
	}{
		{"webjson needs nothing", config.Settings{}, "webjson", false},
		{"promostandards missing both", config.Settings{}, "promostandards", true},
		{"promostandards complete", config.Settings{Username: "u", Password: "p"}, "promostandards", false},
		{"standard needs customer number", config.Settings{Username: "u", Password: "p"}, "standard", true},
		{"standard complete", config.Settings{Username: "u", Password: "p", CustomerNumber: "1"}, "standard", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate(tt.backend)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%s) error = %v, wantErr %v", tt.backend, err, tt.wantErr)
			}
		})
	}
}
