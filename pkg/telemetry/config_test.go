package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty service name", func(c *Config) { c.ServiceName = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad exporter", func(c *Config) { c.Tracing.Enabled = true; c.Tracing.Exporter = "carrier-pigeon" }},
		{"sampling out of range", func(c *Config) { c.Tracing.Enabled = true; c.Tracing.SamplingRate = 2 }},
		{"otlp without endpoint", func(c *Config) { c.Tracing.Enabled = true; c.Tracing.Exporter = "otlp"; c.Tracing.Endpoint = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation to fail")
			}
		})
	}
}

func TestMetricsDisabledIsNoop(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	// None of these should panic on a disabled collector.
	m.JourneyStarted("startup_validation")
	m.JourneyFinished("startup_validation", "completed", time.Second)
	m.FrameworkExecuted("swot", "completed", time.Second)
	m.FrameworkRetried("swot", "QUALITY_GATE")
	m.QualityScored("swot", 8.1)
	m.ErrorRecorded("EXTERNAL_CALL")
}

func TestMetricsHandlerServesRegisteredMetrics(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, Namespace: "strategos"})
	m.JourneyStarted("market_entry")
	m.QualityScored("pestle", 7.5)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "strategos_journeys_started_total") {
		t.Error("expected journeys_started metric in output")
	}
	if !strings.Contains(body, "strategos_quality_score") {
		t.Error("expected quality_score metric in output")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	l := Nop()
	l.Info().Str("key", "value").Msg("discarded")
	l.WithSession("s").WithJourney("j").WithFramework("f").Error().Msg("also discarded")
}
