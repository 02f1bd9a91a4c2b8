package otelx

import "testing"

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg := ConfigFromEnv("booking-service")
	if !cfg.Enabled {
		t.Fatalf("expected tracing enabled by default")
	}
	if cfg.ServiceName != "booking-service" {
		t.Fatalf("service name = %q, want %q", cfg.ServiceName, "booking-service")
	}
	if cfg.OTLPEndpoint != "jaeger:4317" {
		t.Fatalf("endpoint = %q, want %q", cfg.OTLPEndpoint, "jaeger:4317")
	}
	if cfg.SampleRatio != 1.0 {
		t.Fatalf("sample ratio = %v, want 1.0", cfg.SampleRatio)
	}
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.25")

	cfg := ConfigFromEnv("auth-service")
	if cfg.Enabled {
		t.Fatalf("expected tracing disabled")
	}
	if cfg.OTLPEndpoint != "collector:4317" {
		t.Fatalf("endpoint = %q, want %q", cfg.OTLPEndpoint, "collector:4317")
	}
	if cfg.SampleRatio != 0.25 {
		t.Fatalf("sample ratio = %v, want 0.25", cfg.SampleRatio)
	}
}

func TestConfigFromEnvIgnoresBadRatio(t *testing.T) {
	t.Setenv("OTEL_SAMPLING_RATIO", "2.5")
	cfg := ConfigFromEnv("gateway-service")
	if cfg.SampleRatio != 1.0 {
		t.Fatalf("sample ratio = %v, want fallback 1.0", cfg.SampleRatio)
	}
}
