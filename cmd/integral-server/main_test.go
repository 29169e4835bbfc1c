package main

import (
	"log/slog"
	"testing"
	"time"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig(nil, func(string) string { return "" })
	if err != nil {
		t.Fatal(err)
	}
	if cfg.port != 8080 || cfg.timeout != 30*time.Second || cfg.logLevel != "info" || cfg.strictBounds {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestParseConfig_EnvAndFlags(t *testing.T) {
	env := map[string]string{
		"INTEGRAL_PORT":          "9090",
		"INTEGRAL_TIMEOUT":       "5s",
		"INTEGRAL_STRICT_BOUNDS": "true",
		"INTEGRAL_LOG_LEVEL":     "debug",
	}
	cfg, err := parseConfig([]string{"-port", "7070"}, func(k string) string { return env[k] })
	if err != nil {
		t.Fatal(err)
	}
	if cfg.port != 7070 {
		t.Errorf("want flag to win, got port %d", cfg.port)
	}
	if cfg.timeout != 5*time.Second || !cfg.strictBounds || cfg.logLevel != "debug" {
		t.Errorf("want env values, got %+v", cfg)
	}
}

func TestParseConfig_BadEnv(t *testing.T) {
	_, err := parseConfig(nil, func(k string) string {
		if k == "INTEGRAL_TIMEOUT" {
			return "soon"
		}
		return ""
	})
	if err == nil {
		t.Error("want error for bad INTEGRAL_TIMEOUT")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("%s: want %s, got %s", in, want, got)
		}
	}
}
