//go:build !integration

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"yiiep-sdk/internal/config"
)

func TestParse_DefaultsAndEnv(t *testing.T) {
	t.Setenv("YIIEP_TEST_SECRET", "from-env")
	raw := `
yiiep:
  merchant_id: ws-1
  secret: ${YIIEP_TEST_SECRET}
`
	cfg, err := config.Parse([]byte(raw), false)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Yiiep.Secret != "from-env" {
		t.Errorf("secret should be expanded from env, got %q", cfg.Yiiep.Secret)
	}
	if cfg.Yiiep.Mode != "test" || cfg.Yiiep.Protocol != "v1" {
		t.Errorf("defaults: mode=%q protocol=%q", cfg.Yiiep.Mode, cfg.Yiiep.Protocol)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log defaults: %+v", cfg.Log)
	}
	if cfg.Bridge.Port != 8080 || cfg.Bridge.RequestTimeout != 15*time.Second || cfg.Bridge.Workers != 4 {
		t.Errorf("bridge defaults: %+v", cfg.Bridge)
	}
}

func TestParse_SecretsKeptVerbatim(t *testing.T) {
	t.Setenv("YIIEP_TEST_SECRET", "abc #def")
	t.Setenv("YIIEP_TEST_KEY", "*{k: v}")
	cases := []struct {
		name   string
		raw    string
		secret string
	}{
		{"env value with a hash", "yiiep:\n  merchant_id: m\n  secret: ${YIIEP_TEST_SECRET}\n", "abc #def"},
		{"env value with yaml indicators", "yiiep:\n  merchant_id: m\n  secret: ${YIIEP_TEST_KEY}\n", "*{k: v}"},
		{"literal dollar in quotes", "yiiep: {merchant_id: m, secret: \"p$ssword\"}", "p$ssword"},
		{"literal dollar brace inside", "yiiep: {merchant_id: m, secret: \"a${B}c\"}", "a${B}c"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := config.Parse([]byte(tc.raw), false)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if cfg.Yiiep.Secret != tc.secret {
				t.Fatalf("secret: want %q, got %q", tc.secret, cfg.Yiiep.Secret)
			}
		})
	}
}

func TestParse_Validation(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		dev     bool
		wantErr string
	}{
		{"missing merchant", "yiiep: {secret: s}", false, "merchant_id"},
		{"missing secret", "yiiep: {merchant_id: m}", false, "secret"},
		{"unknown mode", "yiiep: {merchant_id: m, secret: s, mode: live}", false, "yiiep.mode"},
		{"unknown protocol", "yiiep: {merchant_id: m, secret: s, protocol: v7}", false, "yiiep.protocol"},
		{"negative timeout", "yiiep: {merchant_id: m, secret: s, timeout: -1s}", false, "timeout"},
		{"dev without credentials", "log: {level: debug}", true, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tc.raw), tc.dev)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("want error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "yiiep:\n  merchant_id: ws-9\n  secret: k\n  mode: real\n  protocol: v2\n  timeout: 20s\nbridge:\n  port: 9090\n  cors_origins: [\"https://shop.example\"]\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := config.LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Yiiep.Mode != "real" || cfg.Yiiep.Protocol != "v2" || cfg.Yiiep.Timeout != 20*time.Second {
		t.Fatalf("yiiep: %+v", cfg.Yiiep)
	}
	if cfg.Bridge.Port != 9090 || len(cfg.Bridge.CORSOrigins) != 1 {
		t.Fatalf("bridge: %+v", cfg.Bridge)
	}
	if !cfg.HasCredentials() {
		t.Fatal("expected credentials")
	}

	if _, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")
	if _, err := config.LoadConfig(missing, false); err == nil {
		t.Fatal("missing file must fail outside dev mode")
	}
	cfg, err := config.LoadConfig(missing, true)
	if err != nil {
		t.Fatalf("dev mode should fall back to defaults: %v", err)
	}
	if cfg.HasCredentials() || cfg.Yiiep.Mode != "test" {
		t.Errorf("unexpected defaults: %+v", cfg.Yiiep)
	}
}
