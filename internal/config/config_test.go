package config

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/area/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Address != DefaultAddress {
		t.Errorf("Server.Address = %q, want %q", cfg.Server.Address, DefaultAddress)
	}
	if cfg.Server.Devtools != DefaultDevtoolsPrefix {
		t.Errorf("Server.Devtools = %q, want %q", cfg.Server.Devtools, DefaultDevtoolsPrefix)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if !stderrors.Is(err, errors.New("A060")) {
		t.Errorf("Load() = %v, want A060", err)
	}

	configYAML := `name: shop
manifest: app/routes.yaml
server:
  address: 0.0.0.0:8080
history:
  limit: 20
metrics:
  enabled: false
storage:
  bucket: templates
  region: eu-west-1
log:
  level: debug
  format: json
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Name != "shop" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Server.Address != "0.0.0.0:8080" {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
	if cfg.Server.Devtools != DefaultDevtoolsPrefix {
		t.Errorf("Server.Devtools = %q, want default", cfg.Server.Devtools)
	}
	if cfg.History.Limit != 20 {
		t.Errorf("History.Limit = %d", cfg.History.Limit)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	if !cfg.Storage.Enabled() || cfg.Storage.Region != "eu-west-1" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.ManifestPath() != filepath.Join(tmpDir, "app/routes.yaml") {
		t.Errorf("ManifestPath() = %q", cfg.ManifestPath())
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configJSON := `{"server": {"address": ":9000"}, "tracing": {"enabled": true, "tracerName": "shop"}}`
	if err := os.WriteFile(filepath.Join(tmpDir, JSONConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Address != ":9000" {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.TracerName != "shop" {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want default", cfg.Log.Level)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"bad yaml", "area.yaml", "server: [1, 2"},
		{"unknown field", "area.yaml", "servr:\n  address: x\n"},
		{"bad json", "area.json", "{not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFile(path)
			if !stderrors.Is(err, errors.New("A061")) {
				t.Errorf("LoadFile() = %v, want A061", err)
			}
		})
	}
}

func TestEmptyYAMLUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Address != DefaultAddress {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("AREA_ADDR", ":7171")
	t.Setenv("AREA_HISTORY_LIMIT", "5")
	t.Setenv("AREA_LOG_LEVEL", "warn")
	t.Setenv("AREA_S3_BUCKET", "remote")
	t.Setenv("AREA_METRICS", "false")

	cfg := New()
	cfg.Storage.Region = "us-east-1"
	cfg.Name = "kept"
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.Server.Address != ":7171" {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
	if cfg.History.Limit != 5 {
		t.Errorf("History.Limit = %d", cfg.History.Limit)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Storage.Bucket != "remote" || cfg.Storage.Region != "us-east-1" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Metrics.Enabled {
		t.Error("AREA_METRICS=false should disable metrics")
	}
	if cfg.Name != "kept" {
		t.Errorf("unset variables should keep fields, Name = %q", cfg.Name)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("AREA_HISTORY_LIMIT", "lots")
	if err := New().ApplyEnv(); !stderrors.Is(err, errors.New("A061")) {
		t.Errorf("ApplyEnv() = %v, want A061", err)
	}
}

func TestSave(t *testing.T) {
	for _, name := range []string{ConfigFileName, JSONConfigFileName} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := New()
			cfg.Name = "saved"
			cfg.Metrics.Enabled = false
			cfg.History.Limit = 9

			if err := cfg.Save(); err == nil {
				t.Error("Save without a path should fail")
			}
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo: %v", err)
			}
			if cfg.Path() != path {
				t.Errorf("Path() = %q", cfg.Path())
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if loaded.Name != "saved" || loaded.History.Limit != 9 || loaded.Metrics.Enabled {
				t.Errorf("round trip = %+v", loaded)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative history", func(c *Config) { c.History.Limit = -1 }, true},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"devtools disabled", func(c *Config) { c.Server.Devtools = "-" }, false},
		{"devtools relative", func(c *Config) { c.Server.Devtools = "tools" }, true},
		{"bucket without region", func(c *Config) { c.Storage.Bucket = "b" }, true},
		{"bucket with endpoint", func(c *Config) { c.Storage.Bucket = "b"; c.Storage.Endpoint = "http://minio:9000" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: "warn", Format: "json"}.Logger(&buf).Info("hidden")
	LogConfig{Level: "warn", Format: "json"}.Logger(&buf).Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("json logger output = %q", out)
	}

	buf.Reset()
	LogConfig{Level: "nonsense"}.Logger(&buf).Info("fallback")
	if !strings.Contains(buf.String(), "level=INFO msg=fallback") {
		t.Errorf("text logger output = %q", buf.String())
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()
	if Exists(tmpDir) {
		t.Error("Exists should be false for an empty directory")
	}
	if err := os.WriteFile(filepath.Join(tmpDir, JSONConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if !Exists(tmpDir) {
		t.Error("Exists should find area.json")
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte("name: x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	found, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot: %v", err)
	}
	want, _ := filepath.Abs(root)
	if found != want {
		t.Errorf("FindProjectRoot() = %q, want %q", found, want)
	}

	if _, err := FindProjectRoot(t.TempDir()); err == nil {
		// A parent of the temp dir could hold an area.yaml; only fail when
		// the error is of the wrong kind.
		return
	} else if !stderrors.Is(err, errors.New("A060")) {
		t.Errorf("FindProjectRoot() = %v, want A060", err)
	}
}
