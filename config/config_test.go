package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeYAML(t *testing.T, path, text string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeYAML(t, path, "storage:\n  dir: \""+dir+"\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.AutosaveSeconds != 10 {
		t.Fatalf("expected storage.autosave_seconds default 10, got %d", cfg.Storage.AutosaveSeconds)
	}
	if cfg.Logging.Dir != filepath.Join(dir, "logs") {
		t.Fatalf("expected logging.dir under storage dir, got %q", cfg.Logging.Dir)
	}
	if cfg.Export.Path != filepath.Join(dir, "bookmarks.db") {
		t.Fatalf("expected export.path under storage dir, got %q", cfg.Export.Path)
	}
	if cfg.UI.TargetFPS != 30 || !cfg.UI.MouseEnabled() || !cfg.UI.UntaggedShown() {
		t.Fatalf("unexpected ui defaults: %+v", cfg.UI)
	}
	if cfg.Rig.Address != "127.0.0.1:7356" || cfg.Rig.TimeoutMS != 2000 {
		t.Fatalf("unexpected rig defaults: %+v", cfg.Rig)
	}
	if cfg.LoadedFrom != path {
		t.Fatalf("expected LoadedFrom=%s, got %s", path, cfg.LoadedFrom)
	}
}

func TestLoadDirectoryMergesFiles(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, filepath.Join(dir, "a.yaml"), "rig:\n  address: \"radio:7356\"\nui:\n  enable_mouse: false\n")
	writeYAML(t, filepath.Join(dir, "b.yml"), "rig:\n  timeout_ms: 500\nlogging:\n  enabled: true\n")
	writeYAML(t, filepath.Join(dir, "notes.txt"), "not yaml: [")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Rig.Address != "radio:7356" {
		t.Fatalf("expected rig.address from a.yaml, got %q", cfg.Rig.Address)
	}
	if cfg.Rig.TimeoutMS != 500 {
		t.Fatalf("expected rig.timeout_ms from b.yml, got %d", cfg.Rig.TimeoutMS)
	}
	if cfg.UI.MouseEnabled() {
		t.Fatalf("expected ui.enable_mouse=false")
	}
	if !cfg.Logging.Enabled {
		t.Fatalf("expected logging.enabled=true")
	}
}

func TestValidateNamesKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeYAML(t, path, "ui:\n  target_fps: 1000\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "ui.target_fps") {
		t.Fatalf("expected ui.target_fps error, got %v", err)
	}

	writeYAML(t, path, "rig:\n  address: \"nocolon\"\n")
	_, err = Load(path)
	if err == nil || !strings.Contains(err.Error(), "rig.address") {
		t.Fatalf("expected rig.address error, got %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	cfg, err := LoadOrDefault(missing, false)
	if err != nil {
		t.Fatalf("implicit missing config should fall back, got %v", err)
	}
	if cfg.LoadedFrom != "" {
		t.Fatalf("defaults should not report a source")
	}
	if _, err := LoadOrDefault(missing, true); err == nil {
		t.Fatalf("explicit missing config should fail")
	}
}

func TestDefaultPathHonoursEnv(t *testing.T) {
	t.Setenv(EnvPath, "/tmp/custom.yaml")
	if got := DefaultPath(); got != "/tmp/custom.yaml" {
		t.Fatalf("DefaultPath() = %q", got)
	}
}

func TestPrintMentionsSections(t *testing.T) {
	var buf bytes.Buffer
	Default().Print(&buf)
	out := buf.String()
	for _, want := range []string{"built-in defaults", "Storage:", "Rig: 127.0.0.1:7356", "Export:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Print output missing %q:\n%s", want, out)
		}
	}
}
