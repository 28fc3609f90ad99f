package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenFileAbsent(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Translator.Filename != "Protocol_Translator.json" {
		t.Errorf("translator filename = %q", cfg.Translator.Filename)
	}
	if cfg.Converter.Binary != "dcm2niix" {
		t.Errorf("converter binary = %q", cfg.Converter.Binary)
	}
	if cfg.Converter.TimeoutSeconds <= 0 {
		t.Errorf("converter timeout = %d", cfg.Converter.TimeoutSeconds)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bidsprep.toml")
	content := `
[paths]
dicom_dir = "` + filepath.Join(dir, "in") + `"
bids_dir = "` + filepath.Join(dir, "out") + `"

[converter]
binary = " dcm2niix "
timeout_seconds = 120

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Converter.Binary != "dcm2niix" {
		t.Errorf("binary not trimmed: %q", cfg.Converter.Binary)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("logging not lowercased: %+v", cfg.Logging)
	}
	if !filepath.IsAbs(cfg.Paths.DICOMDir) {
		t.Errorf("dicom_dir not absolute: %q", cfg.Paths.DICOMDir)
	}
}

func TestValidateRejectsSameRoots(t *testing.T) {
	cfg := Default()
	cfg.Paths.DICOMDir = "/data/study"
	cfg.Paths.BIDSDir = "/data/study"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected same-root rejection, got %v", err)
	}
}

func TestValidateRejectsTranslatorPath(t *testing.T) {
	cfg := Default()
	cfg.Translator.Filename = "sub/Protocol_Translator.json"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected bare-filename rejection")
	}
}

func TestTranslatorAndManifestPaths(t *testing.T) {
	cfg := Default()
	cfg.Paths.DICOMDir = "/data/dicom"
	cfg.Paths.BIDSDir = "/data/bids"

	if got := cfg.TranslatorPath(); got != filepath.Join("/data/dicom", "Protocol_Translator.json") {
		t.Errorf("TranslatorPath = %q", got)
	}
	if got := cfg.ManifestPath(); got != filepath.Join("/data/bids", "participants.tsv") {
		t.Errorf("ManifestPath = %q", got)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("sample config not detected")
	}
	if cfg.Converter.FilenameTemplate != "%n--%p--%q--%s" {
		t.Errorf("template = %q", cfg.Converter.FilenameTemplate)
	}
}
