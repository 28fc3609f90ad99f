package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"bidsprep/internal/config"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "converter", Command: "definitely-not-a-real-binary-xyz"},
	})
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("expected binary to be unavailable")
	}
	if statuses[0].Detail == "" {
		t.Fatal("expected detail for missing binary")
	}
}

func TestCheckBinariesFindsStub(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub binary creation assumes unix permissions")
	}
	dir := t.TempDir()
	stub := filepath.Join(dir, "dcm2niix")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", dir)

	statuses := CheckBinaries([]Requirement{{Name: "converter", Command: "dcm2niix"}})
	if !statuses[0].Available {
		t.Fatalf("expected stub to be found: %s", statuses[0].Detail)
	}
	if missing := FirstMissing(statuses); missing != nil {
		t.Fatalf("unexpected missing requirement %q", missing.Name)
	}
}

func TestCheckBinariesEmptyCommand(t *testing.T) {
	statuses := CheckBinaries([]Requirement{{Name: "converter"}})
	if statuses[0].Available {
		t.Fatal("expected unconfigured command to be unavailable")
	}
	if statuses[0].Detail != "command not configured" {
		t.Fatalf("unexpected detail %q", statuses[0].Detail)
	}
}

func TestForUsesConfiguredBinary(t *testing.T) {
	cfg := config.Default()
	cfg.Converter.Binary = "my-converter"
	reqs := For(&cfg)
	if len(reqs) != 1 || reqs[0].Command != "my-converter" {
		t.Fatalf("unexpected requirements: %+v", reqs)
	}
}
