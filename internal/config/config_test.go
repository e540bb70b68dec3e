package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/524D/mzqc/internal/mzqc"
	"github.com/524D/mzqc/internal/store"
)

func TestParse(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
log: debug
contactName: mwalzer
contactAddress: https://github.com/MS-Quality-Hub/mzqclib-manuscript
match: inputfile
ignoreLocation: true
vocabulary:
  version: v4.1.150
s3:
  region: eu-west-1
  endpoint: http://localhost:9000
  pathStyle: true
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Default()
	want.Log = "debug"
	want.ContactName = "mwalzer"
	want.ContactAddress = "https://github.com/MS-Quality-Hub/mzqclib-manuscript"
	want.Match = "inputfile"
	want.IgnoreLocation = true
	want.Vocabulary.Version = "v4.1.150"
	want.S3 = store.S3Config{Region: "eu-west-1", Endpoint: "http://localhost:9000", PathStyle: true}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}

	opts, err := cfg.MergeOptions(nil)
	if err != nil {
		t.Fatalf("MergeOptions: %v", err)
	}
	if opts.Policy != mzqc.MatchInputFile || !opts.IgnoreLocation {
		t.Errorf("MergeOptions: %+v", opts)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(``))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("empty config differs from default (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(strings.NewReader("log: loud\n")); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("invalid log level: error %v, expected ErrInvalidLogLevel", err)
	}
	if _, err := Parse(strings.NewReader("match: nearest\n")); err == nil {
		t.Errorf("invalid match policy: expected error")
	}
	if _, err := Parse(strings.NewReader("colour: blue\n")); err == nil {
		t.Errorf("unknown field: expected error")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mzqc.yaml")
	if err := os.WriteFile(path, []byte("log: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfig, path)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log != "info" {
		t.Errorf("Load from %s: log %q, expected info", EnvConfig, cfg.Log)
	}

	t.Setenv(EnvConfig, "")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log != "warn" {
		t.Errorf("Load without file: log %q, expected warn", cfg.Log)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Errorf("Load missing file: expected error")
	}
}

func TestParseLevel(t *testing.T) {
	for s, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
	} {
		got, err := ParseLevel(s)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; expected %v", s, got, err, want)
		}
	}
}
