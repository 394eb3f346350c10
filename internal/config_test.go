package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/xref/pkg/config"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestCorpusConfig_BadExtension(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Corpus.Extensions = []string{"md"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("extension without leading dot should fail")
	}
}

func TestReportConfig_UnknownFormat(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Report.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown format should fail")
	}
}

func TestWatchConfig_ZeroDebounce(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Watch.Debounce = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero debounce should fail")
	}
}

func TestLoadConfigFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "xref.yaml")
	content := "app:\n  log_level: debug\n  log_format: json\n" +
		"corpus:\n  root: notes\n  entry_points: [README.md]\n  workers: 4\n" +
		"watch:\n  debounce: 500ms\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(p, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel.String() != "DEBUG" || cfg.App.LogFormat != LogFormatJSON {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Corpus.Root != "notes" || cfg.Corpus.Workers != 4 || len(cfg.Corpus.EntryPoints) != 1 {
		t.Errorf("corpus = %+v", cfg.Corpus)
	}
	if len(cfg.Corpus.Extensions) != 2 {
		t.Errorf("default extensions lost: %v", cfg.Corpus.Extensions)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Watch.Debounce)
	}
}

func TestExampleConfigLoads(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(filepath.Join("..", "config", "xref.example.yaml"), cfg); err != nil {
		t.Fatalf("example config: %v", err)
	}
	if cfg.Corpus.Root != "./docs" || len(cfg.Corpus.EntryPoints) != 1 {
		t.Errorf("corpus = %+v", cfg.Corpus)
	}
	if cfg.Watch.GraphThrottle != 2*time.Second {
		t.Errorf("graph throttle = %v", cfg.Watch.GraphThrottle)
	}
}
