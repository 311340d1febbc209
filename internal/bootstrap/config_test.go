package bootstrap

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/wob25/del-cf-deploy2/internal/cleanup"
	"github.com/wob25/del-cf-deploy2/internal/pages"
)

type testConfig struct {
	Cloudflare pages.Config
	Cleanup    cleanup.Config
	Metrics    MetricsConfig
	Log        LogConfig
}

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("APPLICATION_CONFIG", "")
	t.Setenv("CLOUDFLARE_APITOKEN", "")
	t.Setenv("CLOUDFLARE_ACCOUNTID", "")
}

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	resetViper(t)
	t.Setenv("CF_API_TOKEN", "tok")
	t.Setenv("CF_ACCOUNT_ID", "acct")
	t.Setenv("CLEANUP_KEEPCOUNT", "5")

	cfg, err := LoadConfig[testConfig]()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Cloudflare.APIToken != "tok" || cfg.Cloudflare.AccountID != "acct" {
		t.Fatalf("cloudflare = %+v", cfg.Cloudflare)
	}
	if cfg.Cloudflare.Timeout != 30*time.Second {
		t.Fatalf("timeout = %v, want 30s", cfg.Cloudflare.Timeout)
	}
	if cfg.Cleanup.KeepCount != 5 {
		t.Fatalf("keep count = %d, want 5", cfg.Cleanup.KeepCount)
	}
	if cfg.Cleanup.PerPage != cleanup.MaxPerPage {
		t.Fatalf("per page = %d, want %d", cfg.Cleanup.PerPage, cleanup.MaxPerPage)
	}
	if cfg.Cleanup.PagePause != 500*time.Millisecond || cfg.Cleanup.DeletePause != 800*time.Millisecond {
		t.Fatalf("pauses = %v/%v, want 500ms/800ms", cfg.Cleanup.PagePause, cfg.Cleanup.DeletePause)
	}
	if cfg.Cleanup.DryRun {
		t.Fatal("dry run enabled by default")
	}
	if cfg.Metrics.Job != "pages_cleanup" {
		t.Fatalf("metrics job = %q", cfg.Metrics.Job)
	}
}

func TestLoadConfig_File(t *testing.T) {
	resetViper(t)
	t.Setenv("CF_API_TOKEN", "")
	t.Setenv("CF_ACCOUNT_ID", "")

	path := filepath.Join(t.TempDir(), "cleanup.yaml")
	content := `
cloudflare:
  apitoken: file-token
  accountid: file-account
  forcedelete: true
cleanup:
  keepcount: 10
  deletepause: 2s
  dryrun: true
  exclude:
    - keep-forever
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APPLICATION_CONFIG", path)

	cfg, err := LoadConfig[testConfig]()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Cloudflare.APIToken != "file-token" || !cfg.Cloudflare.ForceDelete {
		t.Fatalf("cloudflare = %+v", cfg.Cloudflare)
	}
	if cfg.Cleanup.KeepCount != 10 || cfg.Cleanup.DeletePause != 2*time.Second || !cfg.Cleanup.DryRun {
		t.Fatalf("cleanup = %+v", cfg.Cleanup)
	}
	if len(cfg.Cleanup.Exclude) != 1 || cfg.Cleanup.Exclude[0] != "keep-forever" {
		t.Fatalf("exclude = %v", cfg.Cleanup.Exclude)
	}
	if cfg.Cleanup.PagePause != 500*time.Millisecond {
		t.Fatalf("page pause = %v, want default 500ms", cfg.Cleanup.PagePause)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	resetViper(t)
	t.Setenv("APPLICATION_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := LoadConfig[testConfig](); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "WARN", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "", want: slog.LevelInfo},
		{in: "verbose", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
