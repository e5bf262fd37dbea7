// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/scripthook/scripthook/internal/issue"
	"github.com/scripthook/scripthook/internal/testutil"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := testutil.WriteTree(t, t.TempDir(), map[string]string{ConfigFileName + "." + ConfigFileExt: body})
	return dir
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if ok, errs := cfg.IsValid(); !ok {
		t.Fatalf("DefaultConfig().IsValid() = %v", errs)
	}
	if cfg.Dispatch.FaultPolicy != FaultIsolate {
		t.Errorf("FaultPolicy = %q, want isolate", cfg.Dispatch.FaultPolicy)
	}
	if !slices.Equal(cfg.Compilers.Enabled, []BackendName{BackendShell, BackendLua, BackendGo}) {
		t.Errorf("Enabled = %v", cfg.Compilers.Enabled)
	}
	if cfg.Log.Level != LogLevelInfo || cfg.Log.Format != LogFormatText {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Metrics.Addr != "" {
		t.Errorf("Metrics.Addr = %q, want disabled", cfg.Metrics.Addr)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want none", path)
	}
	if cfg.Compilers.Shell.Dialect != ShellDialectBash {
		t.Errorf("Dialect = %q, want bash", cfg.Compilers.Shell.Dialect)
	}
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `
content: root: "./scripts"
compilers: enabled: ["lua"]
dispatch: fault_policy: "fail-fast"
log: level: "debug"
`)
	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if want := filepath.Join(dir, "config.cue"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if cfg.Content.Root != "./scripts" {
		t.Errorf("Content.Root = %q", cfg.Content.Root)
	}
	if !slices.Equal(cfg.Compilers.Enabled, []BackendName{BackendLua}) {
		t.Errorf("Enabled = %v, want [lua]", cfg.Compilers.Enabled)
	}
	if cfg.Dispatch.FaultPolicy != FaultFailFast || cfg.Log.Level != LogLevelDebug {
		t.Errorf("cfg = %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.Log.Format != LogFormatText || cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_SchemaErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad policy", `dispatch: fault_policy: "retry"`, "dispatch.fault_policy"},
		{"bad backend", `compilers: enabled: ["ruby"]`, "compilers.enabled"},
		{"unknown field", `plugins: []`, "plugins"},
		{"wrong type", `ui: verbose: "yes"`, "ui.verbose"},
		{"syntax", `log: {`, "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: writeConfig(t, tt.body)})
			if err == nil {
				t.Fatal("Load() succeeded, want schema error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) || ae.Operation != "load configuration" {
				t.Errorf("error = %T %v, want actionable load error", err, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_DuplicateBackend(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigDirPath: writeConfig(t, `compilers: enabled: ["lua", "lua"]`),
	})
	if !errors.Is(err, ErrDuplicateBackend) {
		t.Errorf("Load() error = %v, want ErrDuplicateBackend", err)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `metrics: addr: "127.0.0.1:9464"`)
	cfg, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(dir, "config.cue"),
		ConfigDirPath:  t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Metrics.Addr != "127.0.0.1:9464" {
		t.Errorf("Metrics.Addr = %q", cfg.Metrics.Addr)
	}

	_, err = NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(dir, "missing.cue")})
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrConfigNotFound", err)
	}
}

//nolint:paralleltest // sets process environment
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SCRIPTHOOK_LOG_LEVEL", "warn")
	t.Setenv("SCRIPTHOOK_DISPATCH_FAULT_POLICY", "fail-fast")

	dir := writeConfig(t, `log: level: "debug"`)
	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != LogLevelWarn {
		t.Errorf("Log.Level = %q, want warn from env", cfg.Log.Level)
	}
	if cfg.Dispatch.FaultPolicy != FaultFailFast {
		t.Errorf("FaultPolicy = %q, want fail-fast from env", cfg.Dispatch.FaultPolicy)
	}

	t.Setenv("SCRIPTHOOK_LOG_LEVEL", "loud")
	_, err = NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("Load() error = %v, want ErrInvalidLogLevel", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestGenerateCUE_RoundTripsThroughSchema(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Content.Root = "/srv/scripts"
	cfg.Compilers.Enabled = []BackendName{BackendGo, BackendShell}
	cfg.UI.Verbose = true

	dir := writeConfig(t, GenerateCUE(cfg))
	got, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("generated config rejected: %v", err)
	}
	if got.Content.Root != cfg.Content.Root || !got.UI.Verbose ||
		!slices.Equal(got.Compilers.Enabled, cfg.Compilers.Enabled) {
		t.Errorf("loaded = %+v, want %+v", got, cfg)
	}
}

//nolint:paralleltest // uses the package-level config dir override
func TestCreateDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	path, err := CreateDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}
	if err := os.WriteFile(path, []byte(`log: level: "error"`), 0o644); err != nil {
		t.Fatal(err)
	}
	// An existing file is left alone.
	if _, err := CreateDefaultConfig(); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `log: level: "error"` {
		t.Errorf("existing config overwritten: %q", data)
	}
}

//nolint:paralleltest // sets process environment
func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup is Linux-only")
	}
	Reset()

	xdg := t.TempDir()
	t.Cleanup(testutil.MustSetenv(t, "XDG_CONFIG_HOME", xdg))
	dir, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(xdg, AppName); dir != want {
		t.Errorf("ConfigDir() = %q, want %q", dir, want)
	}

	home := t.TempDir()
	t.Cleanup(testutil.SetHomeDir(t, home))
	t.Setenv("XDG_CONFIG_HOME", "")
	dir, err = ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".config", AppName); dir != want {
		t.Errorf("ConfigDir() = %q, want %q", dir, want)
	}
}
