// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// BackendShell compiles .sh files.
	// Backend names are defined locally to avoid coupling config to
	// internal/compiler; the CLI casts to compiler.BackendName at the boundary.
	BackendShell BackendName = "shell"
	// BackendLua compiles .lua files.
	BackendLua BackendName = "lua"
	// BackendGo interprets .go files.
	BackendGo BackendName = "go"

	// ShellDialectBash parses shell scripts as bash.
	ShellDialectBash ShellDialect = "bash"
	// ShellDialectPOSIX parses shell scripts as POSIX sh.
	ShellDialectPOSIX ShellDialect = "posix"

	// FaultIsolate logs a failing hook and keeps dispatching.
	FaultIsolate FaultPolicy = "isolate"
	// FaultFailFast stops at the first failing hook.
	FaultFailFast FaultPolicy = "fail-fast"

	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	LogFormatText   LogFormat = "text"
	LogFormatJSON   LogFormat = "json"
	LogFormatLogfmt LogFormat = "logfmt"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidBackendName is returned when a BackendName value is not recognized.
	ErrInvalidBackendName = errors.New("invalid backend name")
	// ErrInvalidShellDialect is returned when a ShellDialect value is not recognized.
	ErrInvalidShellDialect = errors.New("invalid shell dialect")
	// ErrInvalidFaultPolicy is returned when a FaultPolicy value is not recognized.
	ErrInvalidFaultPolicy = errors.New("invalid fault policy")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat is returned when a LogFormat value is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidContentRoot is returned when a ContentRoot is whitespace-only.
	ErrInvalidContentRoot = errors.New("invalid content root")
	// ErrDuplicateBackend is returned when compilers.enabled names a backend twice.
	ErrDuplicateBackend = errors.New("duplicate backend")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// BackendName names a compiler backend.
	BackendName string

	// ShellDialect selects the shell parser variant.
	ShellDialect string

	// FaultPolicy selects how dispatchers react to a failing hook.
	// Defined locally; the CLI casts to hooks.FaultPolicy.
	FaultPolicy string

	// LogLevel is the minimum level the CLI logger emits.
	LogLevel string

	// LogFormat selects the CLI logger formatter.
	LogFormat string

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// ContentRoot is the directory crawled for scripts. The zero value means
	// the directory must be given on the command line.
	ContentRoot string

	// InvalidValueError reports one enum field holding an unknown value.
	// Sentinel is one of the ErrInvalid* errors above.
	InvalidValueError struct {
		Field    string
		Value    string
		Valid    []string
		Sentinel error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		Content   ContentConfig   `json:"content" mapstructure:"content"`
		Compilers CompilersConfig `json:"compilers" mapstructure:"compilers"`
		Dispatch  DispatchConfig  `json:"dispatch" mapstructure:"dispatch"`
		Log       LogConfig       `json:"log" mapstructure:"log"`
		Metrics   MetricsConfig   `json:"metrics" mapstructure:"metrics"`
		UI        UIConfig        `json:"ui" mapstructure:"ui"`
	}

	// ContentConfig locates script content.
	ContentConfig struct {
		// Root is the default directory for run, check and hooks.
		Root ContentRoot `json:"root" mapstructure:"root"`
	}

	// CompilersConfig selects and tunes compiler backends.
	CompilersConfig struct {
		// Enabled lists backends in priority order. Empty enables all.
		Enabled []BackendName `json:"enabled" mapstructure:"enabled"`
		Shell   ShellConfig   `json:"shell" mapstructure:"shell"`
	}

	// ShellConfig tunes the shell backend.
	ShellConfig struct {
		Dialect ShellDialect `json:"dialect" mapstructure:"dialect"`
	}

	// DispatchConfig tunes per-scene dispatchers.
	DispatchConfig struct {
		FaultPolicy FaultPolicy `json:"fault_policy" mapstructure:"fault_policy"`
	}

	// LogConfig configures the CLI logger.
	LogConfig struct {
		Level  LogLevel  `json:"level" mapstructure:"level"`
		Format LogFormat `json:"format" mapstructure:"format"`
	}

	// MetricsConfig configures the Prometheus endpoint.
	MetricsConfig struct {
		// Addr is the listen address. Empty disables the endpoint.
		Addr string `json:"addr" mapstructure:"addr"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

func checkEnum[T ~string](field string, v T, sentinel error, valid ...T) []error {
	for _, ok := range valid {
		if v == ok {
			return nil
		}
	}
	names := make([]string, len(valid))
	for i, ok := range valid {
		names[i] = string(ok)
	}
	return []error{&InvalidValueError{Field: field, Value: string(v), Valid: names, Sentinel: sentinel}}
}

// IsValid returns whether b names a known backend.
func (b BackendName) IsValid() (bool, []error) {
	errs := checkEnum("compilers.enabled", b, ErrInvalidBackendName, BackendShell, BackendLua, BackendGo)
	return len(errs) == 0, errs
}

// IsValid returns whether d is a known dialect.
func (d ShellDialect) IsValid() (bool, []error) {
	errs := checkEnum("compilers.shell.dialect", d, ErrInvalidShellDialect, ShellDialectBash, ShellDialectPOSIX)
	return len(errs) == 0, errs
}

// IsValid returns whether p is a known policy.
func (p FaultPolicy) IsValid() (bool, []error) {
	errs := checkEnum("dispatch.fault_policy", p, ErrInvalidFaultPolicy, FaultIsolate, FaultFailFast)
	return len(errs) == 0, errs
}

// IsValid returns whether l is a known level.
func (l LogLevel) IsValid() (bool, []error) {
	errs := checkEnum("log.level", l, ErrInvalidLogLevel, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)
	return len(errs) == 0, errs
}

// IsValid returns whether f is a known format.
func (f LogFormat) IsValid() (bool, []error) {
	errs := checkEnum("log.format", f, ErrInvalidLogFormat, LogFormatText, LogFormatJSON, LogFormatLogfmt)
	return len(errs) == 0, errs
}

// IsValid returns whether cs is a known color scheme.
func (cs ColorScheme) IsValid() (bool, []error) {
	errs := checkEnum("ui.color_scheme", cs, ErrInvalidColorScheme, ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight)
	return len(errs) == 0, errs
}

// String returns the string representation of the ContentRoot.
func (r ContentRoot) String() string { return string(r) }

// IsValid accepts the zero value and any path that is not whitespace-only.
func (r ContentRoot) IsValid() (bool, []error) {
	if r != "" && strings.TrimSpace(string(r)) == "" {
		return false, []error{fmt.Errorf("%w %q: non-empty value must not be whitespace-only", ErrInvalidContentRoot, r)}
	}
	return true, nil
}

// Error implements the error interface for InvalidValueError.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: invalid value %q (valid: %s)", e.Field, e.Value, strings.Join(e.Valid, ", "))
}

// Unwrap returns the field's sentinel for errors.Is() compatibility.
func (e *InvalidValueError) Unwrap() error { return e.Sentinel }

// IsValid checks every field, including constraints the CUE schema cannot
// express such as duplicate backends.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	collect := func(_ bool, fieldErrs []error) { errs = append(errs, fieldErrs...) }

	collect(c.Content.Root.IsValid())
	seen := make(map[BackendName]bool, len(c.Compilers.Enabled))
	for _, b := range c.Compilers.Enabled {
		collect(b.IsValid())
		if seen[b] {
			errs = append(errs, fmt.Errorf("compilers.enabled: %w %q", ErrDuplicateBackend, b))
		}
		seen[b] = true
	}
	collect(c.Compilers.Shell.Dialect.IsValid())
	collect(c.Dispatch.FaultPolicy.IsValid())
	collect(c.Log.Level.IsValid())
	collect(c.Log.Format.IsValid())
	collect(c.UI.ColorScheme.IsValid())

	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Content: ContentConfig{Root: ""},
		Compilers: CompilersConfig{
			Enabled: []BackendName{BackendShell, BackendLua, BackendGo},
			Shell:   ShellConfig{Dialect: ShellDialectBash},
		},
		Dispatch: DispatchConfig{FaultPolicy: FaultIsolate},
		Log:      LogConfig{Level: LogLevelInfo, Format: LogFormatText},
		Metrics:  MetricsConfig{Addr: ""},
		UI:       UIConfig{ColorScheme: ColorSchemeAuto, Verbose: false},
	}
}
