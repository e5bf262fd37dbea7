// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for scripthook.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/scripthook/scripthook/internal/compiler"
	"github.com/scripthook/scripthook/internal/config"
	"github.com/scripthook/scripthook/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives the same App.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer

		// set by persistent flags
		configPath string
		verbose    bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	return &App{Config: deps.Config, stdout: deps.Stdout, stderr: deps.Stderr}
}

// NewRootCommand builds the command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scripthook",
		Short: "Load scripts and dispatch their lifecycle hooks",
		Long: TitleStyle.Render("scripthook") + SubtitleStyle.Render(" - load scripts and dispatch their lifecycle hooks") + `

scripthook crawls a directory for shell, Lua and Go scripts, compiles each
one against the host library and the scripts loaded before it, and registers
every function tagged as a hook under its scene and lifecycle event.

` + SubtitleStyle.Render("Examples:") + `
  scripthook check ./scripts                  Compile everything, report failures
  scripthook hooks ./scripts --format yaml    List registered hooks
  scripthook run ./scripts --frames 60        Drive a simulated frame loop
  scripthook config show                      Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $HOME/.config/scripthook/config.cue)")

	rootCmd.AddCommand(
		newRunCommand(app),
		newCheckCommand(app),
		newHooksCommand(app),
		newConfigCommand(app),
		newVersionCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var ae *issue.ActionableError
		if errors.As(err, &ae) && (len(ae.Suggestions) > 0 || app.verbose) {
			fmt.Fprintln(os.Stderr, WarningStyle.Render("Details: ")+formatErrorForDisplay(err, app.verbose))
		}
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// loadConfig loads configuration honoring --config and applies ui.verbose
// unless --verbose was given.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
	if err != nil {
		a.explain(issue.ConfigLoadFailedId, config.ColorSchemeAuto)
		return nil, err
	}
	if !a.verbose {
		a.verbose = cfg.UI.Verbose
	}
	return cfg, nil
}

// explain prints the catalogued guidance for id in verbose mode.
func (a *App) explain(id issue.Id, scheme config.ColorScheme) {
	if !a.verbose {
		return
	}
	is := issue.Get(id)
	if is == nil {
		return
	}
	rendered, err := is.Render(string(scheme))
	if err != nil {
		return
	}
	fmt.Fprint(a.stderr, rendered)
}

// formatErrorForDisplay formats an error for user display, expanding
// ActionableError suggestions and, in verbose mode, the error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// backendsFromConfig converts configured backend names at the package boundary.
func backendsFromConfig(cfg *config.Config) []compiler.BackendName {
	out := make([]compiler.BackendName, len(cfg.Compilers.Enabled))
	for i, b := range cfg.Compilers.Enabled {
		out[i] = compiler.BackendName(b)
	}
	return out
}
