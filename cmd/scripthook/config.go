// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scripthook/scripthook/internal/config"
)

// newConfigCommand creates the `scripthook config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage scripthook configuration",
		Long: `Manage scripthook configuration.

Configuration is stored in:
  - Linux: ~/.config/scripthook/config.cue
  - macOS: ~/Library/Application Support/scripthook/config.cue
  - Windows: %APPDATA%\scripthook\config.cue

A config.cue in the working directory is used when the user file is absent.
Any value can be overridden with SCRIPTHOOK_<SECTION>_<KEY>, for example
SCRIPTHOOK_DISPATCH_FAULT_POLICY=fail-fast.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig(cmd.Context())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Config file:"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Locate(config.LoadOptions{ConfigFilePath: app.configPath})
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("(using defaults)"))
				return nil
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func (a *App) showConfig(ctx context.Context) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	w := a.stdout
	key := CmdStyle.Render
	val := SuccessStyle.Render

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	path, err := config.Locate(config.LoadOptions{ConfigFilePath: a.configPath})
	if err != nil || path == "" {
		path = SubtitleStyle.Render("(using defaults)")
	}
	fmt.Fprintf(w, "%s: %s\n\n", key("Config file"), path)

	root := cfg.Content.Root.String()
	if root == "" {
		root = SubtitleStyle.Render("(none, pass a directory)")
	} else {
		root = val(root)
	}
	fmt.Fprintf(w, "%s:\n  root: %s\n\n", key("content"), root)

	enabled := make([]string, len(cfg.Compilers.Enabled))
	for i, b := range cfg.Compilers.Enabled {
		enabled[i] = string(b)
	}
	fmt.Fprintf(w, "%s:\n", key("compilers"))
	fmt.Fprintf(w, "  enabled: %s\n", val(strings.Join(enabled, ", ")))
	fmt.Fprintf(w, "  shell.dialect: %s\n\n", val(string(cfg.Compilers.Shell.Dialect)))

	fmt.Fprintf(w, "%s:\n  fault_policy: %s\n\n", key("dispatch"), val(string(cfg.Dispatch.FaultPolicy)))

	fmt.Fprintf(w, "%s:\n", key("log"))
	fmt.Fprintf(w, "  level: %s\n", val(string(cfg.Log.Level)))
	fmt.Fprintf(w, "  format: %s\n\n", val(string(cfg.Log.Format)))

	addr := cfg.Metrics.Addr
	if addr == "" {
		addr = SubtitleStyle.Render("(disabled)")
	} else {
		addr = val(addr)
	}
	fmt.Fprintf(w, "%s:\n  addr: %s\n\n", key("metrics"), addr)

	fmt.Fprintf(w, "%s:\n", key("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", val(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(w, "  verbose: %s\n", val(fmt.Sprintf("%v", cfg.UI.Verbose)))
	return nil
}
