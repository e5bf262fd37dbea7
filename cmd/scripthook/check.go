// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/scripthook/scripthook/internal/issue"
	"github.com/scripthook/scripthook/internal/loader"
)

func newCheckCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check [dir]",
		Short: "Compile every script and report failures",
		Long: `Compile every script under dir (or content.root) exactly as run would,
print one line per file, and exit with status 1 when any file fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.check(cmd.Context(), firstArg(args))
		},
	}
}

func (a *App) check(ctx context.Context, dir string) error {
	s, err := a.openSession(ctx, dir, nil)
	if err != nil {
		return err
	}

	renderReport(a.stdout, s.report)

	if !s.report.OK() {
		a.explain(issue.CompilationFailedId, s.cfg.UI.ColorScheme)
		return &ExitError{Code: exitScriptFailure, Err: fmt.Errorf("%d of %d scripts failed to compile",
			len(s.report.Failed), len(s.report.Failed)+len(s.report.Compiled))}
	}
	return nil
}

func renderReport(w io.Writer, r *loader.Report) {
	for _, url := range r.Compiled {
		fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("✓"), url)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("✗"), f.URL)
		for _, d := range f.Diagnostics {
			fmt.Fprintf(w, "    %s\n", SubtitleStyle.Render(d.String()))
		}
	}

	summary := fmt.Sprintf("%d compiled, %d failed, %d hooks registered in %s",
		len(r.Compiled), len(r.Failed), len(r.Registrations), r.Elapsed.Round(time.Microsecond))
	if r.OK() {
		fmt.Fprintln(w, SuccessStyle.Render(summary))
	} else {
		fmt.Fprintln(w, WarningStyle.Render(summary))
	}
}
