// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scripthook/scripthook/internal/compiler"
)

func newVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and supported script API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(app.stdout, "%s %s\n", TitleStyle.Render("scripthook"), getVersionString())
			fmt.Fprintf(app.stdout, "%s %s\n", CmdStyle.Render("host API:"), compiler.APIVersion)
			fmt.Fprintf(app.stdout, "%s %s\n", CmdStyle.Render("backends:"), strings.Join(backendNames(), ", "))
			return nil
		},
	}
}

func backendNames() []string {
	all := compiler.Backends()
	names := make([]string, len(all))
	for i, b := range all {
		names[i] = string(b)
	}
	return names
}
