// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pelletier/go-toml/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/scripthook/scripthook/internal/hooks"
)

const (
	formatText listFormat = "text"
	formatJSON listFormat = "json"
	formatYAML listFormat = "yaml"
	formatTOML listFormat = "toml"

	hooksSchemaURL = "hooks.schema.json"
)

//go:embed schema/hooks.schema.json
var hooksSchemaBytes []byte

var (
	hooksSchema     *jsonschema.Schema
	hooksSchemaOnce sync.Once
	hooksSchemaErr  error
)

type (
	listFormat string

	// hookRecord is one registered hook as printed by 'scripthook hooks'.
	hookRecord struct {
		Scene string `json:"scene" yaml:"scene" toml:"scene"`
		Event string `json:"event" yaml:"event" toml:"event"`
		Owner string `json:"owner" yaml:"owner" toml:"owner"`
		Name  string `json:"name" yaml:"name" toml:"name"`
	}

	hookListing struct {
		Hooks []hookRecord `json:"hooks" yaml:"hooks" toml:"hooks"`
	}
)

func newHooksCommand(app *App) *cobra.Command {
	var (
		format     string
		showSchema bool
	)
	hooksCmd := &cobra.Command{
		Use:   "hooks [dir]",
		Short: "List the hooks registered by a content tree",
		Long: `Load every script under dir (or content.root) and list the hooks that
were registered, in registration order.

Machine-readable formats are checked against the listing schema before
they are written; --schema prints that schema.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if showSchema {
				_, err := app.stdout.Write(hooksSchemaBytes)
				return err
			}
			return app.listHooks(cmd.Context(), firstArg(args), listFormat(format))
		},
	}
	hooksCmd.Flags().StringVarP(&format, "format", "f", string(formatText), "output format: text, json, yaml or toml")
	hooksCmd.Flags().BoolVar(&showSchema, "schema", false, "print the JSON schema of the listing and exit")
	return hooksCmd
}

func (a *App) listHooks(ctx context.Context, dir string, format listFormat) error {
	switch format {
	case formatText, formatJSON, formatYAML, formatTOML:
	default:
		return fmt.Errorf("unknown format %q (valid: text, json, yaml, toml)", format)
	}

	s, err := a.openSession(ctx, dir, nil)
	if err != nil {
		return err
	}
	listing := newHookListing(s.report.Registrations)

	if format == formatText {
		return renderHookTable(a.stdout, listing)
	}
	if err := validateListing(listing); err != nil {
		return err
	}
	return encodeListing(a.stdout, listing, format)
}

func newHookListing(regs []hooks.Registration) hookListing {
	listing := hookListing{Hooks: make([]hookRecord, 0, len(regs))}
	for _, r := range regs {
		listing.Hooks = append(listing.Hooks, hookRecord{
			Scene: string(r.Scene),
			Event: string(r.Event),
			Owner: r.Owner,
			Name:  r.Name,
		})
	}
	return listing
}

func encodeListing(w io.Writer, listing hookListing, format listFormat) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(listing); err != nil {
			return err
		}
		return enc.Close()
	case formatTOML:
		return toml.NewEncoder(w).Encode(listing)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderHookTable(w io.Writer, listing hookListing) error {
	if len(listing.Hooks) == 0 {
		_, err := fmt.Fprintln(w, WarningStyle.Render("No hooks registered."))
		return err
	}

	rows := make([][]string, 0, len(listing.Hooks))
	for _, h := range listing.Hooks {
		rows = append(rows, []string{displayName(h.Scene), h.Event, h.Owner, h.Name})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers("SCENE", "EVENT", "OWNER", "HOOK").
		Rows(rows...)

	_, err := fmt.Fprintf(w, "%s\n%s\n", t.Render(),
		SubtitleStyle.Render(fmt.Sprintf("%d hooks", len(listing.Hooks))))
	return err
}

func getHooksSchema() (*jsonschema.Schema, error) {
	hooksSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(hooksSchemaBytes))
		if err != nil {
			hooksSchemaErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(hooksSchemaURL, doc); err != nil {
			hooksSchemaErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		hooksSchema, hooksSchemaErr = c.Compile(hooksSchemaURL)
		if hooksSchemaErr != nil {
			hooksSchemaErr = fmt.Errorf("compiling schema: %w", hooksSchemaErr)
		}
	})
	return hooksSchema, hooksSchemaErr
}

// validateListing checks listing against the embedded schema through its
// JSON form, the same shape every machine-readable format carries.
func validateListing(listing hookListing) error {
	sch, err := getHooksSchema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return validateListingJSON(sch, data)
}

func validateListingJSON(sch *jsonschema.Schema, data []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parsing listing JSON: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("hook listing does not match schema: %w", err)
	}
	return nil
}
