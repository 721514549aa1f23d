package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-toolkit/internal/remap"
	"github.com/nerrad567/gray-logic-toolkit/internal/settings"
	"github.com/nerrad567/gray-logic-toolkit/migrations"
)

// ─── remap ──────────────────────────────────────────────────────────

type remapOptions struct {
	from, to string
	min, max float64
	ranged   bool
}

func newRemapCmd() *cobra.Command {
	var opts remapOptions

	cmd := &cobra.Command{
		Use:   "remap VALUE",
		Short: "Convert a number between numeric kinds",
		Long: `Convert a number from one numeric kind to another.

Without --min/--max the value is mapped proportionally from the full range
of --from onto the full range of --to. With a range, the value is clamped
into [min, max] and that range is mapped onto --to.

Examples:
  gltoolkit remap 255 --from uint8 --to uint16
  gltoolkit remap 21.5 --from float64 --to uint8 --min 5 --max 35`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ranged = cmd.Flags().Changed("min") || cmd.Flags().Changed("max")
			return runRemap(cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.from, "from", "float64", "kind of the input value")
	cmd.Flags().StringVar(&opts.to, "to", "", "kind to convert to")
	cmd.Flags().Float64Var(&opts.min, "min", 0, "lower bound of the source range")
	cmd.Flags().Float64Var(&opts.max, "max", 0, "upper bound of the source range")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runRemap(w io.Writer, input string, opts remapOptions) error {
	from, err := remap.ParseKind(opts.from)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := remap.ParseKind(opts.to)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}
	v, err := remap.ParseValue(input, from)
	if err != nil {
		return err
	}

	var out remap.Value
	if opts.ranged {
		r, err := remap.NewRange(opts.min, opts.max)
		if err != nil {
			return err
		}
		out = r.ClampMinMaxThenRemap(v, to)
	} else {
		out = remap.Remap(v, to)
	}

	_, err = fmt.Fprintf(w, "%s %s -> %s %s (0x%s)\n", from, v, to, out, hex.EncodeToString(out.Bytes()))
	return err
}

// ─── settings ───────────────────────────────────────────────────────

func newSettingsCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect schemas and edit stored setting values",
	}

	var (
		schemaPath string
		asJSON     bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List the settings a schema declares with their default wire values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := schemaPath
			if path == "" {
				path = schemaPathFromConfig(*cfgPath)
			}
			schema, err := settings.LoadSchemaFile(path)
			if err != nil {
				return err
			}
			if asJSON {
				return writeSchemaJSON(cmd.OutOrStdout(), schema)
			}
			return writeSchemaTable(cmd.OutOrStdout(), schema)
		},
	}
	list.Flags().StringVarP(&schemaPath, "schema", "s", "", "schema file (default: settings.schema_path from the config)")
	list.Flags().BoolVar(&asJSON, "json", false, "print the schema as JSON")

	set := &cobra.Command{
		Use:   "set ID VALUE",
		Short: "Store a setting value directly in the database",
		Long: `Store an engineering value for a setting in the database, clamped
into its range. A running daemon picks the value up on its next restart
or schema reload.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("%w: %q", remap.ErrInvalidNumber, args[1])
			}
			cfg, err := config.Load(resolveConfigPath(*cfgPath))
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runSettingsSet(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], value)
		},
	}

	cmd.AddCommand(list, set)
	return cmd
}

func runSettingsSet(ctx context.Context, w io.Writer, cfg *config.Config, id string, value float64) error {
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // the write has already committed

	if err := db.Migrate(ctx, migrations.Source()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	schema, err := settings.LoadSchemaFile(cfg.Settings.SchemaPath)
	if err != nil {
		return fmt.Errorf("loading settings schema: %w", err)
	}
	svc, err := settings.NewService(schema, settings.NewSQLiteRepository(db.DB), settings.Options{})
	if err != nil {
		return err
	}
	if err := svc.Load(ctx); err != nil {
		return err
	}

	got, err := svc.SetFrom(ctx, id, value, settings.SourceCLI)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s = %s (wire %s %s)\n",
		got.ID, strconv.FormatFloat(got.Value, 'g', -1, 64), got.Wire, got.WireValue)
	return err
}

// schemaPathFromConfig reads settings.schema_path from the config file,
// falling back to the built-in default when the file cannot be loaded.
func schemaPathFromConfig(flagValue string) string {
	if cfg, err := config.Load(resolveConfigPath(flagValue)); err == nil {
		return cfg.Settings.SchemaPath
	}
	return config.Default().Settings.SchemaPath
}

// settingRow is one line of the settings table.
type settingRow struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Unit        string      `json:"unit,omitempty"`
	Range       string      `json:"range"`
	Wire        remap.Kind  `json:"wire"`
	Default     float64     `json:"default"`
	WireDefault remap.Value `json:"wire_default"`
}

func schemaRows(schema *settings.Schema) []settingRow {
	rows := make([]settingRow, 0, len(schema.Settings))
	for _, def := range schema.Settings {
		dflt := def.DefaultValue()
		rows = append(rows, settingRow{
			ID:          def.ID,
			Name:        def.Name,
			Unit:        def.Unit,
			Range:       def.Range().String(),
			Wire:        def.Wire,
			Default:     dflt,
			WireDefault: def.Binding().Encode(dflt),
		})
	}
	return rows
}

func writeSchemaJSON(w io.Writer, schema *settings.Schema) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Version  int          `json:"version"`
		Settings []settingRow `json:"settings"`
	}{schema.Version, schemaRows(schema)})
}

// maxNameWidth caps the name column; longer names are truncated.
const maxNameWidth = 32

func writeSchemaTable(w io.Writer, schema *settings.Schema) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "schema version %d\n", schema.Version)
	fmt.Fprintln(tw, "ID\tNAME\tRANGE\tWIRE\tDEFAULT\tWIRE DEFAULT")
	for _, r := range schemaRows(schema) {
		dflt := strconv.FormatFloat(r.Default, 'g', -1, 64)
		if r.Unit != "" {
			dflt += " " + r.Unit
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, ansi.Truncate(r.Name, maxNameWidth, "…"), r.Range, r.Wire, dflt, r.WireDefault)
	}
	return tw.Flush()
}

// ─── version ────────────────────────────────────────────────────────

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gltoolkit %s\ncommit: %s\nbuilt:  %s\n", version, commit, date)
		},
	}
}
