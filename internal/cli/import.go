package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrlokans/berthplan/internal/entrypoint"
	"github.com/mrlokans/berthplan/internal/schedule"
	"github.com/mrlokans/berthplan/internal/services"
)

// ImportCommand imports a pasted bulletin from a file or stdin.
type ImportCommand struct {
	File     string
	Year     int
	ImportID string
	DryRun   bool
	Verbose  bool
	JSON     bool

	flags *globalFlags
}

func newImportCommand(flags *globalFlags) *cobra.Command {
	ic := &ImportCommand{flags: flags}

	cmd := &cobra.Command{
		Use:   "import -f <file|->",
		Short: "Import a berth schedule bulletin",
		Long: "Import a pasted port bulletin into the schedule database.\n\n" +
			"Each vessel entry opens with the block marker. Entries that are out of the\n" +
			"managed quay range are skipped; malformed entries are reported and ignored.",
		Example: "  berthplan import -f bulletin.txt --year 2024\n" +
			"  pbpaste | berthplan import -f - --dry-run --verbose",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ic.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&ic.File, "file", "f", "", "bulletin text file, or - for stdin (required)")
	cmd.Flags().IntVar(&ic.Year, "year", time.Now().Year(), "year the bulletin dates belong to")
	cmd.Flags().StringVar(&ic.ImportID, "import-id", "", "import batch id (generated when empty)")
	cmd.Flags().BoolVar(&ic.DryRun, "dry-run", false, "parse and report without storing anything")
	cmd.Flags().BoolVarP(&ic.Verbose, "verbose", "v", false, "list every block outcome")
	cmd.Flags().BoolVar(&ic.JSON, "json", false, "print the report as JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (ic *ImportCommand) Run(ctx context.Context, stdin io.Reader, out io.Writer) error {
	text, err := ic.readText(stdin)
	if err != nil {
		return err
	}

	cfg := ic.flags.load()
	level := cfg.Log.Level
	if ic.flags.LogLevel == "" {
		level = "warn"
	}
	log, err := newLogger(level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	app, err := entrypoint.NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	req := services.ImportRequest{Text: text, Year: ic.Year, ImportID: ic.ImportID}

	var report services.ImportReport
	if ic.DryRun {
		report, err = app.Importer.Preview(req)
	} else {
		if ctx == nil {
			ctx = context.Background()
		}
		report, err = app.Importer.Import(ctx, req)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if ic.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	ic.printReport(out, report)
	return nil
}

func (ic *ImportCommand) readText(stdin io.Reader) (string, error) {
	if ic.File == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(ic.File)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("bulletin file not found: %s", ic.File)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read bulletin file: %w", err)
	}
	return string(data), nil
}

func (ic *ImportCommand) printReport(out io.Writer, r services.ImportReport) {
	fmt.Fprintln(out, "Schedule Import")
	fmt.Fprintln(out, "===============")
	if ic.DryRun {
		fmt.Fprintln(out, "DRY RUN MODE - No changes were made")
	}
	fmt.Fprintf(out, "Year: %d\n", r.Year)
	fmt.Fprintf(out, "Blocks: %d total, %d parsed, %d skipped, %d errored\n",
		r.BlocksTotal, r.BlocksParsed, r.BlocksSkipped, r.BlocksErrored)

	if ic.Verbose {
		fmt.Fprintln(out)
		for _, o := range r.Outcomes {
			name := o.ShipName
			if name == "" {
				name = "(no name)"
			}
			switch o.Status {
			case schedule.StatusParsed:
				fmt.Fprintf(out, "%3d. %-8s %s (%d days)\n", o.Index+1, o.Status, name, len(o.Records))
			default:
				fmt.Fprintf(out, "%3d. %-8s %s: %s\n", o.Index+1, o.Status, name, o.Reason)
			}
		}
		fmt.Fprintln(out)
	}

	if ic.DryRun {
		fmt.Fprintf(out, "Records: %d would be written\n", len(r.Records))
		return
	}
	fmt.Fprintf(out, "Records: %d created, %d updated, %d unchanged\n",
		r.RecordsCreated, r.RecordsUpdated, r.RecordsUnchanged)
	fmt.Fprintf(out, "Import ID: %s\n", r.ImportID)
}
