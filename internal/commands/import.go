package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/garyjia/invoice-importer/internal/application/importer"
	"github.com/garyjia/invoice-importer/internal/infrastructure/spreadsheet"
	"github.com/spf13/cobra"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import invoices from an .xlsx, .xls or .csv file",
		Long: `Import invoices from a spreadsheet whose rows are invoice lines:

  invoice number, invoice date, customer name, customer address,
  product name, quantity, unit price, line total, grand total

Rows sharing an invoice number form one invoice. Each invoice is stored in
its own transaction, so one bad invoice does not stop the others.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), opts, args[0], dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file without writing anything")

	return cmd
}

func runImport(ctx context.Context, out io.Writer, opts *globalOptions, path string, dryRun bool) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}
	if !spreadsheet.IsSupportedExtension(path) {
		return fmt.Errorf("unsupported file type %q, expected .xlsx, .xls or .csv", filepath.Ext(path))
	}

	a, err := openApp(ctx, opts, true)
	if err != nil {
		return err
	}
	defer a.Close()

	coordinator := a.container.Services().Importer

	fmt.Fprintf(out, "Importing %s\n", path)
	if !coordinator.ValidateFile(ctx, path) {
		return fmt.Errorf("%s: invalid file or no importable invoice", path)
	}
	fmt.Fprintln(out, "File validation passed")

	if dryRun {
		fmt.Fprintln(out, "Dry run: nothing was written")
		return nil
	}

	result, stats, err := coordinator.ImportFile(ctx, path)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	printImportResult(out, result, stats)
	return nil
}

func printImportResult(out io.Writer, result *importer.ImportResult, stats importer.Statistics) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintf(out, "%s\nIMPORT RESULTS\n%s\n", rule, rule)
	fmt.Fprintf(out, "Run ID:             %s\n", result.RunID)
	fmt.Fprintf(out, "Total processed:    %d\n", result.TotalProcessed())
	fmt.Fprintf(out, "Successful imports: %d\n", result.SuccessCount)
	fmt.Fprintf(out, "Failed imports:     %d\n", result.ErrorCount)

	if len(result.Errors) > 0 {
		fmt.Fprintln(out, "\nErrors encountered:")
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  - %s\n", e)
		}
	}

	fmt.Fprintln(out, "\nStatistics:")
	counters := stats.Map()
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-20s %d\n", k+":", counters[k])
	}

	if result.IsSuccess() {
		fmt.Fprintln(out, "\nImport completed successfully")
	} else {
		fmt.Fprintln(out, "\nImport completed with errors")
	}
}

func newValidateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a file holds at least one importable invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), opts, args[0], true)
		},
	}
}
