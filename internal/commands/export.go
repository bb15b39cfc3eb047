package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/garyjia/invoice-importer/internal/application/service"
	"github.com/garyjia/invoice-importer/pkg/database"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	dataType string
	format   string
	output   string
	filter   service.FilterParams
}

func newExportCommand(opts *globalOptions) *cobra.Command {
	var eo exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored invoices or customers as json, xml or excel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), opts, eo)
		},
	}

	cmd.Flags().StringVar(&eo.dataType, "type", "invoices", "data to export: invoices or customers")
	cmd.Flags().StringVar(&eo.format, "format", "", "json, xml or excel (default from config)")
	cmd.Flags().StringVarP(&eo.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&eo.filter.CustomerID, "customer", "", "only invoices of this customer id")
	cmd.Flags().StringVar(&eo.filter.StartDate, "from", "", "only invoices dated on or after YYYY-MM-DD")
	cmd.Flags().StringVar(&eo.filter.EndDate, "to", "", "only invoices dated on or before YYYY-MM-DD")
	cmd.Flags().StringVar(&eo.filter.MinAmount, "min", "", "minimum grand total")
	cmd.Flags().StringVar(&eo.filter.MaxAmount, "max", "", "maximum grand total")

	return cmd
}

func runExport(ctx context.Context, out io.Writer, opts *globalOptions, eo exportOptions) error {
	if eo.dataType != "invoices" && eo.dataType != "customers" {
		return fmt.Errorf("invalid --type %q, supported: invoices, customers", eo.dataType)
	}

	filter, err := service.ParseInvoiceFilter(eo.filter)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, opts, false)
	if err != nil {
		return err
	}
	defer a.Close()

	exists, err := database.NewMigrator(a.container.SQLDB(), a.logger).SchemaExists()
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if !exists {
		return fmt.Errorf("database schema not found, run import or migrate first")
	}

	format := eo.format
	if format == "" {
		format = a.cfg.Export.DefaultFormat
	}

	exporter := a.container.Services().Export
	if !exporter.IsValidFormat(format) {
		return fmt.Errorf("invalid --format %q, supported: %v", format, exporter.SupportedFormats())
	}

	var data []byte
	if eo.dataType == "customers" {
		data, err = exporter.ExportCustomers(ctx, format)
	} else {
		data, err = exporter.ExportInvoices(ctx, format, filter)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if eo.output == "" {
		_, err = out.Write(data)
		return err
	}

	if err := os.WriteFile(eo.output, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", eo.output, err)
	}
	fmt.Fprintf(out, "Data exported to: %s\n", eo.output)
	return nil
}
