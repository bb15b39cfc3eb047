package commands

import (
	"fmt"
	"sort"

	"github.com/garyjia/invoice-importer/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			applied, err := database.NewMigrator(a.container.SQLDB(), a.logger).AppliedVersions()
			if err != nil {
				return err
			}
			versions := make([]int, 0, len(applied))
			for v := range applied {
				versions = append(versions, v)
			}
			sort.Ints(versions)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Applied %d new migration(s)\n", a.container.MigrationsApplied())
			fmt.Fprintf(out, "Schema versions: %v\n", versions)
			return nil
		},
	}
}
