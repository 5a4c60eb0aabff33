package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nurpe/fleet-reports/internal/smoke"
)

func newCrudCmd(opts options) *cobra.Command {
	return &cobra.Command{
		Use:   "crud",
		Short: "Create, list, update and delete one of each fleet entity",
		Long: `Runs the vehicle, issue, ticket, shift and inspection flows against the
backend and deletes everything it created. Exits non-zero if any step failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			results := smoke.NewRunner(client, opts.log()).RunCRUD(cmd.Context())
			if err := render(cmd.OutOrStdout(), opts.format(), results); err != nil {
				return err
			}
			if !results.OK() {
				return fmt.Errorf("%d of %d steps failed", results.Failed(), len(results.Steps))
			}
			return nil
		},
	}
}
