package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/nurpe/fleet-reports/internal/analytics"
	"github.com/nurpe/fleet-reports/internal/fleetapi"
)

func newReportCmd(opts options) *cobra.Command {
	var (
		rangeToken string
		timezone   string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard view model computed from live data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return err
			}

			log := opts.log()
			fetched := fleetapi.NewFetcher(client).FetchAll(cmd.Context())
			for collection, ferr := range fetched.Failures {
				log.Warn().Err(ferr).Str("collection", string(collection)).Msg("collection fetch failed")
			}

			report := analytics.BuildReport(fetched.Records, analytics.ParseRange(rangeToken), time.Now().UTC(), loc)
			report.Failures = fetched.FailureMessages()
			return render(cmd.OutOrStdout(), opts.format(), report)
		},
	}

	cmd.Flags().StringVar(&rangeToken, "range", "30d", "Date range: 7d | 30d | 90d | all")
	cmd.Flags().StringVar(&timezone, "tz", "UTC", "Time zone for weekday buckets")
	return cmd
}
