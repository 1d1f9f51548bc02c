package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/brightpath/internal/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard <learner-id>",
	Short: "Open the terminal dashboard for a learner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		refresh, _ := cmd.Flags().GetDuration("refresh")
		limit, _ := cmd.Flags().GetInt("limit")

		d, err := openDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.close()

		return dashboard.Run(dashboard.NewStoreLoader(d.records, d.events, args[0], limit), refresh)
	},
}

func init() {
	dashboardCmd.Flags().Duration("refresh", 0, "Reload interval, e.g. 5s (0 disables)")
	dashboardCmd.Flags().IntP("limit", "n", 25, "Number of decisions to load")
}
