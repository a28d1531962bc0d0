package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Ask the platform to rescan the function triggers",
	Run: func(cmd *cobra.Command, args []string) {
		target, err := targetFromFlags(cmd)
		if err != nil {
			utils.Log.Fatal(err)
		}

		err = withSignalContext(func(ctx context.Context) error {
			return newController().SyncTriggers(ctx, target)
		})
		if err != nil {
			utils.Log.Fatal(err)
		}
		utils.Log.Info("Triggers synced")
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	addTargetFlags(syncCmd)
}
