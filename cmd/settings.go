package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

var settingsCmd = &cobra.Command{
	Use:   "settings key=value...",
	Short: "Apply app settings to a function app",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target, err := targetFromFlags(cmd)
		if err != nil {
			utils.Log.Fatal(err)
		}
		settings, err := utils.ParseSettings(args)
		if err != nil {
			utils.Log.Fatal(err)
		}

		err = withSignalContext(func(ctx context.Context) error {
			return newController().ApplySettings(ctx, target, settings)
		})
		if err != nil {
			utils.Log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	addTargetFlags(settingsCmd)
}
