package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the publish methods of a function app",
	Run: func(cmd *cobra.Command, args []string) {
		target, err := targetFromFlags(cmd)
		if err != nil {
			utils.Log.Fatal(err)
		}

		err = withSignalContext(func(ctx context.Context) error {
			return newController().PrintProfile(ctx, target, os.Stdout)
		})
		if err != nil {
			utils.Log.Fatal(err)
		}
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Check that a management access token is available",
	Run: func(cmd *cobra.Command, args []string) {
		err := withSignalContext(func(ctx context.Context) error {
			return newController().CheckToken(ctx, models.Target{})
		})
		if err != nil {
			utils.Log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(tokenCmd)
	addTargetFlags(profileCmd)
}
