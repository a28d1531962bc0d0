package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"github.com/FleexSecurity/funcdeploy/pkg/ui"
	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

var execCmd = &cobra.Command{
	Use:   "exec -- command...",
	Short: "Run a command in the function folder through the SCM site",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target, err := targetFromFlags(cmd)
		if err != nil {
			utils.Log.Fatal(err)
		}
		functionFlag, _ := cmd.Flags().GetString("function")
		if functionFlag == "" {
			functionFlag = viper.GetString("deploy.function")
		}

		var result models.CommandResult
		err = withSignalContext(func(ctx context.Context) error {
			var err error
			result, err = newController().Exec(ctx, target, strings.Join(args, " "), functionFlag)
			return err
		})
		if err != nil {
			utils.Log.Fatal(err)
		}
		fmt.Print(result.Output)
		if result.Error != "" {
			ui.Warning(result.Error)
		}
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
	addTargetFlags(execCmd)
	execCmd.Flags().String("function", "", "Remote function folder (default from config, MyFunc)")
}
