package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Create the function folder and upload a local directory into it over FTP",
	Run: func(cmd *cobra.Command, args []string) {
		target, err := targetFromFlags(cmd)
		if err != nil {
			utils.Log.Fatal(err)
		}
		dirFlag, _ := cmd.Flags().GetString("dir")
		functionFlag, _ := cmd.Flags().GetString("function")
		if functionFlag == "" {
			functionFlag = viper.GetString("deploy.function")
		}

		unit := models.UploadUnit{RemoteName: functionFlag, LocalPath: utils.ExpandPath(dirFlag)}
		err = withSignalContext(func(ctx context.Context) error {
			return newController().Upload(ctx, target, unit)
		})
		if err != nil {
			utils.Log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	addTargetFlags(uploadCmd)
	uploadCmd.Flags().StringP("dir", "D", "", "Local directory holding the function files")
	uploadCmd.Flags().String("function", "", "Remote function folder (default from config, MyFunc)")

	uploadCmd.MarkFlagRequired("dir")
}
