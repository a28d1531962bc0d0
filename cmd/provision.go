package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the function app from the template",
	Run: func(cmd *cobra.Command, args []string) {
		target, err := targetFromFlags(cmd)
		if err != nil {
			utils.Log.Fatal(err)
		}

		templateFlag, _ := cmd.Flags().GetString("template")
		if templateFlag == "" {
			templateFlag = viper.GetString("azure.template_uri")
		}

		c := newController()
		err = withSignalContext(func(ctx context.Context) error {
			return c.Provision(ctx, target, templateFlag, c.TemplateParameters(target))
		})
		if err != nil {
			utils.Log.Fatal(err)
		}
		utils.Log.Info("Function app ", target.AppName, " provisioned")
	},
}

func init() {
	rootCmd.AddCommand(provisionCmd)
	addTargetFlags(provisionCmd)
	provisionCmd.Flags().String("template", "", "Template URI (default from config)")
}
