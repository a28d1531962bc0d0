package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/FleexSecurity/funcdeploy/pkg/controller"
	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"github.com/FleexSecurity/funcdeploy/pkg/ui"
	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Provision a function app and deploy a folder into it",
	Long: `Run the whole deployment: template deployment, app settings, remote folder,
FTP upload, remote install command and trigger sync. The run stops at the first failing step.

Examples:
  funcdeploy deploy -S <subscription> -N myapp -G mygroup -D ./MyFunc --settings IOTHUB=...
  funcdeploy deploy -f devkit --skip-provision
  funcdeploy deploy -S s1 -N myapp -G rg1 -D ./MyFunc --save devkit`,
	Run: func(cmd *cobra.Command, args []string) {
		fileFlag, _ := cmd.Flags().GetString("file")
		saveFlag, _ := cmd.Flags().GetString("save")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		skipProvision, _ := cmd.Flags().GetBool("skip-provision")

		deployment := &models.Deployment{}
		if fileFlag != "" {
			var err error
			deployment, err = utils.ReadDeploymentFile(fileFlag)
			if err != nil {
				utils.Log.Fatal(err)
			}
		}
		mergeDeploymentFlags(cmd, deployment)

		opts, err := deployOptions(deployment, skipProvision, dryRun)
		if err != nil {
			utils.Log.Fatal(err)
		}

		c := newController()
		if saveFlag != "" {
			deployment.Name = saveFlag
			path, err := saveDeployment(c, deployment, &opts)
			if err != nil {
				utils.Log.Fatal(err)
			}
			utils.Log.Info("Deployment saved to ", path)
		}

		var results []models.StepResult
		err = withSignalContext(func(ctx context.Context) error {
			var err error
			results, err = c.Deploy(ctx, opts)
			return err
		})
		if len(results) > 0 && ui.IsTerminal() {
			ui.ShowDeploySummary(results)
		}
		if err != nil {
			utils.Log.Fatal(err)
		}
		if !dryRun {
			ui.Success("Function app " + opts.Target.AppName + " deployed")
		}
	},
}

func deployOptions(d *models.Deployment, skipProvision, dryRun bool) (models.DeployOptions, error) {
	settings, err := utils.ParseSettings(d.Settings)
	if err != nil {
		return models.DeployOptions{}, err
	}

	return models.DeployOptions{
		Target:      d.Target(),
		TemplateURI: d.Template,
		Parameters: map[string]string{
			"appName":            d.AppName,
			"storageAccountType": d.StorageAccountType,
		},
		Settings: settings,
		Upload: models.UploadUnit{
			RemoteName: d.Function,
			LocalPath:  d.Directory,
		},
		InstallCommand: d.Install,
		SkipProvision:  skipProvision,
		DryRun:         dryRun,
	}, nil
}

// saveDeployment writes d only once opts describe a deployment that can run.
func saveDeployment(c controller.Controller, d *models.Deployment, opts *models.DeployOptions) (string, error) {
	if err := c.Validate(opts); err != nil {
		return "", err
	}
	return utils.SaveDeployment(d)
}

// mergeDeploymentFlags lets explicit flags override the values read from a deployment file and
// fills whatever is still empty from the configuration.
func mergeDeploymentFlags(cmd *cobra.Command, d *models.Deployment) {
	override := func(flag string, dst *string) {
		if cmd.Flags().Changed(flag) {
			*dst, _ = cmd.Flags().GetString(flag)
		}
	}
	override("subscription", &d.SubscriptionID)
	override("name", &d.AppName)
	override("group", &d.ResourceGroup)
	override("dir", &d.Directory)
	override("function", &d.Function)
	override("install", &d.Install)
	override("template", &d.Template)

	if cmd.Flags().Changed("settings") {
		d.Settings, _ = cmd.Flags().GetStringArray("settings")
	}

	fallback := func(dst *string, key string) {
		if *dst == "" {
			*dst = viper.GetString(key)
		}
	}
	fallback(&d.SubscriptionID, "target.subscription_id")
	fallback(&d.AppName, "target.app_name")
	fallback(&d.ResourceGroup, "target.resource_group")
	fallback(&d.Function, "deploy.function")
	fallback(&d.Template, "azure.template_uri")
	fallback(&d.StorageAccountType, "azure.storage_account_type")
	if !cmd.Flags().Changed("install") && d.Install == "" {
		d.Install = viper.GetString("deploy.install_command")
	}
	d.Directory = utils.ExpandPath(d.Directory)
}

func init() {
	rootCmd.AddCommand(deployCmd)
	addTargetFlags(deployCmd)
	deployCmd.Flags().StringP("dir", "D", "", "Local directory holding the function files")
	deployCmd.Flags().StringArray("settings", nil, "App setting as key=value, repeatable")
	deployCmd.Flags().StringP("file", "f", "", "Deployment file name or path")
	deployCmd.Flags().String("save", "", "Save the resulting deployment under this name")
	deployCmd.Flags().String("function", "", "Remote function folder (default from config, MyFunc)")
	deployCmd.Flags().String("install", "", "Command run in the function folder after the upload, empty to skip")
	deployCmd.Flags().String("template", "", "Template URI (default from config)")
	deployCmd.Flags().Bool("skip-provision", false, "Deploy into an existing function app")
	deployCmd.Flags().Bool("dry-run", false, "Print the steps without running them")
}
