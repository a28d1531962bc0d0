package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/FleexSecurity/funcdeploy/pkg/controller"
	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

var cfgFile string
var globalConfig *models.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "funcdeploy",
	Short: `
funcdeploy provisions an Azure function app and deploys a local folder into it:
template deployment, app settings, FTP upload, remote install and trigger sync.
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/funcdeploy/config.yaml)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
}

func setDefaults() {
	azureDir := os.Getenv("AZURE_CONFIG_DIR")
	if azureDir == "" {
		azureDir = "~/.azure"
	}

	viper.SetDefault("azure.cli", "az")
	viper.SetDefault("azure.template_uri", models.DefaultTemplateURI)
	viper.SetDefault("azure.storage_account_type", models.DefaultStorageAccountType)
	viper.SetDefault("azure.management_url", "https://management.azure.com")
	viper.SetDefault("azure.token_resource", "https://management.core.windows.net/")
	viper.SetDefault("azure.config_dir", azureDir)
	viper.SetDefault("azure.cli_credential_fallback", false)
	viper.SetDefault("scm.base_url", models.DefaultSCMBaseURL)
	viper.SetDefault("scm.site_root", models.DefaultSiteRoot)
	viper.SetDefault("ftp.timeout", "30s")
	viper.SetDefault("deploy.function", models.DefaultFunction)
	viper.SetDefault("deploy.install_command", models.DefaultInstallCommand)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setDefaults()

	if cfgFile != "" {
		// Use config file from the flag.
		if !utils.FileExists(cfgFile) {
			utils.Log.Fatal("Invalid config file path")
		}
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(filepath.Join(home, "funcdeploy"))
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("funcdeploy")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		utils.Log.Debug("Using config file: ", viper.ConfigFileUsed())
	}

	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)

	proxy, _ := rootCmd.PersistentFlags().GetString("proxy")
	globalConfig = loadConfig(proxy)
}

func loadConfig(proxy string) *models.Config {
	return &models.Config{
		Azure: models.AzureConfig{
			CLI:                   viper.GetString("azure.cli"),
			TemplateURI:           viper.GetString("azure.template_uri"),
			StorageAccountType:    viper.GetString("azure.storage_account_type"),
			ManagementURL:         viper.GetString("azure.management_url"),
			TokenResource:         viper.GetString("azure.token_resource"),
			ConfigDir:             viper.GetString("azure.config_dir"),
			CLICredentialFallback: viper.GetBool("azure.cli_credential_fallback"),
		},
		SCM: models.SCMConfig{
			BaseURL:  viper.GetString("scm.base_url"),
			SiteRoot: viper.GetString("scm.site_root"),
		},
		FTP: models.FTPConfig{
			Timeout: viper.GetDuration("ftp.timeout"),
		},
		Deploy: models.DeployDefaults{
			Function:       viper.GetString("deploy.function"),
			InstallCommand: viper.GetString("deploy.install_command"),
		},
		Proxy: proxy,
	}
}

// withSignalContext runs fn with a context cancelled on the first interrupt. The signal
// handler is released before returning, so callers may exit on the returned error.
func withSignalContext(fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return fn(ctx)
}

func newController() controller.Controller {
	return controller.NewController(globalConfig)
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("subscription", "S", "", "Subscription id")
	cmd.Flags().StringP("name", "N", "", "Function app name")
	cmd.Flags().StringP("group", "G", "", "Resource group")
}

// targetFromFlags reads the target flags, falling back to the target.* config keys.
func targetFromFlags(cmd *cobra.Command) (models.Target, error) {
	subscription, _ := cmd.Flags().GetString("subscription")
	name, _ := cmd.Flags().GetString("name")
	group, _ := cmd.Flags().GetString("group")

	if subscription == "" {
		subscription = viper.GetString("target.subscription_id")
	}
	if name == "" {
		name = viper.GetString("target.app_name")
	}
	if group == "" {
		group = viper.GetString("target.resource_group")
	}

	target := models.Target{SubscriptionID: subscription, AppName: name, ResourceGroup: group}
	if !target.Valid() {
		return target, models.ErrMissingTarget
	}
	return target, nil
}
