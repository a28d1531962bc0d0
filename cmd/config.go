package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "funcdeploy config setup",
	Long:  "funcdeploy config setup",
}

var configInit = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default values",
	Run: func(cmd *cobra.Command, args []string) {
		overwrite, _ := cmd.Flags().GetBool("overwrite")

		dir, err := utils.GetFuncdeployDir()
		if err != nil {
			utils.Log.Fatal(err)
		}
		path := filepath.Join(dir, "config.yaml")
		if utils.FileExists(path) && !overwrite {
			utils.Log.Fatal("Config file already exists, if you want to overwrite it use the --overwrite flag")
		}

		if err := os.MkdirAll(filepath.Join(dir, "deployments"), 0755); err != nil {
			utils.Log.Fatal(err)
		}
		if err := viper.WriteConfigAs(path); err != nil {
			utils.Log.Fatal(err)
		}
		utils.Log.Info("Init completed, your config file is ", path)
	},
}

var configGet = &cobra.Command{
	Use:   "get",
	Short: "Print values from the config",
	Run: func(cmd *cobra.Command, args []string) {
		fieldFlag, _ := cmd.Flags().GetString("field")

		for _, field := range strings.Split(fieldFlag, ",") {
			field = strings.TrimSpace(field)
			fmt.Println("-", field, ":", viper.Get(field))
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInit)
	configCmd.AddCommand(configGet)

	configInit.Flags().BoolP("overwrite", "o", false, "Overwrite an existing config file")
	configGet.Flags().StringP("field", "f", "", "field to retrieve, comma separated")

	configGet.MarkFlagRequired("field")
}
