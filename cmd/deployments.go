package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

var deploymentsCmd = &cobra.Command{
	Use:   "deployments",
	Short: "List saved deployments",
	Run: func(cmd *cobra.Command, args []string) {
		names, err := utils.ListDeployments()
		if err != nil {
			utils.Log.Fatal(err)
		}
		if len(names) == 0 {
			fmt.Println("No deployments found. Save one with: funcdeploy deploy ... --save <name>")
			return
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Name", "App", "Resource Group", "Directory", "Settings"})
		table.SetBorder(false)

		for _, name := range names {
			d, err := utils.ReadDeploymentFile(name)
			if err != nil {
				utils.Log.Warn(err)
				continue
			}
			keys := make([]string, 0, len(d.Settings))
			for _, s := range d.Settings {
				keys = append(keys, strings.SplitN(s, "=", 2)[0])
			}
			table.Append([]string{name, d.AppName, d.ResourceGroup, d.Directory, strings.Join(keys, ", ")})
		}
		table.Render()
	},
}

func init() {
	rootCmd.AddCommand(deploymentsCmd)
}
