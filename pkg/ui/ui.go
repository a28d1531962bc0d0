package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// DeployProgress shows one spinner per deployment step on a terminal and falls back to log
// lines otherwise.
type DeployProgress struct {
	interactive bool
	spinner     *pterm.SpinnerPrinter
	total       int
	current     int
	succeeded   int
}

func NewDeployProgress(total int) *DeployProgress {
	return &DeployProgress{
		interactive: IsTerminal(),
		total:       total,
	}
}

func (dp *DeployProgress) Start(target models.Target) {
	if !dp.interactive {
		utils.Log.Infof("Deploying %s (resource group %s, subscription %s)", target.AppName, target.ResourceGroup, target.SubscriptionID)
		return
	}
	pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Printf("Deploying %s", target.AppName)
	fmt.Println()
}

func (dp *DeployProgress) StartStep(name string) {
	dp.current++
	text := fmt.Sprintf("Step %d/%d: %s", dp.current, dp.total, name)
	if !dp.interactive {
		utils.Log.Info(text)
		return
	}
	dp.spinner, _ = pterm.DefaultSpinner.
		WithRemoveWhenDone(false).
		Start(text + "...")
}

func (dp *DeployProgress) StepSuccess(name string, duration time.Duration) {
	dp.succeeded++
	text := fmt.Sprintf("%s done in %s", name, duration.Round(time.Millisecond))
	if dp.spinner == nil {
		utils.Log.Info(text)
		return
	}
	dp.spinner.Success(text)
	dp.spinner = nil
}

func (dp *DeployProgress) StepFailed(name string, err error) {
	text := fmt.Sprintf("%s failed: %v", name, err)
	if dp.spinner == nil {
		utils.Log.Error(text)
		return
	}
	dp.spinner.Fail(text)
	dp.spinner = nil
}

func (dp *DeployProgress) Done() {
	if !dp.interactive {
		utils.Log.Infof("Deployment finished: %d/%d steps", dp.succeeded, dp.total)
		return
	}
	fmt.Println()
	if dp.succeeded == dp.total {
		pterm.Success.Printfln("Deployment complete: %d/%d steps", dp.succeeded, dp.total)
	} else {
		pterm.Warning.Printfln("Deployment stopped: %d/%d steps", dp.succeeded, dp.total)
	}
}

func ShowDeploySummary(results []models.StepResult) {
	fmt.Println()
	pterm.DefaultSection.Println("Deployment Summary")

	tableData := pterm.TableData{
		{"Step", "Status", "Duration"},
	}
	for _, r := range results {
		status := pterm.Green("Success")
		if !r.Success {
			status = pterm.Red("Failed")
		}
		tableData = append(tableData, []string{
			r.StepName,
			status,
			r.Duration.Round(time.Millisecond).String(),
		})
	}

	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

// PrintProfileTable writes the publish methods of a profile. Passwords are masked.
func PrintProfileTable(w io.Writer, profile models.PublishProfile) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Method", "Profile", "User", "Password", "Publish URL"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, m := range profile.Methods {
		table.Append([]string{m.Method, m.ProfileName, m.UserName, utils.MaskSecret(m.Password), m.PublishURL})
	}
	table.Render()
}

func Info(msg string) {
	pterm.Info.Println(msg)
}

func Success(msg string) {
	pterm.Success.Println(msg)
}

func Warning(msg string) {
	pterm.Warning.Println(msg)
}
