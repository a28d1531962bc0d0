package controller

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/FleexSecurity/funcdeploy/pkg/azure"
	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"github.com/FleexSecurity/funcdeploy/pkg/provider"
	"github.com/FleexSecurity/funcdeploy/pkg/ui"
	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

// Step is one stage of a deployment run.
type Step interface {
	Name() string
	Describe() string
	Run(ctx context.Context, s *models.Session) error
}

// outputStep is implemented by steps that capture remote output.
type outputStep interface {
	Output() string
}

type provisionStep struct {
	platform    provider.Platform
	templateURI string
	params      map[string]string
}

func (p *provisionStep) Name() string { return "provision" }

func (p *provisionStep) Describe() string {
	keys := make([]string, 0, len(p.params))
	for k := range p.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	desc := "create the function app from " + p.templateURI
	for _, k := range keys {
		desc += fmt.Sprintf(" %s=%s", k, p.params[k])
	}
	return desc
}

func (p *provisionStep) Run(ctx context.Context, s *models.Session) error {
	return p.platform.Provision(ctx, s, p.templateURI, p.params)
}

type settingsStep struct {
	platform provider.Platform
	settings []models.Setting
}

func (st *settingsStep) Name() string { return "settings" }

func (st *settingsStep) Describe() string {
	keys := make([]string, len(st.settings))
	for i, setting := range st.settings {
		keys[i] = setting.Key
	}
	return fmt.Sprintf("apply %d app settings %v", len(st.settings), keys)
}

func (st *settingsStep) Run(ctx context.Context, s *models.Session) error {
	for _, setting := range st.settings {
		if err := st.platform.ApplySetting(ctx, s, setting.Key, setting.Value); err != nil {
			return err
		}
		utils.Log.Debug("Applied setting ", setting.Key)
	}
	return nil
}

type folderStep struct {
	platform provider.Platform
	path     string
}

func (f *folderStep) Name() string     { return "folder" }
func (f *folderStep) Describe() string { return "create remote folder " + f.path }

func (f *folderStep) Run(ctx context.Context, s *models.Session) error {
	return f.platform.CreateRemoteFolder(ctx, s, f.path)
}

type uploadStep struct {
	platform provider.Platform
	unit     models.UploadUnit
}

func (u *uploadStep) Name() string { return "upload" }

func (u *uploadStep) Describe() string {
	return fmt.Sprintf("upload the files of %s into %s", u.unit.LocalPath, u.unit.RemoteName)
}

func (u *uploadStep) Run(ctx context.Context, s *models.Session) error {
	return u.platform.UploadDirectory(ctx, s, u.unit.RemoteName, u.unit.LocalPath)
}

type installStep struct {
	platform provider.Platform
	command  string
	function string
	output   string
}

func (i *installStep) Name() string { return "install" }

func (i *installStep) Describe() string {
	return fmt.Sprintf("run %q in %s", i.command, i.function)
}

// Run treats the command's error text as a warning: package managers write progress to stderr.
func (i *installStep) Run(ctx context.Context, s *models.Session) error {
	result, err := i.platform.RunRemoteCommand(ctx, s, azure.CommandPath, i.command, i.function)
	if err != nil {
		return err
	}
	i.output = result.Output
	utils.Log.Debug("Install output: ", result.Output)
	if result.Error != "" {
		utils.Log.Warn("Install command reported: ", result.Error)
	}
	return nil
}

func (i *installStep) Output() string { return i.output }

type syncStep struct {
	platform provider.Platform
}

func (y *syncStep) Name() string     { return "sync" }
func (y *syncStep) Describe() string { return "sync function triggers" }

func (y *syncStep) Run(ctx context.Context, s *models.Session) error {
	return y.platform.SyncTriggers(ctx, s)
}

// Steps builds the ordered step list for opts.
func (c Controller) Steps(opts models.DeployOptions) []Step {
	var steps []Step
	if !opts.SkipProvision {
		params := opts.Parameters
		if params == nil {
			params = c.TemplateParameters(opts.Target)
		}
		steps = append(steps, &provisionStep{platform: c.Service, templateURI: opts.TemplateURI, params: params})
	}
	if len(opts.Settings) > 0 {
		steps = append(steps, &settingsStep{platform: c.Service, settings: opts.Settings})
	}
	steps = append(steps,
		&folderStep{platform: c.Service, path: c.scm().VFSPath(opts.Upload.RemoteName)},
		&uploadStep{platform: c.Service, unit: opts.Upload},
	)
	if opts.InstallCommand != "" {
		steps = append(steps, &installStep{platform: c.Service, command: opts.InstallCommand, function: opts.Upload.RemoteName})
	}
	return append(steps, &syncStep{platform: c.Service})
}

// Validate checks opts and fills the remote folder and template from the configuration.
func (c Controller) Validate(opts *models.DeployOptions) error {
	if !opts.Target.Valid() {
		return models.ErrMissingTarget
	}
	if err := utils.CheckDirectory(opts.Upload.LocalPath); err != nil {
		return err
	}
	if opts.Upload.RemoteName == "" {
		opts.Upload.RemoteName = models.DefaultFunction
		if c.Configs != nil && c.Configs.Deploy.Function != "" {
			opts.Upload.RemoteName = c.Configs.Deploy.Function
		}
	}
	if opts.TemplateURI == "" {
		opts.TemplateURI = models.DefaultTemplateURI
		if c.Configs != nil && c.Configs.Azure.TemplateURI != "" {
			opts.TemplateURI = c.Configs.Azure.TemplateURI
		}
	}
	return nil
}

// Deploy runs every step against one session, stopping at the first failure. The results of
// the steps that ran are returned either way.
func (c Controller) Deploy(ctx context.Context, opts models.DeployOptions) ([]models.StepResult, error) {
	if err := c.Validate(&opts); err != nil {
		return nil, err
	}

	steps := c.Steps(opts)
	if opts.DryRun {
		c.dryRunDeploy(opts, steps)
		return nil, nil
	}

	s := models.NewSession(opts.Target)
	progress := ui.NewDeployProgress(len(steps))
	progress.Start(opts.Target)
	defer progress.Done()

	results := make([]models.StepResult, 0, len(steps))
	for _, step := range steps {
		progress.StartStep(step.Name())
		start := time.Now()
		err := step.Run(ctx, s)

		result := models.StepResult{
			StepName: step.Name(),
			Success:  err == nil,
			Duration: time.Since(start),
			Error:    err,
		}
		if o, ok := step.(outputStep); ok {
			result.Output = o.Output()
		}
		results = append(results, result)

		if err != nil {
			progress.StepFailed(step.Name(), err)
			return results, fmt.Errorf("%s: %w", step.Name(), err)
		}
		progress.StepSuccess(step.Name(), result.Duration)
	}

	return results, nil
}

func (c Controller) dryRunDeploy(opts models.DeployOptions, steps []Step) {
	ui.Info("Dry run mode - showing what would be executed:")
	fmt.Println()
	fmt.Printf("Target: app %s, resource group %s, subscription %s\n\n",
		opts.Target.AppName, opts.Target.ResourceGroup, opts.Target.SubscriptionID)

	fmt.Println("Steps:")
	for i, step := range steps {
		fmt.Printf("  %d. %s: %s\n", i+1, step.Name(), step.Describe())
	}
	fmt.Println()
}
