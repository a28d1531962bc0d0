package controller

import (
	"context"
	"fmt"
	"io"

	"github.com/FleexSecurity/funcdeploy/config"
	"github.com/FleexSecurity/funcdeploy/pkg/auth"
	"github.com/FleexSecurity/funcdeploy/pkg/azcli"
	"github.com/FleexSecurity/funcdeploy/pkg/azure"
	"github.com/FleexSecurity/funcdeploy/pkg/ftputil"
	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"github.com/FleexSecurity/funcdeploy/pkg/provider"
	"github.com/FleexSecurity/funcdeploy/pkg/runner"
	"github.com/FleexSecurity/funcdeploy/pkg/services"
	"github.com/FleexSecurity/funcdeploy/pkg/ui"
	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

type Controller struct {
	Service provider.Platform
	Configs *models.Config
}

// NewController wires the Azure platform from configs.
func NewController(configs *models.Config) Controller {
	base, err := config.GetBaseClient(configs.Proxy)
	if err != nil {
		utils.Log.Fatal("invalid proxy: ", err)
	}

	tokens := auth.ChainTokenSource{tokenCache(configs.Azure)}
	if configs.Azure.CLICredentialFallback {
		tokens = append(tokens, &auth.CLICredentialTokenSource{Resource: configs.Azure.TokenResource})
	}

	return Controller{
		Service: services.AzureService{
			CLI:        &azcli.Client{Runner: &runner.DefaultCommandRunner{}, Path: configs.Azure.CLI},
			Tokens:     tokens,
			Management: &azure.ManagementClient{BaseURL: configs.Azure.ManagementURL, HTTPClient: base},
			SCM:        &azure.SCMClient{Config: configs.SCM, HTTPClient: base},
			Uploader:   ftputil.NewUploader(configs.FTP.Timeout),
		},
		Configs: configs,
	}
}

func tokenCache(c models.AzureConfig) *auth.CacheFileTokenSource {
	src := auth.NewCacheFileTokenSource(utils.ExpandPath(c.ConfigDir))
	if c.TokenResource != "" {
		src.Resource = c.TokenResource
	}
	return src
}

func (c Controller) scm() models.SCMConfig {
	if c.Configs == nil || c.Configs.SCM.SiteRoot == "" {
		return models.SCMConfig{BaseURL: models.DefaultSCMBaseURL, SiteRoot: models.DefaultSiteRoot}
	}
	return c.Configs.SCM
}

func (c Controller) session(target models.Target) (*models.Session, error) {
	if !target.Valid() {
		return nil, models.ErrMissingTarget
	}
	return models.NewSession(target), nil
}

// TemplateParameters returns the parameters the function app template expects.
func (c Controller) TemplateParameters(target models.Target) map[string]string {
	storage := models.DefaultStorageAccountType
	if c.Configs != nil && c.Configs.Azure.StorageAccountType != "" {
		storage = c.Configs.Azure.StorageAccountType
	}
	return map[string]string{
		"appName":            target.AppName,
		"storageAccountType": storage,
	}
}

func (c Controller) Provision(ctx context.Context, target models.Target, templateURI string, params map[string]string) error {
	s, err := c.session(target)
	if err != nil {
		return err
	}
	if params == nil {
		params = c.TemplateParameters(target)
	}
	return c.Service.Provision(ctx, s, templateURI, params)
}

// ApplySettings applies settings in order and stops at the first failure.
func (c Controller) ApplySettings(ctx context.Context, target models.Target, settings []models.Setting) error {
	s, err := c.session(target)
	if err != nil {
		return err
	}
	for _, setting := range settings {
		if err := c.Service.ApplySetting(ctx, s, setting.Key, setting.Value); err != nil {
			return err
		}
		utils.Log.Info("Applied setting ", setting.Key)
	}
	return nil
}

// Upload creates the function folder and copies the directory into it.
func (c Controller) Upload(ctx context.Context, target models.Target, unit models.UploadUnit) error {
	if err := utils.CheckDirectory(unit.LocalPath); err != nil {
		return err
	}
	s, err := c.session(target)
	if err != nil {
		return err
	}
	if err := c.Service.CreateRemoteFolder(ctx, s, c.scm().VFSPath(unit.RemoteName)); err != nil {
		return err
	}
	return c.Service.UploadDirectory(ctx, s, unit.RemoteName, unit.LocalPath)
}

func (c Controller) Exec(ctx context.Context, target models.Target, command, function string) (models.CommandResult, error) {
	s, err := c.session(target)
	if err != nil {
		return models.CommandResult{}, err
	}
	return c.Service.RunRemoteCommand(ctx, s, azure.CommandPath, command, function)
}

func (c Controller) SyncTriggers(ctx context.Context, target models.Target) error {
	s, err := c.session(target)
	if err != nil {
		return err
	}
	return c.Service.SyncTriggers(ctx, s)
}

// PrintProfile writes the publish methods of the target app to w.
func (c Controller) PrintProfile(ctx context.Context, target models.Target, w io.Writer) error {
	s, err := c.session(target)
	if err != nil {
		return err
	}
	profile, err := c.Service.GetPublishProfile(ctx, s)
	if err != nil {
		return err
	}
	if _, err := azure.CredentialsFromProfile(profile); err != nil {
		utils.Log.Warn(err)
	}
	ui.PrintProfileTable(w, profile)
	return nil
}

// CheckToken confirms a management token can be found for target.
func (c Controller) CheckToken(ctx context.Context, target models.Target) error {
	token, err := c.Service.FetchAccessToken(ctx, models.NewSession(target))
	if err != nil {
		return err
	}
	utils.Log.Debugf("Access token found (%d bytes)", len(token))
	fmt.Println("A valid management access token is available")
	return nil
}
