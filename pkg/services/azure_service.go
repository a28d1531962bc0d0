package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/FleexSecurity/funcdeploy/pkg/auth"
	"github.com/FleexSecurity/funcdeploy/pkg/azcli"
	"github.com/FleexSecurity/funcdeploy/pkg/azure"
	"github.com/FleexSecurity/funcdeploy/pkg/ftputil"
	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"github.com/FleexSecurity/funcdeploy/pkg/provider"
	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

const deploymentNamePrefix = "funcdeploy-"

// AzureService deploys to an App Service function app through the az CLI, the management API,
// the SCM site and FTP.
type AzureService struct {
	CLI        *azcli.Client
	Tokens     auth.TokenSource
	Management *azure.ManagementClient
	SCM        *azure.SCMClient
	Uploader   *ftputil.Uploader
}

var _ provider.Platform = AzureService{}

func (a AzureService) Provision(ctx context.Context, s *models.Session, templateURI string, params map[string]string) error {
	name := deploymentNamePrefix + strings.SplitN(uuid.NewString(), "-", 2)[0]
	utils.Log.Debug("Template deployment name: ", name)
	return a.CLI.Provision(ctx, s.Target.ResourceGroup, name, templateURI, params)
}

func (a AzureService) ApplySetting(ctx context.Context, s *models.Session, key, value string) error {
	return a.CLI.ApplySetting(ctx, s.Target.ResourceGroup, s.Target.AppName, key, value)
}

// FetchAccessToken returns the session token, asking the token source only on first use.
func (a AzureService) FetchAccessToken(ctx context.Context, s *models.Session) (string, error) {
	if token, ok := s.AccessToken(); ok {
		return token, nil
	}
	token, err := a.Tokens.Token(ctx)
	if err != nil {
		return "", err
	}
	s.SetAccessToken(token)
	return token, nil
}

func (a AzureService) GetPublishProfile(ctx context.Context, s *models.Session) (models.PublishProfile, error) {
	token, err := a.FetchAccessToken(ctx, s)
	if err != nil {
		return models.PublishProfile{}, err
	}
	return a.Management.PublishProfile(ctx, token, s.Target)
}

// FetchPublishProfile returns the session credentials, downloading the publishing profile only
// on first use.
func (a AzureService) FetchPublishProfile(ctx context.Context, s *models.Session) (models.Credentials, error) {
	if creds, ok := s.Credentials(); ok {
		return creds, nil
	}

	profile, err := a.GetPublishProfile(ctx, s)
	if err != nil {
		return models.Credentials{}, err
	}
	creds, err := azure.CredentialsFromProfile(profile)
	if err != nil {
		return models.Credentials{}, err
	}
	s.SetCredentials(creds)
	return creds, nil
}

func (a AzureService) CreateRemoteFolder(ctx context.Context, s *models.Session, path string) error {
	creds, err := a.FetchPublishProfile(ctx, s)
	if err != nil {
		return err
	}
	return a.SCM.CreateFolder(ctx, creds, s.Target.AppName, path)
}

func (a AzureService) UploadDirectory(ctx context.Context, s *models.Session, remoteName, localPath string) error {
	creds, err := a.FetchPublishProfile(ctx, s)
	if err != nil {
		return err
	}

	remoteDir := "/" + a.SCM.Config.FunctionDir(remoteName) + "/"
	uploaded, err := a.Uploader.UploadDirectory(ctx, creds, remoteDir, localPath)
	if err != nil {
		return err
	}
	utils.Log.Info("Uploaded ", len(uploaded), " files to ", remoteDir)
	return nil
}

func (a AzureService) SyncTriggers(ctx context.Context, s *models.Session) error {
	token, err := a.FetchAccessToken(ctx, s)
	if err != nil {
		return err
	}
	return a.Management.SyncTriggers(ctx, token, s.Target)
}

func (a AzureService) RunRemoteCommand(ctx context.Context, s *models.Session, path, command, appName string) (models.CommandResult, error) {
	creds, err := a.FetchPublishProfile(ctx, s)
	if err != nil {
		return models.CommandResult{}, err
	}
	return a.SCM.RunCommand(ctx, creds, s.Target.AppName, path, command, appName)
}
