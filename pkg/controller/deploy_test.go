package controller

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FleexSecurity/funcdeploy/pkg/models"
)

type fakePlatform struct {
	calls   []string
	failOn  string
	install models.CommandResult
	profile models.PublishProfile
}

func (f *fakePlatform) record(call string) error {
	f.calls = append(f.calls, call)
	if call == f.failOn {
		return errors.New(call + " broke")
	}
	return nil
}

func (f *fakePlatform) Provision(ctx context.Context, s *models.Session, templateURI string, params map[string]string) error {
	return f.record("provision " + params["appName"] + " " + params["storageAccountType"])
}

func (f *fakePlatform) ApplySetting(ctx context.Context, s *models.Session, key, value string) error {
	return f.record("setting " + key + "=" + value)
}

func (f *fakePlatform) FetchAccessToken(ctx context.Context, s *models.Session) (string, error) {
	return "tok", f.record("token")
}

func (f *fakePlatform) FetchPublishProfile(ctx context.Context, s *models.Session) (models.Credentials, error) {
	return models.Credentials{}, f.record("credentials")
}

func (f *fakePlatform) GetPublishProfile(ctx context.Context, s *models.Session) (models.PublishProfile, error) {
	return f.profile, f.record("profile")
}

func (f *fakePlatform) CreateRemoteFolder(ctx context.Context, s *models.Session, path string) error {
	return f.record("folder " + path)
}

func (f *fakePlatform) UploadDirectory(ctx context.Context, s *models.Session, remoteName, localPath string) error {
	return f.record("upload " + remoteName)
}

func (f *fakePlatform) SyncTriggers(ctx context.Context, s *models.Session) error {
	return f.record("sync")
}

func (f *fakePlatform) RunRemoteCommand(ctx context.Context, s *models.Session, path, command, appName string) (models.CommandResult, error) {
	return f.install, f.record("exec " + path + " " + command + " " + appName)
}

var target = models.Target{SubscriptionID: "s1", AppName: "myapp", ResourceGroup: "rg1"}

func deployOptions(t *testing.T) models.DeployOptions {
	return models.DeployOptions{
		Target:         target,
		Settings:       []models.Setting{{Key: "A", Value: "1"}, {Key: "B", Value: "2"}},
		Upload:         models.UploadUnit{RemoteName: "MyFunc", LocalPath: t.TempDir()},
		InstallCommand: "npm install",
	}
}

func TestDeployRunsStepsInOrder(t *testing.T) {
	platform := &fakePlatform{install: models.CommandResult{Output: "added 3 packages", Error: "npm WARN"}}
	c := Controller{Service: platform}

	results, err := c.Deploy(context.Background(), deployOptions(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"provision myapp Standard_LRS",
		"setting A=1",
		"setting B=2",
		"folder /api/vfs/site/wwwroot/MyFunc/",
		"upload MyFunc",
		"exec /api/command npm install MyFunc",
		"sync",
	}, platform.calls)

	require.Len(t, results, 6)
	for _, r := range results {
		assert.True(t, r.Success, r.StepName)
	}
	assert.Equal(t, "install", results[4].StepName)
	assert.Equal(t, "added 3 packages", results[4].Output)
}

func TestDeployStopsAtFirstFailure(t *testing.T) {
	platform := &fakePlatform{failOn: "folder /api/vfs/site/wwwroot/MyFunc/"}
	c := Controller{Service: platform}

	results, err := c.Deploy(context.Background(), deployOptions(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "folder: ")

	assert.Equal(t, "folder /api/vfs/site/wwwroot/MyFunc/", platform.calls[len(platform.calls)-1])
	require.Len(t, results, 3)
	assert.False(t, results[2].Success)
	assert.Error(t, results[2].Error)
}

func TestDeploySettingFailureWrapsTypedError(t *testing.T) {
	platform := &settingFailure{fakePlatform: &fakePlatform{}}
	c := Controller{Service: platform}

	_, err := c.Deploy(context.Background(), deployOptions(t))
	var serr *models.SettingError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "A", serr.Key)
	assert.NotContains(t, platform.calls, "upload MyFunc")
}

type settingFailure struct {
	*fakePlatform
}

func (s *settingFailure) ApplySetting(ctx context.Context, _ *models.Session, key, value string) error {
	s.calls = append(s.calls, "setting "+key)
	return &models.SettingError{Key: key, Output: `{"A":"other"}`}
}

func TestDeploySkipProvisionAndInstall(t *testing.T) {
	platform := &fakePlatform{}
	c := Controller{Service: platform}

	opts := deployOptions(t)
	opts.SkipProvision = true
	opts.InstallCommand = ""
	opts.Settings = nil

	_, err := c.Deploy(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"folder /api/vfs/site/wwwroot/MyFunc/", "upload MyFunc", "sync"}, platform.calls)
}

func TestDeployDefaultsFromConfig(t *testing.T) {
	platform := &fakePlatform{}
	c := Controller{Service: platform, Configs: &models.Config{
		Azure:  models.AzureConfig{StorageAccountType: "Premium_LRS"},
		SCM:    models.SCMConfig{SiteRoot: "site/wwwroot"},
		Deploy: models.DeployDefaults{Function: "Other"},
	}}

	opts := deployOptions(t)
	opts.Upload.RemoteName = ""
	opts.InstallCommand = ""
	opts.Settings = nil

	_, err := c.Deploy(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"provision myapp Premium_LRS",
		"folder /api/vfs/site/wwwroot/Other/",
		"upload Other",
		"sync",
	}, platform.calls)
}

func TestDeployDryRunCallsNothing(t *testing.T) {
	platform := &fakePlatform{}
	c := Controller{Service: platform}

	opts := deployOptions(t)
	opts.DryRun = true

	results, err := c.Deploy(context.Background(), opts)
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Empty(t, platform.calls)
}

func TestDeployValidation(t *testing.T) {
	platform := &fakePlatform{}
	c := Controller{Service: platform}

	opts := deployOptions(t)
	opts.Target.ResourceGroup = ""
	_, err := c.Deploy(context.Background(), opts)
	assert.ErrorIs(t, err, models.ErrMissingTarget)

	opts = deployOptions(t)
	opts.Upload.LocalPath = opts.Upload.LocalPath + "/missing"
	_, err = c.Deploy(context.Background(), opts)
	assert.ErrorIs(t, err, models.ErrInvalidDirectory)

	file, err := os.CreateTemp(t.TempDir(), "notadir")
	require.NoError(t, err)
	file.Close()
	opts.Upload.LocalPath = file.Name()
	_, err = c.Deploy(context.Background(), opts)
	assert.ErrorIs(t, err, models.ErrInvalidDirectory)

	assert.Empty(t, platform.calls)
}

func TestApplySettingsStopsOnFailure(t *testing.T) {
	platform := &fakePlatform{failOn: "setting A=1"}
	c := Controller{Service: platform}

	err := c.ApplySettings(context.Background(), target, []models.Setting{{Key: "A", Value: "1"}, {Key: "B", Value: "2"}})
	assert.Error(t, err)
	assert.Equal(t, []string{"setting A=1"}, platform.calls)
}

func TestUploadCreatesFolderFirst(t *testing.T) {
	platform := &fakePlatform{}
	c := Controller{Service: platform}

	err := c.Upload(context.Background(), target, models.UploadUnit{RemoteName: "MyFunc", LocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, []string{"folder /api/vfs/site/wwwroot/MyFunc/", "upload MyFunc"}, platform.calls)
}

func TestPrintProfileMasksPasswords(t *testing.T) {
	platform := &fakePlatform{profile: models.PublishProfile{Methods: []models.PublishMethod{
		{Method: "MSDeploy", ProfileName: "myapp - Web Deploy", UserName: "$myapp", Password: "supersecretpassword"},
		{Method: "FTP", ProfileName: "myapp - FTP", UserName: `myapp\$myapp`, Password: "supersecretpassword", PublishURL: "ftp://host/site/wwwroot"},
	}}}
	c := Controller{Service: platform}

	var buf bytes.Buffer
	require.NoError(t, c.PrintProfile(context.Background(), target, &buf))
	assert.Contains(t, buf.String(), "ftp://host/site/wwwroot")
	assert.Contains(t, buf.String(), "MSDeploy")
	assert.NotContains(t, buf.String(), "supersecretpassword")
}

func TestCommandsRequireTarget(t *testing.T) {
	c := Controller{Service: &fakePlatform{}}
	ctx := context.Background()

	assert.ErrorIs(t, c.Provision(ctx, models.Target{}, "uri", nil), models.ErrMissingTarget)
	assert.ErrorIs(t, c.SyncTriggers(ctx, models.Target{AppName: "x"}), models.ErrMissingTarget)
	_, err := c.Exec(ctx, models.Target{}, "ls", "MyFunc")
	assert.ErrorIs(t, err, models.ErrMissingTarget)
}
