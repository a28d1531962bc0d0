package provider

import (
	"context"
	"errors"

	"github.com/FleexSecurity/funcdeploy/pkg/models"
)

var (
	ErrGeneric    = errors.New("something went wrong, check that the data in the config.yaml is correct")
	ErrNoPlatform = errors.New("no platform configured")
)

// Platform is the set of calls a deployment makes against one function app. Every call takes the
// run's session, which carries the target and the credentials fetched so far.
type Platform interface {
	Provision(ctx context.Context, s *models.Session, templateURI string, params map[string]string) error
	ApplySetting(ctx context.Context, s *models.Session, key, value string) error
	FetchAccessToken(ctx context.Context, s *models.Session) (string, error)
	FetchPublishProfile(ctx context.Context, s *models.Session) (models.Credentials, error)
	GetPublishProfile(ctx context.Context, s *models.Session) (models.PublishProfile, error)
	CreateRemoteFolder(ctx context.Context, s *models.Session, path string) error
	UploadDirectory(ctx context.Context, s *models.Session, remoteName, localPath string) error
	SyncTriggers(ctx context.Context, s *models.Session) error
	RunRemoteCommand(ctx context.Context, s *models.Session, path, command, appName string) (models.CommandResult, error)
}
