package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/FleexSecurity/funcdeploy/pkg/models"
)

const CommandPath = "/api/command"

// SCMClient talks to the app's source control manager site with the MSDeploy credentials.
type SCMClient struct {
	Config     models.SCMConfig
	HTTPClient *http.Client
}

type commandRequest struct {
	Command string `json:"command"`
	Dir     string `json:"dir"`
}

// CreateFolder creates a folder at a virtual file system path such as /api/vfs/site/wwwroot/MyFunc/.
func (s *SCMClient) CreateFolder(ctx context.Context, creds models.Credentials, appName, path string) error {
	_, err := do(ctx, s.HTTPClient, request{
		op:       "create folder",
		method:   http.MethodPut,
		url:      s.Config.SCMURL(appName) + path,
		user:     creds.CommandUser,
		password: creds.CommandPassword,
	})
	return err
}

// RunCommand runs command in the site root folder of function.
func (s *SCMClient) RunCommand(ctx context.Context, creds models.Credentials, appName, path, command, function string) (models.CommandResult, error) {
	payload, err := json.Marshal(commandRequest{
		Command: command,
		Dir:     s.Config.FunctionDir(function),
	})
	if err != nil {
		return models.CommandResult{}, err
	}

	url := s.Config.SCMURL(appName) + path
	body, err := do(ctx, s.HTTPClient, request{
		op:       "run command",
		method:   http.MethodPost,
		url:      url,
		body:     bytes.NewReader(payload),
		header:   map[string]string{"Content-Type": "application/json"},
		user:     creds.CommandUser,
		password: creds.CommandPassword,
	})
	if err != nil {
		return models.CommandResult{}, err
	}

	var result models.CommandResult
	if err := json.Unmarshal(body, &result); err != nil {
		return models.CommandResult{}, &models.HttpError{
			Op:     "run command",
			Method: http.MethodPost,
			URL:    url,
			Body:   string(body),
			Err:    err,
		}
	}
	return result, nil
}
