package auth

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/spf13/afero"

	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

const (
	ManagementResource = "https://management.core.windows.net/"
	BearerTokenType    = "Bearer"
	TokenCacheFile     = "accessTokens.json"

	// expiresOn is written in local time with microseconds, e.g. 2017-08-01 10:00:00.123456
	expiresOnLayout = "2006-01-02 15:04:05.999999"
)

// TokenSource yields an access token for the management API.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// CacheFileTokenSource reads the token cache file written by the CLI.
type CacheFileTokenSource struct {
	Fs        afero.Fs
	Path      string
	Resource  string
	TokenType string
	Now       func() time.Time
}

func NewCacheFileTokenSource(configDir string) *CacheFileTokenSource {
	return &CacheFileTokenSource{
		Fs:        afero.NewOsFs(),
		Path:      filepath.Join(configDir, TokenCacheFile),
		Resource:  ManagementResource,
		TokenType: BearerTokenType,
		Now:       time.Now,
	}
}

func (c *CacheFileTokenSource) Token(ctx context.Context) (string, error) {
	data, err := afero.ReadFile(c.Fs, c.Path)
	if err != nil {
		return "", &models.AuthError{Reason: "fetch access token fail", Err: err}
	}

	var records []models.TokenRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return "", &models.AuthError{Reason: "fetch access token fail: bad token cache " + c.Path, Err: err}
	}

	record, ok := SelectToken(records, c.Resource, c.TokenType, c.now())
	if !ok {
		return "", &models.AuthError{Reason: "fetch access token fail", Err: models.ErrNoValidToken}
	}
	return record.AccessToken, nil
}

func (c *CacheFileTokenSource) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// SelectToken returns the first record that is unexpired at now and matches resource and tokenType.
func SelectToken(records []models.TokenRecord, resource, tokenType string, now time.Time) (models.TokenRecord, bool) {
	for _, r := range records {
		expiresOn, err := time.ParseInLocation(expiresOnLayout, r.ExpiresOn, time.Local)
		if err != nil {
			utils.Log.Debug("Skipping token record with unreadable expiry: ", r.ExpiresOn)
			continue
		}
		if expiresOn.After(now) && r.Resource == resource && r.TokenType == tokenType {
			return r, true
		}
	}
	return models.TokenRecord{}, false
}

// CLICredentialTokenSource asks the installed CLI for a token. Recent CLI versions no longer
// write the token cache file.
type CLICredentialTokenSource struct {
	Resource string
}

func (c *CLICredentialTokenSource) Token(ctx context.Context) (string, error) {
	cred, err := azidentity.NewAzureCLICredential(nil)
	if err != nil {
		return "", &models.AuthError{Reason: "fetch access token fail", Err: err}
	}

	resource := c.Resource
	if resource == "" {
		resource = ManagementResource
	}
	scope := strings.TrimSuffix(resource, "/") + "/.default"

	tok, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{scope}})
	if err != nil {
		return "", &models.AuthError{Reason: "fetch access token fail", Err: err}
	}
	return tok.Token, nil
}

// ChainTokenSource returns the token of the first source that yields one.
type ChainTokenSource []TokenSource

func (c ChainTokenSource) Token(ctx context.Context) (string, error) {
	var errs []error
	for _, src := range c {
		token, err := src.Token(ctx)
		if err == nil {
			return token, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", &models.AuthError{Reason: "fetch access token fail", Err: models.ErrNoValidToken}
	}
	var aerr *models.AuthError
	if len(errs) == 1 && errors.As(errs[0], &aerr) {
		return "", errs[0]
	}
	return "", &models.AuthError{Reason: "no token source succeeded", Err: errors.Join(errs...)}
}
