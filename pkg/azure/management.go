package azure

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/FleexSecurity/funcdeploy/config"
	"github.com/FleexSecurity/funcdeploy/pkg/models"
)

const (
	DefaultManagementURL = "https://management.azure.com"

	publishXMLAPIVersion   = "2016-08-01"
	syncTriggersAPIVersion = "2015-08-01"
)

// ManagementClient talks to the resource management API with a bearer token.
type ManagementClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (m *ManagementClient) siteURL(t models.Target, suffix string) string {
	base := m.BaseURL
	if base == "" {
		base = DefaultManagementURL
	}
	return fmt.Sprintf("%s/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Web/sites/%s/%s",
		strings.TrimSuffix(base, "/"), t.SubscriptionID, t.ResourceGroup, t.AppName, suffix)
}

func (m *ManagementClient) client(ctx context.Context, token string) *http.Client {
	return config.GetManagementClient(ctx, m.HTTPClient, token)
}

// PublishProfile downloads and parses the publishing profile of the target app.
func (m *ManagementClient) PublishProfile(ctx context.Context, token string, t models.Target) (models.PublishProfile, error) {
	body, err := do(ctx, m.client(ctx, token), request{
		op:     "get publishing profile",
		method: http.MethodPost,
		url:    m.siteURL(t, "publishxml?api-version="+publishXMLAPIVersion),
	})
	if err != nil {
		return models.PublishProfile{}, err
	}
	return ParsePublishProfile(body)
}

// SyncTriggers asks the platform to rescan the deployed functions for triggers.
func (m *ManagementClient) SyncTriggers(ctx context.Context, token string, t models.Target) error {
	_, err := do(ctx, m.client(ctx, token), request{
		op:     "sync trigger",
		method: http.MethodPost,
		url:    m.siteURL(t, "functions/synctriggers?api-version="+syncTriggersAPIVersion),
	})
	return err
}
