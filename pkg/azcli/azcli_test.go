package azcli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"github.com/FleexSecurity/funcdeploy/pkg/runner"
)

const templateURI = "https://example.com/azuredeploy.json"

func TestProvisionSucceeded(t *testing.T) {
	fake := &runner.FakeCommandRunner{
		Output: `{"id":"/subscriptions/s1/resourceGroups/rg1/deployments/d1","properties":{"provisioningState":"Succeeded"}}`,
	}
	c := &Client{Runner: fake}

	err := c.Provision(context.Background(), "rg1", "d1", templateURI, map[string]string{
		"appName":            "myapp",
		"storageAccountType": "Standard_LRS",
	})
	require.NoError(t, err)

	require.Len(t, fake.Calls, 1)
	args := fake.Calls[0]
	assert.Equal(t, "az", args[0])
	assert.Equal(t, []string{"deployment", "group", "create"}, args[1:4])
	assert.Contains(t, args, "rg1")
	assert.Contains(t, args, templateURI)
	assert.Contains(t, args, `{"appName":{"value":"myapp"},"storageAccountType":{"value":"Standard_LRS"}}`)
}

func TestProvisionTrailingJSONAfterText(t *testing.T) {
	fake := &runner.FakeCommandRunner{
		Output: "Deploying template...\nStill running\n" + `{"properties":{"provisioningState":"Succeeded"}}` + "\n",
	}
	c := &Client{Runner: fake, Path: "/usr/bin/az"}

	err := c.Provision(context.Background(), "rg1", "", templateURI, map[string]string{"appName": "myapp"})
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/az", fake.Calls[0][0])
	assert.NotContains(t, fake.Calls[0], "--name")
}

func TestProvisionOtherState(t *testing.T) {
	c := &Client{Runner: &runner.FakeCommandRunner{
		Output: `{"properties":{"provisioningState":"Failed"}}`,
	}}

	err := c.Provision(context.Background(), "rg1", "d1", templateURI, nil)
	var perr *models.ProvisioningError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Failed", perr.State)
}

func TestProvisionErrorMarker(t *testing.T) {
	c := &Client{Runner: &runner.FakeCommandRunner{
		Output: "ERROR: Deployment failed.\n" + `{"properties":{"provisioningState":"Succeeded"}}`,
	}}

	err := c.Provision(context.Background(), "rg1", "d1", templateURI, nil)
	var perr *models.ProvisioningError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Output, "ERROR: Deployment failed.")
}

func TestProvisionCommandFailure(t *testing.T) {
	c := &Client{Runner: &runner.FakeCommandRunner{Output: "az: command not found", ErrStr: "exit status 127"}}

	err := c.Provision(context.Background(), "rg1", "d1", templateURI, nil)
	var perr *models.ProvisioningError
	require.ErrorAs(t, err, &perr)
	assert.EqualError(t, errors.Unwrap(err), "exit status 127")
}

func TestProvisionNoJSON(t *testing.T) {
	c := &Client{Runner: &runner.FakeCommandRunner{Output: "done"}}

	err := c.Provision(context.Background(), "rg1", "d1", templateURI, nil)
	var perr *models.ProvisioningError
	assert.ErrorAs(t, err, &perr)
}

func TestApplySetting(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		errStr  string
		wantErr bool
	}{
		{
			name:   "list form",
			output: `[{"name":"FUNCTIONS_EXTENSION_VERSION","slotSetting":false,"value":"~4"},{"name":"IOTHUB","slotSetting":false,"value":"HostName=h;Key=k"}]`,
		},
		{
			name:   "object form after warning",
			output: "WARNING: something\n" + `{"IOTHUB":"HostName=h;Key=k","WEBSITE_NODE_DEFAULT_VERSION":"6.5.0"}`,
		},
		{
			name:   "list form after warning",
			output: "WARNING: App settings have been redacted.\n" + `[{"name":"IOTHUB","slotSetting":false,"value":"HostName=h;Key=k"}]`,
		},
		{
			name:    "mismatch",
			output:  `[{"name":"IOTHUB","value":"other"}]`,
			wantErr: true,
		},
		{
			name:    "missing key",
			output:  `{"OTHER":"HostName=h;Key=k"}`,
			wantErr: true,
		},
		{
			name:    "command failed",
			output:  "ERROR: resource not found",
			errStr:  "exit status 1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &runner.FakeCommandRunner{Output: tt.output, ErrStr: tt.errStr}
			c := &Client{Runner: fake}

			err := c.ApplySetting(context.Background(), "rg1", "myapp", "IOTHUB", "HostName=h;Key=k")
			if tt.wantErr {
				var serr *models.SettingError
				require.ErrorAs(t, err, &serr)
				assert.Equal(t, "IOTHUB", serr.Key)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, fake.Calls[0], "IOTHUB=HostName=h;Key=k")
			assert.Contains(t, fake.Calls[0], "myapp")
		})
	}
}

func TestExtractJSON(t *testing.T) {
	body, err := ExtractJSON("  {\"a\":1}\n")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, body)

	body, err = ExtractJSON("prefix {\"a\":{\"b\":2}} suffix")
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"b":2}}`, body)

	body, err = ExtractJSON("note: [1,2]")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, body)

	body, err = ExtractJSON("WARNING: redacted\n[{\"name\":\"K\",\"value\":\"v\"}]")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"K","value":"v"}]`, body)

	_, err = ExtractJSON("} nothing {")
	assert.Error(t, err)
}
