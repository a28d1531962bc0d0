package azcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"github.com/FleexSecurity/funcdeploy/pkg/runner"
	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

const (
	// ErrorMarker is printed by the CLI on failed operations.
	ErrorMarker = "ERROR"

	provisioningSucceeded = "Succeeded"
)

var errNoJSON = errors.New("no JSON document in command output")

type Client struct {
	Runner runner.CommandRunner
	// Path is the CLI executable, "az" by default.
	Path string
}

func (c *Client) az(ctx context.Context, args ...string) (string, error) {
	path := c.Path
	if path == "" {
		path = "az"
	}
	return c.Runner.RunCommand(ctx, append([]string{path}, args...)...)
}

// TemplateParameters renders the --parameters value of a template deployment.
func TemplateParameters(params map[string]string) (string, error) {
	wrapped := make(map[string]map[string]string, len(params))
	for k, v := range params {
		wrapped[k] = map[string]string{"value": v}
	}
	data, err := json.Marshal(wrapped)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Provision runs a resource group template deployment and checks it reached the Succeeded state.
func (c *Client) Provision(ctx context.Context, resourceGroup, deploymentName, templateURI string, params map[string]string) error {
	parameters, err := TemplateParameters(params)
	if err != nil {
		return &models.ProvisioningError{Err: err}
	}

	args := []string{"deployment", "group", "create",
		"--resource-group", resourceGroup,
		"--template-uri", templateURI,
		"--parameters", parameters,
		"--output", "json",
	}
	if deploymentName != "" {
		args = append(args, "--name", deploymentName)
	}

	out, err := c.az(ctx, args...)
	if strings.Contains(out, ErrorMarker) {
		return &models.ProvisioningError{Output: out, Err: err}
	}
	if err != nil {
		return &models.ProvisioningError{Output: out, Err: err}
	}

	body, err := ExtractJSON(out)
	if err != nil {
		return &models.ProvisioningError{Output: out, Err: err}
	}

	state := gjson.Get(body, "properties.provisioningState").String()
	if state != provisioningSucceeded {
		return &models.ProvisioningError{State: state, Output: out}
	}
	utils.Log.Debug("Template deployment state: ", state)
	return nil
}

// ApplySetting updates one app setting and verifies the CLI echoes the requested value back.
func (c *Client) ApplySetting(ctx context.Context, resourceGroup, appName, key, value string) error {
	out, err := c.az(ctx, "functionapp", "config", "appsettings", "set",
		"--resource-group", resourceGroup,
		"--name", appName,
		"--settings", key+"="+value,
		"--output", "json",
	)
	if err != nil {
		return &models.SettingError{Key: key, Output: out, Err: err}
	}

	body, err := ExtractJSON(out)
	if err != nil {
		return &models.SettingError{Key: key, Output: out, Err: err}
	}

	got, ok := SettingValue(body, key)
	if !ok {
		return &models.SettingError{Key: key, Output: out, Err: fmt.Errorf("setting %s missing from response", key)}
	}
	if got != value {
		return &models.SettingError{Key: key, Output: out, Err: fmt.Errorf("setting %s has value %q", key, got)}
	}
	return nil
}

// SettingValue looks a key up in either the object form {"KEY":"value"} or the
// list form [{"name":"KEY","value":"value"}] of an app settings response.
func SettingValue(body, key string) (string, bool) {
	res := gjson.Parse(body)
	var (
		value string
		found bool
	)

	switch {
	case res.IsArray():
		for _, item := range res.Array() {
			if item.Get("name").String() == key {
				v := item.Get("value")
				value, found = v.String(), v.Exists()
			}
		}
	case res.IsObject():
		res.ForEach(func(k, v gjson.Result) bool {
			if k.String() == key {
				value, found = v.String(), true
				return false
			}
			return true
		})
	}
	return value, found
}

// ExtractJSON returns the JSON document in CLI output. Output that is a document as a whole
// is used as is; otherwise the span from the first opening brace or bracket to the last matching
// closing one is tried, which is what CLI versions that print warnings around the document need.
func ExtractJSON(out string) (string, error) {
	trimmed := strings.TrimSpace(out)
	if trimmed != "" && gjson.Valid(trimmed) {
		return trimmed, nil
	}

	pairs := [][2]string{{"{", "}"}, {"[", "]"}}
	// A list response holds objects, so whichever delimiter opens first is the outer one.
	if b := strings.Index(out, "["); b >= 0 {
		if o := strings.Index(out, "{"); o < 0 || b < o {
			pairs[0], pairs[1] = pairs[1], pairs[0]
		}
	}
	for _, pair := range pairs {
		start := strings.Index(out, pair[0])
		end := strings.LastIndex(out, pair[1])
		if start < 0 || end < start {
			continue
		}
		candidate := out[start : end+1]
		if gjson.Valid(candidate) {
			return candidate, nil
		}
	}
	return "", errNoJSON
}
