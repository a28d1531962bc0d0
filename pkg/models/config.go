package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultTemplateURI        = "https://raw.githubusercontent.com/Azure/azure-quickstart-templates/master/101-function-app-create-dynamic/azuredeploy.json"
	DefaultStorageAccountType = "Standard_LRS"
	DefaultSCMBaseURL         = "https://%s.scm.azurewebsites.net"
	DefaultSiteRoot           = "site/wwwroot"
	DefaultFunction           = "MyFunc"
	DefaultInstallCommand     = "npm install"
)

type Config struct {
	Azure  AzureConfig
	SCM    SCMConfig
	FTP    FTPConfig
	Deploy DeployDefaults
	Proxy  string
}

type AzureConfig struct {
	CLI                   string
	TemplateURI           string
	StorageAccountType    string
	ManagementURL         string
	TokenResource         string
	ConfigDir             string
	CLICredentialFallback bool
}

type SCMConfig struct {
	// BaseURL may carry a %s verb for the app name.
	BaseURL  string
	SiteRoot string
}

type FTPConfig struct {
	Timeout time.Duration
}

type DeployDefaults struct {
	Function       string
	InstallCommand string
}

// SCMURL returns the SCM endpoint of an app.
func (c SCMConfig) SCMURL(appName string) string {
	base := c.BaseURL
	if strings.Contains(base, "%s") {
		base = fmt.Sprintf(base, appName)
	}
	return strings.TrimSuffix(base, "/")
}

// FunctionDir is the path of a function folder relative to the site root, e.g. site/wwwroot/MyFunc.
func (c SCMConfig) FunctionDir(function string) string {
	return strings.Trim(c.SiteRoot, "/") + "/" + strings.Trim(function, "/")
}

// VFSPath is the SCM virtual file system path of a function folder.
func (c SCMConfig) VFSPath(function string) string {
	return "/api/vfs/" + c.FunctionDir(function) + "/"
}
