package models

import "time"

// Target identifies the function app a run deploys to.
type Target struct {
	SubscriptionID string
	AppName        string
	ResourceGroup  string
}

func (t Target) Valid() bool {
	return t.SubscriptionID != "" && t.AppName != "" && t.ResourceGroup != ""
}

// Credentials are the secrets needed after provisioning. Command* comes from the MSDeploy
// publish method, FTP* from the FTP one.
type Credentials struct {
	CommandUser     string
	CommandPassword string
	FTPURL          string
	FTPUser         string
	FTPPassword     string
}

// Session holds one target and the credentials fetched for it during a single run.
type Session struct {
	Target Target

	accessToken string
	credentials *Credentials
}

func NewSession(target Target) *Session {
	return &Session{Target: target}
}

func (s *Session) AccessToken() (string, bool) {
	return s.accessToken, s.accessToken != ""
}

func (s *Session) SetAccessToken(token string) {
	s.accessToken = token
}

func (s *Session) Credentials() (Credentials, bool) {
	if s.credentials == nil {
		return Credentials{}, false
	}
	return *s.credentials, true
}

func (s *Session) SetCredentials(c Credentials) {
	s.credentials = &c
}

type Setting struct {
	Key   string
	Value string
}

type UploadUnit struct {
	RemoteName string
	LocalPath  string
}

type PublishMethod struct {
	Method      string
	ProfileName string
	UserName    string
	Password    string
	PublishURL  string
}

type PublishProfile struct {
	Methods []PublishMethod
}

// Method returns the first publish method with the given name.
func (p PublishProfile) Method(name string) (PublishMethod, bool) {
	for _, m := range p.Methods {
		if m.Method == name {
			return m, true
		}
	}
	return PublishMethod{}, false
}

type CommandResult struct {
	Output string `json:"Output"`
	Error  string `json:"Error"`
}

// TokenRecord is one entry of the CLI access token cache (accessTokens.json).
type TokenRecord struct {
	ExpiresOn   string `json:"expiresOn"`
	Resource    string `json:"resource"`
	TokenType   string `json:"tokenType"`
	AccessToken string `json:"accessToken"`
}

// Deployment is a saved deployment description.
type Deployment struct {
	Name               string   `yaml:"name"`
	Description        string   `yaml:"description,omitempty"`
	SubscriptionID     string   `yaml:"subscription_id"`
	AppName            string   `yaml:"app_name"`
	ResourceGroup      string   `yaml:"resource_group"`
	Template           string   `yaml:"template,omitempty"`
	StorageAccountType string   `yaml:"storage_account_type,omitempty"`
	Directory          string   `yaml:"directory"`
	Function           string   `yaml:"function,omitempty"`
	Install            string   `yaml:"install,omitempty"`
	Settings           []string `yaml:"settings,omitempty"`
}

func (d Deployment) Target() Target {
	return Target{
		SubscriptionID: d.SubscriptionID,
		AppName:        d.AppName,
		ResourceGroup:  d.ResourceGroup,
	}
}

type DeployOptions struct {
	Target         Target
	TemplateURI    string
	Parameters     map[string]string
	Settings       []Setting
	Upload         UploadUnit
	InstallCommand string
	SkipProvision  bool
	DryRun         bool
}

type StepResult struct {
	StepName string
	Success  bool
	Output   string
	Duration time.Duration
	Error    error
}
