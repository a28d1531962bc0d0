package azure

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/FleexSecurity/funcdeploy/pkg/models"
)

const (
	MethodMSDeploy = "MSDeploy"
	MethodFTP      = "FTP"
)

type publishData struct {
	Profiles []publishProfile `xml:"publishProfile"`
}

type publishProfile struct {
	ProfileName   string `xml:"profileName,attr"`
	PublishMethod string `xml:"publishMethod,attr"`
	PublishURL    string `xml:"publishUrl,attr"`
	UserName      string `xml:"userName,attr"`
	UserPWD       string `xml:"userPWD,attr"`
}

func ParsePublishProfile(data []byte) (models.PublishProfile, error) {
	var doc publishData
	if err := xml.Unmarshal(data, &doc); err != nil {
		return models.PublishProfile{}, &models.AuthError{Reason: "bad publishing profile", Err: err}
	}

	profile := models.PublishProfile{}
	for _, p := range doc.Profiles {
		profile.Methods = append(profile.Methods, models.PublishMethod{
			Method:      p.PublishMethod,
			ProfileName: p.ProfileName,
			UserName:    p.UserName,
			Password:    p.UserPWD,
			PublishURL:  p.PublishURL,
		})
	}
	return profile, nil
}

// CredentialsFromProfile requires userName and userPWD on the MSDeploy method and publishUrl on
// the FTP method. The FTP login falls back to the MSDeploy pair when the FTP method has none.
func CredentialsFromProfile(p models.PublishProfile) (models.Credentials, error) {
	var missing []string

	msdeploy, ok := p.Method(MethodMSDeploy)
	if !ok {
		missing = append(missing, MethodMSDeploy)
	} else {
		if msdeploy.UserName == "" {
			missing = append(missing, MethodMSDeploy+".userName")
		}
		if msdeploy.Password == "" {
			missing = append(missing, MethodMSDeploy+".userPWD")
		}
	}

	ftp, ok := p.Method(MethodFTP)
	if !ok {
		missing = append(missing, MethodFTP)
	} else if ftp.PublishURL == "" {
		missing = append(missing, MethodFTP+".publishUrl")
	}

	if len(missing) > 0 {
		return models.Credentials{}, &models.AuthError{
			Reason: fmt.Sprintf("publishing profile is missing: %s", strings.Join(missing, ", ")),
		}
	}

	creds := models.Credentials{
		CommandUser:     msdeploy.UserName,
		CommandPassword: msdeploy.Password,
		FTPURL:          ftp.PublishURL,
		FTPUser:         ftp.UserName,
		FTPPassword:     ftp.Password,
	}
	if creds.FTPUser == "" || creds.FTPPassword == "" {
		creds.FTPUser = msdeploy.UserName
		creds.FTPPassword = msdeploy.Password
	}
	return creds, nil
}
