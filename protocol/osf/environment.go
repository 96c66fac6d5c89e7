package osf

import (
	"fmt"
	"github.com/openaccess/exchange/constants"
	"github.com/openaccess/exchange/models"
	"net/url"
	"strings"
)

// Environment holds the settings that differ between the OSF
// sandbox and production: the canonical API URL, the public URL
// that splash pages live under, and the id of the "no license"
// license, which requires a year and copyright holders.
type Environment struct {
	Name        string
	APIURL      string
	PublicURL   string
	NoLicenseID string
}

var Sandbox = Environment{
	Name:        constants.EnvSandbox,
	APIURL:      constants.OSFSandboxAPIURL,
	PublicURL:   constants.OSFSandboxPublicURL,
	NoLicenseID: constants.OSFSandboxNoLicenseID,
}

var Production = Environment{
	Name:        constants.EnvProduction,
	APIURL:      constants.OSFProductionAPIURL,
	PublicURL:   constants.OSFProductionPublicURL,
	NoLicenseID: constants.OSFProductionNoLicense,
}

// ResolveEnvironment returns the environment named in
// repo.Environment. When that's empty, repositories whose endpoint
// is on the sandbox API host get the sandbox, and all others get
// production.
func ResolveEnvironment(repo *models.Repository) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(repo.Environment)) {
	case constants.EnvSandbox:
		return Sandbox, nil
	case constants.EnvProduction:
		return Production, nil
	case "":
		if hostOf(repo.Endpoint) != "" && hostOf(repo.Endpoint) == hostOf(Sandbox.APIURL) {
			return Sandbox, nil
		}
		return Production, nil
	}
	return Environment{}, fmt.Errorf("Repository %d has unknown OSF environment '%s'",
		repo.Id, repo.Environment)
}

// SplashURL returns the public page of the preprint or project
// with the given id.
func (env Environment) SplashURL(id string) string {
	return strings.TrimRight(env.PublicURL, "/") + "/" + id
}

// PDFURL returns the public download URL of a preprint.
func (env Environment) PDFURL(preprintId string) string {
	return env.SplashURL(preprintId) + "/download"
}

// LicenseRecord returns the attribute block that goes with
// licenseId. Only the "no license" license needs one filled in.
func (env Environment) LicenseRecord(licenseId, year string, copyrightHolders []string) *LicenseRecord {
	if licenseId != env.NoLicenseID {
		return &LicenseRecord{}
	}
	return &LicenseRecord{
		Year:             year,
		CopyrightHolders: copyrightHolders,
	}
}

func hostOf(rawUrl string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawUrl))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}
