package models

import (
	"fmt"
	"github.com/openaccess/exchange/util"
	"github.com/openaccess/exchange/util/fileutil"
	"gopkg.in/yaml.v3"
	"os"
)

// License is one of the licenses a repository lets depositors choose.
type License struct {
	Id   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	URI  string `json:"uri,omitempty" yaml:"uri,omitempty"`
}

// Repository describes a remote repository we can deposit into.
// Each repository is served by exactly one deposit protocol, named
// by Protocol.
type Repository struct {
	Id        int    `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Protocol  string `json:"protocol" yaml:"protocol"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	APIKey    string `json:"-" yaml:"api_key,omitempty"`
	APIKeyEnv string `json:"-" yaml:"api_key_env,omitempty"`
	OaiSource string `json:"oai_source,omitempty" yaml:"oai_source,omitempty"`

	// Environment may be "sandbox" or "production". Protocols that
	// care about the difference will work it out from the endpoint
	// when this is empty.
	Environment string `json:"environment,omitempty" yaml:"environment,omitempty"`

	Licenses []License `json:"licenses,omitempty" yaml:"licenses,omitempty"`
}

// RepositoryFile is the structure of the YAML repositories file.
type RepositoryFile struct {
	Repositories []*Repository `yaml:"repositories"`
}

// ResolveAPIKey fills in APIKey from the environment variable named
// in APIKeyEnv, if APIKey is not already set. Quotes around the
// value are stripped, as .env files often have them.
func (repo *Repository) ResolveAPIKey() {
	if repo.APIKey == "" && repo.APIKeyEnv != "" {
		repo.APIKey = util.CleanString(os.Getenv(repo.APIKeyEnv))
	}
}

// HasLicense returns true if licenseId is one of the repository's
// configured licenses.
func (repo *Repository) HasLicense(licenseId string) bool {
	for _, license := range repo.Licenses {
		if license.Id == licenseId {
			return true
		}
	}
	return false
}

// LoadRepositories reads the YAML repositories file and returns the
// repositories it defines, with API keys resolved.
func LoadRepositories(pathToFile string) ([]*Repository, error) {
	data, err := fileutil.LoadRelativeFile(pathToFile)
	if err != nil {
		return nil, fmt.Errorf("Error reading repositories file '%s': %v", pathToFile, err)
	}
	repoFile := &RepositoryFile{}
	if err = yaml.Unmarshal(data, repoFile); err != nil {
		return nil, fmt.Errorf("Error parsing YAML from repositories file '%s': %v", pathToFile, err)
	}
	seen := make(map[int]bool)
	for _, repo := range repoFile.Repositories {
		if repo.Id == 0 {
			return nil, fmt.Errorf("Repository '%s' in '%s' has no id", repo.Name, pathToFile)
		}
		if seen[repo.Id] {
			return nil, fmt.Errorf("Repository id %d appears more than once in '%s'", repo.Id, pathToFile)
		}
		if repo.Protocol == "" {
			return nil, fmt.Errorf("Repository %d in '%s' has no protocol", repo.Id, pathToFile)
		}
		seen[repo.Id] = true
		repo.ResolveAPIKey()
	}
	return repoFile.Repositories, nil
}

// FindRepository returns the repository with the given id, or nil.
func FindRepository(repositories []*Repository, id int) *Repository {
	for _, repo := range repositories {
		if repo.Id == id {
			return repo
		}
	}
	return nil
}
