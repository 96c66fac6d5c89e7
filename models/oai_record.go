package models

import (
	"fmt"
	"github.com/openaccess/exchange/constants"
)

// OaiRecord is a bibliographic record exposing where a paper can be
// found. Papers arrive with the records the metadata store already
// knows about. A successful deposit adds one more.
type OaiRecord struct {
	Identifier string `json:"identifier"`
	Source     string `json:"source,omitempty"`
	SplashURL  string `json:"splash_url,omitempty"`
	PDFURL     string `json:"pdf_url,omitempty"`
	DOI        string `json:"doi,omitempty"`
}

// DepositionIdentifier returns the identifier of the OAI record
// created for a deposit into the repository with the given id.
func DepositionIdentifier(repositoryId int, identifier string) string {
	return fmt.Sprintf("%s:%d:%s", constants.DepositionPrefix, repositoryId, identifier)
}

// DepositionPrefixFor returns the prefix shared by all deposition
// identifiers of a repository.
func DepositionPrefixFor(repositoryId int) string {
	return fmt.Sprintf("%s:%d:", constants.DepositionPrefix, repositoryId)
}
