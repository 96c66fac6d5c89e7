package osf

import (
	"github.com/openaccess/exchange/constants"
)

// The OSF API speaks JSON:API. These types cover the few request
// and response documents a deposit needs.

// ResourceId points at another resource in a relationship.
type ResourceId struct {
	Type string `json:"type"`
	Id   string `json:"id"`
}

// Relationship wraps a ResourceId the way JSON:API wants it.
type Relationship struct {
	Data ResourceId `json:"data"`
}

// LicenseRecord is the node_license or license_record attribute.
// An empty record serializes as {}.
type LicenseRecord struct {
	Year             string   `json:"year,omitempty"`
	CopyrightHolders []string `json:"copyright_holders,omitempty"`
}

type NodeAttributes struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type NodeData struct {
	Type       string         `json:"type"`
	Attributes NodeAttributes `json:"attributes"`
}

// NodeRequest creates a project to hold the preprint.
type NodeRequest struct {
	Data NodeData `json:"data"`
}

func NewNodeRequest(title, description string, tags []string) *NodeRequest {
	if tags == nil {
		tags = make([]string, 0)
	}
	return &NodeRequest{
		Data: NodeData{
			Type: "nodes",
			Attributes: NodeAttributes{
				Title:       title,
				Category:    constants.OSFNodeCategory,
				Description: description,
				Tags:        tags,
			},
		},
	}
}

type ContributorAttributes struct {
	FullName string `json:"full_name"`
}

type ContributorData struct {
	Type       string                `json:"type"`
	Attributes ContributorAttributes `json:"attributes"`
}

// ContributorRequest adds one author to a project.
type ContributorRequest struct {
	Data ContributorData `json:"data"`
}

func NewContributorRequest(fullName string) *ContributorRequest {
	return &ContributorRequest{
		Data: ContributorData{
			Type:       "contributors",
			Attributes: ContributorAttributes{FullName: fullName},
		},
	}
}

type LicenseData struct {
	Type          string                    `json:"type"`
	Id            string                    `json:"id"`
	Attributes    map[string]*LicenseRecord `json:"attributes"`
	Relationships map[string]Relationship   `json:"relationships"`
}

// LicenseRequest sets the license of a project or a preprint.
type LicenseRequest struct {
	Data LicenseData `json:"data"`
}

// NewNodeLicenseRequest returns the PATCH body that licenses the
// project nodeId.
func NewNodeLicenseRequest(nodeId, licenseId string, record *LicenseRecord) *LicenseRequest {
	return newLicenseRequest("nodes", nodeId, "node_license", licenseId, record)
}

// NewPreprintLicenseRequest returns the PATCH body that licenses
// the preprint preprintId.
func NewPreprintLicenseRequest(preprintId, licenseId string, record *LicenseRecord) *LicenseRequest {
	return newLicenseRequest("preprints", preprintId, "license_record", licenseId, record)
}

func newLicenseRequest(resourceType, id, attribute, licenseId string, record *LicenseRecord) *LicenseRequest {
	if record == nil {
		record = &LicenseRecord{}
	}
	return &LicenseRequest{
		Data: LicenseData{
			Type:       resourceType,
			Id:         id,
			Attributes: map[string]*LicenseRecord{attribute: record},
			Relationships: map[string]Relationship{
				"license": {Data: ResourceId{Type: "licenses", Id: licenseId}},
			},
		},
	}
}

type PreprintAttributes struct {
	// DOI is null when the paper has none.
	DOI *string `json:"doi"`
}

type PreprintData struct {
	Attributes    PreprintAttributes      `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships"`
}

// PreprintRequest turns an uploaded file of a project into a
// preprint.
type PreprintRequest struct {
	Data PreprintData `json:"data"`
}

func NewPreprintRequest(doi, nodeId, primaryFileId string) *PreprintRequest {
	var doiAttr *string
	if doi != "" {
		doiAttr = &doi
	}
	return &PreprintRequest{
		Data: PreprintData{
			Attributes: PreprintAttributes{DOI: doiAttr},
			Relationships: map[string]Relationship{
				"node":         {Data: ResourceId{Type: "nodes", Id: nodeId}},
				"primary_file": {Data: ResourceId{Type: "primary_files", Id: primaryFileId}},
				"provider":     {Data: ResourceId{Type: "providers", Id: constants.OSFProviderID}},
			},
		},
	}
}

// resourceResponse is the part of a node, preprint or file
// document we read back.
type resourceResponse struct {
	Data struct {
		Id         string `json:"id"`
		Attributes struct {
			Path        string `json:"path"`
			IsPublished *bool  `json:"is_published"`
		} `json:"attributes"`
	} `json:"data"`
}

// storageResponse lists the storage providers of a project.
type storageResponse struct {
	Data []struct {
		Links struct {
			Upload string `json:"upload"`
		} `json:"links"`
	} `json:"data"`
}

func (resp *storageResponse) uploadLinks() []string {
	links := make([]string, 0, len(resp.Data))
	for _, entry := range resp.Data {
		links = append(links, entry.Links.Upload)
	}
	return links
}
