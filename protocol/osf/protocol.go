package osf

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/openaccess/exchange/constants"
	"github.com/openaccess/exchange/deposit"
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/network"
	"github.com/openaccess/exchange/util"
	"github.com/pkg/errors"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// OSFProtocol deposits papers as preprints on the Open Science
// Framework. A deposit creates a project, uploads the PDF into
// the project's storage, adds the authors as contributors, and
// publishes the PDF as a preprint. The remote calls run in that
// order, and the first one that fails ends the deposit. Whatever
// was already created on OSF stays there.
type OSFProtocol struct {
	*deposit.BaseProtocol
	Environment Environment

	requestTimeout time.Duration
	client         *network.RestClient

	// Set while a deposit runs.
	nodeId    string
	licenseId string
	pubYear   string
}

// New returns an OSF protocol for repo.
func New(repo *models.Repository, opts deposit.Options) (*OSFProtocol, error) {
	if repo == nil {
		return nil, fmt.Errorf("Cannot build an OSF protocol without a repository")
	}
	env, err := ResolveEnvironment(repo)
	if err != nil {
		return nil, err
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	return &OSFProtocol{
		BaseProtocol:   deposit.NewBaseProtocol(repo),
		Environment:    env,
		requestTimeout: timeout,
	}, nil
}

// NewProtocol is the deposit.Factory for OSF repositories.
func NewProtocol(repo *models.Repository, opts deposit.Options) (deposit.Protocol, error) {
	p, err := New(repo, opts)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Register adds the OSF protocol to registry.
func Register(registry *deposit.Registry) error {
	return registry.Register(constants.ProtocolOSF, NewProtocol)
}

func (p *OSFProtocol) ProtocolIdentifier() string {
	return constants.ProtocolOSF
}

// InitDeposit refuses papers that are already on this repository.
func (p *OSFProtocol) InitDeposit(paper *models.Paper, user *models.User) bool {
	p.nodeId = ""
	p.licenseId = ""
	p.pubYear = ""
	if !p.BaseProtocol.InitDeposit(paper, user) {
		return false
	}
	if p.alreadyDeposited() {
		p.Logf("Paper %d is already on %s.", paper.Id, p.Repository().Name)
		return false
	}
	return true
}

func (p *OSFProtocol) alreadyDeposited() bool {
	prefix := models.DepositionPrefixFor(p.Repository().Id)
	for _, record := range p.Paper().Records {
		if record == nil {
			continue
		}
		if strings.HasPrefix(record.Identifier, prefix) ||
			strings.HasPrefix(record.SplashURL, p.Environment.PublicURL) {
			return true
		}
	}
	return false
}

// FormInitialData suggests the paper's abstract, without HTML,
// and the first license the repository offers.
func (p *OSFProtocol) FormInitialData() deposit.FormData {
	data := p.BaseProtocol.FormInitialData()
	if paper := p.Paper(); paper != nil && paper.Abstract != "" {
		data["abstract"] = KillHTML(paper.Abstract)
	}
	if licenses := p.Repository().Licenses; len(licenses) > 0 {
		data["license"] = licenses[0].Id
	}
	return data
}

func (p *OSFProtocol) FormFields() []string {
	return []string{"paper_id", "abstract", "tags", "license"}
}

// SubmitDeposit runs the deposit. Failures the user should know
// about come back as *deposit.DepositError, everything else is
// wrapped with a stack trace.
func (p *OSFProtocol) SubmitDeposit(ctx context.Context, pdfPath string, form deposit.FormData, dryRun bool) (*models.DepositResult, error) {
	if err := p.checkSettings(); err != nil {
		return nil, err
	}
	paper := p.Paper()
	if paper == nil {
		return nil, errors.New("OSF deposit started without a paper")
	}

	p.licenseId = strings.TrimSpace(form["license"])
	if p.licenseId == "" {
		return nil, deposit.NewDepositError("Please choose a license for this deposit.")
	}
	year, err := paper.PublicationYear()
	if err != nil {
		p.Logf("Cannot read the publication year: %v", err)
		return nil, deposit.NewDepositError("The publication date of this paper cannot be read.")
	}
	p.pubYear = year
	authorNames := paper.AuthorNames()
	node := NewNodeRequest(paper.Title, form["abstract"], CreateTags(form["tags"]))

	p.Log("### Creating the metadata")
	p.logJson(node)
	p.logJson(paper.Authors)
	if dryRun {
		p.Log("Dry run: nothing was sent to OSF.")
		return models.NewDepositResult(constants.StatusFaked)
	}

	client := p.restClient()
	if err := p.createNode(ctx, client, node); err != nil {
		return nil, err
	}
	p.Log("### Creating a new depository")
	uploadLink, err := p.findUploadLink(ctx, client)
	if err != nil {
		return nil, err
	}
	p.Log("### Uploading the PDF")
	primaryFileId, err := p.uploadPDF(ctx, client, uploadLink, pdfPath)
	if err != nil {
		return nil, err
	}
	if err := p.addContributors(ctx, client, authorNames); err != nil {
		return nil, err
	}
	if err := p.updateNodeLicense(ctx, client, authorNames); err != nil {
		return nil, err
	}
	preprintId, err := p.createPreprint(ctx, client, paper.DOI(), primaryFileId)
	if err != nil {
		return nil, err
	}

	splashURL := p.Environment.SplashURL(preprintId)
	pdfURL := p.Environment.PDFURL(preprintId)
	projectURL := p.Environment.SplashURL(p.nodeId)

	if err := p.updatePreprintLicense(ctx, client, preprintId, authorNames); err != nil {
		return nil, err
	}

	p.Log("### FINAL DEBUG")
	p.Log(projectURL)
	p.Log(splashURL)
	p.Log(pdfURL)

	result, err := models.NewDepositResult(constants.StatusPublished)
	if err != nil {
		return nil, err
	}
	result.Identifier = preprintId
	result.SplashURL = splashURL
	result.PDFURL = pdfURL
	result.AddInfo("Project", projectURL)
	return result, nil
}

// RefreshDepositStatus sets record's status from the preprint's
// publication state on OSF. Preprints OSF no longer has are
// marked deleted.
func (p *OSFProtocol) RefreshDepositStatus(ctx context.Context, record *models.DepositRecord) error {
	if record == nil || record.Identifier == "" {
		return fmt.Errorf("Deposit record has no OSF preprint id")
	}
	if err := p.checkSettings(); err != nil {
		return err
	}
	resp := p.restClient().Get(ctx, fmt.Sprintf("v2/preprints/%s/", record.Identifier))
	p.Logf("--- Request to %s\n", resp.Url())
	if resp.Response == nil {
		p.Logf("Request failed: %v\n", resp.Error)
		return deposit.NewDepositError("Unable to reach OSF.")
	}
	p.Logf("Status code: %d\n", resp.StatusCode())
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return record.SetStatus(constants.StatusDeleted)
	default:
		p.Log("Server response:")
		p.Log(resp.Text())
		return deposit.NewDepositError("Unable to read the preprint status from OSF.")
	}
	preprint := &resourceResponse{}
	if err := resp.UnmarshalJson(preprint); err != nil {
		return errors.Wrapf(err, "reading OSF preprint %s", record.Identifier)
	}
	if preprint.Data.Attributes.IsPublished == nil {
		return errors.Errorf("OSF preprint %s has no is_published attribute", record.Identifier)
	}
	if *preprint.Data.Attributes.IsPublished {
		return record.SetStatus(constants.StatusPublished)
	}
	return record.SetStatus(constants.StatusPending)
}

func (p *OSFProtocol) checkSettings() error {
	repo := p.Repository()
	if strings.TrimSpace(repo.Endpoint) == "" {
		return deposit.NewDepositError("No Repository endpoint provided.")
	}
	if repo.APIKey == "" {
		return deposit.NewDepositError("No OSF token provided.")
	}
	return nil
}

func (p *OSFProtocol) restClient() *network.RestClient {
	if p.client == nil {
		repo := p.Repository()
		p.client = network.NewRestClient(repo.Endpoint, repo.APIKey, p.requestTimeout)
	}
	return p.client
}

func (p *OSFProtocol) createNode(ctx context.Context, client *network.RestClient, node *NodeRequest) error {
	resp := client.PostJson(ctx, "v2/nodes/", node)
	if err := p.LogRequest(resp, http.StatusCreated, "Unable to create a project on OSF."); err != nil {
		return err
	}
	created := &resourceResponse{}
	if err := resp.UnmarshalJson(created); err != nil {
		return errors.Wrap(err, "reading new OSF project")
	}
	if created.Data.Id == "" {
		return errors.New("OSF did not return the id of the new project")
	}
	p.nodeId = created.Data.Id
	return nil
}

// findUploadLink returns the upload link of the project's storage.
// New projects have a single storage provider. If OSF ever lists
// several, we use the first in sort order.
func (p *OSFProtocol) findUploadLink(ctx context.Context, client *network.RestClient) (string, error) {
	resp := client.Get(ctx, fmt.Sprintf("v2/nodes/%s/files/", p.nodeId))
	if err := p.LogRequest(resp, http.StatusOK, "Unable to authenticate to OSF."); err != nil {
		return "", err
	}
	storage := &storageResponse{}
	if err := resp.UnmarshalJson(storage); err != nil {
		return "", errors.Wrapf(err, "reading storage of OSF project %s", p.nodeId)
	}
	links := util.UniqueStrings(storage.uploadLinks())
	if len(links) == 0 {
		p.Log("The project storage has no upload link.")
		return "", deposit.NewDepositError("Unable to find the storage of the OSF project.")
	}
	if len(links) > 1 {
		sort.Strings(links)
		p.Logf("Found %d upload links, using %s", len(links), links[0])
	}
	return links[0], nil
}

// uploadPDF puts the PDF into the project storage and returns the
// id the preprint uses to point at it.
func (p *OSFProtocol) uploadPDF(ctx context.Context, client *network.RestClient, uploadLink, pdfPath string) (string, error) {
	query := url.Values{}
	query.Set("kind", "file")
	query.Set("name", constants.OSFUploadFileName)
	resp := client.PutFile(ctx, client.BuildUrl(uploadLink, &query), pdfPath)
	if err := p.LogRequest(resp, http.StatusCreated, "Unable to upload the PDF file."); err != nil {
		return "", err
	}
	uploaded := &resourceResponse{}
	if err := resp.UnmarshalJson(uploaded); err != nil {
		return "", errors.Wrap(err, "reading uploaded file")
	}
	path := strings.TrimPrefix(uploaded.Data.Attributes.Path, "/")
	if path == "" {
		return "", errors.New("OSF did not return the path of the uploaded file")
	}
	return path, nil
}

func (p *OSFProtocol) addContributors(ctx context.Context, client *network.RestClient, authorNames []string) error {
	contributorsUrl := fmt.Sprintf("v2/nodes/%s/contributors/", p.nodeId)
	for _, name := range authorNames {
		resp := client.PostJson(ctx, contributorsUrl, NewContributorRequest(name))
		if err := p.LogRequest(resp, http.StatusCreated, "Unable to add contributors."); err != nil {
			return err
		}
	}
	return nil
}

func (p *OSFProtocol) updateNodeLicense(ctx context.Context, client *network.RestClient, authorNames []string) error {
	record := p.Environment.LicenseRecord(p.licenseId, p.pubYear, authorNames)
	body := NewNodeLicenseRequest(p.nodeId, p.licenseId, record)
	p.Log("### Updating License")
	p.Logf("license id %s (no-license id %s)", p.licenseId, p.Environment.NoLicenseID)
	resp := client.PatchJson(ctx, fmt.Sprintf("v2/nodes/%s/", p.nodeId), body)
	return p.LogRequest(resp, http.StatusOK, "Unable to update license.")
}

func (p *OSFProtocol) createPreprint(ctx context.Context, client *network.RestClient, doi, primaryFileId string) (string, error) {
	p.Log("### Creating Preprint")
	resp := client.PostJson(ctx, "v2/preprints/", NewPreprintRequest(doi, p.nodeId, primaryFileId))
	if err := p.LogRequest(resp, http.StatusCreated, "Unable to create the preprint."); err != nil {
		return "", err
	}
	preprint := &resourceResponse{}
	if err := resp.UnmarshalJson(preprint); err != nil {
		return "", errors.Wrap(err, "reading new OSF preprint")
	}
	if preprint.Data.Id == "" {
		return "", errors.New("OSF did not return the id of the new preprint")
	}
	return preprint.Data.Id, nil
}

func (p *OSFProtocol) updatePreprintLicense(ctx context.Context, client *network.RestClient, preprintId string, authorNames []string) error {
	record := p.Environment.LicenseRecord(p.licenseId, p.pubYear, authorNames)
	body := NewPreprintLicenseRequest(preprintId, p.licenseId, record)
	p.Log("### Updating the Preprint License")
	resp := client.PatchJson(ctx, fmt.Sprintf("v2/preprints/%s/", preprintId), body)
	if err := p.LogRequest(resp, http.StatusOK, "Unable to update the Preprint License."); err != nil {
		return err
	}
	return nil
}

func (p *OSFProtocol) logJson(obj interface{}) {
	data, err := json.MarshalIndent(obj, "", "    ")
	if err != nil {
		p.Logf("Cannot serialize %T: %v", obj, err)
		return
	}
	p.Log(string(data))
}
