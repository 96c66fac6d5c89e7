package deposit_test

import (
	"context"
	"github.com/openaccess/exchange/deposit"
	"github.com/openaccess/exchange/models"
)

const fakeProtocolId = "FakeProtocol"

// fakeProtocol runs whatever submit function a test gives it.
type fakeProtocol struct {
	*deposit.BaseProtocol
	submit func(ctx context.Context, p *fakeProtocol, pdfPath string, form deposit.FormData, dryRun bool) (*models.DepositResult, error)
}

func newFakeProtocol(repo *models.Repository, opts deposit.Options) (deposit.Protocol, error) {
	return &fakeProtocol{BaseProtocol: deposit.NewBaseProtocol(repo)}, nil
}

func (p *fakeProtocol) ProtocolIdentifier() string {
	return fakeProtocolId
}

func (p *fakeProtocol) FormInitialData() deposit.FormData {
	data := p.BaseProtocol.FormInitialData()
	data["license"] = "cc-by"
	return data
}

func (p *fakeProtocol) FormFields() []string {
	return []string{"paper_id", "abstract", "license"}
}

func (p *fakeProtocol) SubmitDeposit(ctx context.Context, pdfPath string, form deposit.FormData, dryRun bool) (*models.DepositResult, error) {
	return p.submit(ctx, p, pdfPath, form, dryRun)
}

func fakeRepository() *models.Repository {
	return &models.Repository{
		Id:        3,
		Name:      "Fake Repository",
		Protocol:  fakeProtocolId,
		OaiSource: "fake",
		Licenses:  []models.License{{Id: "cc-by", Name: "CC BY"}},
	}
}

func fakePaper() *models.Paper {
	return &models.Paper{Id: 1234, Title: "On Deposits", PubDate: "2017-03-14"}
}

func fakeUser() *models.User {
	return &models.User{Id: 7, Username: "abyron", FirstName: "Ada", LastName: "Byron"}
}

func initFakeProtocol() *fakeProtocol {
	p, _ := newFakeProtocol(fakeRepository(), deposit.Options{})
	fake := p.(*fakeProtocol)
	fake.InitDeposit(fakePaper(), fakeUser())
	return fake
}

// recordingNotifier keeps every payload it gets.
type recordingNotifier struct {
	payloads []models.NotificationPayload
}

func (n *recordingNotifier) Notify(payload *models.NotificationPayload) error {
	n.payloads = append(n.payloads, *payload)
	return nil
}
