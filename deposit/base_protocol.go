package deposit

import (
	"context"
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/network"
	"strconv"
)

// BaseProtocol implements everything in Protocol except
// ProtocolIdentifier and SubmitDeposit.
type BaseProtocol struct {
	repository *models.Repository
	paper      *models.Paper
	user       *models.User
	requestLog *RequestLog
}

func NewBaseProtocol(repo *models.Repository) *BaseProtocol {
	return &BaseProtocol{
		repository: repo,
		requestLog: NewRequestLog(),
	}
}

func (base *BaseProtocol) InitDeposit(paper *models.Paper, user *models.User) bool {
	base.paper = paper
	base.user = user
	base.requestLog.Reset()
	return paper != nil && user != nil
}

func (base *BaseProtocol) FormInitialData() FormData {
	data := FormData{}
	if base.paper != nil {
		data["paper_id"] = strconv.Itoa(base.paper.Id)
	}
	return data
}

func (base *BaseProtocol) FormFields() []string {
	return []string{"paper_id"}
}

// RefreshDepositStatus leaves record as it is.
func (base *BaseProtocol) RefreshDepositStatus(ctx context.Context, record *models.DepositRecord) error {
	return nil
}

func (base *BaseProtocol) Repository() *models.Repository {
	return base.repository
}

func (base *BaseProtocol) Paper() *models.Paper {
	return base.paper
}

func (base *BaseProtocol) User() *models.User {
	return base.user
}

func (base *BaseProtocol) Log(line string) {
	base.requestLog.Log(line)
}

func (base *BaseProtocol) Logf(format string, a ...interface{}) {
	base.requestLog.Logf(format, a...)
}

func (base *BaseProtocol) Logs() string {
	return base.requestLog.String()
}

// LogRequest logs the URL and status of resp and returns a
// DepositError with errorMsg unless the status is expected.
// Requests that never got a response, because of a refused
// connection or an expired deadline, fail the same way.
func (base *BaseProtocol) LogRequest(resp *network.RestResponse, expected int, errorMsg string) error {
	base.Logf("--- Request to %s\n", resp.Url())
	if resp.Response == nil {
		base.Logf("Request failed: %v\n", resp.Error)
		return NewDepositError(errorMsg)
	}
	base.Logf("Status code: %d (expected %d)\n", resp.StatusCode(), expected)
	if resp.StatusCode() != expected {
		base.Log("Server response:")
		base.Log(resp.Text())
		base.Log("")
		return NewDepositError(errorMsg)
	}
	if resp.Error != nil {
		base.Logf("Error reading response: %v\n", resp.Error)
		return NewDepositError(errorMsg)
	}
	return nil
}
