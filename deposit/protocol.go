package deposit

import (
	"context"
	"github.com/openaccess/exchange/models"
	"time"
)

// FormData holds form values by field name, as the user submitted
// them or as a protocol suggests them.
type FormData map[string]string

// Protocol deposits papers into one kind of repository. A Protocol
// is built for a single repository and a single attempt: call
// InitDeposit first, then SubmitDeposit through a Depositor.
// Backends embed *BaseProtocol and add ProtocolIdentifier and
// SubmitDeposit.
type Protocol interface {
	// ProtocolIdentifier is the key the protocol is registered
	// under, and the value repositories use to select it.
	ProtocolIdentifier() string

	// InitDeposit binds the paper and user to this instance,
	// clears the log and returns false if the paper cannot be
	// deposited into this repository.
	InitDeposit(paper *models.Paper, user *models.User) bool

	// FormInitialData returns the values the metadata form
	// starts with. It always includes paper_id.
	FormInitialData() FormData

	// FormFields lists the fields of the metadata form.
	FormFields() []string

	// SubmitDeposit sends the PDF at pdfPath and the metadata in
	// form to the repository. Failures the user should hear about
	// are returned as *DepositError. With dryRun, nothing is sent.
	SubmitDeposit(ctx context.Context, pdfPath string, form FormData, dryRun bool) (*models.DepositResult, error)

	// RefreshDepositStatus asks the repository what became of an
	// earlier deposit and updates record accordingly.
	RefreshDepositStatus(ctx context.Context, record *models.DepositRecord) error

	Repository() *models.Repository
	Paper() *models.Paper
	User() *models.User

	Log(line string)
	Logf(format string, a ...interface{})
	Logs() string
}

// Options are the settings every protocol instance gets from
// the registry that builds it.
type Options struct {
	// RequestTimeout bounds each HTTP request to the repository.
	RequestTimeout time.Duration
}

// Factory builds a protocol instance for repo.
type Factory func(repo *models.Repository, opts Options) (Protocol, error)
