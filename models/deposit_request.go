package models

import (
	"encoding/json"
	"fmt"
	"github.com/openaccess/exchange/util"
	"github.com/satori/go.uuid"
	"time"
)

// DepositRequest asks a worker to deposit a paper into a
// repository. Requests travel through NSQ as JSON, or are
// built directly by dep_submit.
type DepositRequest struct {
	RequestId    string `json:"request_id"`
	Paper        *Paper `json:"paper"`
	User         *User  `json:"user"`
	RepositoryId int    `json:"repository_id"`

	// PDF is a local path or an s3://bucket/key URI.
	PDF string `json:"pdf"`

	// Form holds the submitted metadata form: abstract,
	// tags, license and whatever else the protocol asks for.
	Form map[string]string `json:"form,omitempty"`

	DryRun    bool      `json:"dry_run,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewDepositRequest(paper *Paper, user *User, repositoryId int, pdf string) *DepositRequest {
	return &DepositRequest{
		RequestId:    uuid.NewV4().String(),
		Paper:        paper,
		User:         user,
		RepositoryId: repositoryId,
		PDF:          pdf,
		Form:         make(map[string]string),
		CreatedAt:    time.Now().UTC(),
	}
}

// DepositRequestFromJson parses and validates a request.
// Requests without an id get one.
func DepositRequestFromJson(data []byte) (*DepositRequest, error) {
	request := &DepositRequest{}
	if err := json.Unmarshal(data, request); err != nil {
		return nil, fmt.Errorf("Could not parse deposit request: %v", err)
	}
	if request.RequestId == "" {
		request.RequestId = uuid.NewV4().String()
	}
	if request.Form == nil {
		request.Form = make(map[string]string)
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}
	return request, nil
}

// Validate returns an error describing the first missing piece
// of the request.
func (request *DepositRequest) Validate() error {
	if !util.LooksLikeUUID(request.RequestId) {
		return fmt.Errorf("Deposit request id '%s' is not a UUID", request.RequestId)
	}
	if request.Paper == nil {
		return fmt.Errorf("Deposit request %s has no paper", request.RequestId)
	}
	if request.User == nil {
		return fmt.Errorf("Deposit request %s has no user", request.RequestId)
	}
	if request.RepositoryId == 0 {
		return fmt.Errorf("Deposit request %s has no repository id", request.RequestId)
	}
	if request.PDF == "" && !request.DryRun {
		return fmt.Errorf("Deposit request %s has no PDF", request.RequestId)
	}
	return nil
}

func (request *DepositRequest) ToJson() ([]byte, error) {
	return json.Marshal(request)
}
