package models

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"github.com/openaccess/exchange/constants"
	"github.com/satori/go.uuid"
	"strconv"
	"time"
)

// DepositRecord is the stored form of a DepositResult. There is
// one record per deposit attempt, keyed by Id.
type DepositRecord struct {
	// Id is a uuid assigned when the record is created.
	Id string `json:"id"`
	// RequestId is the id of the DepositRequest that led to
	// this attempt.
	RequestId    string `json:"request_id,omitempty"`
	PaperId      int    `json:"paper_id"`
	RepositoryId int    `json:"repository_id"`
	UserId       int    `json:"user_id"`
	// Protocol is the identifier of the protocol that
	// performed the deposit.
	Protocol string `json:"protocol"`
	// Identifier is the repository's id for the deposit.
	Identifier string `json:"identifier,omitempty"`
	SplashURL  string `json:"splash_url,omitempty"`
	PDFURL     string `json:"pdf_url,omitempty"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	Logs       string `json:"logs,omitempty"`
	// OaiRecordIdentifier is the identifier of the OAI record
	// attached to the paper, if the deposit produced one.
	OaiRecordIdentifier string           `json:"oai_record_identifier,omitempty"`
	AdditionalInfo      []AdditionalInfo `json:"additional_info,omitempty"`
	Attempt             *AttemptSummary  `json:"attempt,omitempty"`
	// CreatedAt is when this record was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when this record was updated, usually
	// by a status refresh.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDepositRecord builds the record for one attempt at request,
// made by protocol, that ended in result.
func NewDepositRecord(request *DepositRequest, protocol string, result *DepositResult) *DepositRecord {
	now := time.Now().UTC()
	record := &DepositRecord{
		Id:             uuid.NewV4().String(),
		RequestId:      request.RequestId,
		RepositoryId:   request.RepositoryId,
		Protocol:       protocol,
		Identifier:     result.Identifier,
		SplashURL:      result.SplashURL,
		PDFURL:         result.PDFURL,
		Status:         result.Status,
		Message:        result.Message,
		Logs:           result.Logs,
		AdditionalInfo: result.AdditionalInfo,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if request.Paper != nil {
		record.PaperId = request.Paper.Id
	}
	if request.User != nil {
		record.UserId = request.User.Id
	}
	if result.OaiRecord != nil {
		record.OaiRecordIdentifier = result.OaiRecord.Identifier
	}
	return record
}

// SetStatus changes the record's status, returning an error if
// status is not a valid deposit status.
func (record *DepositRecord) SetStatus(status string) error {
	if err := ValidateDepositStatus(status); err != nil {
		return err
	}
	if record.Status != status {
		record.Status = status
		record.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// Refreshable returns true if the remote repository may still
// change this deposit's status.
func (record *DepositRecord) Refreshable() bool {
	return record.Identifier != "" &&
		(record.Status == constants.StatusPending || record.Status == constants.StatusPublished)
}

// ToJson converts this object to JSON.
func (record *DepositRecord) ToJson() (string, error) {
	jsonString, err := json.Marshal(record)
	return string(jsonString), err
}

// ToCSV converts this object to a CSV record.
// Param delimiter is the field delimiter (comma, tab, pipe, etc).
// Logs are left out.
func (record *DepositRecord) ToCSV(delimiter rune) (string, error) {
	buf := make([]byte, 0)
	buffer := bytes.NewBuffer(buf)
	writer := csv.NewWriter(buffer)
	writer.Comma = delimiter
	writer.Write(record.ToStringArray())
	writer.Flush()
	return buffer.String(), writer.Error()
}

// DepositRecordCSVHeaders matches the fields of ToStringArray.
var DepositRecordCSVHeaders = []string{
	"Id", "RequestId", "PaperId", "RepositoryId", "UserId",
	"Protocol", "Identifier", "SplashURL", "PDFURL", "Status",
	"Message", "OaiRecordIdentifier", "CreatedAt", "UpdatedAt",
}

// ToStringArray converts this record to a string array,
// usually so it can be serialized to CSV format.
func (record *DepositRecord) ToStringArray() []string {
	return []string{
		record.Id,
		record.RequestId,
		strconv.Itoa(record.PaperId),
		strconv.Itoa(record.RepositoryId),
		strconv.Itoa(record.UserId),
		record.Protocol,
		record.Identifier,
		record.SplashURL,
		record.PDFURL,
		record.Status,
		record.Message,
		record.OaiRecordIdentifier,
		record.CreatedAt.Format(time.RFC3339),
		record.UpdatedAt.Format(time.RFC3339),
	}
}

func (record *DepositRecord) String() string {
	return fmt.Sprintf("deposit %s of paper %d to repository %d (%s)",
		record.Id, record.PaperId, record.RepositoryId, record.Status)
}
