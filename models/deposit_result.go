package models

import (
	"fmt"
	"github.com/openaccess/exchange/constants"
	"github.com/openaccess/exchange/util"
)

// AdditionalInfo is a label/value pair a protocol may attach to a
// deposit result, like the URL of an intermediate project page.
type AdditionalInfo struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DepositResult carries the outcome of one deposit attempt to the
// persistence layer. It's created once per attempt and never reused.
type DepositResult struct {
	// Identifier is assigned by the repository. It's empty until
	// the deposit succeeds.
	Identifier string

	// SplashURL is the public landing page of the deposited work.
	SplashURL string

	// PDFURL is the public download URL of the deposited file.
	PDFURL string

	// Logs is the full diagnostic log of the attempt.
	Logs string

	// Status is one of constants.DepositStatusTypes.
	Status string

	// Message is a user-safe description of what happened.
	Message string

	// OaiRecord is the record attached to the paper after a
	// successful deposit.
	OaiRecord *OaiRecord

	AdditionalInfo []AdditionalInfo
}

// NewDepositResult returns a result with the given status, or an
// error if status is not a valid deposit status.
func NewDepositResult(status string) (*DepositResult, error) {
	if err := ValidateDepositStatus(status); err != nil {
		return nil, err
	}
	return &DepositResult{
		Status:         status,
		AdditionalInfo: make([]AdditionalInfo, 0),
	}, nil
}

// NewFailedResult returns a failed result carrying logs and message.
func NewFailedResult(logs, message string) *DepositResult {
	return &DepositResult{
		Status:         constants.StatusFailed,
		Logs:           logs,
		Message:        message,
		AdditionalInfo: make([]AdditionalInfo, 0),
	}
}

// ValidateDepositStatus returns an error if status is not one of
// constants.DepositStatusTypes.
func ValidateDepositStatus(status string) error {
	if !util.StringListContains(constants.DepositStatusTypes, status) {
		return fmt.Errorf("Invalid deposit status '%s'", status)
	}
	return nil
}

// AddInfo appends a label/value pair to AdditionalInfo.
func (result *DepositResult) AddInfo(label, value string) {
	result.AdditionalInfo = append(result.AdditionalInfo, AdditionalInfo{Label: label, Value: value})
}

// Succeeded returns true unless the deposit failed.
func (result *DepositResult) Succeeded() bool {
	return result.Status != constants.StatusFailed
}
