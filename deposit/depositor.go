package deposit

import (
	"context"
	"fmt"
	"github.com/op/go-logging"
	"github.com/openaccess/exchange/constants"
	"github.com/openaccess/exchange/models"
	"github.com/pkg/errors"
	"runtime/debug"
	"time"
)

// Notifier hears about every deposit attempt, successful or not.
type Notifier interface {
	Notify(payload *models.NotificationPayload) error
}

// NotifierFunc lets an ordinary function act as a Notifier.
type NotifierFunc func(payload *models.NotificationPayload) error

func (f NotifierFunc) Notify(payload *models.NotificationPayload) error {
	return f(payload)
}

// Depositor runs deposit attempts. Whatever happens inside the
// protocol, Submit returns a result and sends one notification.
type Depositor struct {
	Notifier Notifier

	// PaperURLFormat builds the paper URL in notifications.
	PaperURLFormat string

	// AttemptTimeout bounds each call to SubmitDeposit. Zero
	// means no bound beyond the caller's context.
	AttemptTimeout time.Duration

	// MessageLog may be nil.
	MessageLog *logging.Logger
}

func NewDepositor(notifier Notifier, paperURLFormat string, attemptTimeout time.Duration, messageLog *logging.Logger) *Depositor {
	if paperURLFormat == "" {
		paperURLFormat = constants.DefaultPaperURLFormat
	}
	return &Depositor{
		Notifier:       notifier,
		PaperURLFormat: paperURLFormat,
		AttemptTimeout: attemptTimeout,
		MessageLog:     messageLog,
	}
}

// Submit deposits the PDF at pdfPath through p, which must have
// been through InitDeposit. It never returns nil. Failures come
// back as results with status failed: a DepositError's message is
// passed on to the user, anything else gets a generic message and
// leaves its details in the result's logs.
func (depositor *Depositor) Submit(ctx context.Context, p Protocol, pdfPath string, form FormData, dryRun bool) *models.DepositResult {
	payload := models.NewNotificationPayload(p.User(), p.Repository(), p.Paper(), depositor.PaperURLFormat)
	if depositor.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, depositor.AttemptTimeout)
		defer cancel()
	}
	result := depositor.runProtocol(ctx, p, payload, pdfPath, form, dryRun)
	depositor.notify(payload)
	return result
}

// runProtocol turns whatever SubmitDeposit does, panics included,
// into a result. Failures append their message to payload.
func (depositor *Depositor) runProtocol(ctx context.Context, p Protocol, payload *models.NotificationPayload, pdfPath string, form FormData, dryRun bool) (result *models.DepositResult) {
	defer func() {
		if r := recover(); r != nil {
			p.Log("Caught exception:")
			p.Logf("%T: %v", r, r)
			p.Log(string(debug.Stack()))
			depositor.errorf("Deposit of paper %d to %s panicked: %v",
				paperId(p), repositoryName(p), r)
			result = depositor.failed(p, payload, constants.GenericDepositFailure)
		}
	}()

	result, err := p.SubmitDeposit(ctx, pdfPath, form, dryRun)
	if err == nil && result == nil {
		err = errors.Errorf("%s returned neither a result nor an error", p.ProtocolIdentifier())
	}
	if err == nil {
		if statusErr := models.ValidateDepositStatus(result.Status); statusErr != nil {
			err = errors.WithStack(statusErr)
		}
	}
	if err != nil {
		return depositor.handleError(p, payload, err)
	}

	if result.SplashURL != "" {
		depositor.attachOaiRecord(p, result)
	}
	result.Logs = p.Logs()
	depositor.infof("Deposit of paper %d to %s: %s %s",
		paperId(p), repositoryName(p), result.Status, result.Identifier)
	return result
}

func (depositor *Depositor) attachOaiRecord(p Protocol, result *models.DepositResult) {
	repo := p.Repository()
	record := &models.OaiRecord{
		Identifier: models.DepositionIdentifier(repo.Id, result.Identifier),
		Source:     repo.OaiSource,
		SplashURL:  result.SplashURL,
		PDFURL:     result.PDFURL,
	}
	attached, err := p.Paper().AddOaiRecord(record)
	if err != nil {
		// The deposit itself went through, so this doesn't fail it.
		p.Logf("Could not attach OAI record %s: %v", record.Identifier, err)
		depositor.warningf("Could not attach OAI record %s: %v", record.Identifier, err)
		return
	}
	result.OaiRecord = attached
}

func (depositor *Depositor) handleError(p Protocol, payload *models.NotificationPayload, err error) *models.DepositResult {
	if depositErr, ok := AsDepositError(err); ok {
		p.Log("Message: " + depositErr.Message)
		depositor.warningf("Deposit of paper %d to %s failed: %s",
			paperId(p), repositoryName(p), depositErr.Message)
		return depositor.failed(p, payload, depositErr.Message)
	}
	p.Log("Caught exception:")
	p.Logf("%T: %v", errors.Cause(err), err)
	p.Logf("%+v", err)
	depositor.errorf("Deposit of paper %d to %s failed unexpectedly: %v",
		paperId(p), repositoryName(p), err)
	return depositor.failed(p, payload, constants.GenericDepositFailure)
}

func (depositor *Depositor) failed(p Protocol, payload *models.NotificationPayload, message string) *models.DepositResult {
	payload.AppendMessage(message)
	return models.NewFailedResult(p.Logs(), message)
}

// notify sends payload once. A notifier that fails or panics
// doesn't change the outcome of the deposit.
func (depositor *Depositor) notify(payload *models.NotificationPayload) {
	if depositor.Notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			depositor.warningf("Notification for %s panicked: %v", payload.PaperURL, r)
		}
	}()
	if err := depositor.Notifier.Notify(payload); err != nil {
		depositor.warningf("Notification for %s failed: %v", payload.PaperURL, err)
	}
}

func (depositor *Depositor) infof(format string, a ...interface{}) {
	if depositor.MessageLog != nil {
		depositor.MessageLog.Infof(format, a...)
	}
}

func (depositor *Depositor) warningf(format string, a ...interface{}) {
	if depositor.MessageLog != nil {
		depositor.MessageLog.Warningf(format, a...)
	}
}

func (depositor *Depositor) errorf(format string, a ...interface{}) {
	if depositor.MessageLog != nil {
		depositor.MessageLog.Errorf(format, a...)
	}
}

func paperId(p Protocol) int {
	if p.Paper() == nil {
		return 0
	}
	return p.Paper().Id
}

func repositoryName(p Protocol) string {
	if p.Repository() == nil {
		return "unknown repository"
	}
	return fmt.Sprintf("%s (%d)", p.Repository().Name, p.Repository().Id)
}
