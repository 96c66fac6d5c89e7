// Package notification delivers the payloads the depositor sends
// after every deposit attempt.
package notification

import (
	"fmt"
	"github.com/op/go-logging"
	"github.com/openaccess/exchange/deposit"
	"github.com/openaccess/exchange/models"
	"strings"
)

// LogNotifier writes notifications to the message log. It's the
// notifier of last resort when nothing else is configured.
type LogNotifier struct {
	MessageLog *logging.Logger
}

func NewLogNotifier(messageLog *logging.Logger) *LogNotifier {
	return &LogNotifier{MessageLog: messageLog}
}

func (notifier *LogNotifier) Notify(payload *models.NotificationPayload) error {
	if payload == nil {
		return fmt.Errorf("Nothing to notify")
	}
	notifier.MessageLog.Infof("Notify %s: deposit of %s to %s", payload.Name, payload.PaperURL, payload.Repo)
	return nil
}

// Chain sends each notification to all of its notifiers, in order,
// even if some of them fail.
type Chain []deposit.Notifier

func NewChain(notifiers ...deposit.Notifier) Chain {
	chain := make(Chain, 0, len(notifiers))
	for _, notifier := range notifiers {
		if notifier != nil {
			chain = append(chain, notifier)
		}
	}
	return chain
}

func (chain Chain) Notify(payload *models.NotificationPayload) error {
	messages := make([]string, 0)
	for _, notifier := range chain {
		if err := notifier.Notify(payload); err != nil {
			messages = append(messages, err.Error())
		}
	}
	if len(messages) > 0 {
		return fmt.Errorf("%d of %d notifiers failed: %s",
			len(messages), len(chain), strings.Join(messages, "; "))
	}
	return nil
}
