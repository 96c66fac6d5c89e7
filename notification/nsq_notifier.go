package notification

import (
	"fmt"
	"github.com/op/go-logging"
	"github.com/openaccess/exchange/models"
)

// Enqueuer publishes objects as JSON to an NSQ topic.
// network.NSQClient is one.
type Enqueuer interface {
	Enqueue(topic string, obj interface{}) error
}

// NSQNotifier publishes each payload to an NSQ topic, where the
// service that emails users picks it up.
type NSQNotifier struct {
	Client     Enqueuer
	Topic      string
	MessageLog *logging.Logger
}

func NewNSQNotifier(client Enqueuer, topic string, messageLog *logging.Logger) *NSQNotifier {
	return &NSQNotifier{
		Client:     client,
		Topic:      topic,
		MessageLog: messageLog,
	}
}

func (notifier *NSQNotifier) Notify(payload *models.NotificationPayload) error {
	if payload == nil {
		return fmt.Errorf("Nothing to notify")
	}
	if notifier.Topic == "" {
		return fmt.Errorf("No NSQ topic configured for notifications")
	}
	if err := notifier.Client.Enqueue(notifier.Topic, payload); err != nil {
		return fmt.Errorf("Cannot queue notification for %s: %v", payload.PaperURL, err)
	}
	if notifier.MessageLog != nil {
		notifier.MessageLog.Debugf("Queued notification for %s in %s", payload.PaperURL, notifier.Topic)
	}
	return nil
}
