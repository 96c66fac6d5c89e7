package testutil

import (
	"github.com/nsqio/go-nsq"
	"time"
)

// NSQTestDelegate captures what a worker does with an NSQ
// message, so tests can check it without an nsqd. It implements
// nsq.MessageDelegate.
type NSQTestDelegate struct {
	Message   *nsq.Message
	Delay     time.Duration
	Backoff   bool
	Operation string

	// Operations lists every call in order, like
	// ["touch", "finish"].
	Operations []string
}

// NewNSQTestDelegate returns a pointer to a new NSQTestDelegate.
func NewNSQTestDelegate() *NSQTestDelegate {
	return &NSQTestDelegate{Operations: make([]string, 0)}
}

// OnFinish receives the Finish() call from an NSQ message.
func (delegate *NSQTestDelegate) OnFinish(message *nsq.Message) {
	delegate.record(message, "finish")
}

// OnRequeue receives the Requeue() call from an NSQ message.
func (delegate *NSQTestDelegate) OnRequeue(message *nsq.Message, delay time.Duration, backoff bool) {
	delegate.Delay = delay
	delegate.Backoff = backoff
	delegate.record(message, "requeue")
}

// OnTouch receives the Touch() call from an NSQ message.
func (delegate *NSQTestDelegate) OnTouch(message *nsq.Message) {
	delegate.record(message, "touch")
}

func (delegate *NSQTestDelegate) record(message *nsq.Message, operation string) {
	delegate.Message = message
	delegate.Operation = operation
	delegate.Operations = append(delegate.Operations, operation)
}

// MakeDelegatedMessage returns a message with the given body
// whose Finish, Requeue and Touch calls go to a new delegate.
func MakeDelegatedMessage(body string) (*nsq.Message, *NSQTestDelegate) {
	delegate := NewNSQTestDelegate()
	message := MakeNsqMessage(body)
	message.Delegate = delegate
	return message, delegate
}
