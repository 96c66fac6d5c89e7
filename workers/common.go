package workers

import (
	"fmt"
	"github.com/nsqio/go-nsq"
	"github.com/openaccess/exchange/constants"
	"github.com/openaccess/exchange/models"
)

// Creates and returns an NSQ consumer for a worker process.
// Topic and channel fall back to the deposit defaults when the
// worker config leaves them empty.
func CreateNsqConsumer(config *models.Config, workerConfig *models.WorkerConfig) (*nsq.Consumer, error) {
	topic, channel := workerConfig.NsqTopic, workerConfig.NsqChannel
	if topic == "" {
		topic = constants.DepositTopic
	}
	if channel == "" {
		channel = constants.DepositChannel
	}
	nsqConfig := nsq.NewConfig()
	settings := map[string]interface{}{
		"max_in_flight":      workerConfig.MaxInFlight,
		"heartbeat_interval": workerConfig.HeartbeatInterval,
		"max_attempts":       workerConfig.MaxAttempts,
		"read_timeout":       workerConfig.ReadTimeout,
		"write_timeout":      workerConfig.WriteTimeout,
		"msg_timeout":        workerConfig.MessageTimeout,
	}
	for option, value := range settings {
		if err := nsqConfig.Set(option, value); err != nil {
			return nil, fmt.Errorf("NSQ option %s: %v", option, err)
		}
	}
	return nsq.NewConsumer(topic, channel, nsqConfig)
}
