package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"
)

// NSQStats contains info about the status of NSQ and its topics
// and queues. This info comes from a GET call to the /stats endpoint.
type NSQStats struct {
	Version string          `json:"version"`
	Health  string          `json:"health"`
	Topics  []NSQTopicStats `json:"topics"`
}

// NSQTopicStats is the part of nsqd's topic stats we care about.
type NSQTopicStats struct {
	TopicName    string            `json:"topic_name"`
	Depth        int64             `json:"depth"`
	MessageCount uint64            `json:"message_count"`
	Channels     []NSQChannelStats `json:"channels"`
}

// NSQChannelStats is the part of nsqd's channel stats we care about.
type NSQChannelStats struct {
	ChannelName   string `json:"channel_name"`
	Depth         int64  `json:"depth"`
	InFlightCount int    `json:"in_flight_count"`
	RequeueCount  uint64 `json:"requeue_count"`
}

// GetTopic returns the stats for the named topic, or nil.
func (stats *NSQStats) GetTopic(name string) *NSQTopicStats {
	for i := range stats.Topics {
		if stats.Topics[i].TopicName == name {
			return &stats.Topics[i]
		}
	}
	return nil
}

type NSQClient struct {
	URL        string
	httpClient *http.Client
}

// Returns a new NSQ client that will connect to the NSQ server
// and the specified url. The URL is typically available through
// Config.NsqdHttpAddress, and usually ends with :4151. This is
// the URL to which we post deposit requests and notifications.
//
// Note that this client provides write access to queue, so we can
// add things. It does not provide read access. The workers do the
// reading.
func NewNSQClient(url string) *NSQClient {
	return &NSQClient{
		URL:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Publish puts body into the given topic.
func (client *NSQClient) Publish(topic string, body []byte) error {
	url := fmt.Sprintf("%s/pub?topic=%s", client.URL, topic)
	resp, err := client.httpClient.Post(url, "application/octet-stream", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("Nsqd returned an error when queuing data: %v", err)
	}
	if resp == nil {
		return fmt.Errorf("No response from nsqd at '%s'. Is it running?", url)
	}

	// nsqd sends a simple OK. We have to read the response body,
	// or the connection will hang open forever.
	respBody, _ := ioutil.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != 200 {
		bodyText := "[no response body]"
		if len(respBody) > 0 {
			bodyText = string(respBody)
		}
		return fmt.Errorf("nsqd returned status code %d when attempting to queue data. "+
			"Response body: %s", resp.StatusCode, bodyText)
	}
	return nil
}

// Enqueue serializes obj to JSON and publishes it to topic. This is
// how deposit requests get to dep_worker and how notifications get
// to whatever delivers them.
func (client *NSQClient) Enqueue(topic string, obj interface{}) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("Cannot serialize %T for topic %s: %v", obj, topic, err)
	}
	return client.Publish(topic, data)
}

// GetStats returns basic stats for all topics from NSQ's /stats
// endpoint. Note that requests to /stats/ (with trailing slash)
// produce a 404.
func (client *NSQClient) GetStats() (*NSQStats, error) {
	url := fmt.Sprintf("%s/stats?format=json", client.URL)
	resp, err := client.httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	body, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("NSQ returned status code %d, body: %s",
			resp.StatusCode, body)
	}
	stats := &NSQStats{}
	err = json.Unmarshal(body, stats)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
