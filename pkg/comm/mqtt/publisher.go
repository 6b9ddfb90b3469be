package mqtt

import (
	"strings"
)

// ReportTopicPattern matches the report topic of every sensor.
const ReportTopicPattern = "irsense/+/report"

// ReportTopic returns the topic reports of sensorID are published to.
func ReportTopic(sensorID string) string {
	return "irsense/" + sensorID + "/report"
}

// SensorIDFromTopic extracts the sensor id from a report topic.
func SensorIDFromTopic(topic string) (string, bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 || items[0] != "irsense" || items[2] != "report" {
		return "", false
	}
	return items[1], true
}

// Publisher implements PacketWriter by publishing each packet to the
// report topic of one sensor.
type Publisher struct {
	Queue *Queue
	Topic string

	brokerURL string
}

// NewPublisher creates a Publisher and connects to the broker.
func NewPublisher(brokerURL, sensorID string) (*Publisher, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if opts.ClientID == "" {
		opts.SetClientID("irsense:" + sensorID)
	}
	p := &Publisher{
		Queue:     NewQueue(opts, topicPrefix),
		Topic:     ReportTopic(sensorID),
		brokerURL: brokerURL,
	}
	if err := p.Queue.Connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// Name implements Named.
func (p *Publisher) Name() string {
	return p.brokerURL
}

// WritePacket implements PacketWriter.
func (p *Publisher) WritePacket(pkt []byte) error {
	return p.Queue.Pub(p.Topic, pkt)
}

// Close implements io.Closer.
func (p *Publisher) Close() error {
	return p.Queue.Close()
}
