// Package mirror republishes topic events to Kafka so downstream consumers do
// not have to follow the consensus topic.
package mirror

import (
	"context"
	"errors"

	"github.com/twmb/franz-go/pkg/kgo"
)

const contentTypeJSON = "application/json"

// Producer publishes events to one Kafka topic, keyed by identity digest.
type Producer struct {
	client *kgo.Client
	topic  string
	source string
}

// New creates a Producer. source is set as the record's source header.
func New(client *kgo.Client, topic, source string) (*Producer, error) {
	if client == nil {
		return nil, errors.New("kafka client is required")
	}
	if topic == "" {
		return nil, errors.New("mirror topic is required")
	}
	return &Producer{client: client, topic: topic, source: source}, nil
}

// Publish produces the event synchronously.
func (p *Producer) Publish(ctx context.Context, key string, payload []byte) error {
	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(key),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "content-type", Value: []byte(contentTypeJSON)},
			{Key: "source", Value: []byte(p.source)},
		},
	}
	return p.client.ProduceSync(ctx, rec).FirstErr()
}
