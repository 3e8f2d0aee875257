package events

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
)

// KafkaRelay forwards every lifecycle event to a kafka topic. Messages
// are keyed by request id, so the per-request ordering survives
// partitioning.
type KafkaRelay struct {
	producer sarama.SyncProducer
	topic    string
}

var _ Listener = (*KafkaRelay)(nil)

func NewKafkaRelay(producer sarama.SyncProducer, topic string) *KafkaRelay {
	return &KafkaRelay{
		producer: producer,
		topic:    topic,
	}
}

func (r *KafkaRelay) Handle(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: r.topic,
		Key:   sarama.StringEncoder(ev.RequestID),
		Value: sarama.ByteEncoder(data),
	}
	_, _, err = r.producer.SendMessage(msg)
	return err
}
