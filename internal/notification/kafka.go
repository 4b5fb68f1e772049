package notification

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSender publishes each message as JSON to topicPrefix + type, keyed by
// appointment so one appointment's notifications stay ordered.
type KafkaSender struct {
	writer      messageWriter
	topicPrefix string
}

func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
	}
}

func NewKafkaSender(writer messageWriter, topicPrefix string) *KafkaSender {
	return &KafkaSender{writer: writer, topicPrefix: topicPrefix}
}

func (s *KafkaSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	err = s.writer.WriteMessages(ctx, kafka.Message{
		Topic: s.topicPrefix + string(msg.Type),
		Key:   []byte(msg.AppointmentID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "notification_id", Value: []byte(msg.NotificationID.String())},
			{Key: "notification_type", Value: []byte(msg.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish notification to kafka: %w", err)
	}
	return nil
}
