package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
)

// KafkaPublisher writes notifications to a topic keyed by stand id, so that
// notifications for one stand stay ordered within a partition.
type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(n.StandID), 10)),
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(n.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("p.w.WriteMessages -> %w", err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
