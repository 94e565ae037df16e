package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vietanh2810/stand-portal-api/internal/config"
	"github.com/vietanh2810/stand-portal-api/internal/domain"
)

// Publisher hands notifications to the external notification service.
type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
	Close() error
}

// New returns the publisher selected by conf.Driver.
func New(conf *config.NotificationsConfig) (Publisher, error) {
	switch conf.Driver {
	case "", "log":
		return NewLogPublisher(zap.L()), nil
	case "rabbitmq":
		return NewRabbitPublisher(conf.RabbitMQURL, conf.Queue)
	case "kafka":
		return NewKafkaPublisher(conf.KafkaBrokers, conf.KafkaTopic), nil
	default:
		return nil, fmt.Errorf("unknown notification driver %q", conf.Driver)
	}
}

// LogPublisher only writes notifications to the log.
type LogPublisher struct {
	l *zap.Logger
}

func NewLogPublisher(l *zap.Logger) *LogPublisher {
	return &LogPublisher{l: l}
}

func (p *LogPublisher) Publish(_ context.Context, n domain.Notification) error {
	p.l.Info("notification",
		zap.String("type", string(n.Type)),
		zap.Uint("recipient_id", n.RecipientID),
		zap.Uint("stand_id", n.StandID),
		zap.String("title", n.Title),
	)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
