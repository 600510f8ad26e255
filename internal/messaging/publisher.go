package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"daggergm/internal/interfaces"
	"daggergm/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	publishTimeout  = 10 * time.Second
	publishAttempts = 3
)

// Compile-time check
var _ interfaces.EventPublisher = (*rabbitMQEventPublisher)(nil)

type rabbitMQEventPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQEventPublisher opens a channel on the given connection and
// declares the durable updates queue.
func NewRabbitMQEventPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (interfaces.EventPublisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}
	_, err = channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", queueName, err)
	}
	logger.Info("RabbitMQ event publisher ready", zap.String("queue", queueName))
	return &rabbitMQEventPublisher{
		channel:   channel,
		queueName: queueName,
		logger:    logger.Named("EventPublisher"),
	}, nil
}

func (p *rabbitMQEventPublisher) PublishAdventureUpdate(ctx context.Context, update models.AdventureUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal adventure update: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		lastErr = p.channel.PublishWithContext(publishCtx,
			"",          // default exchange
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    time.Now().UTC(),
				Body:         body,
			})
		cancel()
		if lastErr == nil {
			p.logger.Debug("Adventure update published",
				zap.String("event", update.Event),
				zap.String("adventureID", update.AdventureID.String()))
			return nil
		}
		p.logger.Warn("Failed to publish adventure update",
			zap.Int("attempt", attempt),
			zap.Error(lastErr))
	}
	return fmt.Errorf("failed to publish adventure update after %d attempts: %w", publishAttempts, lastErr)
}

type nopEventPublisher struct{}

// NewNopPublisher returns a publisher that drops every update. Used when no
// message broker is configured.
func NewNopPublisher() interfaces.EventPublisher {
	return nopEventPublisher{}
}

func (nopEventPublisher) PublishAdventureUpdate(context.Context, models.AdventureUpdate) error {
	return nil
}
