package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fleet-dispatch/internal/common/logger"
	"fleet-dispatch/internal/common/rmq"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher pushes driver-facing messages onto the notifications topic
// exchange.
type Publisher struct {
	mq       *rmq.RabbitMQ
	exchange string
}

func NewPublisher(mq *rmq.RabbitMQ, exchange string) *Publisher {
	return &Publisher{mq: mq, exchange: exchange}
}

func (p *Publisher) PublishShiftAssigned(ctx context.Context, msg rmq.ShiftAssignedMessage) error {
	if msg.CorrelationID == "" {
		msg.CorrelationID = generateCorrelationID()
	}
	return p.publish(ctx, "shift.assigned", msg.CorrelationID, msg.ShiftID, msg)
}

func (p *Publisher) PublishShiftUpdated(ctx context.Context, msg rmq.ShiftUpdatedMessage) error {
	if msg.CorrelationID == "" {
		msg.CorrelationID = generateCorrelationID()
	}
	return p.publish(ctx, "shift.updated", msg.CorrelationID, msg.ShiftID, msg)
}

func (p *Publisher) publish(ctx context.Context, routingKey, correlationID, shiftID string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		logger.Error("publish_marshal_failed", "Failed to marshal notification message", correlationID, shiftID, err.Error())
		return fmt.Errorf("failed to marshal notification message: %w", err)
	}

	if err := p.mq.Chan.ExchangeDeclare(
		p.exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		logger.Error("publish_exchange_failed", "Failed to declare exchange", correlationID, shiftID, err.Error())
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := p.mq.Chan.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		logger.Error("publish_failed", "Failed to publish "+routingKey, correlationID, shiftID, err.Error())
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	logger.Info("publish_ok", routingKey+" published", correlationID, shiftID)
	return nil
}

func generateCorrelationID() string {
	return fmt.Sprintf("req_%d", time.Now().UnixNano())
}
