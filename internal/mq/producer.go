package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the part of *amqp.Channel the producers need.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

var _ Publisher = (*amqp.Channel)(nil)

func SendImmediateMessage(ch Publisher, queueName string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(
		context.Background(),
		"",
		queueName,
		false,
		false,
		newPublishing(body),
	)
	if err != nil {
		return fmt.Errorf("failed to publish message to queue %s: %w", queueName, err)
	}

	return nil
}

// SendDelayedMessage parks a message in a delay queue; it reappears on the
// queue bound to the delay queue's dead-letter exchange once the TTL expires.
func SendDelayedMessage(ch Publisher, delayQueueName string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := ch.PublishWithContext(
		context.Background(),
		"",
		delayQueueName,
		false,
		false,
		newPublishing(body),
	); err != nil {
		return fmt.Errorf("failed to publish message to delay queue %s: %w", delayQueueName, err)
	}
	return nil
}

func newPublishing(body []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
	}
}
