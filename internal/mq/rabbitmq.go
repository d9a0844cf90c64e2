package mq

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// InitQueues declares every queue the service uses. Pending confirmation
// mails survive restarts, so nothing is purged here.
func InitQueues(mqConn *amqp.Connection) error {
	ch, err := NewChannel(mqConn)
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := SetupImmediateQueue(ch, SignupToMailImmediateQueue); err != nil {
		return err
	}
	return SetupDelayQueue(ch, MailRetryDelayQueue, MailRetryExchange,
		SignupToMailImmediateQueue, MailRetryRoutingKey, MailRetryDelay)
}

func NewMQConn(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func NewChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func SetupImmediateQueue(ch *amqp.Channel, immediateQueueName string) error {
	_, err := ch.QueueDeclare(immediateQueueName, true, false, false, false, nil)
	return err
}

// the delay queue consists three part: delay queue, timeout exchange, timeout queue
// produce to the delay queue, and consume from the timeout queue
func SetupDelayQueue(ch *amqp.Channel, delayQueueName, timeoutExchangeName, timeoutQueueName string,
	timeoutRoutingKey string, ttl time.Duration) error {
	if _, err := ch.QueueDeclare(
		delayQueueName, true, false, false, false, DelayQueueArgs(timeoutExchangeName, timeoutRoutingKey, ttl)); err != nil {
		return err
	}

	if err := ch.ExchangeDeclare(timeoutExchangeName, "direct", true, false, false, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(timeoutQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	return ch.QueueBind(timeoutQueueName, timeoutRoutingKey, timeoutExchangeName, false, nil)
}

func DelayQueueArgs(timeoutExchangeName, timeoutRoutingKey string, ttl time.Duration) amqp.Table {
	return amqp.Table{
		"x-message-ttl":             int32(ttl / time.Millisecond),
		"x-dead-letter-exchange":    timeoutExchangeName,
		"x-dead-letter-routing-key": timeoutRoutingKey,
	}
}
