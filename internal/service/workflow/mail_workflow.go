package workflow

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/qs-lzh/yamdb/internal/mail"
	"github.com/qs-lzh/yamdb/internal/mq"
	"github.com/qs-lzh/yamdb/internal/service/domain"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MailWorkflow hands confirmation mails to RabbitMQ and delivers them from
// a consumer, so signup never waits on the mail server. Without a broker
// connection mails are sent from a goroutine of their own.
type MailWorkflow struct {
	MQConn *amqp.Connection
	sender mail.Sender
	logger *zap.Logger

	// publish is swapped in tests
	publish func(queueName string, message mq.ConfirmationMailMessage, delayed bool) error
}

var _ domain.Mailer = (*MailWorkflow)(nil)

func NewMailWorkflow(mqConn *amqp.Connection, sender mail.Sender, logger *zap.Logger) *MailWorkflow {
	w := &MailWorkflow{
		MQConn: mqConn,
		sender: sender,
		logger: logger,
	}
	w.publish = w.publishOnChannel
	return w
}

func (w *MailWorkflow) Send(recipient, subject, body string) error {
	if w.MQConn == nil {
		go w.sendDirect(recipient, subject, body)
		return nil
	}
	return w.publish(mq.SignupToMailImmediateQueue, mq.ConfirmationMailMessage{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Attempt:   1,
	}, false)
}

func (w *MailWorkflow) sendDirect(recipient, subject, body string) {
	if err := w.sender.Send(recipient, subject, body); err != nil {
		w.logger.Warn("failed to send confirmation mail",
			zap.String("recipient", recipient),
			zap.Error(err),
		)
	}
}

func (w *MailWorkflow) Start(mqConn *amqp.Connection) error {
	if err := w.ConsumeConfirmationMail(mqConn); err != nil {
		return err
	}
	return nil
}

func (w *MailWorkflow) ConsumeConfirmationMail(conn *amqp.Connection) error {
	ch, err := mq.NewChannel(conn)
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(mq.SignupToMailImmediateQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			if err := w.handleConfirmationMail(msg); err != nil {
				w.logger.Warn("failed to handle confirmation mail", zap.Error(err))
			}
		}
	}()

	return nil
}

// handleConfirmationMail delivers one message. A failed delivery goes back
// through the retry delay queue until MaxConfirmationMailTries is reached.
func (w *MailWorkflow) handleConfirmationMail(msg amqp.Delivery) error {
	var message mq.ConfirmationMailMessage
	if err := json.Unmarshal(msg.Body, &message); err != nil {
		msg.Nack(false, false)
		return err
	}

	sendErr := w.sender.Send(message.Recipient, message.Subject, message.Body)
	if sendErr == nil {
		msg.Ack(false)
		return nil
	}

	if message.Attempt >= mq.MaxConfirmationMailTries {
		w.logger.Error("confirmation mail dropped",
			zap.String("recipient", message.Recipient),
			zap.Int("attempt", message.Attempt),
			zap.Error(sendErr),
		)
		msg.Ack(false)
		return nil
	}

	message.Attempt++
	if err := w.publish(mq.MailRetryDelayQueue, message, true); err != nil {
		msg.Nack(false, true)
		return fmt.Errorf("schedule mail retry: %w", err)
	}
	msg.Ack(false)
	w.logger.Warn("confirmation mail failed, retry scheduled",
		zap.String("recipient", message.Recipient),
		zap.Int("attempt", message.Attempt),
		zap.Error(sendErr),
	)
	return nil
}

func (w *MailWorkflow) publishOnChannel(queueName string, message mq.ConfirmationMailMessage, delayed bool) error {
	ch, err := mq.NewChannel(w.MQConn)
	if err != nil {
		return err
	}
	defer ch.Close()

	if delayed {
		return mq.SendDelayedMessage(ch, queueName, message)
	}
	return mq.SendImmediateMessage(ch, queueName, message)
}
