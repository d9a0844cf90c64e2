package mq

import "time"

// Queue names and message definitions

// immediate queue from signup to the mail workflow
// deliver message to send a confirmation code to the address the actor signed up with
const (
	SignupToMailImmediateQueue = "auth.mail.confirmation.immediate"
)

type ConfirmationMailMessage struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Attempt   int    `json:"attempt"`
}

// delay queue from the mail workflow back to itself
// a failed delivery waits here and is dead-lettered into the immediate queue
const (
	MailRetryDelayQueue      = "auth.mail.confirmation.retry.delay"
	MailRetryExchange        = "auth.mail.retry.exchange"
	MailRetryRoutingKey      = "auth.mail.retry"
	MailRetryDelay           = 30 * time.Second
	MaxConfirmationMailTries = 3
)
