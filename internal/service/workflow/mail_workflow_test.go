package workflow

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/qs-lzh/yamdb/internal/mq"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeSender struct {
	err  error
	sent []string
}

func (s *fakeSender) Send(recipient, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, recipient)
	return nil
}

// stalledSender blocks until released, like an unresponsive mail server.
type stalledSender struct {
	release   chan struct{}
	delivered chan string
}

func (s *stalledSender) Send(recipient, subject, body string) error {
	<-s.release
	s.delivered <- recipient
	return nil
}

type fakeAcknowledger struct {
	acks    int
	nacks   int
	requeue bool
}

func (a *fakeAcknowledger) Ack(uint64, bool) error {
	a.acks++
	return nil
}

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacks++
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(uint64, bool) error { return nil }

type published struct {
	queue   string
	message mq.ConfirmationMailMessage
	delayed bool
}

func newTestWorkflow(t *testing.T, sender *fakeSender) (*MailWorkflow, *[]published) {
	t.Helper()
	w := NewMailWorkflow(nil, sender, zaptest.NewLogger(t))
	var out []published
	w.publish = func(queue string, message mq.ConfirmationMailMessage, delayed bool) error {
		out = append(out, published{queue, message, delayed})
		return nil
	}
	return w, &out
}

func delivery(t *testing.T, ack *fakeAcknowledger, message mq.ConfirmationMailMessage) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(message)
	if err != nil {
		t.Fatal(err)
	}
	return amqp.Delivery{Acknowledger: ack, Body: body}
}

func TestSendWithoutBrokerDoesNotWaitForSender(t *testing.T) {
	sender := &stalledSender{release: make(chan struct{}), delivered: make(chan string, 1)}
	w := NewMailWorkflow(nil, sender, zaptest.NewLogger(t))
	published := false
	w.publish = func(string, mq.ConfirmationMailMessage, bool) error {
		published = true
		return nil
	}

	returned := make(chan error, 1)
	go func() { returned <- w.Send("bob@x.com", "s", "b") }()

	select {
	case err := <-returned:
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked on a stalled mail server")
	}

	close(sender.release)
	select {
	case got := <-sender.delivered:
		if got != "bob@x.com" {
			t.Fatalf("delivered to %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("mail was never delivered")
	}
	if published {
		t.Fatal("nothing should be published without a broker")
	}
}

func TestHandleConfirmationMailDelivers(t *testing.T) {
	sender := &fakeSender{}
	w, out := newTestWorkflow(t, sender)
	ack := &fakeAcknowledger{}

	err := w.handleConfirmationMail(delivery(t, ack, mq.ConfirmationMailMessage{Recipient: "bob@x.com", Attempt: 1}))
	if err != nil {
		t.Fatalf("handleConfirmationMail: %v", err)
	}
	if ack.acks != 1 || len(sender.sent) != 1 || len(*out) != 0 {
		t.Fatalf("acks=%d sent=%v published=%v", ack.acks, sender.sent, *out)
	}
}

func TestHandleConfirmationMailSchedulesRetry(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	w, out := newTestWorkflow(t, sender)
	ack := &fakeAcknowledger{}

	if err := w.handleConfirmationMail(delivery(t, ack, mq.ConfirmationMailMessage{Recipient: "bob@x.com", Attempt: 1})); err != nil {
		t.Fatalf("handleConfirmationMail: %v", err)
	}
	if ack.acks != 1 || len(*out) != 1 {
		t.Fatalf("acks=%d published=%v", ack.acks, *out)
	}
	retry := (*out)[0]
	if retry.queue != mq.MailRetryDelayQueue || !retry.delayed || retry.message.Attempt != 2 {
		t.Fatalf("unexpected retry %+v", retry)
	}
}

func TestHandleConfirmationMailGivesUp(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	w, out := newTestWorkflow(t, sender)
	ack := &fakeAcknowledger{}

	msg := mq.ConfirmationMailMessage{Recipient: "bob@x.com", Attempt: mq.MaxConfirmationMailTries}
	if err := w.handleConfirmationMail(delivery(t, ack, msg)); err != nil {
		t.Fatalf("handleConfirmationMail: %v", err)
	}
	if ack.acks != 1 || len(*out) != 0 {
		t.Fatalf("last attempt must be dropped, acks=%d published=%v", ack.acks, *out)
	}
}

func TestHandleConfirmationMailRequeuesWhenRetryFails(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	w, _ := newTestWorkflow(t, sender)
	w.publish = func(string, mq.ConfirmationMailMessage, bool) error { return errors.New("broker gone") }
	ack := &fakeAcknowledger{}

	if err := w.handleConfirmationMail(delivery(t, ack, mq.ConfirmationMailMessage{Attempt: 1})); err == nil {
		t.Fatal("expected an error")
	}
	if ack.nacks != 1 || !ack.requeue {
		t.Fatalf("expected a requeueing nack, got %+v", ack)
	}
}

func TestHandleConfirmationMailRejectsGarbage(t *testing.T) {
	w, _ := newTestWorkflow(t, &fakeSender{})
	ack := &fakeAcknowledger{}

	if err := w.handleConfirmationMail(amqp.Delivery{Acknowledger: ack, Body: []byte("{")}); err == nil {
		t.Fatal("expected a decode error")
	}
	if ack.nacks != 1 || ack.requeue {
		t.Fatalf("garbage must be dropped, got %+v", ack)
	}
}
