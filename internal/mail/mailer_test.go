package mail

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *captureMailer) Send(msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

func TestQueueDeliversInOrder(t *testing.T) {
	mailer := &captureMailer{}
	q := NewQueue(mailer, 10)

	q.Enqueue(Message{To: "a@example.com", Subject: "first"})
	q.Enqueue(Message{To: "b@example.com", Subject: "second"})
	q.Close()

	sent := mailer.messages()
	assert.Len(t, sent, 2)
	assert.Equal(t, "first", sent[0].Subject)
	assert.Equal(t, "second", sent[1].Subject)
}

func TestQueueSwallowsDeliveryErrors(t *testing.T) {
	mailer := &captureMailer{err: assert.AnError}
	q := NewQueue(mailer, 10)

	// Enqueue never surfaces mailer failures.
	q.Enqueue(Message{To: "a@example.com"})
	q.Close()

	assert.Empty(t, mailer.messages())
}

func TestQueueDropsWhenFull(t *testing.T) {
	// A stuck mailer and a single-slot buffer force the drop path; the
	// third enqueue must return immediately instead of blocking.
	block := make(chan struct{})
	mailer := &blockingMailer{release: block}
	q := NewQueue(mailer, 1)

	q.Enqueue(Message{To: "a@example.com"})
	q.Enqueue(Message{To: "b@example.com"})
	q.Enqueue(Message{To: "c@example.com"}) // dropped, but must not block

	close(block)
	q.Close()
}

type blockingMailer struct {
	release chan struct{}
}

func (m *blockingMailer) Send(Message) error {
	<-m.release
	return nil
}

func TestConfirmationMessage(t *testing.T) {
	msg := ConfirmationMessage("user@example.com", "Demo", "tok-123", "http://localhost:8080")

	assert.Equal(t, "user@example.com", msg.To)
	assert.Contains(t, msg.Body, "Demo")
	assert.Contains(t, msg.Body, "http://localhost:8080/confirm/tok-123")
}
