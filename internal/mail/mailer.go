package mail

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"invopay/internal/config"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single message. Implementations may fail; callers of
// the queue never see those failures.
type Mailer interface {
	Send(msg Message) error
}

// SMTPMailer delivers mail over SMTP.
type SMTPMailer struct {
	dialer   *gomail.Dialer
	fromAddr string
	fromName string
}

// NewSMTPMailer creates a mailer from SMTP configuration.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		fromAddr: cfg.MailFromAddr,
		fromName: cfg.MailFromName,
	}
}

// Send delivers one message synchronously.
func (m *SMTPMailer) Send(msg Message) error {
	mail := gomail.NewMessage()
	mail.SetAddressHeader("From", m.fromAddr, m.fromName)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.Body)

	if err := m.dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// NopMailer discards mail. Used when SMTP is not configured so the rest
// of the system behaves identically.
type NopMailer struct{}

// Send logs and drops the message.
func (NopMailer) Send(msg Message) error {
	log.Printf("mail: SMTP not configured, dropping message to %s (%q)", msg.To, msg.Subject)
	return nil
}

// Queue decouples mail delivery from request handling. Enqueue never
// blocks and never fails the caller; a worker goroutine drains the
// channel and logs delivery errors.
type Queue struct {
	mailer Mailer
	ch     chan Message
	done   chan struct{}
}

// NewQueue creates a queue with the given buffer size and starts its worker.
func NewQueue(mailer Mailer, size int) *Queue {
	q := &Queue{
		mailer: mailer,
		ch:     make(chan Message, size),
		done:   make(chan struct{}),
	}
	go q.worker()
	return q
}

// Enqueue hands a message to the worker. When the buffer is full the
// message is dropped and logged; a slow SMTP server must not back up
// request handling.
func (q *Queue) Enqueue(msg Message) {
	select {
	case q.ch <- msg:
	default:
		log.Printf("mail: queue full, dropping message to %s", msg.To)
	}
}

// Close stops the worker after draining pending messages.
func (q *Queue) Close() {
	close(q.ch)
	<-q.done
}

func (q *Queue) worker() {
	defer close(q.done)
	for msg := range q.ch {
		if err := q.mailer.Send(msg); err != nil {
			log.Printf("mail: delivery failed: %v", err)
		}
	}
}

// ConfirmationMessage builds the email-verification message for a user.
func ConfirmationMessage(to, profileName, token, baseURL string) Message {
	return Message{
		To:      to,
		Subject: "Please confirm your email address",
		Body: fmt.Sprintf(
			"Hello %s! Welcome to Invopay. Please click the link below to verify your email address. Thank you!\n\n%s/confirm/%s\n",
			profileName, baseURL, token,
		),
	}
}
