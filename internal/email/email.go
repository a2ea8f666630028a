package email

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Sender interface {
	Send(to, subject, body string) error
}

type sendgridSender struct {
	client *sendgrid.Client
	from   string
}

// NewSender returns a sendgrid-backed sender, or a noop one when no API
// key is configured so checkout never depends on mail delivery.
func NewSender(apiKey, from string) Sender {
	if apiKey == "" {
		return noopSender{}
	}
	return &sendgridSender{client: sendgrid.NewSendClient(apiKey), from: from}
}

func (s *sendgridSender) Send(to, subject, body string) error {
	msg := mail.NewSingleEmail(
		mail.NewEmail("", s.from),
		subject,
		mail.NewEmail("", to),
		body,
		body,
	)
	resp, err := s.client.Send(msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d", resp.StatusCode)
	}
	return nil
}

type noopSender struct{}

func (noopSender) Send(to, subject, body string) error { return nil }
