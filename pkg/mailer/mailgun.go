package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun sends queued email jobs from a fixed sender.
type Mailgun struct {
	client *mg.MailgunImpl
	sender string
}

// NewMailgun builds a sender for domain. apiBase selects the region endpoint
// (e.g. mg.APIBaseEU); empty keeps the US default.
func NewMailgun(domain, apiKey, sender, apiBase string) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{client: client, sender: sender}
}

func (m *Mailgun) Send(ctx context.Context, job EmailJob) error {
	msg := m.client.NewMessage(m.sender, job.Subject, job.Text, job.To)
	if job.HTML != "" {
		msg.SetHtml(job.HTML)
	}
	if job.ReplyTo != "" {
		msg.SetReplyTo(job.ReplyTo)
	}
	if job.Tag != "" {
		if err := msg.AddTag(job.Tag); err != nil {
			return err
		}
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}
