package mailer

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"

	"github.com/oksasatya/go-social-graph/pkg/mailer/templates"
)

// Mailgun delivers rendered messages through one Mailgun domain.
type Mailgun struct {
	client  *mg.MailgunImpl
	Sender  string
	Timeout time.Duration
}

// NewMailgun builds a client for domain. apiBase selects the region, e.g.
// mg.APIBaseEU; empty keeps the US endpoint.
func NewMailgun(domain, apiKey, sender, apiBase string) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{client: client, Sender: sender, Timeout: 10 * time.Second}
}

// Send delivers one message. tag, when set, groups it in Mailgun analytics.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html, tag string) (string, error) {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	if tag != "" {
		if err := msg.AddTag(tag); err != nil {
			return "", fmt.Errorf("tag message: %w", err)
		}
	}
	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	_, id, err := m.client.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("mailgun send: %w", err)
	}
	return id, nil
}

// Prepare resolves a job into subject and bodies, rendering its template when
// set. Unknown templates are reported as ErrInvalidJob.
func Prepare(job EmailJob) (subject, text, html string, err error) {
	if err := job.Validate(); err != nil {
		return "", "", "", err
	}
	if job.Template == "" {
		return job.Subject, job.Text, job.HTML, nil
	}
	out, err := templates.Render(job.Template, job.Data)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	return out.Subject, out.Text, out.HTML, nil
}
