package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/pkg/mailer"
	"github.com/oksasatya/go-social-graph/pkg/mailer/templates"
)

// Notifier enqueues account emails. Publishing is best effort: failures are
// logged and never fail the calling operation.
type Notifier struct {
	Pub         JobPublisher
	Enabled     bool
	CompanyName string
	SupportURL  string
	Logger      logrus.FieldLogger
}

func (n *Notifier) Welcome(ctx context.Context, u *entity.User) {
	n.send(ctx, u, templates.Welcome)
}

func (n *Notifier) AccountRemoved(ctx context.Context, u *entity.User) {
	n.send(ctx, u, templates.AccountRemoved)
}

func (n *Notifier) send(ctx context.Context, u *entity.User, tpl string) {
	if n == nil || !n.Enabled || n.Pub == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: tpl,
		Data: map[string]any{
			"Username":    u.Username,
			"CompanyName": n.CompanyName,
			"SupportURL":  n.SupportURL,
		},
	}
	if err := n.Pub.PublishJSON(ctx, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "template": tpl}).Warn("failed to publish email job")
	}
}
