package messaging

import (
	"context"

	"github.com/MonkyMars/gecho"
	"github.com/resend/resend-go/v3"
)

// ResendMailer 通过Resend API发送邮件
type ResendMailer struct {
	client *resend.Client
	from   string
	logger *gecho.Logger
}

func NewResendMailer(apiKey, from string, logger *gecho.Logger) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}

func (m *ResendMailer) Send(ctx context.Context, to []string, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      to,
		Subject: subject,
		Html:    html,
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.client.Emails.Send(params); err != nil {
		m.logger.Error("邮件发送失败", gecho.Field("to", to), gecho.Field("error", err.Error()))
		return err
	}
	m.logger.Info("邮件已发送", gecho.Field("to", to), gecho.Field("subject", subject))
	return nil
}
