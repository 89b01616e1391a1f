// Package notify tells learners about finished roadmaps.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/abhisek/skilltrack/internal/logger"
)

// Message is a single plain-text plus HTML email.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a Message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendGrid delivers mail through the SendGrid v3 API.
type SendGrid struct {
	key  string
	from *sgmail.Email
	host string
}

func NewSendGrid(apiKey, fromName, fromEmail string) (*SendGrid, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("sendgrid: api key required")
	}
	if strings.TrimSpace(fromEmail) == "" {
		return nil, fmt.Errorf("sendgrid: from email required")
	}
	return &SendGrid{
		key:  apiKey,
		from: sgmail.NewEmail(fromName, fromEmail),
		host: sendgridHost,
	}, nil
}

func (s *SendGrid) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", msg.Text),
		sgmail.NewContent("text/html", msg.HTML),
	)
	return m
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	req := sendgrid.GetRequest(s.key, sendgridEndpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	if log == nil {
		log = logger.Nop()
	}
	return &LogMailer{log: log.With("service", "LogMailer")}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("email", "to_email", msg.ToEmail, "subject", msg.Subject, "body", msg.Text)
	return nil
}
