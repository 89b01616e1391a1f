package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/abhisek/skilltrack/internal/logger"
	"github.com/abhisek/skilltrack/internal/metrics"
	"github.com/abhisek/skilltrack/internal/roadmap"
)

// BreakerSettings controls when the mailer breaker opens.
type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker. Zero means 5.
	ConsecutiveFailures uint32
	// Cooldown is how long the breaker stays open. Zero means one minute.
	Cooldown time.Duration
}

// Notifier emails learners who complete their roadmap.
type Notifier struct {
	mailer Mailer
	cb     *gobreaker.CircuitBreaker[struct{}]
	log    *logger.Logger
}

func NewNotifier(mailer Mailer, log *logger.Logger, bs BreakerSettings) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	if bs.ConsecutiveFailures == 0 {
		bs.ConsecutiveFailures = 5
	}
	if bs.Cooldown <= 0 {
		bs.Cooldown = time.Minute
	}
	log = log.With("service", "Notifier")

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "mailer",
		MaxRequests: 1,
		Timeout:     bs.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &Notifier{mailer: mailer, cb: cb, log: log}
}

// NotifyRoadmapCompleted sends the congratulation email. Learners without a
// contact address are only logged. An open breaker drops the email rather
// than failing the event.
func (n *Notifier) NotifyRoadmapCompleted(ctx context.Context, ev roadmap.CompletionEvent) error {
	if ev.ContactEmail == "" {
		metrics.NotificationsSent.WithLabelValues("skipped").Inc()
		n.log.Info("roadmap completed, no contact email", "user_id", ev.UserID, "verification_id", ev.VerificationID)
		return nil
	}

	msg := CompletionMessage(ev)
	_, err := n.cb.Execute(func() (struct{}, error) {
		return struct{}{}, n.mailer.Send(ctx, msg)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.NotificationsSent.WithLabelValues("rejected").Inc()
		n.log.Warn("mailer unavailable, completion email dropped", "user_id", ev.UserID, "error", err)
		return nil
	case err != nil:
		metrics.NotificationsSent.WithLabelValues("failed").Inc()
		return fmt.Errorf("send completion email: %w", err)
	}
	metrics.NotificationsSent.WithLabelValues("sent").Inc()
	n.log.Info("completion email sent", "user_id", ev.UserID, "verification_id", ev.VerificationID)
	return nil
}

// State reports the breaker state, for health output.
func (n *Notifier) State() string {
	return n.cb.State().String()
}

// CompletionMessage renders the congratulation email for ev.
func CompletionMessage(ev roadmap.CompletionEvent) Message {
	label := ev.GoalLabel
	if label == "" {
		label = ev.Goal
	}
	date := ev.CompletedAt.Format("January 2, 2006")

	text := fmt.Sprintf(
		"Congratulations! You completed every skill on your %s roadmap on %s.\n\nVerification ID: %s\n",
		label, date, ev.VerificationID,
	)
	body := fmt.Sprintf(
		"<p>Congratulations! You completed every skill on your <strong>%s</strong> roadmap on %s.</p><p>Verification ID: <code>%s</code></p>",
		html.EscapeString(label), date, html.EscapeString(ev.VerificationID),
	)
	return Message{
		ToEmail: ev.ContactEmail,
		Subject: "You completed your " + label + " roadmap",
		Text:    text,
		HTML:    body,
	}
}
