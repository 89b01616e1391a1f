// Package events carries domain events between services over an in-process
// watermill pub/sub.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	json "github.com/goccy/go-json"

	"github.com/abhisek/skilltrack/internal/badges"
	"github.com/abhisek/skilltrack/internal/logger"
	"github.com/abhisek/skilltrack/internal/roadmap"
)

const (
	TopicBadgeIssued      = "badge.issued"
	TopicRoadmapCompleted = "roadmap.completed"
)

// Options tunes the bus. Zero values pick defaults.
type Options struct {
	Buffer        int64
	MaxRetries    int
	RetryInterval time.Duration
	CloseTimeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.Buffer <= 0 {
		o.Buffer = 64
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = 100 * time.Millisecond
	}
	if o.CloseTimeout <= 0 {
		o.CloseTimeout = 10 * time.Second
	}
	return o
}

// AutoCompleter completes roadmap skills from freshly issued badges.
type AutoCompleter interface {
	AutoCompleteSkill(ctx context.Context, userID, badgeName, badgeID string) (bool, error)
}

// Notifier is told about completed roadmaps.
type Notifier interface {
	NotifyRoadmapCompleted(ctx context.Context, ev roadmap.CompletionEvent) error
}

// Bus publishes badge and roadmap events and dispatches them to handlers.
// Publish blocks until every subscribed handler has acked, so a caller that
// issues a badge observes the roadmap change on return while the router runs.
type Bus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	log    *logger.Logger
	wlog   watermill.LoggerAdapter
}

func NewBus(log *logger.Logger, opts Options) (*Bus, error) {
	if log == nil {
		log = logger.Nop()
	}
	opts = opts.withDefaults()
	log = log.With("service", "EventBus")
	wlog := newLoggerAdapter(log)

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            opts.Buffer,
		BlockPublishUntilSubscriberAck: true,
		PreserveContext:                true,
	}, wlog)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: opts.CloseTimeout}, wlog)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	b := &Bus{pubsub: pubsub, router: router, log: log, wlog: wlog}
	router.AddMiddleware(
		middleware.CorrelationID,
		b.dropFailed,
		middleware.Retry{
			MaxRetries:      opts.MaxRetries,
			InitialInterval: opts.RetryInterval,
			MaxInterval:     opts.RetryInterval * 10,
			Multiplier:      2,
			Logger:          wlog,
		}.Middleware,
		middleware.Recoverer,
	)
	return b, nil
}

// dropFailed acks messages whose handler kept failing. gochannel redelivers
// nacked messages forever, so a poisoned event would otherwise spin.
func (b *Bus) dropFailed(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		out, err := h(msg)
		if err != nil {
			b.log.Error("dropping event after retries",
				"topic", message.SubscribeTopicFromCtx(msg.Context()),
				"message_uuid", msg.UUID,
				"error", err,
			)
			return nil, nil
		}
		return out, nil
	}
}

type badgeIssuedPayload struct {
	UserID    string `json:"userId"`
	BadgeID   string `json:"badgeId"`
	BadgeName string `json:"badgeName"`
	CourseID  string `json:"courseId"`
}

type roadmapCompletedPayload struct {
	UserID         string    `json:"userId"`
	Goal           string    `json:"goal"`
	GoalLabel      string    `json:"goalLabel"`
	VerificationID string    `json:"verificationId"`
	CompletedAt    time.Time `json:"completedAt"`
	ContactEmail   string    `json:"contactEmail,omitempty"`
}

// PublishBadgeIssued implements badges.Publisher.
func (b *Bus) PublishBadgeIssued(ctx context.Context, ev badges.IssuedEvent) error {
	return b.publish(ctx, TopicBadgeIssued, badgeIssuedPayload(ev))
}

// PublishRoadmapCompleted implements roadmap.CompletionPublisher.
func (b *Bus) PublishRoadmapCompleted(ctx context.Context, ev roadmap.CompletionEvent) error {
	return b.publish(ctx, TopicRoadmapCompleted, roadmapCompletedPayload(ev))
}

func (b *Bus) publish(ctx context.Context, topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), raw)
	msg.SetContext(context.WithoutCancel(ctx))
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Handle subscribes the auto-completer and notifier. Either may be nil.
// Must be called before Run.
func (b *Bus) Handle(ac AutoCompleter, n Notifier) {
	if ac != nil {
		b.router.AddConsumerHandler("roadmap_auto_complete", TopicBadgeIssued, b.pubsub, b.onBadgeIssued(ac))
	}
	if n != nil {
		b.router.AddConsumerHandler("roadmap_completion_notify", TopicRoadmapCompleted, b.pubsub, b.onRoadmapCompleted(n))
	}
}

func (b *Bus) onBadgeIssued(ac AutoCompleter) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var p badgeIssuedPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			b.log.Warn("bad badge.issued payload", "message_uuid", msg.UUID, "error", err)
			return nil
		}
		completed, err := ac.AutoCompleteSkill(msg.Context(), p.UserID, p.BadgeName, p.BadgeID)
		if errors.Is(err, roadmap.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("auto-complete from %q: %w", p.BadgeName, err)
		}
		b.log.Debug("badge processed for roadmap", "user_id", p.UserID, "badge", p.BadgeName, "skill_completed", completed)
		return nil
	}
}

func (b *Bus) onRoadmapCompleted(n Notifier) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var p roadmapCompletedPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			b.log.Warn("bad roadmap.completed payload", "message_uuid", msg.UUID, "error", err)
			return nil
		}
		return n.NotifyRoadmapCompleted(msg.Context(), roadmap.CompletionEvent(p))
	}
}

// Run dispatches events until ctx is cancelled or Close is called.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once handlers are subscribed.
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

// Start runs the router in the background and waits until it is subscribed.
func (b *Bus) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- b.Run(ctx) }()
	select {
	case <-b.Running():
		return nil
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bus) Close() error {
	rerr := b.router.Close()
	perr := b.pubsub.Close()
	return errors.Join(rerr, perr)
}
