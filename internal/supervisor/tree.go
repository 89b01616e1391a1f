// Package supervisor runs the long-lived parts of `skilltrack serve` under
// a suture tree: the event router in one layer, the HTTP server in another.
package supervisor

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/abhisek/skilltrack/internal/logger"
)

type TreeConfig struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree is the root supervisor with a messaging and an api layer. A crash
// loop in one layer backs off without restarting the other.
type Tree struct {
	root      *suture.Supervisor
	messaging *suture.Supervisor
	api       *suture.Supervisor
}

func NewTree(log *logger.Logger, cfg TreeConfig) *Tree {
	def := DefaultTreeConfig()
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.FailureDecay == 0 {
		cfg.FailureDecay = def.FailureDecay
	}
	if cfg.FailureBackoff == 0 {
		cfg.FailureBackoff = def.FailureBackoff
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	if log == nil {
		log = logger.Nop()
	}

	spec := suture.Spec{
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	}
	rootSpec := spec
	rootSpec.EventHook = eventHook(log.With("service", "Supervisor"))

	t := &Tree{
		root:      suture.New("skilltrack", rootSpec),
		messaging: suture.New("messaging", spec),
		api:       suture.New("api", spec),
	}
	t.root.Add(t.messaging)
	t.root.Add(t.api)
	return t
}

func (t *Tree) AddMessagingService(svc suture.Service) suture.ServiceToken {
	return t.messaging.Add(svc)
}

func (t *Tree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

// Serve blocks until ctx is cancelled or a service terminates the tree.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// eventHook forwards suture events to log.
func eventHook(log *logger.Logger) suture.EventHook {
	return func(e suture.Event) {
		kv := make([]any, 0, 2*len(e.Map()))
		for k, v := range e.Map() {
			kv = append(kv, k, v)
		}
		switch e.Type() {
		case suture.EventTypeServicePanic, suture.EventTypeStopTimeout:
			log.Error(e.String(), kv...)
		case suture.EventTypeServiceTerminate, suture.EventTypeBackoff:
			log.Warn(e.String(), kv...)
		default:
			log.Info(e.String(), kv...)
		}
	}
}
