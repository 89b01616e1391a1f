package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"
)

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPService serves until its context ends, then shuts down gracefully.
type HTTPService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

func NewHTTPService(server HTTPServer, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

func (h *HTTPService) Serve(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		err := h.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errc <- err
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		<-errc
		return ctx.Err()
	}
}

func (h *HTTPService) String() string { return "http-server" }

// Runner is a component that runs until its context ends. The event bus
// is one.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerService supervises a Runner that cannot be restarted once it
// stops, such as a watermill router. An unexpected stop ends the tree.
type RunnerService struct {
	name   string
	runner Runner
}

func NewRunnerService(name string, r Runner) *RunnerService {
	return &RunnerService{name: name, runner: r}
}

func (s *RunnerService) Serve(ctx context.Context) error {
	err := s.runner.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		err = errors.New("stopped")
	}
	return fmt.Errorf("%s: %v: %w", s.name, err, suture.ErrTerminateSupervisorTree)
}

func (s *RunnerService) String() string { return s.name }
