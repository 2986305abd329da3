// Package httpserver runs one configured listener on top of go-supervisor's httpserver.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robbyt/go-supervisor/runnables/httpserver"
	"github.com/robbyt/go-supervisor/supervisor"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
)

var (
	_ supervisor.Runnable  = (*HTTPServer)(nil)
	_ supervisor.Stateable = (*HTTPServer)(nil)
)

// serverImplementation abstracts the go-supervisor runner.
type serverImplementation interface {
	Run(ctx context.Context) error
	Stop()
	GetState() string
	IsRunning() bool
	GetStateChan(ctx context.Context) <-chan string
}

// HTTPServer serves the routes of one listener.
type HTTPServer struct {
	listener config.Listener
	server   serverImplementation
	logger   *slog.Logger

	mutex  sync.Mutex
	routes []httpserver.Route
}

// NewHTTPServer creates the server for listener. A nil logger uses the process default.
func NewHTTPServer(listener config.Listener, routes []httpserver.Route, logger *slog.Logger) (*HTTPServer, error) {
	if logger == nil {
		logger = slog.Default().WithGroup("httpserver")
	}

	s := &HTTPServer{
		listener: listener,
		routes:   routes,
		logger:   logger.With("listener", listener.ID),
	}

	runner, err := httpserver.NewRunner(httpserver.WithConfigCallback(s.buildConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server runner: %w", err)
	}
	s.server = runner
	return s, nil
}

// buildConfig is called by the runner on start.
func (s *HTTPServer) buildConfig() (*httpserver.Config, error) {
	s.mutex.Lock()
	routes := make([]httpserver.Route, len(s.routes))
	copy(routes, s.routes)
	s.mutex.Unlock()

	var options []httpserver.ConfigOption
	if t := s.listener.HTTP; t != nil {
		if d := t.ReadTimeout.AsDuration(); d > 0 {
			options = append(options, httpserver.WithReadTimeout(d))
		}
		if d := t.WriteTimeout.AsDuration(); d > 0 {
			options = append(options, httpserver.WithWriteTimeout(d))
		}
		if d := t.IdleTimeout.AsDuration(); d > 0 {
			options = append(options, httpserver.WithIdleTimeout(d))
		}
		if d := t.DrainTimeout.AsDuration(); d > 0 {
			options = append(options, httpserver.WithDrainTimeout(d))
		}
	}

	cfg, err := httpserver.NewConfig(s.listener.Address, routes, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server config: %w", err)
	}
	return cfg, nil
}

func (s *HTTPServer) String() string {
	return fmt.Sprintf("HTTPServer[%s]", s.listener.ID)
}

func (s *HTTPServer) Run(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", "address", s.listener.Address, "routes", len(s.Routes()))
	return s.server.Run(ctx)
}

func (s *HTTPServer) Stop() {
	s.logger.Info("Stopping HTTP server", "address", s.listener.Address)
	s.server.Stop()
}

func (s *HTTPServer) GetState() string {
	if s.server == nil {
		return "unknown"
	}
	return s.server.GetState()
}

func (s *HTTPServer) IsRunning() bool {
	if s.server == nil {
		return false
	}
	return s.server.IsRunning()
}

// GetStateChan returns a channel that emits state changes
func (s *HTTPServer) GetStateChan(ctx context.Context) <-chan string {
	if s.server == nil {
		ch := make(chan string)
		go func() {
			<-ctx.Done()
			close(ch)
		}()
		return ch
	}
	return s.server.GetStateChan(ctx)
}

// Routes returns a copy of the mounted routes.
func (s *HTTPServer) Routes() []httpserver.Route {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]httpserver.Route, len(s.routes))
	copy(out, s.routes)
	return out
}

func (s *HTTPServer) GetID() string {
	return s.listener.ID
}

func (s *HTTPServer) GetAddress() string {
	return s.listener.Address
}
