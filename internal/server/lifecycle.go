// Package server runs the long-lived services of the game server and shuts
// them down on a signal.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component.
type Service interface {
	// Serve blocks until ctx is cancelled, Stop is called or it fails.
	Serve(ctx context.Context) error
	// Stop ends Serve and waits for in-flight work.
	Stop()
}

// Lifecycle starts services in registration order and stops them in reverse.
type Lifecycle struct {
	logger   *zap.Logger
	services []namedService
	signals  []os.Signal
}

type namedService struct {
	name    string
	service Service
}

// NewLifecycle creates a Lifecycle that shuts down on SIGINT or SIGTERM.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger, signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM}}
}

// Add registers svc under name.
func (l *Lifecycle) Add(name string, svc Service) {
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run serves every service until a signal arrives, ctx is cancelled or a
// service fails, then stops them all.
//
// Postcondition: every service is stopped; the error of the first failed
// service is returned, or nil on a requested shutdown.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	ctx, stop := signal.NotifyContext(ctx, l.signals...)
	defer stop()
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	done := make(chan struct{}, len(l.services))
	for _, ns := range l.services {
		go func() {
			defer func() { done <- struct{}{} }()
			l.logger.Info("starting service", zap.String("service", ns.name))
			if err := ns.service.Serve(ctx); err != nil {
				l.logger.Error("service failed", zap.String("service", ns.name), zap.Error(err))
				cancel(&serviceError{name: ns.name, err: err})
			}
		}()
	}

	<-ctx.Done()
	cause := context.Cause(ctx)
	l.logger.Info("shutting down", zap.NamedError("cause", cause))

	for i := len(l.services) - 1; i >= 0; i-- {
		ns := l.services[i]
		ns.service.Stop()
		l.logger.Info("service stopped", zap.String("service", ns.name))
	}
	for range l.services {
		<-done
	}
	l.logger.Info("shutdown complete", zap.Duration("uptime", time.Since(start)))

	var failed *serviceError
	if errors.As(cause, &failed) {
		return failed
	}
	return nil
}

type serviceError struct {
	name string
	err  error
}

func (e *serviceError) Error() string { return fmt.Sprintf("service %s: %v", e.name, e.err) }

func (e *serviceError) Unwrap() error { return e.err }
