package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/config"
)

// SessionHandler plays one connected client.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// SessionHandlerFunc adapts a function to SessionHandler.
type SessionHandlerFunc func(ctx context.Context, conn *Conn) error

// HandleSession calls f.
func (f SessionHandlerFunc) HandleSession(ctx context.Context, conn *Conn) error {
	return f(ctx, conn)
}

// Acceptor listens for Telnet clients and hands each one to a SessionHandler
// on its own goroutine.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
	stopped  bool
	wg       sync.WaitGroup
	active   atomic.Int32
}

// NewAcceptor creates an Acceptor for cfg.
//
// Precondition: handler and logger must be non-nil.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	return &Acceptor{cfg: cfg, handler: handler, logger: logger}
}

// Serve listens on the configured address and accepts clients until ctx is
// cancelled or Stop is called. Sessions receive a context that is cancelled
// on shutdown.
//
// Precondition: Serve has not already been called.
// Postcondition: Returns nil after a clean shutdown; every session goroutine
// has exited.
func (a *Acceptor) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		cancel()
		ln.Close()
		return nil
	}
	a.listener = ln
	a.cancel = cancel
	a.mu.Unlock()
	defer a.wg.Wait()
	defer cancel()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	a.logger.Info("telnet listening", zap.String("addr", ln.Addr().String()))
	for {
		raw, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				a.logger.Info("telnet stopped")
				return nil
			}
			a.logger.Warn("accepting connection", zap.Error(err))
			continue
		}
		if !a.track() {
			raw.Close()
			a.logger.Info("telnet stopped")
			return nil
		}
		go a.serveConn(ctx, raw)
	}
}

// track registers a session unless shutdown has begun. Registration and
// Stop's flag share a.mu so wg.Add never races wg.Wait.
func (a *Acceptor) track() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return false
	}
	a.wg.Add(1)
	return true
}

func (a *Acceptor) serveConn(ctx context.Context, raw net.Conn) {
	defer a.wg.Done()
	a.active.Add(1)
	defer a.active.Add(-1)

	start := time.Now()
	logger := a.logger.With(zap.String("remote_addr", raw.RemoteAddr().String()))
	logger.Info("player connected")

	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	defer conn.Close()

	// A blocked read must not outlive shutdown.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := conn.Negotiate(); err != nil {
		logger.Warn("telnet negotiation failed", zap.Error(err))
		return
	}
	if err := a.handler.HandleSession(ctx, conn); err != nil {
		logger.Info("player disconnected", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return
	}
	logger.Info("player left", zap.Duration("duration", time.Since(start)))
}

// Stop closes the listener and waits for every session to end.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	a.stopped = true
	cancel := a.cancel
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	a.wg.Wait()
}

// Addr returns the bound address, or "" before Serve has started listening.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Active returns the number of connected clients.
func (a *Acceptor) Active() int {
	return int(a.active.Load())
}
