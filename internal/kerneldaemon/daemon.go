// Package kerneldaemon manages reusable Jupyter kernel sessions: starting
// kernels on demand, reusing a running kernel for the same
// (kernel_name, working_dir) pair, and reaping sessions idle past a
// configurable timeout. The transport to an actual kernel process is
// modeled behind the Transport interface so the daemon is unit-testable
// without a real ZeroMQ dependency — none of the example repos import a
// ZeroMQ binding.
package kerneldaemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// DefaultIdleTimeout is the duration of inactivity after which a session is
// eligible for reaping (spec.md §5: default 300s).
const DefaultIdleTimeout = 300 * time.Second

// reapCronSpec runs the idle reaper once a minute; fine-grained enough to
// keep idle sessions from lingering long past their timeout without
// reaping on every tick.
const reapCronSpec = "@every 1m"

// SessionKey identifies a reusable kernel session by kernel name and
// working directory, mirroring the original daemon's (kernel_name,
// working_dir) keying.
type SessionKey struct {
	KernelName string
	WorkingDir string
}

// Daemon is a process-scoped manager of kernel Sessions, keyed by
// SessionKey, with a cron-scheduled idle reaper.
type Daemon struct {
	mu          sync.RWMutex
	sessions    map[SessionKey]*Session
	idleTimeout time.Duration
	transport   Transport
	cron        *cron.Cron
}

var (
	singleton     *Daemon
	singletonOnce sync.Once
)

// Instance returns the process-wide Daemon singleton, constructed lazily
// with DefaultIdleTimeout and the DefaultTransport.
func Instance() *Daemon {
	singletonOnce.Do(func() {
		singleton = New(DefaultIdleTimeout, DefaultTransport{})
		singleton.StartReaper()
	})
	return singleton
}

// New constructs a standalone Daemon, independent of the process-wide
// singleton — the test-constructible path spec.md §9 calls for.
func New(idleTimeout time.Duration, transport Transport) *Daemon {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Daemon{
		sessions:    make(map[SessionKey]*Session),
		idleTimeout: idleTimeout,
		transport:   transport,
	}
}

// StartReaper schedules the idle-session reaper via robfig/cron. Calling
// it more than once is a no-op beyond the first call.
func (d *Daemon) StartReaper() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cron != nil {
		return
	}
	c := cron.New()
	c.AddFunc(reapCronSpec, d.reapIdleSessions)
	c.Start()
	d.cron = c
}

// StopReaper stops the scheduled reaper, if running.
func (d *Daemon) StopReaper() {
	d.mu.Lock()
	c := d.cron
	d.cron = nil
	d.mu.Unlock()
	if c != nil {
		ctx := c.Stop()
		<-ctx.Done()
	}
}

// GetOrStartSession returns the existing session for key if one is
// running, otherwise starts a new one via the daemon's Transport.
func (d *Daemon) GetOrStartSession(ctx context.Context, key SessionKey) (*Session, error) {
	d.mu.RLock()
	if s, ok := d.sessions[key]; ok {
		d.mu.RUnlock()
		s.touch()
		return s, nil
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.sessions[key]; ok {
		s.touch()
		return s, nil
	}

	conn, err := d.transport.StartKernel(ctx, key.KernelName, key.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("kerneldaemon: start kernel %s: %w", key.KernelName, err)
	}

	session := &Session{
		key:       key,
		sessionID: uuid.NewString(),
		conn:      conn,
		transport: d.transport,
		lastUsed:  time.Now(),
	}
	d.sessions[key] = session
	return session, nil
}

// Sessions returns a snapshot of every currently tracked SessionKey.
func (d *Daemon) Sessions() []SessionKey {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]SessionKey, 0, len(d.sessions))
	for k := range d.sessions {
		keys = append(keys, k)
	}
	return keys
}

// reapIdleSessions shuts down and removes every session idle longer than
// the daemon's idleTimeout.
func (d *Daemon) reapIdleSessions() {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	for key, session := range d.sessions {
		if now.Sub(session.lastUsedAt()) >= d.idleTimeout {
			session.shutdown()
			delete(d.sessions, key)
		}
	}
}

// Shutdown reaps every session unconditionally and stops the reaper.
func (d *Daemon) Shutdown() {
	d.StopReaper()
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, session := range d.sessions {
		session.shutdown()
		delete(d.sessions, key)
	}
}
