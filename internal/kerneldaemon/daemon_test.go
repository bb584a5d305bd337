package kerneldaemon

import (
	"context"
	"testing"
	"time"
)

func TestGetOrStartSessionReusesExistingSession(t *testing.T) {
	transport := &fakeTransport{conn: newFakeConn("python3")}
	daemon := New(time.Hour, transport)

	key := SessionKey{KernelName: "python3", WorkingDir: "/tmp/proj"}
	first, err := daemon.GetOrStartSession(context.Background(), key)
	if err != nil {
		t.Fatalf("GetOrStartSession: %v", err)
	}
	second, err := daemon.GetOrStartSession(context.Background(), key)
	if err != nil {
		t.Fatalf("GetOrStartSession: %v", err)
	}
	if first != second {
		t.Fatalf("expected session reuse for identical key")
	}
	if len(transport.started) != 1 {
		t.Fatalf("expected exactly one kernel start, got %d", len(transport.started))
	}
}

func TestGetOrStartSessionStartsDistinctSessionsPerKey(t *testing.T) {
	transport := &fakeTransport{conn: newFakeConn("python3")}
	daemon := New(time.Hour, transport)

	a, err := daemon.GetOrStartSession(context.Background(), SessionKey{KernelName: "python3", WorkingDir: "/a"})
	if err != nil {
		t.Fatalf("GetOrStartSession a: %v", err)
	}
	b, err := daemon.GetOrStartSession(context.Background(), SessionKey{KernelName: "python3", WorkingDir: "/b"})
	if err != nil {
		t.Fatalf("GetOrStartSession b: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct sessions for distinct working dirs")
	}
	if len(transport.started) != 2 {
		t.Fatalf("expected two kernel starts, got %d", len(transport.started))
	}
}

func TestReapIdleSessionsRemovesExpiredSessions(t *testing.T) {
	transport := &fakeTransport{conn: newFakeConn("python3")}
	daemon := New(10*time.Millisecond, transport)

	key := SessionKey{KernelName: "python3", WorkingDir: "/tmp/proj"}
	if _, err := daemon.GetOrStartSession(context.Background(), key); err != nil {
		t.Fatalf("GetOrStartSession: %v", err)
	}
	if len(daemon.Sessions()) != 1 {
		t.Fatalf("expected one tracked session before reap")
	}

	time.Sleep(20 * time.Millisecond)
	daemon.reapIdleSessions()

	if len(daemon.Sessions()) != 0 {
		t.Fatalf("expected reaper to remove idle session")
	}
	if !transport.conn.closed {
		t.Fatalf("expected reaped session's connection to be closed")
	}
}

func TestGetOrStartSessionPropagatesTransportError(t *testing.T) {
	transport := &fakeTransport{err: errKernelStartFailed}
	daemon := New(time.Hour, transport)

	_, err := daemon.GetOrStartSession(context.Background(), SessionKey{KernelName: "bogus", WorkingDir: "."})
	if err == nil {
		t.Fatalf("expected error from failing transport")
	}
}
