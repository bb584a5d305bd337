package kerneldaemon

import (
	"context"
	"testing"
	"time"
)

func newTestSession(conn *fakeConn) *Session {
	return &Session{
		key:       SessionKey{KernelName: "python3", WorkingDir: "."},
		sessionID: "test-session",
		conn:      conn,
		lastUsed:  time.Now(),
	}
}

func TestSessionReadyCapturesKernelInfo(t *testing.T) {
	conn := newFakeConn("python3")
	conn.shellReply = func(req Message) Message {
		return Message{
			Header: Header{MsgType: "kernel_info_reply"},
			Content: KernelInfoReplyContent{
				Status:         "ok",
				Implementation: "ipykernel",
				LanguageInfo:   LanguageInfo{Name: "python", Version: "3.12.0"},
			},
		}
	}
	session := newTestSession(conn)

	if err := session.Ready(context.Background(), 0); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	info, ok := session.Info()
	if !ok {
		t.Fatalf("expected captured kernel info")
	}
	if info.LanguageInfo.Name != "python" {
		t.Fatalf("expected python, got %q", info.LanguageInfo.Name)
	}
}

func TestSessionReadyFailsWithoutReply(t *testing.T) {
	conn := newFakeConn("python3")
	session := newTestSession(conn)

	if err := session.Ready(context.Background(), 0); err == nil {
		t.Fatalf("expected error when no reply is queued")
	}
}

func TestSessionExecuteCollectsOutputsUntilIdle(t *testing.T) {
	conn := newFakeConn("python3")
	session := newTestSession(conn)

	requestMsgID := "req-1"
	conn.iopub = []Message{
		{
			Header:       Header{MsgType: "stream"},
			ParentHeader: Header{MsgID: requestMsgID},
			Content:      StreamContent{Name: "stdout", Text: "hello\n"},
		},
		{
			Header:       Header{MsgType: "execute_result"},
			ParentHeader: Header{MsgID: requestMsgID},
			Content: ExecuteResultContent{
				ExecutionCount: 1,
				Data:           MimeBundle{"text/plain": "42"},
			},
		},
		{
			Header:       Header{MsgType: "status"},
			ParentHeader: Header{MsgID: requestMsgID},
			Content:      StatusContent{ExecutionState: ExecutionStateIdle},
		},
	}

	session.conn = &fixedMsgIDConn{fakeConn: conn, msgID: requestMsgID}

	result, err := session.Execute(context.Background(), "print(42)", 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Status != ExecuteOK {
		t.Fatalf("expected ExecuteOK, got %v", result.Status)
	}
	if len(result.Outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(result.Outputs))
	}
	if result.ExecutionCount != 1 {
		t.Fatalf("expected execution count 1, got %d", result.ExecutionCount)
	}
}

func TestSessionExecuteCapturesError(t *testing.T) {
	conn := newFakeConn("python3")
	requestMsgID := "req-err"
	conn.iopub = []Message{
		{
			Header:       Header{MsgType: "error"},
			ParentHeader: Header{MsgID: requestMsgID},
			Content: ErrorContent{
				EName:     "NameError",
				EValue:    "name 'x' is not defined",
				Traceback: []string{"line 1"},
			},
		},
		{
			Header:       Header{MsgType: "status"},
			ParentHeader: Header{MsgID: requestMsgID},
			Content:      StatusContent{ExecutionState: ExecutionStateIdle},
		},
	}

	session := newTestSession(conn)
	session.conn = &fixedMsgIDConn{fakeConn: conn, msgID: requestMsgID}

	result, err := session.Execute(context.Background(), "x", 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Status != ExecuteError {
		t.Fatalf("expected ExecuteError, got %v", result.Status)
	}
	if result.ErrorName != "NameError" {
		t.Fatalf("expected NameError, got %q", result.ErrorName)
	}
}

// fixedMsgIDConn lets fixtures preload iopub messages before Execute
// generates its msgID: it records the ID of the request Execute sends and
// rewrites each incoming ParentHeader.MsgID equal to the fixture's msgID to
// that recorded ID.
type fixedMsgIDConn struct {
	*fakeConn
	msgID  string
	sentID string
}

func (c *fixedMsgIDConn) SendShell(ctx context.Context, msg Message) error {
	c.sentID = msg.Header.MsgID
	return c.fakeConn.SendShell(ctx, msg)
}

func (c *fixedMsgIDConn) RecvIOPub(ctx context.Context) (Message, error) {
	msg, err := c.fakeConn.RecvIOPub(ctx)
	if err == nil && msg.ParentHeader.MsgID == c.msgID {
		msg.ParentHeader.MsgID = c.sentID
	}
	return msg, err
}
