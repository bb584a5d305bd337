package kerneldaemon

import (
	"context"
	"errors"
)

var errKernelStartFailed = errors.New("fakeTransport: kernel start failed")

// fakeConn is an in-process Conn stand-in: shell requests are answered by
// a scripted responder, and iopub messages are drained from a queue a test
// preloads. It exercises Session/Daemon logic without a real kernel
// process or wire protocol.
type fakeConn struct {
	info ConnectionInfo

	shellReply func(Message) Message
	iopub      []Message
	iopubIdx   int
	closed     bool
}

func newFakeConn(kernelName string) *fakeConn {
	return &fakeConn{info: ConnectionInfo{KernelName: kernelName, Transport: "tcp"}}
}

func (c *fakeConn) Info() ConnectionInfo { return c.info }

func (c *fakeConn) SendShell(ctx context.Context, msg Message) error {
	if c.shellReply != nil {
		reply := c.shellReply(msg)
		reply.ParentHeader = msg.Header
		c.iopub = append([]Message{reply}, c.iopub...)
	}
	return nil
}

func (c *fakeConn) RecvShell(ctx context.Context) (Message, error) {
	if len(c.iopub) == 0 {
		return Message{}, errors.New("fakeConn: no shell reply queued")
	}
	msg := c.iopub[0]
	c.iopub = c.iopub[1:]
	return msg, nil
}

func (c *fakeConn) RecvIOPub(ctx context.Context) (Message, error) {
	if c.iopubIdx >= len(c.iopub) {
		return Message{}, errors.New("fakeConn: iopub exhausted")
	}
	msg := c.iopub[c.iopubIdx]
	c.iopubIdx++
	return msg, nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

// fakeTransport hands back a preconfigured fakeConn for every StartKernel
// call, recording the keys it was asked to start.
type fakeTransport struct {
	conn    *fakeConn
	started []SessionKey
	err     error
}

func (t *fakeTransport) StartKernel(ctx context.Context, kernelName, workingDir string) (Conn, error) {
	if t.err != nil {
		return nil, t.err
	}
	t.started = append(t.started, SessionKey{KernelName: kernelName, WorkingDir: workingDir})
	return t.conn, nil
}
