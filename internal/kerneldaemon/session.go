package kerneldaemon

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// KernelReadyTimeout is how long Ready waits for a kernel_info_reply
// before giving up (spec.md §6: default 60s).
const KernelReadyTimeout = 60 * time.Second

// DefaultExecuteTimeout bounds how long Execute waits for a kernel to
// return to idle (spec.md §6: default 300s).
const DefaultExecuteTimeout = 300 * time.Second

// Session is one reusable kernel process, addressed by SessionKey and
// reachable over its Conn.
type Session struct {
	key       SessionKey
	sessionID string
	conn      Conn
	transport Transport

	mu             sync.Mutex
	lastUsed       time.Time
	executionCount int
	info           *KernelInfoReplyContent
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

func (s *Session) lastUsedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) nextExecutionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executionCount++
	return s.executionCount
}

func (s *Session) shutdown() {
	s.conn.Close()
}

// Key returns the SessionKey this session was started under.
func (s *Session) Key() SessionKey { return s.key }

// Ready blocks until the kernel answers a kernel_info_request, using
// KernelReadyTimeout if timeout is zero.
func (s *Session) Ready(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = KernelReadyTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msgID := uuid.NewString()
	request := Message{
		Header:  Header{MsgID: msgID, MsgType: "kernel_info_request", Session: s.sessionID},
		Content: KernelInfoRequestContent{},
	}
	if err := s.conn.SendShell(ctx, request); err != nil {
		return fmt.Errorf("kerneldaemon: send kernel_info_request: %w", err)
	}

	for {
		reply, err := s.conn.RecvShell(ctx)
		if err != nil {
			return fmt.Errorf("kerneldaemon: kernel not ready within %s: %w", timeout, err)
		}
		if reply.ParentHeader.MsgID != msgID {
			continue
		}
		if reply.Header.MsgType != "kernel_info_reply" {
			continue
		}
		info, err := decodeContent[KernelInfoReplyContent](reply.Content)
		if err != nil {
			return fmt.Errorf("kerneldaemon: decode kernel_info_reply: %w", err)
		}
		s.mu.Lock()
		s.info = &info
		s.mu.Unlock()
		return nil
	}
}

// Info returns the kernel_info_reply captured by the last successful
// Ready call, if any.
func (s *Session) Info() (KernelInfoReplyContent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return KernelInfoReplyContent{}, false
	}
	return *s.info, true
}

// ExecuteStatus classifies the outcome of Execute.
type ExecuteStatus int

const (
	ExecuteOK ExecuteStatus = iota
	ExecuteError
	ExecuteAborted
)

// ExecuteResult is the outcome of running one Execute call: a status, the
// outputs collected from iopub in order, and the kernel's execution_count
// if one was reported.
type ExecuteResult struct {
	Status         ExecuteStatus
	Outputs        []CellOutput
	ExecutionCount int
	ErrorName      string
	ErrorValue     string
	Traceback      []string
}

// CellOutput is one piece of output produced by executing code, mirroring
// the Stream/DisplayData/ExecuteResult/Error shapes a Jupyter kernel emits
// on iopub.
type CellOutput struct {
	Kind           CellOutputKind
	StreamName     string
	Text           string
	Data           MimeBundle
	Metadata       map[string]any
	ExecutionCount int
	ErrorName      string
	ErrorValue     string
	Traceback      []string
}

// CellOutputKind discriminates CellOutput's variant.
type CellOutputKind int

const (
	CellOutputStream CellOutputKind = iota
	CellOutputDisplayData
	CellOutputExecuteResult
	CellOutputError
)

// Execute sends code to the kernel and collects its outputs until the
// kernel reports idle, using DefaultExecuteTimeout if timeout is zero.
func (s *Session) Execute(ctx context.Context, code string, timeout time.Duration) (ExecuteResult, error) {
	if timeout <= 0 {
		timeout = DefaultExecuteTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.touch()
	s.nextExecutionCount()

	msgID := uuid.NewString()
	request := Message{
		Header:  Header{MsgID: msgID, MsgType: "execute_request", Session: s.sessionID},
		Content: ExecuteRequestContent{Code: code, StoreHistory: true},
	}
	if err := s.conn.SendShell(ctx, request); err != nil {
		return ExecuteResult{}, fmt.Errorf("kerneldaemon: send execute_request: %w", err)
	}

	return s.collectOutputs(ctx, msgID, timeout)
}

// collectOutputs reads iopub messages addressed to requestID until the
// kernel reports idle, accumulating CellOutputs as it goes.
func (s *Session) collectOutputs(ctx context.Context, requestID string, timeout time.Duration) (ExecuteResult, error) {
	result := ExecuteResult{Status: ExecuteOK}

	for {
		msg, err := s.conn.RecvIOPub(ctx)
		if err != nil {
			return ExecuteResult{}, fmt.Errorf("kerneldaemon: execute did not reach idle within %s: %w", timeout, err)
		}
		if msg.ParentHeader.MsgID != requestID {
			continue
		}

		switch msg.Header.MsgType {
		case "status":
			status, err := decodeContent[StatusContent](msg.Content)
			if err != nil {
				return ExecuteResult{}, fmt.Errorf("kerneldaemon: decode status: %w", err)
			}
			if status.ExecutionState == ExecutionStateIdle {
				return result, nil
			}
		case "stream":
			stream, err := decodeContent[StreamContent](msg.Content)
			if err != nil {
				return ExecuteResult{}, fmt.Errorf("kerneldaemon: decode stream: %w", err)
			}
			result.Outputs = append(result.Outputs, CellOutput{
				Kind:       CellOutputStream,
				StreamName: stream.Name,
				Text:       stream.Text,
			})
		case "display_data":
			data, err := decodeContent[DisplayDataContent](msg.Content)
			if err != nil {
				return ExecuteResult{}, fmt.Errorf("kerneldaemon: decode display_data: %w", err)
			}
			result.Outputs = append(result.Outputs, CellOutput{
				Kind:     CellOutputDisplayData,
				Data:     data.Data,
				Metadata: data.Metadata,
			})
		case "execute_result":
			data, err := decodeContent[ExecuteResultContent](msg.Content)
			if err != nil {
				return ExecuteResult{}, fmt.Errorf("kerneldaemon: decode execute_result: %w", err)
			}
			result.ExecutionCount = data.ExecutionCount
			result.Outputs = append(result.Outputs, CellOutput{
				Kind:           CellOutputExecuteResult,
				ExecutionCount: data.ExecutionCount,
				Data:           data.Data,
				Metadata:       data.Metadata,
			})
		case "error":
			errContent, err := decodeContent[ErrorContent](msg.Content)
			if err != nil {
				return ExecuteResult{}, fmt.Errorf("kerneldaemon: decode error: %w", err)
			}
			result.Status = ExecuteError
			result.ErrorName = errContent.EName
			result.ErrorValue = errContent.EValue
			result.Traceback = errContent.Traceback
			result.Outputs = append(result.Outputs, CellOutput{
				Kind:       CellOutputError,
				ErrorName:  errContent.EName,
				ErrorValue: errContent.EValue,
				Traceback:  errContent.Traceback,
			})
		}
	}
}

// decodeContent round-trips msg.Content through JSON into T, since Conn
// implementations carry content as `any` (a typed struct when produced
// in-process by a test fake, or raw JSON when it arrived over the wire).
func decodeContent[T any](content any) (T, error) {
	var zero T
	if typed, ok := content.(T); ok {
		return typed, nil
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, err
	}
	return out, nil
}
