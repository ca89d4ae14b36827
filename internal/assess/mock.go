package assess

import (
	"context"
	"errors"
	"sync"
)

// ErrMockExhausted is returned when a MockService has no canned reply left
// for an operation.
var ErrMockExhausted = errors.New("mock: no canned response")

// MockReply is a canned reply for one MockService call. Exactly one of the
// payload fields is consulted, depending on the operation.
type MockReply struct {
	Question *QuestionResponse
	Verdict  *VerifyResponse
	Err      error
}

// MockCall records one call made against a MockService.
type MockCall struct {
	Op      Op
	Request VerifyRequest
}

// MockService is a deterministic Service for testing. Replies are queued
// per operation and consumed in FIFO order. Reset succeeds unless a reply
// was queued for it.
type MockService struct {
	mu      sync.Mutex
	replies map[Op][]MockReply
	Calls   []MockCall
}

var _ Service = (*MockService)(nil)

// NewMockService creates an empty MockService.
func NewMockService() *MockService {
	return &MockService{replies: make(map[Op][]MockReply)}
}

// QueueQuestion appends a canned FetchQuestion reply.
func (m *MockService) QueueQuestion(resp *QuestionResponse) *MockService {
	return m.Queue(OpFetchQuestion, MockReply{Question: resp})
}

// QueueVerdict appends a canned VerifyAnswer reply.
func (m *MockService) QueueVerdict(resp *VerifyResponse) *MockService {
	return m.Queue(OpVerifyAnswer, MockReply{Verdict: resp})
}

// QueueError makes the next call to op fail with err.
func (m *MockService) QueueError(op Op, err error) *MockService {
	return m.Queue(op, MockReply{Err: err})
}

// Queue appends a reply for op.
func (m *MockService) Queue(op Op, reply MockReply) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[op] = append(m.replies[op], reply)
	return m
}

func (m *MockService) next(op Op, req VerifyRequest) (MockReply, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Op: op, Request: req})

	queue := m.replies[op]
	if len(queue) == 0 {
		return MockReply{}, false
	}
	m.replies[op] = queue[1:]
	return queue[0], true
}

func (m *MockService) FetchQuestion(ctx context.Context) (*QuestionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ErrTransport{Op: OpFetchQuestion, Err: err}
	}
	reply, ok := m.next(OpFetchQuestion, VerifyRequest{})
	if !ok {
		return nil, &ErrTransport{Op: OpFetchQuestion, Err: ErrMockExhausted}
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return reply.Question, nil
}

func (m *MockService) VerifyAnswer(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ErrTransport{Op: OpVerifyAnswer, Err: err}
	}
	reply, ok := m.next(OpVerifyAnswer, req)
	if !ok {
		return nil, &ErrTransport{Op: OpVerifyAnswer, Err: ErrMockExhausted}
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return reply.Verdict, nil
}

func (m *MockService) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &ErrTransport{Op: OpReset, Err: err}
	}
	reply, _ := m.next(OpReset, VerifyRequest{})
	return reply.Err
}

// Ops returns the operations called so far, in order.
func (m *MockService) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	ops := make([]Op, len(m.Calls))
	for i, c := range m.Calls {
		ops[i] = c.Op
	}
	return ops
}

// CallCount returns the number of calls made.
func (m *MockService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
