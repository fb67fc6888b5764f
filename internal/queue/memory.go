package queue

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process queue implementing both Consumer and Publisher.
// Records that are received but never acknowledged stay counted in Unacked.
type Memory struct {
	mu        sync.Mutex
	pending   [][]byte
	published []Message
	acked     int
	received  int
	fail      error
}

// Message is a record captured by Memory.Publish.
type Message struct {
	Key  string
	Body []byte
}

func NewMemory(records ...[]byte) *Memory {
	return &Memory{pending: records}
}

// Push appends a record to the inbound side.
func (m *Memory) Push(body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, body)
}

// FailPublish makes every later Publish return err.
func (m *Memory) FailPublish(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *Memory) Receive(ctx context.Context, _ time.Duration) (Delivery, bool, error) {
	if err := ctx.Err(); err != nil {
		return Delivery{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return Delivery{}, false, nil
	}
	body := m.pending[0]
	m.pending = m.pending[1:]
	m.received++
	return NewDelivery(nil, body, func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.acked++
		return nil
	}), true, nil
}

func (m *Memory) Publish(_ context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.published = append(m.published, Message{Key: key, Body: body})
	return nil
}

// Published returns a copy of everything published so far.
func (m *Memory) Published() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.published))
	copy(out, m.published)
	return out
}

// Pending returns the number of records not yet received.
func (m *Memory) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Unacked returns the number of received records that were never acknowledged.
func (m *Memory) Unacked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.received - m.acked
}

func (m *Memory) Close() error {
	return nil
}
