// Package mux implements the request multiplexer described in spec.md
// 4.2: it bounds in-flight commands, matches pipelined responses to
// requests strictly by FIFO order, and exposes the liveness signal the
// supervisor uses for skew detection.
package mux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/patchwell/boschalarm/clog"
	"github.com/patchwell/boschalarm/wire"
)

// ErrNotConnected is returned when Send is called with no transport
// attached.
var ErrNotConnected = errors.New("mux: not connected")

// ErrTimeout is returned when the caller's context is done before a
// response arrives. The pending waiter is left in the FIFO — the
// multiplexer never reorders or discards it, since the panel may still
// answer and removing it would desynchronize the FIFO for every command
// sent afterward.
var ErrTimeout = errors.New("mux: timed out waiting for response")

type pendingWaiter struct {
	id   uuid.UUID
	done chan pendingResult
}

type pendingResult struct {
	payload []byte
	err     error
}

// Mux is the request multiplexer. It is safe for concurrent use by
// multiple callers of Send; Resolve must be called only from the frame
// reader goroutine.
type Mux struct {
	log      clog.Clog
	protocol wire.Protocol
	sem      *semaphore.Weighted

	mu               sync.Mutex
	transport        io.Writer
	pending          []*pendingWaiter
	pendingLastEmpty time.Time
}

// New creates a multiplexer that frames commands under protocol and
// admits at most maxInFlight concurrently outstanding commands. maxInFlight
// comes from capability negotiation (1, or ~100 for B/G-family panels) and
// is fixed for the lifetime of the connection, per spec.md 5.
func New(log clog.Clog, protocol wire.Protocol, maxInFlight int64) *Mux {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Mux{
		log:              log,
		protocol:         protocol,
		sem:              semaphore.NewWeighted(maxInFlight),
		pendingLastEmpty: time.Now(),
	}
}

// Attach sets the transport Send writes frames to. Call with nil on
// disconnect.
func (m *Mux) Attach(transport io.Writer) {
	m.mu.Lock()
	m.transport = transport
	m.mu.Unlock()
}

// Reset fails every pending waiter with ErrNotConnected and clears the
// FIFO; called when the transport is torn down so in-flight callers don't
// hang forever.
func (m *Mux) Reset() {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.pendingLastEmpty = time.Now()
	m.transport = nil
	m.mu.Unlock()
	for _, w := range pending {
		w.done <- pendingResult{err: ErrNotConnected}
	}
}

// Send encodes code/payload, writes it to the transport, and blocks until
// a response is matched to it by FIFO order or ctx is done. The semaphore
// bounds how many commands may be outstanding (written but not yet
// answered) at once.
func (m *Mux) Send(ctx context.Context, code byte, payload []byte) ([]byte, error) {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer m.sem.Release(1)

	m.mu.Lock()
	transport := m.transport
	m.mu.Unlock()
	if transport == nil {
		return nil, ErrNotConnected
	}

	frame, err := wire.EncodeCommand(m.protocol, code, payload)
	if err != nil {
		return nil, err
	}

	w := &pendingWaiter{id: uuid.New(), done: make(chan pendingResult, 1)}
	m.mu.Lock()
	m.pending = append(m.pending, w)
	m.mu.Unlock()

	m.log.Debug("send cmd=0x%02x cmd_id=%s bytes=%x", code, w.id, frame)
	if _, err := transport.Write(frame); err != nil {
		m.removeWaiter(w)
		return nil, fmt.Errorf("mux: write: %w", err)
	}

	select {
	case res := <-w.done:
		return res.payload, res.err
	case <-ctx.Done():
		return nil, ErrTimeout
	}
}

func (m *Mux) removeWaiter(target *pendingWaiter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range m.pending {
		if w == target {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			if len(m.pending) == 0 {
				m.pendingLastEmpty = time.Now()
			}
			return
		}
	}
}

// Resolve pops the FIFO head and delivers the decoded response (or NACK/
// unexpected-response error) to it. It must be called for every response
// frame the reader decodes, in arrival order. An error is returned only
// when a response arrives with nothing pending — a protocol violation the
// caller should treat as fatal.
func (m *Mux) Resolve(body []byte) error {
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: response with no pending command", wire.ErrUnexpectedResponse)
	}
	w := m.pending[0]
	m.pending = m.pending[1:]
	if len(m.pending) == 0 {
		m.pendingLastEmpty = time.Now()
	}
	m.mu.Unlock()

	payload, err := wire.DecodeResponseBody(body)
	w.done <- pendingResult{payload: payload, err: err}
	return nil
}

// PendingSince mirrors the reference implementation's pending_last_empty
// property: while the FIFO is non-empty it returns the instant it most
// recently became empty (so the supervisor can measure how long it has
// been continuously non-empty); while empty it returns the current time,
// so an empty FIFO never looks stale.
func (m *Mux) PendingSince() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return time.Now()
	}
	return m.pendingLastEmpty
}

// PendingCount reports how many commands are currently awaiting a
// response, for tests and metrics.
func (m *Mux) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
