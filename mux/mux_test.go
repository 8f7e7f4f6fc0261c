package mux

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchwell/boschalarm/clog"
	"github.com/patchwell/boschalarm/wire"
)

func newTestMux(maxInFlight int64) (*Mux, *bytes.Buffer) {
	var buf bytes.Buffer
	m := New(clog.NewNoop(), wire.ProtocolBasic, maxInFlight)
	m.Attach(&buf)
	return m, &buf
}

func TestSendResolveRoundTrip(t *testing.T) {
	m, buf := newTestMux(1)

	resCh := make(chan []byte, 1)
	errCh := make(chan error, 1)
	go func() {
		res, err := m.Send(context.Background(), wire.WhatAreYou, nil)
		resCh <- res
		errCh <- err
	}()

	require.Eventually(t, func() bool { return buf.Len() > 0 }, time.Second, time.Millisecond)
	require.NoError(t, m.Resolve([]byte{wire.StatusAckData, 0x12, 0x34}))

	assert.NoError(t, <-errCh)
	assert.Equal(t, []byte{0x12, 0x34}, <-resCh)
}

// TestFIFOOrdering verifies invariant 1: responses are matched to requests
// strictly in send order, never by content.
func TestFIFOOrdering(t *testing.T) {
	m, buf := newTestMux(4)

	var results [3][]byte
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := m.Send(context.Background(), wire.WhatAreYou, nil)
			require.NoError(t, err)
			results[i] = res
		}()
		require.Eventually(t, func() bool { return m.PendingCount() == i+1 }, time.Second, time.Millisecond)
	}
	_ = buf

	require.NoError(t, m.Resolve([]byte{wire.StatusAckData, 0x01}))
	require.NoError(t, m.Resolve([]byte{wire.StatusAckData, 0x02}))
	require.NoError(t, m.Resolve([]byte{wire.StatusAckData, 0x03}))
	wg.Wait()

	assert.Equal(t, []byte{0x01}, results[0])
	assert.Equal(t, []byte{0x02}, results[1])
	assert.Equal(t, []byte{0x03}, results[2])
}

// TestSemaphoreBoundsInFlight verifies invariant 4: at most maxInFlight
// sends may have written their frame before any response arrives.
func TestSemaphoreBoundsInFlight(t *testing.T) {
	m, buf := newTestMux(2)

	for i := 0; i < 5; i++ {
		go m.Send(context.Background(), wire.WhatAreYou, nil)
	}

	require.Eventually(t, func() bool { return m.PendingCount() == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, m.PendingCount())
	_ = buf
}

func TestResolveWithNothingPendingIsUnexpectedResponse(t *testing.T) {
	m, _ := newTestMux(1)
	err := m.Resolve([]byte{wire.StatusAckData})
	assert.ErrorIs(t, err, wire.ErrUnexpectedResponse)
}

func TestSendNotConnected(t *testing.T) {
	m := New(clog.NewNoop(), wire.ProtocolBasic, 1)
	_, err := m.Send(context.Background(), wire.WhatAreYou, nil)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSendTimeoutLeavesWaiterInFIFO(t *testing.T) {
	m, _ := newTestMux(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Send(ctx, wire.WhatAreYou, nil)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 1, m.PendingCount())

	// A late response still resolves the abandoned waiter without blocking
	// or corrupting the FIFO for the next command.
	require.NoError(t, m.Resolve([]byte{wire.StatusAckData}))
	assert.Equal(t, 0, m.PendingCount())
}

func TestResetFailsPendingWaiters(t *testing.T) {
	m, _ := newTestMux(1)
	errCh := make(chan error, 1)
	go func() {
		_, err := m.Send(context.Background(), wire.WhatAreYou, nil)
		errCh <- err
	}()
	require.Eventually(t, func() bool { return m.PendingCount() == 1 }, time.Second, time.Millisecond)

	m.Reset()
	assert.ErrorIs(t, <-errCh, ErrNotConnected)
	assert.Equal(t, 0, m.PendingCount())
}

func TestPendingSinceIsNowWhenEmpty(t *testing.T) {
	m, _ := newTestMux(1)
	before := time.Now()
	assert.True(t, !m.PendingSince().Before(before))
}
