// Package boschalarm implements a client for the Bosch Mode 2 alarm
// panel automation protocol: a binary, length-prefixed, multiplexed
// request/response protocol with asynchronous notifications, spoken over
// a single TLS stream.
package boschalarm

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/patchwell/boschalarm/capability"
	"github.com/patchwell/boschalarm/clog"
	"github.com/patchwell/boschalarm/history"
	"github.com/patchwell/boschalarm/model"
	"github.com/patchwell/boschalarm/mux"
	"github.com/patchwell/boschalarm/wire"
)

// LoadSelector picks which phases of the loader run on (re)connect, per
// spec.md 4.5.
type LoadSelector uint8

const (
	LoadExtendedInfo LoadSelector = 1 << iota
	LoadEntities
	LoadStatus
	LoadAll = LoadExtendedInfo | LoadEntities | LoadStatus
)

// Panel is the façade over one panel connection: the Connect/Disconnect
// lifecycle, read-only entity accessors, and the action methods in
// actions.go. A Panel is safe for concurrent use. The model is mutated
// from the session read loop, the poll loop, the supervisor, and the
// goroutines that notification finalizers start; each entity guards its
// own state with a mutex.
type Panel struct {
	cfg     Config
	log     clog.Clog
	metrics *Metrics

	mu          sync.Mutex
	conn        net.Conn
	mx          *mux.Mux
	caps        capability.Capabilities
	histDecoder history.Decoder
	histDriver  *history.Driver
	connected   bool
	lastDecoded time.Time
	cancelLoop  context.CancelFunc
	loopDone    chan struct{}

	areas   *model.Collection[*model.Area]
	points  *model.Collection[*model.Point]
	outputs *model.Collection[*model.Output]
	doors   *model.Collection[*model.Door]
	events  *model.Log
	info    model.PanelInfo
	infoMu  sync.RWMutex

	ConnectionObserver model.Observable
	FaultsObserver     model.Observable
}

// New creates a Panel with the given configuration. Call Connect before
// using any other method.
func New(cfg Config, log clog.Clog) *Panel {
	return &Panel{
		cfg:     cfg,
		log:     log,
		metrics: NewMetrics(),
		areas:   model.NewCollection[*model.Area](),
		points:  model.NewCollection[*model.Point](),
		outputs: model.NewCollection[*model.Output](),
		doors:   model.NewCollection[*model.Door](),
		events:  &model.Log{},
	}
}

// Connect dials the panel, negotiates capabilities, authenticates, and
// runs the requested load phases, all within a 30s timeout per spec.md 5.
// It starts the session read loop and the supervisor before returning.
func (p *Panel) Connect(ctx context.Context, selector LoadSelector) error {
	if err := p.cfg.Valid(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	dialer := &tls.Dialer{Config: p.cfg.TLSConfig}
	conn, err := dialer.DialContext(ctx, "tcp", p.cfg.Addr)
	if err != nil {
		return &TransportError{Reason: "dial failed", Err: err}
	}

	p.mu.Lock()
	p.conn = conn
	p.mx = mux.New(p.log, wire.ProtocolBasic, 1)
	p.mx.Attach(conn)
	p.mu.Unlock()

	loopCtx, loopCancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.cancelLoop = loopCancel
	p.loopDone = make(chan struct{})
	p.mu.Unlock()
	go p.readLoop(loopCtx, conn)

	caps, err := p.negotiate(ctx)
	if err != nil {
		loopCancel()
		conn.Close()
		return err
	}

	p.mu.Lock()
	p.caps = caps
	p.mx = mux.New(p.log, wire.ProtocolBasic, caps.MaxInFlight)
	p.mx.Attach(conn)
	p.histDecoder = history.NewDecoder(caps.HistoryDialect, nil)
	p.histDriver = history.NewDriver(p.histDecoder)
	p.mu.Unlock()
	p.events.ResetFailureLatch()

	if err := p.authenticate(ctx); err != nil {
		p.teardown()
		return err
	}

	if err := p.load(ctx, selector); err != nil {
		p.log.Warn("load phase error after connect: %v", err)
	}

	p.mu.Lock()
	p.connected = true
	p.lastDecoded = time.Now()
	p.mu.Unlock()
	p.metrics.ConnectionState.WithLabelValues(p.cfg.Addr).Set(1)
	p.ConnectionObserver.Notify()

	go p.runSupervisor()
	if caps.SupportsSubscriptions {
		if err := p.subscribe(ctx); err != nil {
			p.log.Warn("subscribe failed, falling back to poll: %v", err)
			go p.runPoll(loopCtx)
		}
	} else {
		go p.runPoll(loopCtx)
	}

	return nil
}

// Disconnect cancels the supervisor and background loops, then closes the
// transport.
func (p *Panel) Disconnect() {
	p.teardown()
}

func (p *Panel) teardown() {
	p.mu.Lock()
	conn := p.conn
	cancel := p.cancelLoop
	mx := p.mx
	wasConnected := p.connected
	p.connected = false
	p.conn = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if mx != nil {
		mx.Reset()
	}
	if conn != nil {
		conn.Close()
	}
	if wasConnected {
		p.areas.ResetAll()
		p.points.ResetAll()
		p.outputs.ResetAll()
		p.doors.ResetAll()
		p.metrics.ConnectionState.WithLabelValues(p.cfg.Addr).Set(0)
		p.ConnectionObserver.Notify()
	}
}

// readLoop decodes frames off the transport until ctx is cancelled or the
// connection errors, dispatching responses to the multiplexer and
// notifications to the subscription handler.
func (p *Panel) readLoop(ctx context.Context, conn net.Conn) {
	defer func() {
		p.mu.Lock()
		done := p.loopDone
		p.mu.Unlock()
		if done != nil {
			close(done)
		}
	}()

	dec := &wire.Decoder{}
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		n, err := conn.Read(buf)
		if n > 0 {
			dec.Feed(buf[:n])
			for {
				frame, ok, ferr := dec.Next()
				if ferr != nil {
					p.log.Error("frame decode error: %v", ferr)
					return
				}
				if !ok {
					break
				}
				p.mu.Lock()
				p.lastDecoded = time.Now()
				p.mu.Unlock()
				p.dispatchFrame(frame)
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			p.log.Warn("transport read error: %v", err)
			return
		}
	}
}

func (p *Panel) dispatchFrame(f *wire.Frame) {
	p.mu.Lock()
	mx := p.mx
	p.mu.Unlock()
	switch f.Kind {
	case wire.KindResponse:
		if mx != nil {
			if err := mx.Resolve(f.Body); err != nil {
				p.log.Error("%v", err)
			}
		}
	case wire.KindNotification:
		p.handleNotification(f.Body)
	}
}

func (p *Panel) negotiate(ctx context.Context) (capability.Capabilities, error) {
	reply, err := p.send(ctx, wire.WhatAreYou, []byte{0x03})
	if err != nil {
		reply, err = p.send(ctx, wire.WhatAreYou, nil)
	}
	if err != nil {
		return capability.Capabilities{}, &TransportError{Reason: "what-are-you failed", Err: err}
	}
	caps, err := capability.Negotiate(reply)
	if err != nil {
		return capability.Capabilities{}, &UnexpectedResponseError{Detail: err.Error()}
	}
	return caps, nil
}

// negotiateRaw re-sends WHAT_ARE_YOU without parsing the reply, for the
// supervisor's skew probe: a degraded panel may answer with a reply the
// full negotiator would reject, but the family byte alone still answers
// the question "is this still the same panel on the other end of the
// multiplexer".
func (p *Panel) negotiateRaw(ctx context.Context) ([]byte, error) {
	return p.send(ctx, wire.WhatAreYou, []byte{0x03})
}

// send is a thin convenience wrapper the rest of the package uses; it
// exists so call sites read `p.send(ctx, code, payload)` instead of
// reaching into p.mx directly.
func (p *Panel) send(ctx context.Context, code byte, payload []byte) ([]byte, error) {
	p.mu.Lock()
	mx := p.mx
	p.mu.Unlock()
	if mx == nil {
		return nil, &TransportError{Reason: "not connected"}
	}
	start := time.Now()
	res, err := mx.Send(ctx, code, payload)
	if p.metrics != nil {
		p.metrics.CommandDuration.WithLabelValues(fmt.Sprintf("0x%02x", code)).Observe(time.Since(start).Seconds())
	}
	var nackErr *wire.NackError
	if errors.As(err, &nackErr) && p.metrics != nil {
		p.metrics.NackTotal.WithLabelValues(fmt.Sprintf("0x%02x", code)).Inc()
	}
	return res, err
}

// ConnectionStatus reports true iff the panel is connected and its area
// and point collections have both been populated, matching the original
// implementation's connection_status() formula.
func (p *Panel) ConnectionStatus() bool {
	p.mu.Lock()
	connected := p.connected
	p.mu.Unlock()
	return connected && p.areas.Populated() && p.points.Populated()
}

func (p *Panel) Areas() map[int]*model.Area     { return p.areas.All() }
func (p *Panel) Points() map[int]*model.Point   { return p.points.All() }
func (p *Panel) Outputs() map[int]*model.Output { return p.outputs.All() }
func (p *Panel) Doors() map[int]*model.Door     { return p.doors.All() }
func (p *Panel) Events() []model.HistoryEvent   { return p.events.Events() }

func (p *Panel) Model() wire.PanelFamily {
	p.infoMu.RLock()
	defer p.infoMu.RUnlock()
	return p.info.Model
}

func (p *Panel) FirmwareVersion() string {
	p.infoMu.RLock()
	defer p.infoMu.RUnlock()
	return p.info.FirmwareVersion
}

func (p *Panel) ProtocolVersion() string {
	p.infoMu.RLock()
	defer p.infoMu.RUnlock()
	return p.info.ProtocolVersion
}

func (p *Panel) SerialNumber() (uint64, bool) {
	p.infoMu.RLock()
	defer p.infoMu.RUnlock()
	return p.info.SerialNumber, p.info.HasSerialNumber
}

func (p *Panel) PanelFaults() []string {
	p.infoMu.RLock()
	defer p.infoMu.RUnlock()
	return p.info.ActiveFaults()
}
