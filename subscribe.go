package boschalarm

import (
	"context"
	"time"

	"github.com/patchwell/boschalarm/model"
	"github.com/patchwell/boschalarm/wire"
)

// subscribe sends SET_SUBSCRIPTION per spec.md 4.6. The per-kind flag
// order is fixed by the protocol: heartbeat, event-memory-summary,
// event-history, config-change, area on/off, area ready, output status,
// point status, door status, walk-test, and (format 2 only)
// panel-system-status, wireless-learn.
func (p *Panel) subscribe(ctx context.Context) error {
	payload := []byte{
		byte(p.caps.SubscriptionFormat),
		1, // heartbeat
		1, // event-memory-summary
		1, // event-history
		0, // config-change
		1, // area on/off
		1, // area ready
		1, // output status
		1, // point status
		1, // door status
		0, // walk-test
	}
	if p.caps.SubscriptionFormat == 2 {
		payload = append(payload, 1, 0) // panel-system-status, wireless-learn
	}
	_, err := p.send(ctx, wire.SetSubscription, payload)
	return err
}

// runPoll re-runs the status load every cfg.PollInterval (1s by default)
// until ctx is cancelled; used when the panel doesn't support
// subscriptions or the SET_SUBSCRIPTION command fails.
func (p *Panel) runPoll(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.loadStatusPhase(ctx); err != nil {
				p.log.Warn("poll status load failed: %v", err)
			}
		}
	}
}

// subscriptionHistoryRecordLen reads the 2-byte text_len field embedded
// at offset 23 of a history subscription record and returns the total
// record length (25 + text_len), without fully decoding it.
func subscriptionHistoryRecordLen(data []byte) (int, error) {
	if len(data) < 25 {
		return 0, &UnexpectedResponseError{Detail: "truncated history notification record"}
	}
	textLen := int(wire.GetUint16BE(data, 23))
	total := 25 + textLen
	if len(data) < total {
		return 0, &UnexpectedResponseError{Detail: "truncated history notification text"}
	}
	return total, nil
}

// handleNotification dispatches one notification frame's groups, per
// spec.md 4.6. Each group is [update_type:1][count:1] followed by count
// type-specific records; group finalizers schedule asynchronous
// follow-ups rather than blocking dispatch.
func (p *Panel) handleNotification(body []byte) {
	for len(body) >= 2 {
		updateType := body[0]
		count := int(body[1])
		body = body[2:]

		sawAny := false
		for i := 0; i < count; i++ {
			n, ok := p.consumeNotificationRecord(updateType, body)
			if !ok {
				p.log.Warn("notification group 0x%02x: truncated record", updateType)
				return
			}
			body = body[n:]
			sawAny = true
		}
		p.finalizeNotificationGroup(updateType, count, sawAny)
	}
}

// consumeNotificationRecord applies one record's side effect and returns
// how many bytes it consumed. ok is false if body is too short for the
// update type's record layout.
func (p *Panel) consumeNotificationRecord(updateType byte, body []byte) (int, bool) {
	switch updateType {
	case 0x00: // heartbeat
		p.mu.Lock()
		p.lastDecoded = time.Now()
		p.mu.Unlock()
		return 0, true

	case 0x01: // event-memory summary: [priority][count:2]
		if len(body) < 3 {
			return 0, false
		}
		priority := wire.AlarmPriority(body[0])
		count := wire.GetUint16BE(body, 1)
		if count > 0 {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := p.getAlarmsForPriority(ctx, priority, nil); err != nil {
					p.log.Warn("alarm detail fetch for priority %v failed: %v", priority, err)
				}
			}()
		} else {
			p.clearAlarmAcrossAreas(priority)
		}
		return 3, true

	case 0x02: // event history, variable 25+text_len
		n, err := subscriptionHistoryRecordLen(body)
		if err != nil {
			return 0, false
		}
		ev, err := p.histDecoder.DecodeSubscription(body[:n])
		if err != nil {
			if p.events.RecordParseError(0, time.Now(), err) {
				p.log.Warn("history notification decode error: %v", err)
			}
		} else {
			p.events.Append(ev)
		}
		return n, true

	case 0x04: // area on/off: [id:2][status]
		if len(body) < 3 {
			return 0, false
		}
		id := int(wire.GetUint16BE(body, 0))
		status := body[2]
		if a, ok := p.areas.Get(id); ok {
			a.SetStatus(model.AreaStatus(status))
		}
		return 3, true

	case 0x05: // area ready: [id:2][ready][faults:2]
		if len(body) < 5 {
			return 0, false
		}
		id := int(wire.GetUint16BE(body, 0))
		ready := body[2]
		faults := int(wire.GetUint16BE(body, 3))
		if a, ok := p.areas.Get(id); ok {
			a.SetReady(model.AreaReady(ready), faults)
		}
		return 5, true

	case 0x06: // output status, opaque 3 bytes; finalizer polls the bitmap
		if len(body) < 3 {
			return 0, false
		}
		return 3, true

	case 0x07: // point status
		if len(body) < 3 {
			return 0, false
		}
		id := int(wire.GetUint16BE(body, 0))
		status := body[2]
		if pt, ok := p.points.Get(id); ok {
			pt.SetStatus(model.PointStatus(status))
		}
		return 3, true

	case 0x08: // door status
		if len(body) < 3 {
			return 0, false
		}
		id := int(wire.GetUint16BE(body, 0))
		status := body[2]
		if d, ok := p.doors.Get(id); ok {
			d.SetStatus(model.DoorStatus(status))
		}
		return 3, true

	case 0x0A: // panel-system status: [_][faults:2][_:3]
		if len(body) < 6 {
			return 0, false
		}
		bitmap := wire.GetUint16BE(body, 1)
		p.infoMu.Lock()
		p.info.FaultsBitmap = bitmap
		p.infoMu.Unlock()
		p.FaultsObserver.Notify()
		return 6, true

	default:
		return 0, false
	}
}

// finalizeNotificationGroup runs once per group after its records are
// processed, per spec.md 4.6.
func (p *Panel) finalizeNotificationGroup(updateType byte, count int, sawAny bool) {
	switch updateType {
	case 0x02:
		if len(p.events.Events()) == 0 {
			p.scheduleDelayedHistoryLoad(0)
		}
	case 0x04:
		if sawAny && len(p.events.Events()) == 0 {
			p.scheduleDelayedHistoryLoad(30 * time.Second)
		}
	case 0x06:
		if sawAny {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := p.loadOutputStatus(ctx); err != nil {
					p.log.Warn("output bitmap poll after notification failed: %v", err)
				}
			}()
		}
	}
}

func (p *Panel) scheduleDelayedHistoryLoad(delay time.Duration) {
	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := p.loadHistory(ctx); err != nil {
			p.log.Warn("delayed history load failed: %v", err)
		}
	}()
}
