package boschalarm

import (
	"context"
	"time"
)

// runSupervisor wakes on cfg.SupervisorTick and enforces the reconnect,
// idle-timeout, and skew-recovery policy in spec.md 4.7. It exits once
// the panel's session loop is torn down and not replaced by a fresh
// Connect (p.cancelLoop becomes nil).
func (p *Panel) runSupervisor() {
	ticker := time.NewTicker(p.cfg.SupervisorTick)
	defer ticker.Stop()

	skewSince := time.Time{}
	for range ticker.C {
		p.mu.Lock()
		connected := p.connected
		lastDecoded := p.lastDecoded
		mx := p.mx
		p.mu.Unlock()

		if !connected {
			selector := LoadStatus
			if !(p.areas.Populated() && p.points.Populated()) {
				selector = LoadAll
			}
			if p.metrics != nil {
				p.metrics.Reconnects.WithLabelValues("disconnected").Inc()
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := p.Connect(ctx, selector)
			cancel()
			if err != nil {
				p.log.Warn("supervisor reconnect failed, will retry next tick: %v", err)
				continue
			}
			return // Connect started a fresh supervisor goroutine
		}

		if time.Since(lastDecoded) > p.cfg.IdleTimeout {
			p.log.Warn("idle timeout exceeded, forcing reconnect")
			if p.metrics != nil {
				p.metrics.Reconnects.WithLabelValues("idle_timeout").Inc()
			}
			p.teardown()
			continue
		}

		if mx != nil && mx.PendingCount() > 0 {
			if skewSince.IsZero() {
				skewSince = mx.PendingSince()
			}
			if time.Since(skewSince) > p.cfg.SkewWindow {
				if p.probeSkew() {
					p.log.Warn("skew probe failed, forcing connection reset")
					if p.metrics != nil {
						p.metrics.Reconnects.WithLabelValues("skew").Inc()
					}
					p.teardown()
				}
				skewSince = time.Time{}
			}
		} else {
			skewSince = time.Time{}
		}
	}
}

// probeSkew issues the identity command with a 30s timeout; it reports
// true (skewed) if the reply is absent or its family byte disagrees with
// the negotiated model, per spec.md 4.7's defense against a dropped
// response permanently desynchronizing the multiplexer.
func (p *Panel) probeSkew() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	reply, err := p.negotiateRaw(ctx)
	if err != nil || len(reply) == 0 {
		return true
	}
	return reply[0] != byte(p.caps.Family)
}
