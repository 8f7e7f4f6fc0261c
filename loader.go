package boschalarm

import (
	"context"
	"fmt"
	"time"

	"github.com/patchwell/boschalarm/capability"
	"github.com/patchwell/boschalarm/history"
	"github.com/patchwell/boschalarm/model"
	"github.com/patchwell/boschalarm/wire"
)

// entityIDSize is the width, in bytes, of every entity id on the wire.
// Spec.md's name/status record layouts reference "id (id_size bytes)"
// generically; every worked example in spec.md 8 that shows an id field
// uses two bytes (e.g. the CF03 batch request "[id_hi, id_lo, ...]"), so
// this package fixes id_size at 2 rather than threading it through as a
// per-kind parameter.
const entityIDSize = 2

type entityKind struct {
	label      string
	configCmd  byte
	nameCmd    byte
	statusCmd  byte
	textFormat capability.TextFormat
}

func (p *Panel) entityKinds() []entityKind {
	kinds := []entityKind{
		{"Area", wire.ConfiguredAreas, wire.AreaText, wire.AreaStatus, p.caps.AreaTextFormat},
		{"Point", wire.ConfiguredPoints, wire.PointText, wire.PointStatus, p.caps.PointTextFormat},
		{"Output", wire.ConfiguredOutputs, wire.OutputText, wire.OutputStatus, p.caps.OutputTextFormat},
	}
	if p.caps.SupportsDoorSubsystem {
		kinds = append(kinds, entityKind{"Door", wire.ConfiguredDoors, wire.DoorText, wire.DoorStatus, p.caps.DoorTextFormat})
	}
	return kinds
}

// load runs the phases selected by selector, in the order spec.md 4.5
// defines them.
func (p *Panel) load(ctx context.Context, selector LoadSelector) error {
	if selector&LoadExtendedInfo != 0 {
		if err := p.loadExtendedInfo(ctx); err != nil {
			p.log.Warn("extended info load failed: %v", err)
		}
	}
	if selector&LoadEntities != 0 {
		if err := p.loadEntities(ctx); err != nil {
			return err
		}
	}
	if selector&LoadStatus != 0 {
		if err := p.loadStatusPhase(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (p *Panel) loadExtendedInfo(ctx context.Context) error {
	p.infoMu.Lock()
	p.info.Model = p.caps.Family
	p.info.ProtocolVersion = fmt.Sprintf("v%d.%d", p.caps.ProtocolMajor, p.caps.ProtocolMinor)
	p.infoMu.Unlock()

	if p.caps.SupportsSerialNumber {
		reply, err := p.send(ctx, wire.ProductSerial, nil)
		if err == nil && len(reply) >= 6 {
			cur := wire.NewCursor(reply)
			serial := cur.Uint48BE()
			p.infoMu.Lock()
			p.info.SerialNumber = serial
			p.info.HasSerialNumber = true
			p.infoMu.Unlock()
		}
	}

	// Firmware version, if the panel answers PANEL_SYSTEM_STATUS; best
	// effort since no negotiated flag distinguishes panels that NACK it.
	if reply, err := p.send(ctx, wire.PanelSystemStatus, nil); err == nil && len(reply) >= 3 {
		major := reply[0]
		minor := wire.GetUint16BE(reply, 1)
		p.infoMu.Lock()
		p.info.FirmwareVersion = fmt.Sprintf("v%d.%d", major, minor)
		p.infoMu.Unlock()
	}
	return nil
}

func (p *Panel) decodeEnabledSet(ctx context.Context, configCmd byte) (map[int]bool, error) {
	reply, err := p.send(ctx, configCmd, nil)
	if err != nil {
		return nil, err
	}
	set := make(map[int]bool)
	for _, id := range DecodeBitSet(reply) {
		set[id] = true
	}
	return set, nil
}

// loadNamesCF03 pages through the batch name protocol: request a batch
// starting at nextID, receive zero or more [id:2][name][0x00] records,
// stop on an empty reply.
func (p *Panel) loadNamesCF03(ctx context.Context, nameCmd byte, enabled map[int]bool) (map[int]string, error) {
	names := make(map[int]string)
	nextID := 1
	for {
		payload := wire.PutUint16BE(nil, uint16(nextID))
		payload = append(payload, 0x00, 0x01)
		reply, err := p.send(ctx, nameCmd, payload)
		if err != nil {
			return names, err
		}
		if len(reply) == 0 {
			break
		}
		cur := wire.NewCursor(reply)
		lastID := nextID
		for cur.Len() > 0 {
			id := int(cur.Uint16BE())
			name := cur.CString()
			lastID = id
			if enabled[id] {
				names[id] = name
			}
		}
		nextID = lastID + 1
	}
	return names, nil
}

func (p *Panel) loadNamesCF01(ctx context.Context, nameCmd byte, enabled map[int]bool) (map[int]string, error) {
	names := make(map[int]string)
	for id := range enabled {
		payload := wire.PutUint16BE(nil, uint16(id))
		payload = append(payload, 0x00)
		reply, err := p.send(ctx, nameCmd, payload)
		if err != nil {
			p.log.Warn("name load for id %d failed: %v", id, err)
			continue
		}
		names[id] = wire.NewCursor(reply).CString()
	}
	return names, nil
}

func synthesizedName(label string, id int) string {
	return fmt.Sprintf("%s%d", label, id)
}

func (p *Panel) loadNames(ctx context.Context, k entityKind, enabled map[int]bool) (map[int]string, error) {
	switch k.textFormat {
	case capability.TextFormatCF03:
		return p.loadNamesCF03(ctx, k.nameCmd, enabled)
	case capability.TextFormatCF01:
		return p.loadNamesCF01(ctx, k.nameCmd, enabled)
	default:
		names := make(map[int]string, len(enabled))
		for id := range enabled {
			names[id] = synthesizedName(k.label, id)
		}
		return names, nil
	}
}

func (p *Panel) loadEntities(ctx context.Context) error {
	for _, k := range p.entityKinds() {
		enabled, err := p.decodeEnabledSet(ctx, k.configCmd)
		if err != nil {
			return fmt.Errorf("boschalarm: load %s config: %w", k.label, err)
		}
		names, err := p.loadNames(ctx, k, enabled)
		if err != nil {
			return fmt.Errorf("boschalarm: load %s names: %w", k.label, err)
		}
		switch k.label {
		case "Area":
			for id, name := range names {
				p.areas.Set(id, model.NewArea(id, name))
			}
		case "Point":
			for id, name := range names {
				p.points.Set(id, model.NewPoint(id, name))
			}
		case "Output":
			for id, name := range names {
				p.outputs.Set(id, model.NewOutput(id, name))
			}
		case "Door":
			for id, name := range names {
				p.doors.Set(id, model.NewDoor(id, name))
			}
		}
	}
	return nil
}

// chunk splits ids into groups no larger than max, per CmdRequestMax.
func chunk(ids []int, max int) [][]int {
	var out [][]int
	for len(ids) > 0 {
		n := max
		if n > len(ids) {
			n = len(ids)
		}
		out = append(out, ids[:n])
		ids = ids[n:]
	}
	return out
}

func (p *Panel) loadEntityStatus(ctx context.Context, statusCmd byte, ids []int, apply func(id int, status byte)) error {
	max, ok := wire.CmdRequestMax[statusCmd]
	if !ok {
		max = len(ids)
		if max == 0 {
			max = 1
		}
	}
	for _, batch := range chunk(ids, max) {
		var payload []byte
		for _, id := range batch {
			payload = wire.PutUint16BE(payload, uint16(id))
		}
		reply, err := p.send(ctx, statusCmd, payload)
		if err != nil {
			return err
		}
		cur := wire.NewCursor(reply)
		for cur.Len() >= entityIDSize+1 {
			id := int(cur.Uint16BE())
			status := cur.Uint8()
			apply(id, status)
		}
	}
	return nil
}

func (p *Panel) loadStatusPhase(ctx context.Context) error {
	if err := p.loadEntityStatus(ctx, wire.AreaStatus, p.areas.IDs(), func(id int, status byte) {
		if a, ok := p.areas.Get(id); ok {
			a.SetStatus(model.AreaStatus(status))
		}
	}); err != nil {
		return fmt.Errorf("boschalarm: load area status: %w", err)
	}

	if err := p.loadEntityStatus(ctx, wire.PointStatus, p.points.IDs(), func(id int, status byte) {
		if pt, ok := p.points.Get(id); ok {
			pt.SetStatus(model.PointStatus(status))
		}
	}); err != nil {
		return fmt.Errorf("boschalarm: load point status: %w", err)
	}

	if p.caps.SupportsDoorSubsystem {
		if err := p.loadEntityStatus(ctx, wire.DoorStatus, p.doors.IDs(), func(id int, status byte) {
			if d, ok := p.doors.Get(id); ok {
				d.SetStatus(model.DoorStatus(status))
			}
		}); err != nil {
			return fmt.Errorf("boschalarm: load door status: %w", err)
		}
	}

	if err := p.loadOutputStatus(ctx); err != nil {
		return fmt.Errorf("boschalarm: load output status: %w", err)
	}
	if err := p.loadAlarmStatus(ctx); err != nil {
		p.log.Warn("alarm status load failed: %v", err)
	}
	if err := p.loadHistory(ctx); err != nil {
		p.log.Warn("history load failed: %v", err)
	}
	if err := p.loadFaults(ctx); err != nil {
		p.log.Warn("faults load failed: %v", err)
	}
	return nil
}

// loadOutputStatus requests the enabled-output bitmap directly (outputs
// have no per-id status record; an id present in the bitmap is Active,
// absent is Inactive), per spec.md 4.5.
func (p *Panel) loadOutputStatus(ctx context.Context) error {
	reply, err := p.send(ctx, wire.OutputStatus, nil)
	if err != nil {
		return err
	}
	active := make(map[int]bool)
	for _, id := range DecodeBitSet(reply) {
		active[id] = true
	}
	for id, out := range p.outputs.All() {
		if active[id] {
			out.SetStatus(model.OutputStatusActive)
		} else {
			out.SetStatus(model.OutputStatusInactive)
		}
	}
	return nil
}

func (p *Panel) loadAlarmStatus(ctx context.Context) error {
	if p.caps.AlarmSummaryFormat == 0 {
		return nil
	}
	var payload []byte
	if p.caps.AlarmSummaryFormat == 2 {
		payload = []byte{0x02}
	}
	reply, err := p.send(ctx, wire.AlarmMemorySummary, payload)
	if err != nil {
		return err
	}
	cur := wire.NewCursor(reply)
	for _, priority := range wire.AllAlarmPriorities {
		if cur.Len() < 2 {
			break
		}
		count := cur.Uint16BE()
		if count == 0 {
			p.clearAlarmAcrossAreas(priority)
			continue
		}
		if err := p.getAlarmsForPriority(ctx, priority, nil); err != nil {
			p.log.Warn("alarm detail load for priority %v failed: %v", priority, err)
		}
	}
	return nil
}

func (p *Panel) clearAlarmAcrossAreas(priority wire.AlarmPriority) {
	for _, a := range p.areas.All() {
		a.SetAlarm(priority, false)
	}
}

// getAlarmsForPriority walks ALARM_MEMORY_DETAIL's continuation protocol:
// a record with point==0xFFFF means "continue from (area, point)".
func (p *Panel) getAlarmsForPriority(ctx context.Context, priority wire.AlarmPriority, continuation []byte) error {
	payload := append([]byte{byte(priority)}, continuation...)
	reply, err := p.send(ctx, wire.AlarmMemoryDetail, payload)
	if err != nil {
		return err
	}
	cur := wire.NewCursor(reply)
	for cur.Len() >= 5 {
		area := cur.Uint16BE()
		typ := cur.Uint8()
		_ = typ
		point := cur.Uint16BE()
		if point == 0xFFFF {
			return p.getAlarmsForPriority(ctx, priority, wire.PutUint16BE(wire.PutUint16BE(nil, area), point))
		}
		a, ok := p.areas.Get(int(area))
		if !ok {
			p.log.Warn("alarm detail referenced unknown area %d", area)
			continue
		}
		a.SetAlarm(priority, true)
	}
	return nil
}

// loadHistory runs only when every configured area is disarmed, per
// spec.md 4.5, and drives the polled-history pagination protocol via
// history.Driver until a batch reports Done.
func (p *Panel) loadHistory(ctx context.Context) error {
	for _, a := range p.areas.All() {
		if !a.IsDisarmed() {
			return nil
		}
	}

	cursor := history.InitialCursor(p.events.LastEventID())
	for {
		payload := append([]byte{0xFF}, wire.PutUint32BE(nil, cursor)...)
		reply, err := p.send(ctx, wire.RawHistory, payload)
		if err != nil {
			return err
		}
		if len(reply) < 5 {
			return &UnexpectedResponseError{Detail: "short RAW_HISTORY reply"}
		}
		cur := wire.NewCursor(reply)
		count := int(cur.Uint8())
		startID := cur.Uint32BE()
		records := cur.Remaining()

		var lastStored time.Time
		if evs := p.events.Events(); len(evs) > 0 {
			lastStored = evs[len(evs)-1].Timestamp
		}
		batch := p.histDriver.ProcessBatch(count, startID, records, lastStored)
		for _, ev := range batch.Events {
			p.events.Append(ev)
		}
		if batch.ParseErr != nil {
			// ProcessBatch already appended a synthetic placeholder event
			// per failed record (in batch.Events, above); the latch limits
			// the warning to once per connection, same as subscribe.go.
			if p.events.LatchFailure() {
				p.log.Warn("history decode error: %v", batch.ParseErr)
			}
			if p.metrics != nil {
				p.metrics.DecodeErrors.WithLabelValues("history").Inc()
			}
		}
		cursor = batch.NextCursor
		if batch.Done {
			return nil
		}
	}
}

func (p *Panel) loadFaults(ctx context.Context) error {
	reply, err := p.send(ctx, wire.PanelSystemStatus, nil)
	if err != nil {
		return err
	}
	if len(reply) < 3 {
		return nil
	}
	bitmap := wire.GetUint16BE(reply, 1)
	p.infoMu.Lock()
	p.info.FaultsBitmap = bitmap
	p.infoMu.Unlock()
	p.FaultsObserver.Notify()
	return nil
}
