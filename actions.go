package boschalarm

import (
	"context"
	"fmt"
	"time"

	"github.com/patchwell/boschalarm/wire"
)

// areaArm sends AREA_ARM with [arm_type][area_bitmap], where the bitmap
// is the big-endian encoding EncodeBitSet produces, per spec.md 4.8.
func (p *Panel) areaArm(ctx context.Context, id int, action byte) error {
	numBytes := (id + 7) / 8
	payload := append([]byte{action}, EncodeBitSet([]int{id}, numBytes)...)
	_, err := p.send(ctx, wire.AreaArm, payload)
	return err
}

// AreaDisarm disarms the area identified by id.
func (p *Panel) AreaDisarm(ctx context.Context, id int) error {
	return p.areaArm(ctx, id, wire.ArmDisarm)
}

// AreaArmPart arms the area in stay/perimeter mode, per the panel's
// negotiated partial-arm action code.
func (p *Panel) AreaArmPart(ctx context.Context, id int) error {
	if p.caps.ArmPartial == 0 {
		return &ConfigurationError{Reason: "panel does not support partial arming"}
	}
	return p.areaArm(ctx, id, p.caps.ArmPartial)
}

// AreaArmAll fully arms (away) the area identified by id.
func (p *Panel) AreaArmAll(ctx context.Context, id int) error {
	if p.caps.ArmAll == 0 {
		return &ConfigurationError{Reason: "panel does not support away arming"}
	}
	return p.areaArm(ctx, id, p.caps.ArmAll)
}

// SetOutputActive/SetOutputInactive send SET_OUTPUT_STATE with a one-byte
// id and a one-byte action; the action byte reuses the OUTPUT_STATUS
// encoding (0x01 Active, 0x00 Inactive) since spec.md 6 documents no
// distinct action table for outputs.
func (p *Panel) SetOutputActive(ctx context.Context, id int) error {
	return p.setOutputState(ctx, id, 0x01)
}

func (p *Panel) SetOutputInactive(ctx context.Context, id int) error {
	return p.setOutputState(ctx, id, 0x00)
}

func (p *Panel) setOutputState(ctx context.Context, id int, action byte) error {
	if id < 0 || id > 0xFF {
		return &ConfigurationError{Reason: "output id must fit in one byte"}
	}
	_, err := p.send(ctx, wire.SetOutputState, []byte{byte(id), action})
	return err
}

func (p *Panel) doorAction(ctx context.Context, id int, action byte) error {
	if id < 0 || id > 0xFF {
		return &ConfigurationError{Reason: "door id must fit in one byte"}
	}
	_, err := p.send(ctx, wire.SetDoorState, []byte{byte(id), action})
	return err
}

func (p *Panel) DoorUnlock(ctx context.Context, id int) error  { return p.doorAction(ctx, id, wire.DoorUnlock) }
func (p *Panel) DoorCycle(ctx context.Context, id int) error   { return p.doorAction(ctx, id, wire.DoorCycle) }
func (p *Panel) DoorRelock(ctx context.Context, id int) error  { return p.doorAction(ctx, id, wire.DoorTerminateUnlock) }
func (p *Panel) DoorSecure(ctx context.Context, id int) error  { return p.doorAction(ctx, id, wire.DoorSecure) }
func (p *Panel) DoorUnsecure(ctx context.Context, id int) error {
	return p.doorAction(ctx, id, wire.DoorTerminateSecure)
}

// SetPanelDate writes the panel's clock, encoding [month, day, year-2000,
// hour, minute] after validating 2010 <= year <= 2037, per spec.md 4.8.
func (p *Panel) SetPanelDate(ctx context.Context, t time.Time) error {
	year := t.Year()
	if year < 2010 || year > 2037 {
		return &ConfigurationError{Reason: fmt.Sprintf("year %d out of range [2010, 2037]", year)}
	}
	payload := []byte{
		byte(t.Month()),
		byte(t.Day()),
		byte(year - 2000),
		byte(t.Hour()),
		byte(t.Minute()),
	}
	_, err := p.send(ctx, wire.SetDateTime, payload)
	return err
}

// GetPanelDate reads the panel's clock. The year field is interpreted as
// 2000+n, consistent with SetPanelDate's encoding.
func (p *Panel) GetPanelDate(ctx context.Context) (time.Time, error) {
	reply, err := p.send(ctx, wire.RequestDateTime, nil)
	if err != nil {
		return time.Time{}, err
	}
	if len(reply) < 5 {
		return time.Time{}, &UnexpectedResponseError{Detail: "short panel date reply"}
	}
	month := time.Month(reply[0])
	day := int(reply[1])
	year := 2000 + int(reply[2])
	hour := int(reply[3])
	minute := int(reply[4])
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC), nil
}
