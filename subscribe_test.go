package boschalarm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patchwell/boschalarm/model"
	"github.com/patchwell/boschalarm/wire"
)

func TestSubscriptionHistoryRecordLen(t *testing.T) {
	record := make([]byte, 23)
	record = wire.PutUint16BE(record, 3) // text_len at offset 23
	record = append(record, []byte("abc")...)

	n, err := subscriptionHistoryRecordLen(record)
	assert.NoError(t, err)
	assert.Equal(t, 28, n)
}

func TestSubscriptionHistoryRecordLenTruncated(t *testing.T) {
	_, err := subscriptionHistoryRecordLen(make([]byte, 10))
	assert.Error(t, err)
}

func TestHandleNotificationAreaStatus(t *testing.T) {
	p := New(Config{Addr: "panel.local:7700"}, testLog())
	p.areas.Set(1, model.NewArea(1, "Front"))

	body := []byte{0x04, 0x01, 0x00, 0x01, byte(model.AreaStatusDisarmed)}
	p.handleNotification(body)

	a, ok := p.areas.Get(1)
	assert.True(t, ok)
	assert.Equal(t, model.AreaStatusDisarmed, a.Status())
}

func TestHandleNotificationPointAndDoorStatus(t *testing.T) {
	p := New(Config{Addr: "panel.local:7700"}, testLog())
	p.points.Set(2, model.NewPoint(2, "Window"))
	p.doors.Set(3, model.NewDoor(3, "Lobby"))

	body := []byte{
		0x07, 0x01, 0x00, 0x02, byte(model.PointStatusOpen),
		0x08, 0x01, 0x00, 0x03, byte(model.DoorStatusUnlocked),
	}
	p.handleNotification(body)

	pt, _ := p.points.Get(2)
	assert.Equal(t, model.PointStatusOpen, pt.Status())
	d, _ := p.doors.Get(3)
	assert.Equal(t, model.DoorStatusUnlocked, d.Status())
}

func TestHandleNotificationAreaReady(t *testing.T) {
	p := New(Config{Addr: "panel.local:7700"}, testLog())
	p.areas.Set(1, model.NewArea(1, "Front"))

	body := []byte{0x05, 0x01, 0x00, 0x01, byte(model.AreaReadyAll), 0x00, 0x02}
	p.handleNotification(body)

	a, _ := p.areas.Get(1)
	assert.Equal(t, model.AreaReadyAll, a.Ready())
	assert.Equal(t, 2, a.Faults())
}

func TestHandleNotificationEventMemorySummaryZeroCountClearsAlarm(t *testing.T) {
	p := New(Config{Addr: "panel.local:7700"}, testLog())
	a := model.NewArea(1, "Front")
	a.SetAlarm(wire.PriorityFireAlarm, true)
	p.areas.Set(1, a)

	body := []byte{0x01, 0x01, byte(wire.PriorityFireAlarm), 0x00, 0x00}
	p.handleNotification(body)

	assert.Empty(t, a.Alarms())
}

func TestHandleNotificationPanelSystemStatus(t *testing.T) {
	p := New(Config{Addr: "panel.local:7700"}, testLog())
	body := []byte{0x0A, 0x01, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00}
	p.handleNotification(body)
	assert.Contains(t, p.PanelFaults(), "Battery low")
}

func TestHandleNotificationUnknownUpdateTypeStopsCleanly(t *testing.T) {
	p := New(Config{Addr: "panel.local:7700"}, testLog())
	assert.NotPanics(t, func() {
		p.handleNotification([]byte{0xEE, 0x01})
	})
}
