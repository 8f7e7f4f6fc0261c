package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointIsOpen(t *testing.T) {
	p := NewPoint(1, "Front Door Contact")
	assert.False(t, p.IsOpen())
	p.SetStatus(PointStatusShort)
	assert.True(t, p.IsOpen())
	p.SetStatus(PointStatusOpen)
	assert.True(t, p.IsOpen())
	p.SetStatus(PointStatusNormal)
	assert.False(t, p.IsOpen())
}

func TestDoorIsOpen(t *testing.T) {
	d := NewDoor(1, "Lobby")
	assert.False(t, d.IsOpen())
	d.SetStatus(DoorStatusCycling)
	assert.True(t, d.IsOpen())
	d.SetStatus(DoorStatusUnlocked)
	assert.True(t, d.IsOpen())
	d.SetStatus(DoorStatusLocked)
	assert.False(t, d.IsOpen())
}

func TestCollectionPersistsAcrossReset(t *testing.T) {
	c := NewCollection[*Point]()
	c.Set(1, NewPoint(1, "Foyer"))
	c.Set(2, NewPoint(2, "Garage"))
	c.byID[1].SetStatus(PointStatusOpen)

	c.ResetAll()
	assert.Equal(t, 2, c.Len())
	p, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, PointStatusUnknown, p.Status())
}
