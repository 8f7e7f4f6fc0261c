package model

import (
	"fmt"
	"sync"
)

// PointStatus is the wire-exact point status byte, per spec.md 3/6.
type PointStatus byte

const (
	PointStatusUnassigned PointStatus = 0x00
	PointStatusShort      PointStatus = 0x01
	PointStatusOpen       PointStatus = 0x02
	PointStatusNormal     PointStatus = 0x03
	PointStatusMissing    PointStatus = 0x04
	PointStatusResistor2  PointStatus = 0x05
	PointStatusResistor3  PointStatus = 0x06
	PointStatusUnknown    PointStatus = 0xFF
)

var pointStatusNames = map[PointStatus]string{
	PointStatusUnassigned: "Unassigned",
	PointStatusShort:      "Short",
	PointStatusOpen:       "Open",
	PointStatusNormal:     "Normal",
	PointStatusMissing:    "Missing",
	PointStatusResistor2:  "Resistor 2",
	PointStatusResistor3:  "Resistor 3",
	PointStatusUnknown:    "Unknown",
}

func (s PointStatus) String() string {
	if n, ok := pointStatusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Unknown(0x%02x)", byte(s))
}

// Point is a monitored sensor circuit.
type Point struct {
	ID   int
	Name string

	mu     sync.RWMutex
	status PointStatus

	StatusObserver Observable
}

// NewPoint constructs a point with status Unknown.
func NewPoint(id int, name string) *Point {
	return &Point{ID: id, Name: name, status: PointStatusUnknown}
}

func (p *Point) Status() PointStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

func (p *Point) SetStatus(s PointStatus) {
	p.mu.Lock()
	changed := p.status != s
	p.status = s
	p.mu.Unlock()
	if changed {
		p.StatusObserver.Notify()
	}
}

// IsOpen reports whether the point reads Short or Open, per spec.md 3.
func (p *Point) IsOpen() bool {
	s := p.Status()
	return s == PointStatusShort || s == PointStatusOpen
}

// Reset returns the point to status Unknown.
func (p *Point) Reset() { p.SetStatus(PointStatusUnknown) }

func (p *Point) String() string {
	return fmt.Sprintf("%s: %s", p.Name, p.Status())
}
