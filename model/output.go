package model

import (
	"fmt"
	"sync"
)

// OutputStatus is the wire-exact output status byte, per spec.md 3/6.
type OutputStatus byte

const (
	OutputStatusInactive OutputStatus = 0x00
	OutputStatusActive   OutputStatus = 0x01
	OutputStatusUnknown  OutputStatus = 0x02
)

func (s OutputStatus) String() string {
	switch s {
	case OutputStatusInactive:
		return "Inactive"
	case OutputStatusActive:
		return "Active"
	case OutputStatusUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", byte(s))
	}
}

// Output is a controllable relay or logical output.
type Output struct {
	ID   int
	Name string

	mu     sync.RWMutex
	status OutputStatus

	StatusObserver Observable
}

// NewOutput constructs an output with status Unknown.
func NewOutput(id int, name string) *Output {
	return &Output{ID: id, Name: name, status: OutputStatusUnknown}
}

func (o *Output) Status() OutputStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

func (o *Output) SetStatus(s OutputStatus) {
	o.mu.Lock()
	changed := o.status != s
	o.status = s
	o.mu.Unlock()
	if changed {
		o.StatusObserver.Notify()
	}
}

// Reset returns the output to status Unknown.
func (o *Output) Reset() { o.SetStatus(OutputStatusUnknown) }

func (o *Output) String() string {
	return fmt.Sprintf("%s: %s", o.Name, o.Status())
}
