package model

import "github.com/patchwell/boschalarm/wire"

// PanelInfo holds the panel-identifying data gathered during capability
// negotiation and the extended-info load phase, per spec.md 3.
type PanelInfo struct {
	Model           wire.PanelFamily
	ProtocolVersion string // "vA.B"
	FirmwareVersion string // "vA.B", empty if not read
	SerialNumber    uint64 // 48-bit; zero if not read/not supported
	HasSerialNumber bool
	FaultsBitmap    uint16
}

// ActiveFaults decodes FaultsBitmap into its set human-readable names.
func (p PanelInfo) ActiveFaults() []string {
	return wire.ActiveFaults(p.FaultsBitmap)
}
