package wire

// Command codes used by the core, per spec.md 6. Grounded on
// bosch_alarm_mode2/const.py's CMD class.
const (
	WhatAreYou          byte = 0x01
	Authenticate        byte = 0x06
	RequestPermission   byte = 0x07
	AlarmMemorySummary  byte = 0x08
	SetDateTime         byte = 0x11
	RequestDateTime     byte = 0x12
	RawHistory          byte = 0x15
	PanelSystemStatus   byte = 0x20
	AlarmMemoryDetail   byte = 0x23
	ConfiguredAreas     byte = 0x24
	AreaStatus          byte = 0x26
	AreaArm             byte = 0x27
	AreaText            byte = 0x29
	ConfiguredDoors     byte = 0x2B
	DoorStatus          byte = 0x2C
	SetDoorState        byte = 0x2D
	DoorText            byte = 0x2E
	ConfiguredOutputs   byte = 0x30
	OutputStatus        byte = 0x31
	SetOutputState      byte = 0x32
	OutputText          byte = 0x33
	ConfiguredPoints    byte = 0x35
	PointStatus         byte = 0x38
	PointText           byte = 0x3C
	LoginRemoteUser     byte = 0x3E
	ProductSerial       byte = 0x4A
	SetSubscription     byte = 0x5F
	RawHistoryExtended  byte = 0x63
)

// CmdRequestMax is the per-command record-count ceiling a status loader
// must respect (the panel silently truncates replies that exceed it),
// grounded on const.py's CMD_REQUEST_MAX.
var CmdRequestMax = map[byte]int{
	AreaStatus:   50,
	DoorStatus:   32,
	OutputStatus: 600,
	PointStatus:  66,
}
