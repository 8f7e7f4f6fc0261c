package wire

// PanelFamily is the one-byte family code returned at offset 0 of the
// WHAT_ARE_YOU reply. It governs arming-ID selection, history dialect, and
// in-flight concurrency (spec.md 4.3).
type PanelFamily byte

// Family codes and the model names they resolve to, grounded on
// bosch_alarm_mode2/const.py's PANEL_MODEL.
const (
	FamilySolution2000 PanelFamily = 0x20
	FamilySolution3000 PanelFamily = 0x21
	FamilyAmax2100     PanelFamily = 0x22
	FamilyAmax3000     PanelFamily = 0x23
	FamilyAmax4000     PanelFamily = 0x24
	FamilySolution4000 PanelFamily = 0x28
	FamilyD7412GV4     PanelFamily = 0x79
	FamilyD9412GV4     PanelFamily = 0x84
	FamilyB4512        PanelFamily = 0xA0
	FamilyB5512        PanelFamily = 0xA4
	FamilyB8512G       PanelFamily = 0xA6
	FamilyB9512G       PanelFamily = 0xA7
	FamilyB3512        PanelFamily = 0xA8
	FamilyB6512        PanelFamily = 0xA9
)

var panelModelNames = map[PanelFamily]string{
	FamilySolution2000: "Solution 2000",
	FamilySolution3000: "Solution 3000",
	FamilySolution4000: "Solution 4000",
	FamilyAmax2100:     "AMAX 2100",
	FamilyAmax3000:     "AMAX 3000",
	FamilyAmax4000:     "AMAX 4000",
	FamilyD7412GV4:     "D7412GV4",
	FamilyD9412GV4:     "D9412GV4",
	FamilyB4512:        "B4512 (US1B)",
	FamilyB5512:        "B5512 (US1B)",
	FamilyB8512G:       "B8512G (US1A)",
	FamilyB9512G:       "B9512G (US1A)",
	FamilyB3512:        "B3512 (US1B)",
	FamilyB6512:        "B6512 (US1B)",
}

// ModelName returns the human-readable panel model name, or "Unknown
// (0xNN)" if the family code isn't in the published table.
func (f PanelFamily) ModelName() string {
	if n, ok := panelModelNames[f]; ok {
		return n
	}
	return unknownModelName(f)
}

// ArmingAction codes sent with AREA_ARM, per spec.md 6.
const (
	ArmDisarm         byte = 0x01
	ArmMasterDelay    byte = 0x03
	ArmPerimeterDelay byte = 0x05
	ArmStay1          byte = 0x0A
	ArmStay2          byte = 0x0B
	ArmAway           byte = 0x0C
)

// DoorAction codes sent with SET_DOOR_STATE.
const (
	DoorNoAction         byte = 0x00
	DoorCycle            byte = 0x01
	DoorUnlock           byte = 0x02
	DoorTerminateUnlock  byte = 0x03
	DoorSecure           byte = 0x04
	DoorTerminateSecure  byte = 0x05
)

// UserType selects the automation-authenticate role.
type UserType byte

const (
	UserTypeInstallerApp UserType = 0x00
	UserTypeAutomation   UserType = 0x01
)

// AlarmPriority identifies one of the ten alarm-memory priority slots.
type AlarmPriority byte

const (
	PriorityBurglaryTrouble     AlarmPriority = 0x01
	PriorityBurglarySupervisory AlarmPriority = 0x02
	PriorityGasTrouble          AlarmPriority = 0x03
	PriorityGasSupervisory      AlarmPriority = 0x04
	PriorityFireTrouble         AlarmPriority = 0x05
	PriorityFireSupervisory     AlarmPriority = 0x06
	PriorityBurglaryAlarm       AlarmPriority = 0x07
	PriorityPersonalEmergency   AlarmPriority = 0x08
	PriorityGasAlarm            AlarmPriority = 0x09
	PriorityFireAlarm           AlarmPriority = 0x0A
)

var alarmPriorityNames = map[AlarmPriority]string{
	PriorityBurglaryTrouble:     "Burglary Trouble",
	PriorityBurglarySupervisory: "Burglary Supervisory",
	PriorityGasTrouble:          "Gas Trouble",
	PriorityGasSupervisory:      "Gas Supervisory",
	PriorityFireTrouble:         "Fire Trouble",
	PriorityFireSupervisory:     "Fire Supervisory",
	PriorityBurglaryAlarm:       "Burglary Alarm",
	PriorityPersonalEmergency:   "Personal Emergency",
	PriorityGasAlarm:            "Gas Alarm",
	PriorityFireAlarm:           "Fire Alarm",
}

func (p AlarmPriority) String() string {
	if n, ok := alarmPriorityNames[p]; ok {
		return n
	}
	return unknownPriorityName(p)
}

// TriggeringAlarmPriorities are the priorities that count toward an area's
// "triggered" predicate (spec.md 3).
var TriggeringAlarmPriorities = map[AlarmPriority]bool{
	PriorityBurglaryAlarm: true,
	PriorityGasAlarm:      true,
	PriorityFireAlarm:     true,
}

// AllAlarmPriorities lists every priority slot 1..10, in order, matching
// the iteration order used by the alarm-memory summary loader.
var AllAlarmPriorities = []AlarmPriority{
	PriorityBurglaryTrouble, PriorityBurglarySupervisory,
	PriorityGasTrouble, PriorityGasSupervisory,
	PriorityFireTrouble, PriorityFireSupervisory,
	PriorityBurglaryAlarm, PriorityPersonalEmergency,
	PriorityGasAlarm, PriorityFireAlarm,
}

// PanelFault is a bit in the 16-bit faults bitmap, per spec.md 6.
type PanelFault uint16

const (
	FaultPhoneLine           PanelFault = 1 << 1
	FaultCRCInPIF            PanelFault = 1 << 2
	FaultBatteryLow          PanelFault = 1 << 3
	FaultBatteryMissing      PanelFault = 1 << 4
	FaultACFail              PanelFault = 1 << 5
	FaultCommFailSinceHangUp PanelFault = 1 << 7
	FaultSDIFailSinceHangUp  PanelFault = 1 << 8
	FaultUserTamperSinceHangUp PanelFault = 1 << 9
	FaultFailToCallRPS       PanelFault = 1 << 10
	FaultPointBusFail        PanelFault = 1 << 13
	FaultLogOverflow         PanelFault = 1 << 14
	FaultLogThreshold        PanelFault = 1 << 15
)

var panelFaultNames = map[PanelFault]string{
	FaultPhoneLine:             "Phone line failure",
	FaultCRCInPIF:              "Parameter CRC fail in PIF",
	FaultBatteryLow:            "Battery low",
	FaultBatteryMissing:        "Battery missing",
	FaultACFail:                "AC fail",
	FaultCommFailSinceHangUp:   "Communication fail since RPS hang up",
	FaultSDIFailSinceHangUp:    "SDI fail since RPS hang up",
	FaultUserTamperSinceHangUp: "User code tamper since RPS hang up",
	FaultFailToCallRPS:         "Fail to call RPS since RPS hang up",
	FaultPointBusFail:          "Point bus fail since RPS hang up",
	FaultLogOverflow:           "Log overflow",
	FaultLogThreshold:          "Log threshold",
}

// ActiveFaults decodes a faults bitmap into its set human-readable names,
// in ascending bit order.
func ActiveFaults(bitmap uint16) []string {
	var out []string
	for bit := PanelFault(1); bit != 0; bit <<= 1 {
		if bitmap&uint16(bit) != 0 {
			if n, ok := panelFaultNames[bit]; ok {
				out = append(out, n)
			}
		}
	}
	return out
}

func unknownModelName(f PanelFamily) string {
	return "Unknown (0x" + hexByte(byte(f)) + ")"
}

func unknownPriorityName(p AlarmPriority) string {
	return "Unknown priority (0x" + hexByte(byte(p)) + ")"
}

const hexDigits = "0123456789ABCDEF"

func hexByte(b byte) string {
	return string([]byte{hexDigits[b>>4], hexDigits[b&0x0F]})
}
