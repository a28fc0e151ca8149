package maxwell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/snksoft/crc"

	"github.com/chuhuiyu/mxstim/stim"
)

// frameSep separates the payload from its checksum field.
const frameSep = '*'

var crcTable = crc.NewTable(crc.XMODEM)

// MakeFrame appends a CRC-CCITT (XMODEM) checksum field to a command
// payload: "<payload>*XXXX" with the checksum in upper-case hex.  The
// link to the server crosses lab ethernet shared with acquisition
// traffic; the checksum lets either side detect corrupted commands
// before they reach a chip.
func MakeFrame(payload string) string {
	sum := uint16(crcTable.CalculateCRC([]byte(payload)))
	return fmt.Sprintf("%s%c%04X", payload, frameSep, sum)
}

// CheckFrame verifies the checksum field of a frame and returns the
// payload with the field stripped.
func CheckFrame(frame string) (string, error) {
	idx := strings.LastIndexByte(frame, frameSep)
	if idx < 0 {
		return "", fmt.Errorf("frame separator %c not found in %q", frameSep, frame)
	}
	payload := frame[:idx]
	sumRecv, err := strconv.ParseUint(frame[idx+1:], 16, 16)
	if err != nil {
		return "", fmt.Errorf("malformed checksum field in %q: %w", frame, err)
	}
	sum := uint16(crcTable.CalculateCRC([]byte(payload)))
	if sum != uint16(sumRecv) {
		return "", fmt.Errorf("CRC mismatch on %q: computed %04X, received %04X", frame, sum, sumRecv)
	}
	return payload, nil
}

func onOff(b bool) int {
	if b {
		return 1
	}
	return 0
}

// MarshalInstruction renders one instruction in the server's command
// grammar.  The type switch is exhaustive over the closed instruction
// set; an instruction type this package does not know cannot be sent
// and is an error, never silently dropped.
func MarshalInstruction(ins stim.Instruction) (string, error) {
	switch v := ins.(type) {
	case stim.SetDAC:
		return fmt.Sprintf("seq_dac %d %d", v.Channel, v.Value), nil
	case stim.Delay:
		return fmt.Sprintf("seq_delay %d", v.Samples), nil
	case stim.Event:
		return fmt.Sprintf("seq_event %d %d %d %q", v.Channel, v.Kind, v.ID, v.Label), nil
	case stim.UnitPowerUp:
		return fmt.Sprintf("unit %d power_up %d", v.Unit, onOff(v.On)), nil
	case stim.UnitConnect:
		return fmt.Sprintf("unit %d connect %d", v.Unit, onOff(v.On)), nil
	case stim.UnitVoltageMode:
		return fmt.Sprintf("unit %d voltage_mode", v.Unit), nil
	case stim.UnitDACSource:
		return fmt.Sprintf("unit %d dac_source %d", v.Unit, v.Source), nil
	default:
		return "", fmt.Errorf("instruction type %T has no wire representation", ins)
	}
}
