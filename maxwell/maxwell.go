/*Package maxwell is the boundary to the MaxWell-style MEA device
collaborator: the array routing fabric, system-level controls, and the
sequence executor.

The package exposes the hardware through narrow interfaces consumed by
the stim and experiment packages, a Client speaking the server's
CRC-framed text protocol over package comm, and a Mock used by tests
and dry runs.  The device itself (firmware, routing solver, recording
pipeline) lives on the server side and is assumed correct.
*/
package maxwell

import (
	"time"

	"github.com/chuhuiyu/mxstim/stim"
)

// Default settle delays.  These are heuristics sized for specific
// hardware behavior, not scheduling guarantees; the experiment config
// can override every one of them.
const (
	// DefaultWaitAfterDownload is the wait after downloading an array
	// configuration to the chip.
	DefaultWaitAfterDownload = 5 * time.Second

	// DefaultWaitAfterOffset is the wait for offset compensation to
	// finish after triggering it.
	DefaultWaitAfterOffset = 15 * time.Second
)

// DeviceError is returned when the device collaborator rejects a
// command or send.  It is fatal for the current run: resending a
// half-executed physical stimulation sequence is unsafe, so there is
// no automatic retry.
type DeviceError struct {
	Cmd   string
	Reply string
}

func (e DeviceError) Error() string {
	return "device rejected command " + e.Cmd + ": " + e.Reply
}

// Core is the system-level control surface.
type Core interface {
	// Initialize brings the system into a defined state.
	Initialize() error

	// EnableStimulationPower switches the global stimulation supply,
	// which is off by default after initialization.
	EnableStimulationPower(on bool) error

	// QueryDACLsbMV reports the DAC least-significant-bit voltage in
	// millivolts.  Queried once per compilation session and cached by
	// the caller.
	QueryDACLsbMV() (float64, error)

	// Offset triggers offset compensation on the amplifiers.
	Offset() error

	// ClearEvents empties the event buffer so a fresh recording starts
	// from a known stream.
	ClearEvents() error

	// Activate selects the wells subsequent operations apply to.
	Activate(wells []int) error
}

// Array configures electrode routing.  It includes stim.ArrayRouter so
// an Array can be handed directly to the allocator.
type Array interface {
	stim.ArrayRouter

	Reset() error
	ClearSelectedElectrodes() error
	SelectElectrodes(electrodes []int) error
	SelectStimulationElectrodes(electrodes []int) error

	// Route runs the routing solver over the selected electrodes.
	Route() error

	// LoadConfig restores a previously saved array configuration in
	// place of selection + routing.
	LoadConfig(path string) error

	// Download sends the prepared configuration to the chip for the
	// given wells.
	Download(wells []int) error
}

// Rig bundles the full collaborator surface an experiment drives.
// stim.Device covers sequence and standalone unit command delivery.
type Rig interface {
	Core
	Array
	stim.Device
}
