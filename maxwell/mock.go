package maxwell

import (
	"fmt"
	"sync"

	"github.com/chuhuiyu/mxstim/stim"
)

// Mock is an in-memory Rig for tests and dry runs.  Routing assigns
// units in ascending order as electrodes connect; tests can force
// specific assignments or routing failures through ForcedUnits and
// Unroutable.
type Mock struct {
	sync.Mutex

	// LsbMV is the reported DAC least-significant-bit voltage.
	LsbMV float64

	// ForcedUnits overrides routing for specific electrodes, e.g. to
	// provoke duplicate-unit allocation failures.
	ForcedUnits map[int]int

	// Unroutable marks electrodes no stimulation channel can reach.
	Unroutable map[int]bool

	// Sent collects every sequence handed to SendSequence, in order.
	Sent []*stim.Sequence

	// UnitCommands collects every standalone unit command, in order.
	UnitCommands []stim.Instruction

	initialized bool
	stimPower   bool
	offsetRuns  int
	eventClears int
	wells       []int
	selected    []int
	stimSel     []int
	routed      bool
	configPath  string
	downloaded  bool
	routing     map[int]int
	nextUnit    int
}

// NewMock returns a Mock with the reference 2.9 mV/bit scale.
func NewMock() *Mock {
	return &Mock{
		LsbMV:       2.9,
		ForcedUnits: map[int]int{},
		Unroutable:  map[int]bool{},
		routing:     map[int]int{},
	}
}

// Initialize satisfies Core.
func (m *Mock) Initialize() error {
	m.Lock()
	defer m.Unlock()
	m.initialized = true
	return nil
}

// EnableStimulationPower satisfies Core.
func (m *Mock) EnableStimulationPower(on bool) error {
	m.Lock()
	defer m.Unlock()
	if !m.initialized {
		return DeviceError{Cmd: "system_stimulation_power", Reply: "system not initialized"}
	}
	m.stimPower = on
	return nil
}

// QueryDACLsbMV satisfies Core.
func (m *Mock) QueryDACLsbMV() (float64, error) {
	m.Lock()
	defer m.Unlock()
	return m.LsbMV, nil
}

// Offset satisfies Core.
func (m *Mock) Offset() error {
	m.Lock()
	defer m.Unlock()
	m.offsetRuns++
	return nil
}

// ClearEvents satisfies Core.
func (m *Mock) ClearEvents() error {
	m.Lock()
	defer m.Unlock()
	m.eventClears++
	return nil
}

// Activate satisfies Core.
func (m *Mock) Activate(wells []int) error {
	m.Lock()
	defer m.Unlock()
	m.wells = append([]int(nil), wells...)
	return nil
}

// Reset satisfies Array.
func (m *Mock) Reset() error {
	m.Lock()
	defer m.Unlock()
	m.selected = nil
	m.stimSel = nil
	m.routed = false
	m.routing = map[int]int{}
	m.nextUnit = 0
	return nil
}

// ClearSelectedElectrodes satisfies Array.
func (m *Mock) ClearSelectedElectrodes() error {
	m.Lock()
	defer m.Unlock()
	m.selected = nil
	return nil
}

// SelectElectrodes satisfies Array.
func (m *Mock) SelectElectrodes(electrodes []int) error {
	m.Lock()
	defer m.Unlock()
	m.selected = append([]int(nil), electrodes...)
	return nil
}

// SelectStimulationElectrodes satisfies Array.
func (m *Mock) SelectStimulationElectrodes(electrodes []int) error {
	m.Lock()
	defer m.Unlock()
	m.stimSel = append([]int(nil), electrodes...)
	return nil
}

// Route satisfies Array.
func (m *Mock) Route() error {
	m.Lock()
	defer m.Unlock()
	m.routed = true
	return nil
}

// LoadConfig satisfies Array.
func (m *Mock) LoadConfig(path string) error {
	m.Lock()
	defer m.Unlock()
	m.configPath = path
	m.routed = true
	return nil
}

// ConnectElectrodeToStimulation satisfies stim.ArrayRouter.
func (m *Mock) ConnectElectrodeToStimulation(electrode int) error {
	m.Lock()
	defer m.Unlock()
	if m.Unroutable[electrode] {
		return nil // connect "succeeds"; the query reports no unit
	}
	if _, ok := m.routing[electrode]; ok {
		return nil
	}
	if forced, ok := m.ForcedUnits[electrode]; ok {
		m.routing[electrode] = forced
		return nil
	}
	m.routing[electrode] = m.nextUnit
	m.nextUnit++
	return nil
}

// QueryStimulationAtElectrode satisfies stim.ArrayRouter.
func (m *Mock) QueryStimulationAtElectrode(electrode int) (int, bool, error) {
	m.Lock()
	defer m.Unlock()
	unit, ok := m.routing[electrode]
	return unit, ok, nil
}

// Download satisfies Array.
func (m *Mock) Download(wells []int) error {
	m.Lock()
	defer m.Unlock()
	if !m.routed {
		return DeviceError{Cmd: "array_download", Reply: "no routed configuration"}
	}
	m.downloaded = true
	return nil
}

// SendSequence satisfies stim.SequenceSender.  The marshal pass mirrors
// the real client so a sequence that cannot be serialized fails the
// same way against the mock.
func (m *Mock) SendSequence(seq *stim.Sequence) error {
	m.Lock()
	defer m.Unlock()
	for _, ins := range seq.Instructions() {
		if _, err := MarshalInstruction(ins); err != nil {
			return err
		}
	}
	m.Sent = append(m.Sent, seq)
	return nil
}

// SendUnitCommands satisfies stim.UnitCommander.
func (m *Mock) SendUnitCommands(ins ...stim.Instruction) error {
	m.Lock()
	defer m.Unlock()
	m.UnitCommands = append(m.UnitCommands, ins...)
	return nil
}

// Downloaded reports whether a configuration reached the chip.
func (m *Mock) Downloaded() bool {
	m.Lock()
	defer m.Unlock()
	return m.downloaded
}

// String summarizes the mock state for test failure messages.
func (m *Mock) String() string {
	m.Lock()
	defer m.Unlock()
	return fmt.Sprintf("Mock{init=%t power=%t routed=%t downloaded=%t sent=%d}",
		m.initialized, m.stimPower, m.routed, m.downloaded, len(m.Sent))
}
