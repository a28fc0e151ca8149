package stim

// Instruction is one atomic hardware directive.  It is a closed sum;
// the only implementations live in this package, and consumers at the
// dispatch boundary switch over them exhaustively.
type Instruction interface {
	isInstruction()
}

// SetDAC programs a DAC channel with a code in [DACMin, DACMax].
type SetDAC struct {
	Channel int
	Value   int
}

// Delay holds the current output for Samples sample periods.
type Delay struct {
	Samples int
}

// Event is a tagged marker written to the event stream of the recording
// so that stimulation conditions can be re-identified offline.  Label
// embeds the amplitude (in DAC bits) and the event id; both must stay
// recoverable from the text.
type Event struct {
	Channel int
	Kind    int
	ID      int
	Label   string
}

// UnitPowerUp powers a stimulation unit up or down.
type UnitPowerUp struct {
	Unit int
	On   bool
}

// UnitConnect connects or disconnects a stimulation unit from its electrode.
type UnitConnect struct {
	Unit int
	On   bool
}

// UnitVoltageMode puts a stimulation unit's buffer in voltage mode.
type UnitVoltageMode struct {
	Unit int
}

// UnitDACSource selects which DAC channel drives a stimulation unit.
type UnitDACSource struct {
	Unit   int
	Source int
}

func (SetDAC) isInstruction()          {}
func (Delay) isInstruction()           {}
func (Event) isInstruction()           {}
func (UnitPowerUp) isInstruction()     {}
func (UnitConnect) isInstruction()     {}
func (UnitVoltageMode) isInstruction() {}
func (UnitDACSource) isInstruction()   {}

// Sequence is an append-only ordered list of instructions.  Replay
// order on the device equals append order.
type Sequence struct {
	instrs []Instruction
}

// Append adds instructions to the end of the sequence.
func (s *Sequence) Append(ins ...Instruction) {
	s.instrs = append(s.instrs, ins...)
}

// Instructions returns the instructions in append order.  The returned
// slice aliases the sequence's storage and must not be mutated.
func (s *Sequence) Instructions() []Instruction {
	return s.instrs
}

// Len returns the number of instructions in the sequence.
func (s *Sequence) Len() int {
	return len(s.instrs)
}
