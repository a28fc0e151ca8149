package stim

// Pattern is an ordered subset of allocated stimulation units,
// expressed as indices into an allocation result (not raw electrode or
// unit ids).  Patterns encode which physical sites are simultaneously
// active for one spatial stimulation condition, so their order is
// preserved exactly in emitted command groups.
type Pattern []int

func (p Pattern) validate(units []int) error {
	for _, idx := range p {
		if idx < 0 || idx >= len(units) {
			return configErrorf("pattern index %d out of range for %d allocated units", idx, len(units))
		}
	}
	return nil
}

// PowerOn emits the power-up command group for a pattern: per unit
// index, in pattern order, power-up, connect, voltage mode, and DAC
// source 0.
func PowerOn(p Pattern, units []int) ([]Instruction, error) {
	if err := p.validate(units); err != nil {
		return nil, err
	}
	out := make([]Instruction, 0, 4*len(p))
	for _, idx := range p {
		u := units[idx]
		out = append(out,
			UnitPowerUp{Unit: u, On: true},
			UnitConnect{Unit: u, On: true},
			UnitVoltageMode{Unit: u},
			UnitDACSource{Unit: u, Source: DACChannel},
		)
	}
	return out, nil
}

// PowerOff emits one power-down instruction per unit index, in pattern
// order.
func PowerOff(p Pattern, units []int) ([]Instruction, error) {
	if err := p.validate(units); err != nil {
		return nil, err
	}
	out := make([]Instruction, 0, len(p))
	for _, idx := range p {
		out = append(out, UnitPowerUp{Unit: units[idx], On: false})
	}
	return out, nil
}

// IdentityPattern returns the pattern selecting all n allocated units
// in allocation order.
func IdentityPattern(n int) Pattern {
	p := make(Pattern, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// PowerOffAll returns commands that power down and disconnect every
// stimulation unit on the chip, regardless of allocation.  Used to
// reach a known state before sequential per-unit dispatch.
func PowerOffAll() []Instruction {
	out := make([]Instruction, 0, 2*NumStimUnits)
	for u := 0; u < NumStimUnits; u++ {
		out = append(out,
			UnitPowerUp{Unit: u, On: false},
			UnitConnect{Unit: u, On: false},
		)
	}
	return out
}
