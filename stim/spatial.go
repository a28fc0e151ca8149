package stim

// PatternTrainParams are the inputs to CompilePatternTrains.
type PatternTrainParams struct {
	// Repetitions is the number of pulses delivered per pattern.
	Repetitions int

	// InterPulseInterval is the delay after each pulse, in samples.
	InterPulseInterval int

	// AmplitudeMV is the pulse amplitude in millivolts.
	AmplitudeMV int

	// PhaseSamples is the half-phase duration in samples.
	PhaseSamples int
}

func (p PatternTrainParams) validate() error {
	if p.Repetitions < 1 {
		return configErrorf("repetitions must be at least 1, got %d", p.Repetitions)
	}
	if p.InterPulseInterval < 0 {
		return configErrorf("inter-pulse interval must be non-negative, got %d samples", p.InterPulseInterval)
	}
	if p.AmplitudeMV < 0 {
		return configErrorf("amplitude must be non-negative, got %d mV", p.AmplitudeMV)
	}
	if p.PhaseSamples < 0 {
		return configErrorf("phase must be non-negative, got %d samples", p.PhaseSamples)
	}
	return nil
}

// CompilePatternTrains builds one sequence that cycles through spatial
// patterns.  Patterns are enumerated in slice order, and for each
// pattern every repetition embeds the full power cycle:
//
//	power-on pattern commands
//	one pulse
//	the inter-pulse delay
//	power-off pattern commands
//
// so only the sites of the active pattern are powered when its pulse
// fires, even though all units share one DAC channel.
func CompilePatternTrains(patterns []Pattern, units []int, p PatternTrainParams, lsbMV float64, ctr *EventCounter) (*Sequence, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	for _, pat := range patterns {
		if err := pat.validate(units); err != nil {
			return nil, err
		}
	}
	bits, err := amplitudesToBits([]int{p.AmplitudeMV}, lsbMV)
	if err != nil {
		return nil, err
	}

	seq := &Sequence{}
	for _, pat := range patterns {
		on, _ := PowerOn(pat, units)
		off, _ := PowerOff(pat, units)
		for rep := 0; rep < p.Repetitions; rep++ {
			seq.Append(on...)
			AppendPulse(seq, bits[0], p.PhaseSamples, ctr)
			seq.Append(Delay{Samples: p.InterPulseInterval})
			seq.Append(off...)
		}
	}
	return seq, nil
}

// PatternScheduleParams are the inputs to CompilePatternSchedule.
type PatternScheduleParams struct {
	// StepInterval is the delay after each schedule step, in samples.
	StepInterval int

	// GroupSize, when positive, groups the schedule into runs of this
	// many steps; after each complete group the GroupGaps delays are
	// appended in order.  Used to separate encoded inputs (one group
	// per input) in the recorded event stream.
	GroupSize int

	// GroupGaps are the delays emitted after each group, in samples.
	GroupGaps []int

	// AmplitudeMV is the pulse amplitude in millivolts.
	AmplitudeMV int

	// PhaseSamples is the half-phase duration in samples.
	PhaseSamples int
}

func (p PatternScheduleParams) validate() error {
	if p.StepInterval < 0 {
		return configErrorf("step interval must be non-negative, got %d samples", p.StepInterval)
	}
	if p.GroupSize < 0 {
		return configErrorf("group size must be non-negative, got %d", p.GroupSize)
	}
	for _, g := range p.GroupGaps {
		if g < 0 {
			return configErrorf("group gaps must be non-negative, got %d samples", g)
		}
	}
	if p.AmplitudeMV < 0 {
		return configErrorf("amplitude must be non-negative, got %d mV", p.AmplitudeMV)
	}
	if p.PhaseSamples < 0 {
		return configErrorf("phase must be non-negative, got %d samples", p.PhaseSamples)
	}
	return nil
}

// CompilePatternSchedule builds a sequence from an explicit, ordered
// pattern schedule, one pulse per step: power-on the step's pattern,
// pulse, power-off, then the step interval.  This is the form used to
// drive the array with pre-encoded inputs, where each schedule entry is
// one timestep of the encoding.
func CompilePatternSchedule(schedule []Pattern, units []int, p PatternScheduleParams, lsbMV float64, ctr *EventCounter) (*Sequence, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	for _, pat := range schedule {
		if err := pat.validate(units); err != nil {
			return nil, err
		}
	}
	bits, err := amplitudesToBits([]int{p.AmplitudeMV}, lsbMV)
	if err != nil {
		return nil, err
	}

	seq := &Sequence{}
	for i, pat := range schedule {
		on, _ := PowerOn(pat, units)
		off, _ := PowerOff(pat, units)
		seq.Append(on...)
		AppendPulse(seq, bits[0], p.PhaseSamples, ctr)
		seq.Append(off...)
		seq.Append(Delay{Samples: p.StepInterval})
		if p.GroupSize > 0 && (i+1)%p.GroupSize == 0 {
			for _, gap := range p.GroupGaps {
				seq.Append(Delay{Samples: gap})
			}
		}
	}
	return seq, nil
}
