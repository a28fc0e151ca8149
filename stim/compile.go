package stim

import "github.com/chuhuiyu/mxstim/util"

// Sweep describes a half-open range over one pulse parameter.  The
// swept values are base, base+Step, ... strictly less than Max.  Note
// that Max itself is never emitted; a sweep from 100 to 700 by 100
// yields 100..600, six values, not seven.  This matches the
// enumeration already baked into collected datasets and is
// deliberately not "fixed".
type Sweep struct {
	// Max is the exclusive upper bound, in the units of the swept axis.
	Max int

	// Step is the increment between values; must be positive.
	Step int
}

// TrainParams are the inputs to Compile.
type TrainParams struct {
	// PulsesPerTrain is the number of pulse repetitions per condition.
	PulsesPerTrain int

	// InterPulseInterval is the delay appended after every pulse, in
	// samples.  The same value is used once more as the train gap after
	// each swept condition.
	InterPulseInterval int

	// AmplitudeMV is the pulse amplitude in millivolts, or the sweep
	// start when AmplitudeSweep is set.
	AmplitudeMV int

	// PhaseSamples is the duration of each half-phase in samples, or
	// the sweep start when PhaseSweep is set.
	PhaseSamples int

	// AmplitudeSweep, if non-nil, sweeps the amplitude in millivolts.
	AmplitudeSweep *Sweep

	// PhaseSweep, if non-nil, sweeps the phase duration in samples.
	PhaseSweep *Sweep
}

func validateSweep(name string, base int, sw *Sweep) error {
	if sw == nil {
		return nil
	}
	if sw.Step <= 0 || sw.Max == 0 {
		return configErrorf("%s sweep requires a positive step and a max value, got max %d step %d", name, sw.Max, sw.Step)
	}
	if sw.Max <= base {
		return configErrorf("%s sweep [%d, %d) is empty", name, base, sw.Max)
	}
	return nil
}

func (p TrainParams) validate() error {
	if p.PulsesPerTrain < 1 {
		return configErrorf("pulses per train must be at least 1, got %d", p.PulsesPerTrain)
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
	if err := validateSweep("amplitude", p.AmplitudeMV, p.AmplitudeSweep); err != nil {
		return err
	}
	return validateSweep("phase", p.PhaseSamples, p.PhaseSweep)
}

// sweepValues enumerates one axis: just the base when the sweep is
// absent, the half-open range otherwise.
func sweepValues(base int, sw *Sweep) []int {
	if sw == nil {
		return []int{base}
	}
	return util.Arange(base, sw.Max, sw.Step)
}

// amplitudesToBits converts each swept amplitude to DAC bits, one
// conversion per sweep value, and bounds-checks the result so that no
// out-of-range DAC code can reach a sequence.
func amplitudesToBits(ampsMV []int, lsbMV float64) ([]int, error) {
	out := make([]int, len(ampsMV))
	for i, mv := range ampsMV {
		bits, err := ToDACBits(float64(mv), lsbMV)
		if err != nil {
			return nil, err
		}
		if bits > MaxAmplitudeBits {
			return nil, configErrorf("amplitude %d mV is %d DAC bits, above the maximum of %d", mv, bits, MaxAmplitudeBits)
		}
		out[i] = bits
	}
	return out, nil
}

/*Compile builds a complete stimulation sequence from train parameters.

Enumeration order is the contract downstream analysis depends on:

	for each amplitude value (outer):
	  for each phase value (inner):
	    PulsesPerTrain pulses, each followed by the inter-pulse delay
	    one additional inter-pulse delay as the train gap

With no sweeps there is a single condition and no train gap.  With one
sweep the other axis contributes a single value, so the nesting above
degenerates to the expected flat loop.  Amplitude is converted to DAC
bits once per sweep value with truncating division.

All validation happens before the first instruction is emitted; on
error the returned sequence is nil, never partially filled.
*/
func Compile(p TrainParams, lsbMV float64, ctr *EventCounter) (*Sequence, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	ampBits, err := amplitudesToBits(sweepValues(p.AmplitudeMV, p.AmplitudeSweep), lsbMV)
	if err != nil {
		return nil, err
	}
	phases := sweepValues(p.PhaseSamples, p.PhaseSweep)
	swept := p.AmplitudeSweep != nil || p.PhaseSweep != nil

	seq := &Sequence{}
	for _, bits := range ampBits {
		for _, phase := range phases {
			for i := 0; i < p.PulsesPerTrain; i++ {
				AppendPulse(seq, bits, phase, ctr)
				seq.Append(Delay{Samples: p.InterPulseInterval})
			}
			if swept {
				seq.Append(Delay{Samples: p.InterPulseInterval})
			}
		}
	}
	return seq, nil
}

// RecurrentParams are the inputs to CompileRecurrent.
type RecurrentParams struct {
	// Trains is the number of trains; train k (0-indexed) repeats its
	// pulse k+1 times.
	Trains int

	// InterPulseInterval is the delay after each pulse, in samples.
	InterPulseInterval int

	// InterTrainInterval is the train gap, in samples; two consecutive
	// gap delays are emitted after every train.
	InterTrainInterval int

	// AmplitudeMV is the pulse amplitude in millivolts.
	AmplitudeMV int

	// PhaseSamples is the half-phase duration in samples.
	PhaseSamples int
}

func (p RecurrentParams) validate() error {
	if p.Trains < 1 {
		return configErrorf("number of trains must be at least 1, got %d", p.Trains)
	}
	if p.InterPulseInterval < 0 || p.InterTrainInterval < 0 {
		return configErrorf("intervals must be non-negative, got inter-pulse %d inter-train %d", p.InterPulseInterval, p.InterTrainInterval)
	}
	if p.AmplitudeMV < 0 {
		return configErrorf("amplitude must be non-negative, got %d mV", p.AmplitudeMV)
	}
	if p.PhaseSamples < 0 {
		return configErrorf("phase must be non-negative, got %d samples", p.PhaseSamples)
	}
	return nil
}

// CompileRecurrent builds the variable-repetition sequence used for
// recurrent-effect experiments.  It is deliberately a separate
// operation from Compile: train k contains k+1 pulses, and each train
// is followed by two inter-train delays, a structure that does not fit
// the fixed-repetition enumeration.
func CompileRecurrent(p RecurrentParams, lsbMV float64, ctr *EventCounter) (*Sequence, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	bits, err := amplitudesToBits([]int{p.AmplitudeMV}, lsbMV)
	if err != nil {
		return nil, err
	}

	seq := &Sequence{}
	for train := 0; train < p.Trains; train++ {
		for rep := 0; rep <= train; rep++ {
			AppendPulse(seq, bits[0], p.PhaseSamples, ctr)
			seq.Append(Delay{Samples: p.InterPulseInterval})
		}
		seq.Append(
			Delay{Samples: p.InterTrainInterval},
			Delay{Samples: p.InterTrainInterval},
		)
	}
	return seq, nil
}
