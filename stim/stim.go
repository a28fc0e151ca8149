/*Package stim compiles high-level stimulation pulse train parameters into
ordered low-level instruction sequences for MaxWell-style microelectrode
array hardware.

The package is pure computation with three exceptions: the Dispatcher
talks to a device, and the delays it observes are wall-clock sleeps.
Everything else (unit conversion, electrode allocation, pulse encoding,
sequence compilation, pattern power commands) builds in-memory
Sequence values that are only later handed to hardware.

Ordering is load-bearing throughout.  Offline analysis reconstructs the
experimental condition of each recorded event purely from its ordinal
position in the event stream, so the enumeration order of sweeps and
patterns documented on Compile and CompilePatternTrains is a wire
contract, not an implementation detail.
*/
package stim

import "time"

const (
	// ZeroLevel is the DAC code corresponding to zero volts.  The DACs
	// are 10 bit, and the stimulation buffers in voltage mode behave as
	// inverting amplifiers, so ZeroLevel-n is a positive voltage of n
	// bits and ZeroLevel+n a negative one.
	ZeroLevel = 512

	// DACMin and DACMax bound the codes accepted by the device.
	DACMin = 0
	DACMax = 1023

	// MaxAmplitudeBits is the largest pulse amplitude, in DAC bits, that
	// keeps both phases of a biphasic pulse within [DACMin, DACMax].
	MaxAmplitudeBits = DACMax - ZeroLevel

	// DACChannel is the shared DAC source all stimulation units are
	// programmed from in this package.
	DACChannel = 0

	// NumStimUnits is the number of physical stimulation units on the chip.
	NumStimUnits = 32

	// SamplePeriod is the wall-clock duration of one sample; Delay{n}
	// holds the DAC for n*SamplePeriod.
	SamplePeriod = 50 * time.Microsecond
)
