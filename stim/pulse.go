package stim

import "fmt"

const (
	// eventChannel and eventKindStimulus are the fixed event routing
	// used for stimulation markers.
	eventChannel      = 0
	eventKindStimulus = 1
)

// AppendPulse appends one symmetric biphasic pulse to the sequence:
// an event marker, the negative phase, the positive phase, and the
// return to ZeroLevel, with equal phase delays on both half-phases.
//
// The counter is incremented exactly once, before use, so event ids are
// strictly increasing across an entire compiled sequence including
// across swept conditions.  amplitudeBits is in DAC bits; callers are
// expected to have validated it against MaxAmplitudeBits.
func AppendPulse(seq *Sequence, amplitudeBits, phaseSamples int, ctr *EventCounter) {
	id := ctr.Next()
	seq.Append(
		Event{
			Channel: eventChannel,
			Kind:    eventKindStimulus,
			ID:      id,
			Label:   fmt.Sprintf("amplitude %d event_id %d", amplitudeBits, id),
		},
		SetDAC{Channel: DACChannel, Value: ZeroLevel - amplitudeBits},
		Delay{Samples: phaseSamples},
		SetDAC{Channel: DACChannel, Value: ZeroLevel + amplitudeBits},
		Delay{Samples: phaseSamples},
		SetDAC{Channel: DACChannel, Value: ZeroLevel},
	)
}
