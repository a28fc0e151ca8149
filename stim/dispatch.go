package stim

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"
)

// SequenceSender accepts a complete compiled sequence.  The device
// executes it autonomously at the fixed sample rate; the call blocks
// until the driver acknowledges the handoff, not until playback ends.
type SequenceSender interface {
	SendSequence(seq *Sequence) error
}

// UnitCommander accepts standalone unit-level commands outside a
// sequence.
type UnitCommander interface {
	SendUnitCommands(ins ...Instruction) error
}

// Device is the dispatch boundary to the hardware collaborator.
type Device interface {
	SequenceSender
	UnitCommander
}

// Dispatcher replays compiled sequences against a device.  There is no
// cancellation: once a sequence is handed over it runs to completion,
// and the only recourse is to stop waiting and send a fresh power-down
// pattern afterwards.
type Dispatcher struct {
	Device Device

	// SettleDelay is the wait after powering a unit down in
	// SendSequential.  Heuristic, sized for the hardware, and
	// configurable for that reason.
	SettleDelay time.Duration
}

// SendAll replays the same already-compiled sequence repetitions times,
// spacing sends by interSendDelay.  The spacing is best effort
// wall-clock time in the calling process, not a hardware guarantee; if
// tight inter-train timing is needed, compile one larger sequence
// instead of relying on this loop.
func (d *Dispatcher) SendAll(seq *Sequence, repetitions int, interSendDelay time.Duration) error {
	if repetitions < 1 {
		return configErrorf("repetitions must be at least 1, got %d", repetitions)
	}
	var lim *rate.Limiter
	if interSendDelay > 0 {
		lim = rate.NewLimiter(rate.Every(interSendDelay), 1)
	}
	for i := 0; i < repetitions; i++ {
		if lim != nil {
			// in-flight sequences cannot be cancelled, so neither is the gap
			lim.Wait(context.Background())
		}
		log.Printf("sending pulse train %d/%d", i+1, repetitions)
		if err := d.Device.SendSequence(seq); err != nil {
			return err
		}
	}
	return nil
}

// SendSequential replays the sequence once per unit, power-cycling so
// that only one physical channel is active at a time even though the
// sequence addresses the shared DAC channel: power the unit up, send,
// power it down, wait SettleDelay.
func (d *Dispatcher) SendSequential(seq *Sequence, units []int) error {
	for _, u := range units {
		log.Printf("power up stimulation unit %d", u)
		err := d.Device.SendUnitCommands(
			UnitPowerUp{Unit: u, On: true},
			UnitConnect{Unit: u, On: true},
			UnitVoltageMode{Unit: u},
			UnitDACSource{Unit: u, Source: DACChannel},
		)
		if err != nil {
			return err
		}
		if err := d.Device.SendSequence(seq); err != nil {
			return err
		}
		log.Printf("power down stimulation unit %d", u)
		if err := d.Device.SendUnitCommands(UnitPowerUp{Unit: u, On: false}); err != nil {
			return err
		}
		time.Sleep(d.SettleDelay)
	}
	return nil
}
