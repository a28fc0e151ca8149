/*Package experiment orchestrates stimulation experiments against a
rig: system initialization, array configuration and routing, electrode
to stimulation-unit allocation, configuration download with settle
waits, offset compensation, and the dispatch of compiled sequences.

The orchestration mirrors the reference stimulation protocol: every
run brings the system to a defined state first, so behavior does not
depend on what was done with the hardware before.
*/
package experiment

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/chuhuiyu/mxstim/maxwell"
	"github.com/chuhuiyu/mxstim/stim"
	"github.com/chuhuiyu/mxstim/util"
)

// WaitFunc observes a settle wait.  The default sleeps; the CLI
// installs a spinner-wrapped version.
type WaitFunc func(d time.Duration, reason string)

// Session is one experiment run against one rig.  The event counter
// lives for the whole session and is never reset, so event ids stay
// aligned with any recording made alongside.
type Session struct {
	ID      string
	Rig     maxwell.Rig
	Cfg     Config
	Counter *stim.EventCounter

	// Wait is called for every settle delay.
	Wait WaitFunc

	// Units is the allocation result, unit ids in stim-electrode order.
	// Populated by Setup.
	Units []int

	// lsbMV is the DAC scale, queried once per session.
	lsbMV float64
}

// New creates a session around a rig.
func New(rig maxwell.Rig, cfg Config) *Session {
	return &Session{
		ID:      uuid.NewString(),
		Rig:     rig,
		Cfg:     cfg,
		Counter: stim.NewEventCounter(),
		Wait:    func(d time.Duration, _ string) { time.Sleep(d) },
	}
}

// Setup brings the system into a defined state and prepares the array:
// initialize, enable stimulation power, configure or load the array,
// allocate stimulation units, download, offset, clear events, and
// cache the DAC scale.  It must complete before any Run method.
func (s *Session) Setup() error {
	log.Printf("session %s: initializing system", s.ID)
	if err := s.Rig.Initialize(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if err := s.Rig.EnableStimulationPower(true); err != nil {
		return fmt.Errorf("enable stimulation power: %w", err)
	}

	if s.Cfg.ConfigFile != "" {
		if err := s.Rig.LoadConfig(s.Cfg.ConfigFile); err != nil {
			return fmt.Errorf("load config %s: %w", s.Cfg.ConfigFile, err)
		}
		if err := s.Rig.SelectStimulationElectrodes(s.Cfg.StimElectrodes); err != nil {
			return fmt.Errorf("select stimulation electrodes: %w", err)
		}
	} else {
		if err := s.configureArray(); err != nil {
			return err
		}
	}

	if err := s.Rig.Activate(s.Cfg.Wells); err != nil {
		return fmt.Errorf("activate wells: %w", err)
	}

	units, err := stim.AllocateStimUnits(s.Rig, s.Cfg.StimElectrodes)
	if err != nil {
		return err
	}
	s.Units = units
	log.Printf("session %s: stimulation units %s", s.ID, util.IntSliceToCSV(units))

	if err := s.Rig.Download(s.Cfg.Wells); err != nil {
		return fmt.Errorf("download: %w", err)
	}
	s.Wait(util.SecsToDuration(s.Cfg.Timing.WaitAfterDownloadSec), "downloading configuration")

	if err := s.Rig.Offset(); err != nil {
		return fmt.Errorf("offset: %w", err)
	}
	s.Wait(util.SecsToDuration(s.Cfg.Timing.WaitAfterOffsetSec), "offset compensation")

	// empty the event buffer before anything is added to it
	if err := s.Rig.ClearEvents(); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}

	lsb, err := s.Rig.QueryDACLsbMV()
	if err != nil {
		return fmt.Errorf("query DAC lsb: %w", err)
	}
	if lsb <= 0 {
		return stim.ConfigurationError{Msg: fmt.Sprintf("device reported non-positive DAC lsb %g mV", lsb)}
	}
	s.lsbMV = lsb
	return nil
}

func (s *Session) configureArray() error {
	if err := s.Rig.Reset(); err != nil {
		return fmt.Errorf("array reset: %w", err)
	}
	if err := s.Rig.ClearSelectedElectrodes(); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	if err := s.Rig.SelectElectrodes(s.Cfg.RecordingElectrodes); err != nil {
		return fmt.Errorf("select electrodes: %w", err)
	}
	if err := s.Rig.SelectStimulationElectrodes(s.Cfg.StimElectrodes); err != nil {
		return fmt.Errorf("select stimulation electrodes: %w", err)
	}
	if err := s.Rig.Route(); err != nil {
		return fmt.Errorf("route: %w", err)
	}
	return nil
}

// LsbMV returns the cached DAC scale.
func (s *Session) LsbMV() float64 {
	return s.lsbMV
}

// PowerUpAllocated powers up every allocated unit, in allocation order.
func (s *Session) PowerUpAllocated() error {
	ins, err := stim.PowerOn(stim.IdentityPattern(len(s.Units)), s.Units)
	if err != nil {
		return err
	}
	return s.Rig.SendUnitCommands(ins...)
}

// PowerOffAll powers down and disconnects every stimulation unit on
// the chip.  Also the abort path: a sequence in flight cannot be
// interrupted, but a fresh power-down pattern silences the output.
func (s *Session) PowerOffAll() error {
	return s.Rig.SendUnitCommands(stim.PowerOffAll()...)
}

func (s *Session) dispatcher() stim.Dispatcher {
	return stim.Dispatcher{
		Device:      s.Rig,
		SettleDelay: util.SecsToDuration(s.Cfg.Timing.SequentialSettleSec),
	}
}

// RunEvoked compiles the configured pulse train (with any sweeps) and
// dispatches it: simultaneously to all allocated units, or per unit
// sequentially when the config asks for it.
func (s *Session) RunEvoked() error {
	// construct the sequence only after any recording has started, so
	// events land in the recorded file
	seq, err := stim.Compile(s.Cfg.TrainParams(), s.lsbMV, s.Counter)
	if err != nil {
		return err
	}
	d := s.dispatcher()
	if s.Cfg.Sequential {
		if err := s.PowerOffAll(); err != nil {
			return err
		}
		return d.SendSequential(seq, s.Units)
	}
	if err := s.PowerUpAllocated(); err != nil {
		return err
	}
	return d.SendAll(seq, s.Cfg.NumberPulseTrains, util.SecsToDuration(s.Cfg.Timing.InterTrainWaitSec))
}

// RunRecurrent compiles and sends the variable-repetition sequence
// used for recurrent-effect experiments.
func (s *Session) RunRecurrent() error {
	seq, err := stim.CompileRecurrent(s.Cfg.RecurrentParams(), s.lsbMV, s.Counter)
	if err != nil {
		return err
	}
	if err := s.PowerUpAllocated(); err != nil {
		return err
	}
	d := s.dispatcher()
	return d.SendAll(seq, 1, 0)
}

// RunSpatial compiles the complementary-pattern sequence and sends it
// once; power cycling per pattern is embedded in the sequence itself.
func (s *Session) RunSpatial() error {
	patterns, params := s.Cfg.SpatialPatterns()
	seq, err := stim.CompilePatternTrains(patterns, s.Units, params, s.lsbMV, s.Counter)
	if err != nil {
		return err
	}
	if err := s.PowerOffAll(); err != nil {
		return err
	}
	d := s.dispatcher()
	return d.SendAll(seq, 1, 0)
}
