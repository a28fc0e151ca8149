package experiment

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/chuhuiyu/mxstim/stim"
)

// Timing holds the hardware settle delays, in seconds.  These are
// heuristic waits sized for specific hardware behavior, not scheduling
// guarantees, which is why every one of them is configurable rather
// than a constant.
type Timing struct {
	// WaitAfterDownloadSec is the wait after downloading the array
	// configuration to the chip.
	WaitAfterDownloadSec float64 `yaml:"WaitAfterDownloadSec"`

	// WaitAfterOffsetSec is the wait for offset compensation to settle.
	// Set it larger if the recording software needs more time.
	WaitAfterOffsetSec float64 `yaml:"WaitAfterOffsetSec"`

	// InterTrainWaitSec is the wall-clock wait between repeated sends
	// of the same sequence.
	InterTrainWaitSec float64 `yaml:"InterTrainWaitSec"`

	// SequentialSettleSec is the wait after powering a unit down in
	// sequential dispatch.
	SequentialSettleSec float64 `yaml:"SequentialSettleSec"`
}

// SweepConfig mirrors stim.Sweep for the config file.  Presence of the
// section enables the sweep; there is no separate boolean to fall out
// of sync with the bounds.
type SweepConfig struct {
	Max  int `yaml:"Max"`
	Step int `yaml:"Step"`
}

// TrainConfig holds the pulse train parameters.
type TrainConfig struct {
	PulsesPerTrain     int          `yaml:"PulsesPerTrain"`
	InterPulseInterval int          `yaml:"InterPulseInterval"`
	AmplitudeMV        int          `yaml:"AmplitudeMV"`
	PhaseSamples       int          `yaml:"PhaseSamples"`
	AmplitudeSweep     *SweepConfig `yaml:"AmplitudeSweep,omitempty"`
	PhaseSweep         *SweepConfig `yaml:"PhaseSweep,omitempty"`
}

// RecurrentConfig holds the variable-repetition mode parameters.
type RecurrentConfig struct {
	Trains             int `yaml:"Trains"`
	InterPulseInterval int `yaml:"InterPulseInterval"`
	InterTrainInterval int `yaml:"InterTrainInterval"`
	AmplitudeMV        int `yaml:"AmplitudeMV"`
	PhaseSamples       int `yaml:"PhaseSamples"`
}

// SpatialConfig holds the pattern stimulation parameters.  Patterns
// are indices into the allocation result, in activation order.
type SpatialConfig struct {
	Patterns           [][]int `yaml:"Patterns"`
	Repetitions        int     `yaml:"Repetitions"`
	InterPulseInterval int     `yaml:"InterPulseInterval"`
	AmplitudeMV        int     `yaml:"AmplitudeMV"`
	PhaseSamples       int     `yaml:"PhaseSamples"`
}

// Config is the full experiment description, to be populated from a
// yaml file.
type Config struct {
	// Addr is the device server address, host:port for TCP or a
	// device path for serial.
	Addr string `yaml:"Addr"`

	// Serial selects the RS232 transport instead of TCP.
	Serial bool `yaml:"Serial"`

	// Mock replaces the device with an in-memory rig; useful to check
	// a config and sequence structure without hardware.
	Mock bool `yaml:"Mock"`

	// Wells to activate; a single-well system uses [0].
	Wells []int `yaml:"Wells"`

	// ConfigFile is a previously saved array configuration on the
	// server host.  When set, it is loaded instead of selecting and
	// routing the electrode lists.
	ConfigFile string `yaml:"ConfigFile,omitempty"`

	// RecordingElectrodes and StimElectrodes select the array sites.
	// At most 1024 recording and 32 stimulation electrodes can be
	// chosen, and no two stimulation electrodes may share a unit.
	RecordingElectrodes []int `yaml:"RecordingElectrodes"`
	StimElectrodes      []int `yaml:"StimElectrodes"`

	// NumberPulseTrains is the repetition count for simultaneous
	// dispatch.
	NumberPulseTrains int `yaml:"NumberPulseTrains"`

	// Sequential replays the sequence per unit with power cycling
	// instead of sending to all units at once.
	Sequential bool `yaml:"Sequential"`

	Timing    Timing          `yaml:"Timing"`
	Train     TrainConfig     `yaml:"Train"`
	Recurrent RecurrentConfig `yaml:"Recurrent"`
	Spatial   SpatialConfig   `yaml:"Spatial"`
}

// DefaultConfig returns the baseline configuration: 10 pulses of
// 200 mV with 200 us phases at 10 Hz-ish spacing, 5 trains, values
// from the reference protocol.
func DefaultConfig() Config {
	return Config{
		Addr:  "localhost:7215",
		Wells: []int{0},
		RecordingElectrodes: []int{
			4885, 4666, 4886, 4022, 5327, 5328, 5106, 5326, 3138, 3140, 2919,
			5105, 4667, 4448, 5109, 4669, 4665, 3798, 4021, 3141, 4668, 4240,
			3363, 3803, 3580, 3801, 2921, 3799, 4239, 3359, 3142, 3797, 3361,
		},
		StimElectrodes:    []int{3580, 4887},
		NumberPulseTrains: 5,
		Timing: Timing{
			WaitAfterDownloadSec: 5,
			WaitAfterOffsetSec:   15,
			InterTrainWaitSec:    10,
			SequentialSettleSec:  2,
		},
		Train: TrainConfig{
			PulsesPerTrain:     10,
			InterPulseInterval: 2000,
			AmplitudeMV:        200,
			PhaseSamples:       4,
		},
		Recurrent: RecurrentConfig{
			Trains:             4,
			InterPulseInterval: 8000,
			InterTrainInterval: 20000,
			AmplitudeMV:        100,
			PhaseSamples:       2,
		},
		Spatial: SpatialConfig{
			Patterns:           [][]int{{0}, {1}},
			Repetitions:        30,
			InterPulseInterval: 20000,
			AmplitudeMV:        150,
			PhaseSamples:       4,
		},
	}
}

// LoadYaml converts a (path to a) yaml file into a Config struct
func LoadYaml(path string) (Config, error) {
	cfg := Config{}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&cfg)
	return cfg, err
}

// TrainParams converts the config section to compiler inputs.
func (c Config) TrainParams() stim.TrainParams {
	p := stim.TrainParams{
		PulsesPerTrain:     c.Train.PulsesPerTrain,
		InterPulseInterval: c.Train.InterPulseInterval,
		AmplitudeMV:        c.Train.AmplitudeMV,
		PhaseSamples:       c.Train.PhaseSamples,
	}
	if c.Train.AmplitudeSweep != nil {
		p.AmplitudeSweep = &stim.Sweep{Max: c.Train.AmplitudeSweep.Max, Step: c.Train.AmplitudeSweep.Step}
	}
	if c.Train.PhaseSweep != nil {
		p.PhaseSweep = &stim.Sweep{Max: c.Train.PhaseSweep.Max, Step: c.Train.PhaseSweep.Step}
	}
	return p
}

// RecurrentParams converts the config section to compiler inputs.
func (c Config) RecurrentParams() stim.RecurrentParams {
	return stim.RecurrentParams{
		Trains:             c.Recurrent.Trains,
		InterPulseInterval: c.Recurrent.InterPulseInterval,
		InterTrainInterval: c.Recurrent.InterTrainInterval,
		AmplitudeMV:        c.Recurrent.AmplitudeMV,
		PhaseSamples:       c.Recurrent.PhaseSamples,
	}
}

// SpatialPatterns converts the config section to compiler inputs.
func (c Config) SpatialPatterns() ([]stim.Pattern, stim.PatternTrainParams) {
	patterns := make([]stim.Pattern, len(c.Spatial.Patterns))
	for i, p := range c.Spatial.Patterns {
		patterns[i] = stim.Pattern(p)
	}
	return patterns, stim.PatternTrainParams{
		Repetitions:        c.Spatial.Repetitions,
		InterPulseInterval: c.Spatial.InterPulseInterval,
		AmplitudeMV:        c.Spatial.AmplitudeMV,
		PhaseSamples:       c.Spatial.PhaseSamples,
	}
}
