package experiment_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chuhuiyu/mxstim/experiment"
)

const cfgYaml = `Addr: 192.168.1.50:7215
Wells: [0]
RecordingElectrodes: [4885, 4666]
StimElectrodes: [3580, 4887]
NumberPulseTrains: 1
Timing:
  WaitAfterDownloadSec: 5
  WaitAfterOffsetSec: 15
  InterTrainWaitSec: 10
  SequentialSettleSec: 2
Train:
  PulsesPerTrain: 10
  InterPulseInterval: 20000
  AmplitudeMV: 100
  PhaseSamples: 2
  AmplitudeSweep:
    Max: 700
    Step: 100
  PhaseSweep:
    Max: 10
    Step: 2
`

func TestLoadYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiment.yml")
	if err := os.WriteFile(path, []byte(cfgYaml), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := experiment.LoadYaml(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != "192.168.1.50:7215" {
		t.Errorf("unexpected addr %q", cfg.Addr)
	}
	if cfg.Train.AmplitudeSweep == nil || cfg.Train.AmplitudeSweep.Max != 700 {
		t.Errorf("amplitude sweep not decoded: %#v", cfg.Train.AmplitudeSweep)
	}
	if cfg.Train.PhaseSweep == nil || cfg.Train.PhaseSweep.Step != 2 {
		t.Errorf("phase sweep not decoded: %#v", cfg.Train.PhaseSweep)
	}

	p := cfg.TrainParams()
	if p.AmplitudeSweep == nil || p.AmplitudeSweep.Max != 700 || p.AmplitudeSweep.Step != 100 {
		t.Errorf("train params lost the amplitude sweep: %#v", p.AmplitudeSweep)
	}
}

func TestLoadYamlMissingFile(t *testing.T) {
	if _, err := experiment.LoadYaml("/nonexistent/experiment.yml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestSweepAbsentWhenOmitted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiment.yml")
	minimal := "Train:\n  PulsesPerTrain: 1\n  AmplitudeMV: 100\n  PhaseSamples: 2\n"
	if err := os.WriteFile(path, []byte(minimal), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := experiment.LoadYaml(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Train.AmplitudeSweep != nil || cfg.Train.PhaseSweep != nil {
		t.Error("sweeps must be absent when not configured; there is no boolean to disagree with")
	}
}

func TestDefaultConfigCompiles(t *testing.T) {
	cfg := experiment.DefaultConfig()
	if cfg.Train.PulsesPerTrain != 10 {
		t.Errorf("expected reference default of 10 pulses per train, got %d", cfg.Train.PulsesPerTrain)
	}
	if len(cfg.StimElectrodes) == 0 || len(cfg.RecordingElectrodes) == 0 {
		t.Error("default config must carry the reference electrode selection")
	}
}
