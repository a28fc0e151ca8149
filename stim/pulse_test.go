package stim_test

import (
	"fmt"
	"testing"

	"github.com/chuhuiyu/mxstim/stim"
)

func TestAppendPulseShape(t *testing.T) {
	seq := &stim.Sequence{}
	ctr := stim.NewEventCounter()
	stim.AppendPulse(seq, 34, 4, ctr)

	ins := seq.Instructions()
	if len(ins) != 6 {
		t.Fatalf("expected 6 instructions per pulse, got %d", len(ins))
	}

	ev, ok := ins[0].(stim.Event)
	if !ok {
		t.Fatalf("instruction 0: expected Event, got %T", ins[0])
	}
	if ev.ID != 2 {
		t.Errorf("first event id should be the counter's initial value + 1 = 2, got %d", ev.ID)
	}

	neg, ok := ins[1].(stim.SetDAC)
	if !ok || neg.Value != stim.ZeroLevel-34 {
		t.Errorf("instruction 1: expected SetDAC to %d, got %#v", stim.ZeroLevel-34, ins[1])
	}
	d1, ok := ins[2].(stim.Delay)
	if !ok || d1.Samples != 4 {
		t.Errorf("instruction 2: expected Delay{4}, got %#v", ins[2])
	}
	pos, ok := ins[3].(stim.SetDAC)
	if !ok || pos.Value != stim.ZeroLevel+34 {
		t.Errorf("instruction 3: expected SetDAC to %d, got %#v", stim.ZeroLevel+34, ins[3])
	}
	d2, ok := ins[4].(stim.Delay)
	if !ok || d2.Samples != 4 {
		t.Errorf("instruction 4: expected Delay{4}, got %#v", ins[4])
	}
	ret, ok := ins[5].(stim.SetDAC)
	if !ok || ret.Value != stim.ZeroLevel {
		t.Errorf("instruction 5: expected SetDAC back to %d, got %#v", stim.ZeroLevel, ins[5])
	}
}

func TestAppendPulseSymmetricPhases(t *testing.T) {
	seq := &stim.Sequence{}
	stim.AppendPulse(seq, 10, 15, stim.NewEventCounter())
	ins := seq.Instructions()
	a := ins[2].(stim.Delay)
	b := ins[4].(stim.Delay)
	if a.Samples != b.Samples {
		t.Errorf("biphasic pulse phases must be equal, got %d and %d", a.Samples, b.Samples)
	}
}

func TestEventLabelRecoverable(t *testing.T) {
	seq := &stim.Sequence{}
	ctr := stim.NewEventCounter()
	stim.AppendPulse(seq, 68, 2, ctr)

	ev := seq.Instructions()[0].(stim.Event)
	var amplitude, id int
	if _, err := fmt.Sscanf(ev.Label, "amplitude %d event_id %d", &amplitude, &id); err != nil {
		t.Fatalf("label %q not parseable: %v", ev.Label, err)
	}
	if amplitude != 68 {
		t.Errorf("expected amplitude 68 in label, got %d", amplitude)
	}
	if id != ev.ID {
		t.Errorf("label event id %d disagrees with instruction id %d", id, ev.ID)
	}
}

func TestCounterIncrementsOncePerPulse(t *testing.T) {
	seq := &stim.Sequence{}
	ctr := stim.NewEventCounter()
	for i := 0; i < 5; i++ {
		stim.AppendPulse(seq, 1, 1, ctr)
	}
	if ctr.Value() != 6 {
		t.Errorf("expected counter at 6 after 5 pulses from 1, got %d", ctr.Value())
	}
}

func TestIndependentCounters(t *testing.T) {
	a := stim.NewEventCounter()
	b := stim.NewEventCounter()
	a.Next()
	a.Next()
	if b.Value() != 1 {
		t.Errorf("counters must be independent, second counter moved to %d", b.Value())
	}
}
