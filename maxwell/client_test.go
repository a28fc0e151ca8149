package maxwell_test

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/chuhuiyu/mxstim/maxwell"
	"github.com/chuhuiyu/mxstim/stim"
)

// serveScript runs a one-connection server that checks each inbound
// frame and replies from the handler.
func serveScript(t *testing.T, handler func(cmd string) string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			cmd, err := maxwell.CheckFrame(sc.Text())
			if err != nil {
				conn.Write([]byte(maxwell.MakeFrame("Error bad frame") + "\n"))
				continue
			}
			conn.Write([]byte(maxwell.MakeFrame(handler(cmd)) + "\n"))
		}
	}()
	return ln.Addr().String()
}

func TestClientQueryDACLsb(t *testing.T) {
	addr := serveScript(t, func(cmd string) string {
		if cmd == "system_query_dac_lsb" {
			return "Ok 2.9"
		}
		return "Ok"
	})
	c := maxwell.NewClient(addr, false)
	if err := c.Open(); err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	lsb, err := c.QueryDACLsbMV()
	if err != nil {
		t.Fatal(err)
	}
	if lsb != 2.9 {
		t.Errorf("expected 2.9 mV/bit, got %g", lsb)
	}
}

func TestClientDeviceError(t *testing.T) {
	addr := serveScript(t, func(cmd string) string {
		return "Error stimulation power supply fault"
	})
	c := maxwell.NewClient(addr, false)
	if err := c.Open(); err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	err := c.EnableStimulationPower(true)
	var devErr maxwell.DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("expected DeviceError, got %v", err)
	}
	if !strings.Contains(devErr.Reply, "power supply fault") {
		t.Errorf("expected server reply surfaced, got %q", devErr.Reply)
	}
}

func TestClientQueryStimulationAtElectrode(t *testing.T) {
	addr := serveScript(t, func(cmd string) string {
		switch cmd {
		case "array_query_stimulation 3580":
			return "Ok 7"
		case "array_query_stimulation 4887":
			return "Ok" // nothing routed
		}
		return "Ok"
	})
	c := maxwell.NewClient(addr, false)
	if err := c.Open(); err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	unit, ok, err := c.QueryStimulationAtElectrode(3580)
	if err != nil || !ok || unit != 7 {
		t.Errorf("expected unit 7, got unit=%d ok=%t err=%v", unit, ok, err)
	}
	_, ok, err = c.QueryStimulationAtElectrode(4887)
	if err != nil || ok {
		t.Errorf("expected no unit for 4887, got ok=%t err=%v", ok, err)
	}
}

func TestClientSendSequence(t *testing.T) {
	var cmds []string
	addr := serveScript(t, func(cmd string) string {
		cmds = append(cmds, cmd)
		return "Ok"
	})
	c := maxwell.NewClient(addr, false)
	if err := c.Open(); err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	seq := &stim.Sequence{}
	stim.AppendPulse(seq, 34, 4, stim.NewEventCounter())
	if err := c.SendSequence(seq); err != nil {
		t.Fatal(err)
	}
	if cmds[0] != "seq_new" {
		t.Errorf("expected upload to start with seq_new, got %q", cmds[0])
	}
	if cmds[len(cmds)-1] != "seq_send" {
		t.Errorf("expected upload to end with seq_send, got %q", cmds[len(cmds)-1])
	}
	// 6 instructions between the bookends
	if len(cmds) != 8 {
		t.Errorf("expected 8 commands, got %d: %v", len(cmds), cmds)
	}
}

func TestMockSatisfiesRig(t *testing.T) {
	var _ maxwell.Rig = maxwell.NewMock()
}

func TestMockRoutingAndAllocation(t *testing.T) {
	m := maxwell.NewMock()
	units, err := stim.AllocateStimUnits(m, []int{3580, 4887})
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 2 || units[0] == units[1] {
		t.Errorf("expected two distinct units, got %v", units)
	}

	m2 := maxwell.NewMock()
	m2.ForcedUnits[100] = 5
	m2.ForcedUnits[200] = 5
	_, err = stim.AllocateStimUnits(m2, []int{100, 200})
	var dup stim.DuplicateUnitError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateUnitError, got %v", err)
	}

	m3 := maxwell.NewMock()
	m3.Unroutable[300] = true
	_, err = stim.AllocateStimUnits(m3, []int{300})
	var missing stim.NoUnitAvailableError
	if !errors.As(err, &missing) {
		t.Fatalf("expected NoUnitAvailableError, got %v", err)
	}
}
