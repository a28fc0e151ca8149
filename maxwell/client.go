package maxwell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chuhuiyu/mxstim/comm"
	"github.com/chuhuiyu/mxstim/stim"
	"github.com/chuhuiyu/mxstim/util"
)

// replyOK is the prefix of every accepted command's reply.
const replyOK = "Ok"

// Client implements Rig against a remote MaxWell-style server over a
// comm.RemoteDevice.  Commands are newline-terminated, CRC-framed text;
// each command receives one reply line, "Ok[ data]" on success or an
// error description otherwise.
//
// The client is not concurrent-safe.  Stimulation control flow is
// single-threaded and command order is semantically significant.
type Client struct {
	comm.RemoteDevice
}

// NewClient returns a Client for the server at addr.  serial selects
// the RS232 transport instead of TCP.
func NewClient(addr string, serial bool) *Client {
	return &Client{RemoteDevice: comm.NewRemoteDevice(addr, serial)}
}

// command sends one framed command and validates the reply, returning
// any data after the Ok token.
func (c *Client) command(cmd string) (string, error) {
	resp, err := c.SendRecv([]byte(MakeFrame(cmd)))
	if err != nil {
		return "", fmt.Errorf("%s: %w", cmd, err)
	}
	payload, err := CheckFrame(string(resp))
	if err != nil {
		return "", fmt.Errorf("%s: %w", cmd, err)
	}
	if payload != replyOK && !strings.HasPrefix(payload, replyOK+" ") {
		return "", DeviceError{Cmd: cmd, Reply: payload}
	}
	return strings.TrimSpace(strings.TrimPrefix(payload, replyOK)), nil
}

func (c *Client) run(cmd string) error {
	_, err := c.command(cmd)
	return err
}

// Initialize brings the remote system into a defined state.
func (c *Client) Initialize() error {
	return c.run("system_initialize")
}

// EnableStimulationPower switches the global stimulation supply.
func (c *Client) EnableStimulationPower(on bool) error {
	return c.run(fmt.Sprintf("system_stimulation_power %d", onOff(on)))
}

// QueryDACLsbMV reports the DAC least-significant-bit voltage.
func (c *Client) QueryDACLsbMV() (float64, error) {
	data, err := c.command("system_query_dac_lsb")
	if err != nil {
		return 0, err
	}
	lsb, err := strconv.ParseFloat(data, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable DAC lsb reply %q: %w", data, err)
	}
	return lsb, nil
}

// Offset triggers offset compensation.
func (c *Client) Offset() error {
	return c.run("system_offset")
}

// ClearEvents empties the event buffer.
func (c *Client) ClearEvents() error {
	return c.run("system_clear_events")
}

// Activate selects the wells subsequent operations apply to.
func (c *Client) Activate(wells []int) error {
	return c.run("system_activate " + util.IntSliceToCSV(wells))
}

// Reset resets the array configuration on the server.
func (c *Client) Reset() error {
	return c.run("array_reset")
}

// ClearSelectedElectrodes clears the electrode selection.
func (c *Client) ClearSelectedElectrodes() error {
	return c.run("array_clear_selection")
}

// SelectElectrodes selects recording electrodes.
func (c *Client) SelectElectrodes(electrodes []int) error {
	return c.run("array_select " + util.IntSliceToCSV(electrodes))
}

// SelectStimulationElectrodes selects stimulation electrodes.
func (c *Client) SelectStimulationElectrodes(electrodes []int) error {
	return c.run("array_select_stimulation " + util.IntSliceToCSV(electrodes))
}

// Route runs the routing solver over the selected electrodes.
func (c *Client) Route() error {
	return c.run("array_route")
}

// LoadConfig restores a saved array configuration from a file on the
// server host.
func (c *Client) LoadConfig(path string) error {
	return c.run("array_load_config " + path)
}

// ConnectElectrodeToStimulation asks the routing fabric to connect an
// electrode to a stimulation channel.
func (c *Client) ConnectElectrodeToStimulation(electrode int) error {
	return c.run(fmt.Sprintf("array_connect_stimulation %d", electrode))
}

// QueryStimulationAtElectrode reports the stimulation unit routed to an
// electrode.  An empty data field means no unit could be connected.
func (c *Client) QueryStimulationAtElectrode(electrode int) (int, bool, error) {
	data, err := c.command(fmt.Sprintf("array_query_stimulation %d", electrode))
	if err != nil {
		return 0, false, err
	}
	if data == "" {
		return 0, false, nil
	}
	unit, err := strconv.Atoi(data)
	if err != nil {
		return 0, false, fmt.Errorf("unparseable stimulation unit reply %q: %w", data, err)
	}
	return unit, true, nil
}

// Download sends the prepared configuration to the chip.
func (c *Client) Download(wells []int) error {
	return c.run("array_download " + util.IntSliceToCSV(wells))
}

// SendSequence transfers a compiled sequence and starts autonomous
// execution.  The sequence is uploaded instruction by instruction into
// a fresh server-side buffer and then committed; the server rejects the
// commit if any append was lost, so a partial sequence never runs.
func (c *Client) SendSequence(seq *stim.Sequence) error {
	if err := c.run("seq_new"); err != nil {
		return err
	}
	for _, ins := range seq.Instructions() {
		line, err := MarshalInstruction(ins)
		if err != nil {
			return err
		}
		if err := c.run(line); err != nil {
			return err
		}
	}
	return c.run("seq_send")
}

// SendUnitCommands issues standalone unit-level commands outside a
// sequence.
func (c *Client) SendUnitCommands(ins ...stim.Instruction) error {
	for _, in := range ins {
		line, err := MarshalInstruction(in)
		if err != nil {
			return err
		}
		if err := c.run(line); err != nil {
			return err
		}
	}
	return nil
}
