/*Package comm provides the remote-device transport used to talk to a
MaxWell-style MEA server.

The server speaks a newline-terminated text protocol over TCP.  Some
rigs also expose an RS232 sync/trigger link, so a serial transport is
available behind the same type.  Most usages boil down to:

	rd := comm.NewRemoteDevice("192.168.1.50:7215", false)
	err := rd.Open()
	if err != nil { ... }
	defer rd.Close()
	resp, err := rd.SendRecv([]byte("system_version"))

The device is not concurrent-safe; the stimulation control flow is
single-threaded by design and commands must stay ordered.
*/
package comm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/tarm/serial"
)

const terminator = byte('\n')

var (
	// ErrNotConnected is generated when Conn is nil and Send or Recv is called.
	ErrNotConnected = errors.New("conn is nil, not connected to remote")

	// ErrTerminatorNotFound is generated when the termination byte is not found in a response
	ErrTerminatorNotFound = errors.New("termination byte not found")
)

// RemoteDevice has an address and order-preserving Send/Recv over a
// line-terminated text link.
type RemoteDevice struct {
	Addr     string
	IsSerial bool
	Timeout  time.Duration
	Conn     io.ReadWriteCloser
}

// NewRemoteDevice creates a new RemoteDevice instance.  serial selects
// the RS232 transport; otherwise Addr is dialed over TCP.
func NewRemoteDevice(addr string, serial bool) RemoteDevice {
	return RemoteDevice{
		Addr:     addr,
		IsSerial: serial,
		Timeout:  3 * time.Second}
}

// SerialConf yields a serial config for use with serial.OpenPort.
// 115200 8N1, the rate used by the sync link.
func (rd *RemoteDevice) SerialConf() *serial.Config {
	return &serial.Config{
		Name:        rd.Addr,
		Baud:        115200,
		ReadTimeout: rd.Timeout}
}

// Open the connection, setting the Conn variable
func (rd *RemoteDevice) Open() error {
	// exponential backoff on connect; the vendor server refuses
	// connections briefly while a chip configuration is downloading
	wasTimeout := false
	op := func() error {
		err := rd.open()
		if err != nil {
			errS := strings.ToLower(err.Error())
			if strings.Contains(errS, "refused") {
				return err
			}
			wasTimeout = true
			return nil
		}
		return nil
	}

	// backoff ceases on a timeout so we don't wait forever; check
	// wasTimeout separately
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      3 * time.Second,
		Clock:               backoff.SystemClock})
	if err == nil && !wasTimeout {
		return nil
	}
	if wasTimeout {
		return fmt.Errorf("connection timeout to %s", rd.Addr)
	}
	return err
}

func (rd *RemoteDevice) open() error {
	var (
		conn io.ReadWriteCloser
		err  error
	)
	if rd.IsSerial {
		conn, err = serial.OpenPort(rd.SerialConf())
	} else {
		conn, err = TCPSetup(rd.Addr, rd.Timeout)
	}
	if err != nil {
		return err
	}
	rd.Conn = conn
	return nil
}

// Close the connection, nil-ing the Conn variable
func (rd *RemoteDevice) Close() error {
	if rd.Conn == nil {
		return nil
	}
	err := rd.Conn.Close()
	if err == nil {
		rd.Conn = nil
	}
	return err
}

// Send writes data to the remote, appending the line terminator
func (rd *RemoteDevice) Send(b []byte) error {
	if rd.Conn == nil {
		return ErrNotConnected
	}
	b = append(b, terminator)
	_, err := rd.Conn.Write(b)
	return err
}

// Recv receives one reply line from the remote with the terminator stripped
func (rd *RemoteDevice) Recv() ([]byte, error) {
	if rd.Conn == nil {
		return nil, ErrNotConnected
	}
	buf, err := bufio.NewReader(rd.Conn).ReadBytes(terminator)
	if err != nil {
		return []byte{}, err
	}
	if bytes.HasSuffix(buf, []byte{terminator}) {
		idx := bytes.IndexByte(buf, terminator)
		return buf[:idx], nil
	}
	return buf, ErrTerminatorNotFound
}

// SendRecv sends a command line, then returns the single reply line
func (rd *RemoteDevice) SendRecv(b []byte) ([]byte, error) {
	if err := rd.Send(b); err != nil {
		return []byte{}, err
	}
	return rd.Recv()
}

// TCPSetup opens a new TCP connection and sets a timeout on connect, read, and write
func TCPSetup(addr string, timeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	conn.SetReadDeadline(deadline)
	conn.SetWriteDeadline(deadline)
	return conn, nil
}
