package comm

import (
	"bytes"
	"errors"
	"testing"
)

// loopConn records writes and replays a canned response.
type loopConn struct {
	wrote bytes.Buffer
	read  *bytes.Buffer
}

func (c *loopConn) Write(b []byte) (int, error) { return c.wrote.Write(b) }
func (c *loopConn) Read(b []byte) (int, error)  { return c.read.Read(b) }
func (c *loopConn) Close() error                { return nil }

func TestSendAppendsTerminator(t *testing.T) {
	conn := &loopConn{read: bytes.NewBuffer(nil)}
	rd := NewRemoteDevice("", false)
	rd.Conn = conn
	err := rd.Send([]byte("system_version"))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := conn.wrote.String(); got != "system_version\n" {
		t.Errorf("expected terminated command, got %q", got)
	}
}

func TestRecvStripsTerminator(t *testing.T) {
	conn := &loopConn{read: bytes.NewBufferString("Ok\n")}
	rd := NewRemoteDevice("", false)
	rd.Conn = conn
	resp, err := rd.Recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if string(resp) != "Ok" {
		t.Errorf("expected Ok, got %q", resp)
	}
}

func TestSendRecvRoundTrip(t *testing.T) {
	conn := &loopConn{read: bytes.NewBufferString("Ok 2.9\n")}
	rd := NewRemoteDevice("", false)
	rd.Conn = conn
	resp, err := rd.SendRecv([]byte("system_query_dac_lsb"))
	if err != nil {
		t.Fatalf("sendrecv: %v", err)
	}
	if string(resp) != "Ok 2.9" {
		t.Errorf("expected reply, got %q", resp)
	}
}

func TestNotConnected(t *testing.T) {
	rd := NewRemoteDevice("", false)
	if err := rd.Send([]byte("x")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	if _, err := rd.Recv(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}
