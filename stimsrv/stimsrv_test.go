package stimsrv_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chuhuiyu/mxstim/experiment"
	"github.com/chuhuiyu/mxstim/maxwell"
	"github.com/chuhuiyu/mxstim/stimsrv"
)

func testServer(t *testing.T) (*httptest.Server, *maxwell.Mock) {
	t.Helper()
	m := maxwell.NewMock()
	cfg := experiment.DefaultConfig()
	cfg.Timing = experiment.Timing{}
	sess := experiment.New(m, cfg)
	sess.Wait = func(time.Duration, string) {}
	if err := sess.Setup(); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(stimsrv.New(sess).Routes())
	t.Cleanup(srv.Close)
	return srv, m
}

func TestGetUnits(t *testing.T) {
	srv, _ := testServer(t)
	resp, err := http.Get(srv.URL + "/units")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string][]int
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body["units"]) != 2 {
		t.Errorf("expected 2 units, got %v", body["units"])
	}
}

func TestCompileDryRun(t *testing.T) {
	srv, m := testServer(t)
	req := `{"train": {"PulsesPerTrain": 10, "InterPulseInterval": 2000, "AmplitudeMV": 100, "PhaseSamples": 2, "AmplitudeSweep": {"Max": 700, "Step": 100}}}`
	resp, err := http.Post(srv.URL+"/compile", "application/json", strings.NewReader(req))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var sum stimsrv.SequenceSummary
	if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
		t.Fatal(err)
	}
	// 6 sweep values x 10 pulses
	if sum.Pulses != 60 {
		t.Errorf("expected 60 pulses, got %d", sum.Pulses)
	}
	if sum.LastEventID-sum.FirstEventID != 59 {
		t.Errorf("event ids must be dense: %d..%d", sum.FirstEventID, sum.LastEventID)
	}
	if len(m.Sent) != 0 {
		t.Error("/compile must not touch the device")
	}
}

func TestSendDispatches(t *testing.T) {
	srv, m := testServer(t)
	req := `{"train": {"PulsesPerTrain": 2, "InterPulseInterval": 100, "AmplitudeMV": 100, "PhaseSamples": 2}, "repetitions": 3}`
	resp, err := http.Post(srv.URL+"/send", "application/json", strings.NewReader(req))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(m.Sent) != 3 {
		t.Errorf("expected 3 sends, got %d", len(m.Sent))
	}
}

func TestCompileRejectsEmptySweep(t *testing.T) {
	srv, _ := testServer(t)
	req := `{"train": {"PulsesPerTrain": 1, "AmplitudeMV": 700, "PhaseSamples": 2, "AmplitudeSweep": {"Max": 700, "Step": 100}}}`
	resp, err := http.Post(srv.URL+"/compile", "application/json", strings.NewReader(req))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for empty sweep, got %d", resp.StatusCode)
	}
}

func TestPowerPatternRoundTrip(t *testing.T) {
	srv, m := testServer(t)
	resp, err := http.Post(srv.URL+"/power-on", "application/json", strings.NewReader(`{"pattern": [0, 1]}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(m.UnitCommands) != 8 {
		t.Errorf("expected 8 power-on commands, got %d", len(m.UnitCommands))
	}

	resp, err = http.Post(srv.URL+"/power-on", "application/json", strings.NewReader(`{"pattern": [9]}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for out-of-range pattern, got %d", resp.StatusCode)
	}
}
