package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/shiftio/internal/logic"
	"github.com/sweeney/shiftio/internal/status"
)

type submitter struct {
	got []logic.Command
	err error
}

func (s *submitter) submit(c logic.Command) error {
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, c)
	return nil
}

func newTestServer(t *testing.T, sub SubmitFunc) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Backend:     "sim",
		Mode:        "dual",
		Chips:       1,
		PollMs:      100,
		DebounceMs:  250,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		TopicPrefix: "shiftio",
		HTTPAddr:    ":80",
	}
	outputs := logic.Names{"pump", "out1"}
	tr := status.NewTracker(start, cfg, logic.Names{"door", "in1"}, outputs)
	srv := New(":0", tr, outputs, sub)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func getStatus(t *testing.T, ts *httptest.Server) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()
	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Update([]logic.State{logic.StateOn, logic.StateOff}, []bool{true, false}, true,
		[]logic.Counts{{On: 5, Off: 2}, {}})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.Inputs[0].Name != "door" || sj.Status.Inputs[0].State != "ON" {
		t.Errorf("Inputs[0]: got %+v", sj.Status.Inputs[0])
	}
	if sj.Status.Outputs[0].Name != "pump" || sj.Status.Outputs[0].State != "ON" {
		t.Errorf("Outputs[0]: got %+v", sj.Status.Outputs[0])
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected")
	}
	if sj.Status.Config.HTTPAddr != ":80" {
		t.Errorf("Config.HTTPAddr: got %q", sj.Status.Config.HTTPAddr)
	}
}

func TestJSONUnknownStateBeforeBaseline(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	sj := getStatus(t, ts)
	if sj.Status.Ready {
		t.Error("expected Ready=false initially")
	}
	if sj.Status.Inputs[0].State != "UNKNOWN" {
		t.Errorf("Inputs[0].State: got %q, want UNKNOWN", sj.Status.Inputs[0].State)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.SetNetwork(&status.NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected"})

	sj := getStatus(t, ts)
	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t, (&submitter{}).submit)
	tr.Update([]logic.State{logic.StateOn, logic.StateOff}, []bool{false, true}, true, nil)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"door", "pump", `action="/outputs"`, "1 x dual"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHTMLReadOnlyHasNoForms(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(body), "<form") {
		t.Error("read-only page should not offer output forms")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestPostOutputs(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        logic.Command
	}{
		{"json by name", "application/json", `{"pin":"pump","state":"ON"}`, logic.Command{Pin: 0, State: logic.StateOn}},
		{"json by index", "application/json", `{"pin":1,"state":"off"}`, logic.Command{Pin: 1, State: logic.StateOff}},
		{"text", "text/plain", "out1=1", logic.Command{Pin: 1, State: logic.StateOn}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &submitter{}
			ts, _ := newTestServer(t, sub.submit)

			resp, err := http.Post(ts.URL+"/outputs", tt.contentType, strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST /outputs: %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != http.StatusAccepted {
				t.Errorf("status: got %d, want 202", resp.StatusCode)
			}
			if len(sub.got) != 1 || sub.got[0] != tt.want {
				t.Errorf("commands: got %+v, want %+v", sub.got, tt.want)
			}
		})
	}
}

func TestPostOutputsForm(t *testing.T) {
	sub := &submitter{}
	ts, _ := newTestServer(t, sub.submit)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.PostForm(ts.URL+"/outputs", url.Values{"pin": {"1"}, "state": {"ON"}})
	if err != nil {
		t.Fatalf("POST /outputs: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status: got %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("Location: got %q, want /", loc)
	}
	if len(sub.got) != 1 || sub.got[0] != (logic.Command{Pin: 1, State: logic.StateOn}) {
		t.Errorf("commands: got %+v", sub.got)
	}
}

func TestPostOutputsErrors(t *testing.T) {
	tests := []struct {
		name string
		sub  SubmitFunc
		body string
		want int
	}{
		{"read only", nil, "pump=ON", http.StatusConflict},
		{"unknown pin", (&submitter{}).submit, "fan=ON", http.StatusNotFound},
		{"bad state", (&submitter{}).submit, "pump=dim", http.StatusBadRequest},
		{"malformed", (&submitter{}).submit, "pump", http.StatusBadRequest},
		{"queue full", (&submitter{err: ErrBusy}).submit, "pump=ON", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newTestServer(t, tt.sub)
			resp, err := http.Post(ts.URL+"/outputs", "text/plain", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST /outputs: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status: got %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestGetOutputsNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t, (&submitter{}).submit)
	resp, err := http.Get(ts.URL + "/outputs")
	if err != nil {
		t.Fatalf("GET /outputs: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != http.MethodPost {
		t.Errorf("Allow: got %q, want POST", allow)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t, nil)

	if getStatus(t, ts).Status.Ready {
		t.Error("expected Ready=false initially")
	}

	tr.Update([]logic.State{logic.StateOff, logic.StateOn}, []bool{false, false}, true,
		[]logic.Counts{{}, {On: 1}})
	tr.RecordTransfer(nil, time.Now())
	tr.SetMQTTConnected(true)

	sj := getStatus(t, ts)
	if !sj.Status.Ready {
		t.Error("expected Ready=true after update")
	}
	if sj.Status.Inputs[1].State != "ON" {
		t.Errorf("Inputs[1]: got %q, want ON", sj.Status.Inputs[1].State)
	}
	if sj.Status.Updates != 1 {
		t.Errorf("Updates: got %d, want 1", sj.Status.Updates)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{42 * time.Second, "42s"},
		{3*time.Hour + 5*time.Second, "3h 0m 5s"},
		{50*time.Hour + 90*time.Second + 400*time.Millisecond, "2d 2h 1m 30s"},
	}
	for _, tt := range tests {
		if got := formatUptime(tt.d); got != tt.want {
			t.Errorf("formatUptime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
