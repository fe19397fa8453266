package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mesh-lifecycle/mesh-go/pkg/log"
)

// createTestLogFile writes events to a trace file in a temp dir.
func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mlog")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func sampleEvents() []log.Event {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	status := uint8(0)
	return []log.Event{
		{
			Timestamp: ts, SessionID: "prov-session-0001", Layer: log.LayerProvisioning, Category: log.CategoryState,
			DeviceID:    "AA-11",
			StateChange: &log.StateChangeEvent{Entity: log.StateEntityProvisioning, OldState: "READY", NewState: "REQUESTING_CAPABILITIES"},
		},
		{
			Timestamp: ts.Add(10 * time.Millisecond), SessionID: "prov-session-0001", Direction: log.DirectionOut,
			Layer: log.LayerBearer, Category: log.CategoryMessage, DeviceID: "AA-11",
			PDU: log.NewPDUEvent(3, []byte{0x00, 0x05}),
		},
		{
			Timestamp: ts.Add(time.Second), Direction: log.DirectionOut, Layer: log.LayerAccess, Category: log.CategoryMessage,
			Address: 0x0002,
			Message: &log.MessageEvent{Opcode: 0x8008, Name: "CONFIG_COMPOSITION_DATA_GET", Source: 0x0001, Destination: 0x0002, Attempt: 2},
		},
		{
			Timestamp: ts.Add(2 * time.Second), Direction: log.DirectionIn, Layer: log.LayerAccess, Category: log.CategoryMessage,
			Address: 0x0002,
			Message: &log.MessageEvent{Opcode: 0x803E, Name: "CONFIG_MODEL_APP_STATUS", Source: 0x0002, Destination: 0x0001, Status: &status},
		},
		{
			Timestamp: ts.Add(3 * time.Second), Layer: log.LayerAccess, Category: log.CategoryError, Address: 0x0003,
			Error: &log.ErrorEventData{Layer: log.LayerAccess, Message: "Valid server model not found", Context: "composition"},
		},
	}
}

func TestRunView(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunView(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"[sess:prov-ses]",
		"READY -> REQUESTING_CAPABILITIES",
		"Data: 0005",
		"CONFIG_COMPOSITION_DATA_GET",
		"0x0001 -> 0x0002  attempt 2",
		"Status: 0x00",
		"Message: Valid server model not found",
		"Node: 0x0003",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunViewFiltered(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	filter, err := BuildFilter(FilterOptions{Layer: "access", Direction: "out"})
	if err != nil {
		t.Fatalf("BuildFilter failed: %v", err)
	}

	var buf bytes.Buffer
	if err := RunView(path, filter, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "CONFIG_COMPOSITION_DATA_GET") {
		t.Error("expected outgoing access message")
	}
	if strings.Contains(out, "CONFIG_MODEL_APP_STATUS") || strings.Contains(out, "PDU") {
		t.Errorf("unexpected events in filtered output:\n%s", out)
	}
}

func TestRunViewMissingFile(t *testing.T) {
	if err := RunView(filepath.Join(t.TempDir(), "none.mlog"), log.Filter{}, io.Discard); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBuildFilter(t *testing.T) {
	f, err := BuildFilter(FilterOptions{
		Address:   "0x0002",
		TimeStart: "2026-01-28T10:00:00Z",
		Category:  "STATE",
		Layer:     "prov",
	})
	if err != nil {
		t.Fatalf("BuildFilter failed: %v", err)
	}
	if f.Address != 0x0002 {
		t.Errorf("Address = 0x%04X, want 0x0002", f.Address)
	}
	if f.TimeStart == nil || f.Category == nil || *f.Category != log.CategoryState {
		t.Error("time-start and category should be set")
	}
	if f.Layer == nil || *f.Layer != log.LayerProvisioning {
		t.Error("layer should be provisioning")
	}

	bad := []FilterOptions{
		{Address: "lamp"},
		{TimeEnd: "yesterday"},
		{Layer: "wire"},
		{Direction: "sideways"},
		{Category: "control"},
	}
	for _, opts := range bad {
		if _, err := BuildFilter(opts); err == nil {
			t.Errorf("BuildFilter(%+v) should fail", opts)
		}
	}
}

func TestRunFilter(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	output := filepath.Join(t.TempDir(), "out.mlog")

	var buf bytes.Buffer
	err := RunFilter(path, FilterOptions{Output: output, SessionID: "prov-session-0001"}, &buf)
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Filtered 2 events") {
		t.Errorf("unexpected summary: %s", buf.String())
	}

	stats, err := CollectStats(output)
	if err != nil {
		t.Fatalf("CollectStats failed: %v", err)
	}
	if stats.TotalEvents != 2 {
		t.Errorf("TotalEvents = %d, want 2", stats.TotalEvents)
	}
}

func TestCollectStats(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	stats, err := CollectStats(path)
	if err != nil {
		t.Fatalf("CollectStats failed: %v", err)
	}
	if stats.TotalEvents != 5 {
		t.Errorf("TotalEvents = %d, want 5", stats.TotalEvents)
	}
	if stats.EventsByLayer[log.LayerAccess] != 3 {
		t.Errorf("access events = %d, want 3", stats.EventsByLayer[log.LayerAccess])
	}
	if stats.Retries != 1 {
		t.Errorf("Retries = %d, want 1", stats.Retries)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if stats.Nodes[0x0002] != 2 || stats.Nodes[0x0003] != 1 {
		t.Errorf("Nodes = %v", stats.Nodes)
	}
	sess := stats.Sessions["prov-session-0001"]
	if sess == nil || sess.Events != 2 || sess.DeviceID != "AA-11" {
		t.Fatalf("session stats = %+v", sess)
	}
	if sess.LastState != "REQUESTING_CAPABILITIES" {
		t.Errorf("LastState = %q", sess.LastState)
	}
}

func TestRunStatsOutput(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Total Events: 5", "ACCESS:", "PROVISIONING:", "Sessions: 1", "0x0002  2 events", "Retries: 1", "Errors: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExportJSONL(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := Export(path, "jsonl", &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if first["SessionID"] != "prov-session-0001" {
		t.Errorf("SessionID = %v", first["SessionID"])
	}
}

func TestExportCSV(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := Export(path, "csv", &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("got %d records, want 6", len(records))
	}
	row := records[3]
	if row[3] != "ACCESS" || row[6] != "0x0002" || row[7] != "CONFIG_COMPOSITION_DATA_GET" || row[8] != "2" {
		t.Errorf("unexpected row: %v", row)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	if err := Export(path, "xml", io.Discard); err == nil {
		t.Error("expected error for unknown format")
	}
}
