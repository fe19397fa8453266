package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func logOne(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	slogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewSlogAdapter(slogger).Log(event)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestSlogAdapterLogsMessageEvent(t *testing.T) {
	status := uint8(2)
	entry := logOne(t, Event{
		Timestamp: time.Now(),
		SessionID: "session-1",
		Direction: DirectionIn,
		Layer:     LayerAccess,
		Category:  CategoryMessage,
		Address:   0x0010,
		Message: &MessageEvent{
			Opcode:      0x803E,
			Name:        "MODEL_APP_STATUS",
			Source:      0x0010,
			Destination: 0x0001,
			Status:      &status,
		},
	})

	want := map[string]any{
		"msg":       "trace",
		"level":     "DEBUG",
		"session":   "session-1",
		"direction": "IN",
		"layer":     "ACCESS",
		"address":   "0x0010",
		"opcode":    "0x803E",
		"src":       "0x0010",
		"dst":       "0x0001",
		"message":   "MODEL_APP_STATUS",
		"status":    float64(2),
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s: got %v, want %v", k, entry[k], v)
		}
	}
}

func TestSlogAdapterLogsStateChange(t *testing.T) {
	entry := logOne(t, Event{
		Timestamp: time.Now(),
		Layer:     LayerProvisioning,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntityProvisioning,
			OldState: "CONNECTING",
			NewState: "DISCOVERING",
			Reason:   "connected",
		},
	})

	if entry["entity"] != "PROVISIONING" {
		t.Errorf("entity: got %v", entry["entity"])
	}
	if entry["new_state"] != "DISCOVERING" {
		t.Errorf("new_state: got %v", entry["new_state"])
	}
	if entry["reason"] != "connected" {
		t.Errorf("reason: got %v", entry["reason"])
	}
}

func TestSlogAdapterLogsError(t *testing.T) {
	code := 13
	entry := logOne(t, Event{
		Timestamp: time.Now(),
		Layer:     LayerAccess,
		Category:  CategoryError,
		Error:     &ErrorEventData{Layer: LayerAccess, Message: "bind failed", Code: &code, Context: "bind"},
	})

	if entry["error_msg"] != "bind failed" {
		t.Errorf("error_msg: got %v", entry["error_msg"])
	}
	if entry["error_code"] != float64(13) {
		t.Errorf("error_code: got %v", entry["error_code"])
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	NewSlogAdapter(slogger).Log(Event{Timestamp: time.Now()})

	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got %q", buf.String())
	}
}
