package log

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerWritesCBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	status := uint8(0)
	event := Event{
		Timestamp: time.Now(),
		SessionID: "session-1",
		Direction: DirectionIn,
		Layer:     LayerAccess,
		Category:  CategoryMessage,
		Address:   0x0010,
		Message: &MessageEvent{
			Opcode:      0x8003,
			Name:        "APP_KEY_STATUS",
			Source:      0x0010,
			Destination: 0x0001,
			Status:      &status,
		},
	}

	logger.Log(event)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read trace file: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}

	if decoded.SessionID != event.SessionID {
		t.Errorf("SessionID: got %q, want %q", decoded.SessionID, event.SessionID)
	}
	if decoded.Message == nil {
		t.Fatal("Message is nil")
	}
	if decoded.Message.Opcode != 0x8003 {
		t.Errorf("Opcode: got 0x%X, want 0x8003", decoded.Message.Opcode)
	}
	if decoded.Message.Status == nil || *decoded.Message.Status != 0 {
		t.Errorf("Status: got %v, want 0", decoded.Message.Status)
	}
	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, event.Timestamp)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mlog")

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(Event{Timestamp: time.Now(), Layer: LayerService, Category: CategoryState})
		logger.Close()
	}

	if n := countEvents(t, path); n != 2 {
		t.Errorf("got %d events, want 2", n)
	}
}

func TestFileLoggerCloseIsIdempotent(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "test.mlog"))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	// Dropped silently.
	logger.Log(Event{Timestamp: time.Now()})
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mlog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				logger.Log(Event{Timestamp: time.Now(), Layer: LayerBearer, PDU: NewPDUEvent(0x03, []byte{1, 2, 3})})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	if n := countEvents(t, path); n != 100 {
		t.Errorf("got %d events, want 100", n)
	}
}

func TestNewPDUEventTruncates(t *testing.T) {
	ev := NewPDUEvent(0x00, make([]byte, MaxPDUData+10))
	if !ev.Truncated {
		t.Error("expected Truncated")
	}
	if len(ev.Data) != MaxPDUData {
		t.Errorf("Data length: got %d, want %d", len(ev.Data), MaxPDUData)
	}
	if ev.Size != MaxPDUData+10 {
		t.Errorf("Size: got %d, want %d", ev.Size, MaxPDUData+10)
	}
}
