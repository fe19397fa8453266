// Package commands implements the mesh-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/mesh-lifecycle/mesh-go/pkg/log"
)

// RunView prints every event matching filter in human-readable form.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes one event:
//
//	2026-01-28T10:00:00.000000Z [sess:1a2b3c4d] OUT ACCESS CONFIG_COMPOSITION_DATA_GET
//	  0x0001 -> 0x0002  attempt 2
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [sess:%s] %-3s %s %s\n",
		ts, shortenID(event.SessionID), event.Direction, event.Layer, eventType(event))

	if event.DeviceID != "" {
		fmt.Fprintf(w, "  Device: %s\n", event.DeviceID)
	}
	if event.Address != 0 {
		fmt.Fprintf(w, "  Node: 0x%04X\n", event.Address)
	}

	switch {
	case event.PDU != nil:
		formatPDUDetails(w, event.PDU)
	case event.Message != nil:
		formatMessageDetails(w, event.Message)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// eventType labels the event by its payload.
func eventType(event log.Event) string {
	switch {
	case event.PDU != nil:
		return "PDU"
	case event.Message != nil:
		if event.Message.Name != "" {
			return event.Message.Name
		}
		return fmt.Sprintf("opcode 0x%X", event.Message.Opcode)
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

func shortenID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatPDUDetails(w io.Writer, pdu *log.PDUEvent) {
	fmt.Fprintf(w, "  Type: %d  Size: %d bytes\n", pdu.Type, pdu.Size)
	if len(pdu.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(pdu.Data))
		if pdu.Truncated {
			fmt.Fprint(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

func formatMessageDetails(w io.Writer, msg *log.MessageEvent) {
	fmt.Fprintf(w, "  0x%04X -> 0x%04X", msg.Source, msg.Destination)
	if msg.Attempt > 0 {
		fmt.Fprintf(w, "  attempt %d", msg.Attempt)
	}
	fmt.Fprintln(w)
	if msg.Status != nil {
		fmt.Fprintf(w, "  Status: 0x%02X\n", *msg.Status)
	}
	if len(msg.Parameters) > 0 {
		fmt.Fprintf(w, "  Parameters: %s\n", hex.EncodeToString(msg.Parameters))
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}
