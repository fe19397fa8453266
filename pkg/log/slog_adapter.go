package log

import (
	"context"
	"fmt"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger at debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device", event.DeviceID))
	}
	if event.NodeUUID != "" {
		attrs = append(attrs, slog.String("node_uuid", event.NodeUUID))
	}
	if event.Address != 0 {
		attrs = append(attrs, slog.String("address", fmt.Sprintf("0x%04X", event.Address)))
	}

	switch {
	case event.PDU != nil:
		attrs = append(attrs,
			slog.Int("pdu_type", int(event.PDU.Type)),
			slog.Int("pdu_size", event.PDU.Size),
			slog.Bool("truncated", event.PDU.Truncated),
		)
	case event.Message != nil:
		m := event.Message
		attrs = append(attrs,
			slog.String("opcode", fmt.Sprintf("0x%X", m.Opcode)),
			slog.String("src", fmt.Sprintf("0x%04X", m.Source)),
			slog.String("dst", fmt.Sprintf("0x%04X", m.Destination)),
		)
		if m.Name != "" {
			attrs = append(attrs, slog.String("message", m.Name))
		}
		if m.Status != nil {
			attrs = append(attrs, slog.Int("status", int(*m.Status)))
		}
		if m.Attempt > 0 {
			attrs = append(attrs, slog.Int("attempt", m.Attempt))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
