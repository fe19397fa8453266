package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mesh-lifecycle/mesh-go/pkg/events"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
)

// formatEvent renders an event as a single line:
//
//	[provisioning] complete: Provisioning complete! nodeUuid=... unicastAddress=0x0002
func formatEvent(ev events.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", ev.Source, ev.Status, ev.Message)

	keys := make([]string, 0, len(ev.Fields))
	for k := range ev.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, formatField(k, ev.Fields[k]))
	}
	return b.String()
}

func formatField(key string, v any) string {
	switch key {
	case events.FieldAddress, events.FieldUnicastAddress:
		if a, ok := v.(uint16); ok {
			return mesh.Address(a).String()
		}
	case events.FieldStatusCode:
		if c, ok := v.(uint8); ok {
			return fmt.Sprintf("0x%02X", c)
		}
	}
	return fmt.Sprint(v)
}
