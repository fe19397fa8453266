package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusString(t *testing.T) {
	assert.Equal(t, "connecting", StatusConnecting.String())
	assert.Equal(t, "complete", StatusComplete.String())
	assert.Equal(t, "timeout", StatusTimeout.String())
	assert.Equal(t, "unknown", Status(99).String())

	assert.True(t, StatusError.IsTerminal())
	assert.False(t, StatusIdentifying.IsTerminal())
}

func TestEventWithCopiesFields(t *testing.T) {
	base := New("prov", StatusComplete, "Provisioning complete").With(FieldNodeUUID, "abc")
	ext := base.With(FieldUnicastAddress, 16)

	_, ok := base.Field(FieldUnicastAddress)
	assert.False(t, ok)

	v, ok := ext.Field(FieldNodeUUID)
	require.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestEventJSON(t *testing.T) {
	ev := New("conf", StatusSuccess, "AppKey added").With(FieldAddress, 16)

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "success", decoded["status"])
	assert.Equal(t, "AppKey added", decoded["message"])
}

func TestResponse(t *testing.T) {
	ok := OK("started")
	assert.True(t, ok.IsSuccess)
	assert.NoError(t, ok.Err())

	fail := Fail(errors.New("device not found"))
	assert.False(t, fail.IsSuccess)
	assert.EqualError(t, fail.Err(), "device not found")
}

func TestSinkFunc(t *testing.T) {
	var got []Event
	var s Sink = SinkFunc(func(e Event) { got = append(got, e) })

	s.Emit(New("x", StatusError, "boom"))
	Discard.Emit(New("x", StatusError, "dropped"))

	require.Len(t, got, 1)
	assert.Equal(t, "boom", got[0].Message)
}
