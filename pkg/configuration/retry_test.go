package configuration

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-lifecycle/mesh-go/pkg/events"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/persistence"
	"github.com/mesh-lifecycle/mesh-go/pkg/wire"
)

func TestRetryStateLifecycle(t *testing.T) {
	now := time.Unix(1000, 0)
	var r RetryState
	assert.Equal(t, RetryIdle, r.Phase)

	r, err := r.Arm(0x0002, now.Add(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, RetryArmed, r.Phase)
	assert.Equal(t, mesh.Address(0x0002), r.Target)
	assert.Equal(t, uint64(1), r.Generation)
	assert.True(t, r.Current(1))

	_, err = r.Arm(0x0003, now)
	assert.True(t, errors.Is(err, ErrRetryArmed))

	var exhausted bool
	for i := 1; i <= 3; i++ {
		r, exhausted = r.Tick(3, now)
		require.False(t, exhausted, "tick %d", i)
		assert.Equal(t, i, r.Attempt)
	}
	r, exhausted = r.Tick(3, now)
	assert.True(t, exhausted)
	assert.Equal(t, RetryIdle, r.Phase)
	assert.False(t, r.Current(1))

	r, err = r.Arm(0x0002, now)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), r.Generation)
	assert.False(t, r.Current(1), "ticks of an earlier cycle are stale")
}

func TestRetryStateCancel(t *testing.T) {
	r, err := RetryState{}.Arm(0x0002, time.Now())
	require.NoError(t, err)
	r = r.Cancel()
	assert.Equal(t, "Idle", r.String())
	assert.False(t, r.Current(r.Generation))
}

func TestSettingsDefaults(t *testing.T) {
	s := Settings{}.withDefaults()
	assert.Equal(t, 5*time.Second, s.RetryInterval)
	assert.Equal(t, 3, s.MaxRetries)
	assert.Equal(t, mesh.WellKnownGroup, s.Group)
	assert.Equal(t, "Mesh Group", s.GroupName)
	assert.Equal(t, "Main Application Key", s.AppKeyName)

	s = Settings{MaxRetries: 5, RetryInterval: time.Second}.withDefaults()
	assert.Equal(t, 5, s.MaxRetries)
	assert.Equal(t, time.Second, s.RetryInterval)
}

func handlerEnv(t *testing.T) (Env, mesh.Node) {
	t.Helper()
	n := persistence.NewNetwork("test")
	_, err := n.AddApplicationKey("app", mesh.RandomKey(), 0)
	require.NoError(t, err)
	node := mesh.Node{
		Name:           "light",
		UnicastAddress: 0x0010,
		NetKeys:        []mesh.KeyIndex{0},
		AppKeys:        []mesh.KeyIndex{0},
		Elements: []mesh.Element{{Models: []mesh.Model{
			{ID: mesh.ConfigurationServer},
			{ID: mesh.GenericColorServer},
			{ID: mesh.GenericOnOffServer},
		}}},
	}
	require.NoError(t, n.AddNode(node))
	env := Env{
		Network:    n,
		Settings:   DefaultSettings(),
		Session:    Session{Node: 0x0010, Step: AwaitingCompositionData},
		HasSession: true,
	}
	return env, node
}

func TestHandleCompositionDataPrefersOnOff(t *testing.T) {
	env, node := handlerEnv(t)

	actions := handleCompositionData(env, node, wire.CompositionDataStatus{})
	require.Len(t, actions, 4)
	assert.Equal(t, CancelRetryAction{Target: 0x0010}, actions[0])

	adv, ok := actions[1].(AdvanceAction)
	require.True(t, ok)
	assert.Equal(t, AwaitingModelBindStatus, adv.Session.Step)
	assert.Equal(t, mesh.GenericOnOffServer, adv.Session.ServerModel)
	assert.Equal(t, mesh.GenericOnOffClient, adv.Session.ClientModel)
	assert.Equal(t, mesh.Address(0x0001), adv.Session.ClientElement)

	send, ok := actions[2].(SendAction)
	require.True(t, ok)
	assert.Equal(t, mesh.Address(0x0010), send.Destination)
	assert.Equal(t, wire.ModelAppBind{ElementAddress: 0x0010, AppKeyIndex: 0, ModelID: mesh.GenericOnOffServer}, send.Message)
}

func TestHandleCompositionDataWithoutServerModel(t *testing.T) {
	env, node := handlerEnv(t)
	node.Elements = []mesh.Element{{Models: []mesh.Model{{ID: mesh.ConfigurationServer}}}}

	actions := handleCompositionData(env, node, wire.CompositionDataStatus{})
	require.Len(t, actions, 3)
	assert.Equal(t, FinishAction{Node: 0x0010}, actions[1])
	ev, ok := actions[2].(EmitAction)
	require.True(t, ok)
	assert.Equal(t, events.StatusError, ev.Status)
	assert.Equal(t, "Valid server model not found", ev.Message)
	for _, a := range actions {
		_, isSend := a.(SendAction)
		assert.False(t, isSend)
	}
}

func TestHandleCompositionDataUsesMessageWhenNodeIsEmpty(t *testing.T) {
	env, node := handlerEnv(t)
	node.Elements = nil
	msg := wire.CompositionDataStatus{Composition: wire.CompositionData{
		Elements: []mesh.Element{{Models: []mesh.Model{{ID: mesh.GenericColorServer}}}},
	}}

	actions := handleCompositionData(env, node, msg)
	adv, ok := actions[1].(AdvanceAction)
	require.True(t, ok)
	assert.Equal(t, mesh.GenericColorServer, adv.Session.ServerModel)
	assert.Equal(t, mesh.GenericColorClient, adv.Session.ClientModel)
}

func TestHandleCompositionDataIgnoresDuplicates(t *testing.T) {
	env, node := handlerEnv(t)
	env.Session.Step = AwaitingModelBindStatus

	actions := handleCompositionData(env, node, wire.CompositionDataStatus{})
	assert.Equal(t, []Action{CancelRetryAction{Target: 0x0010}}, actions)
}

func TestHandleAppKeyStatusArmsRetry(t *testing.T) {
	env, node := handlerEnv(t)
	env.Session.Step = AwaitingAppKeyStatus

	actions := handleAppKeyStatus(env, node, wire.AppKeyStatus{Status: wire.StatusSuccess})
	require.Len(t, actions, 4)
	assert.Equal(t, ArmRetryAction{Target: 0x0010}, actions[0])
	send := actions[2].(SendAction)
	assert.Equal(t, wire.CompositionDataGet{Page: 0}, send.Message)
	assert.Equal(t, 1, send.Attempt)
}

func TestHandleAppKeyStatusOutsideAppKeyStep(t *testing.T) {
	env, node := handlerEnv(t)
	assert.Nil(t, handleAppKeyStatus(env, node, wire.AppKeyStatus{Status: wire.StatusSuccess}))

	env.HasSession = false
	assert.Nil(t, handleAppKeyStatus(env, node, wire.AppKeyStatus{Status: wire.StatusSuccess}))
}

func TestHandleAppKeyStatusFailure(t *testing.T) {
	env, node := handlerEnv(t)
	actions := handleAppKeyStatus(env, node, wire.AppKeyStatus{Status: wire.StatusInsufficientResources})
	require.Len(t, actions, 2)
	ev := actions[1].(EmitAction)
	assert.Equal(t, events.StatusError, ev.Status)
	assert.Contains(t, ev.Message, "Failed to add AppKey: ")
	assert.Equal(t, uint8(wire.StatusInsufficientResources), ev.Fields[events.FieldStatusCode])
}

func TestHandleModelAppStatusBindsLocalClient(t *testing.T) {
	env, node := handlerEnv(t)
	env.Session = Session{
		Node:          0x0010,
		Step:          AwaitingModelBindStatus,
		ServerModel:   mesh.GenericOnOffServer,
		ClientModel:   mesh.GenericOnOffClient,
		ClientElement: 0x0001,
	}

	actions := handleModelAppStatus(env, node, wire.ModelAppStatus{Status: wire.StatusSuccess, ModelID: mesh.GenericOnOffServer})
	require.Len(t, actions, 3)
	send := actions[1].(SendAction)
	assert.Equal(t, mesh.Address(0x0001), send.Destination)
	assert.Equal(t, wire.ModelAppBind{ElementAddress: 0x0001, ModelID: mesh.GenericOnOffClient}, send.Message)
	assert.Equal(t, "Successfully bind AppKey to Model", actions[2].(EmitAction).Message)

	failed := handleModelAppStatus(env, node, wire.ModelAppStatus{Status: wire.StatusCannotBind})
	assert.Contains(t, failed[1].(EmitAction).Message, "Model bind failed with status: ")
}

func TestHandleLocalModelAppStatus(t *testing.T) {
	sessions := []Session{
		{Node: 0x0010, Step: AwaitingSubscriptionStatus},
		{Node: 0x0020, Step: AwaitingClientBindStatus, ClientModel: mesh.GenericColorClient},
	}
	actions := handleLocalModelAppStatus(sessions, wire.ModelAppStatus{Status: wire.StatusSuccess, ModelID: mesh.GenericColorClient})
	require.Len(t, actions, 2)
	assert.Equal(t, FinishAction{Node: 0x0020}, actions[0])
	assert.Equal(t, events.StatusComplete, actions[1].(EmitAction).Status)

	assert.Nil(t, handleLocalModelAppStatus(sessions, wire.ModelAppStatus{ModelID: mesh.GenericOnOffClient}))
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "AWAITING_COMPOSITION_DATA", AwaitingCompositionData.String())
	assert.Equal(t, "UNKNOWN", Step(200).String())
}
