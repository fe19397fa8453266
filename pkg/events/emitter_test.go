package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestEmitterDeliversInOrder(t *testing.T) {
	e := NewEmitter()
	defer e.Close()

	ch, cancel := e.Subscribe(16)
	defer cancel()

	for i := 0; i < 5; i++ {
		e.Emit(New("test", StatusProcessing, string(rune('a'+i))))
	}
	for i := 0; i < 5; i++ {
		assert.Equal(t, string(rune('a'+i)), receive(t, ch).Message)
	}
}

func TestEmitterBroadcasts(t *testing.T) {
	e := NewEmitter()
	defer e.Close()

	a, cancelA := e.Subscribe(1)
	defer cancelA()
	b, cancelB := e.Subscribe(1)
	defer cancelB()

	e.Emit(New("test", StatusSuccess, "done"))

	assert.Equal(t, "done", receive(t, a).Message)
	assert.Equal(t, "done", receive(t, b).Message)
}

func TestEmitterEmitDoesNotBlock(t *testing.T) {
	e := NewEmitter()
	defer e.Close()

	// Unbuffered and never read.
	_, cancel := e.Subscribe(0)

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			e.Emit(New("test", StatusProcessing, "x"))
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a stalled subscriber")
	}
	cancel()
}

func TestEmitterCancelClosesChannel(t *testing.T) {
	e := NewEmitter()
	defer e.Close()

	ch, cancel := e.Subscribe(0)
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// Delivery continues for nobody.
	e.Emit(New("test", StatusError, "ignored"))
}

func TestEmitterCloseDrainsQueue(t *testing.T) {
	e := NewEmitter()
	ch, _ := e.Subscribe(10)

	e.Emit(New("test", StatusConnecting, "1"))
	e.Emit(New("test", StatusComplete, "2"))
	e.Close()

	var got []string
	for ev := range ch {
		got = append(got, ev.Message)
	}
	assert.Equal(t, []string{"1", "2"}, got)

	e.Emit(New("test", StatusError, "after close"))
	e.Close()

	late, _ := e.Subscribe(1)
	_, ok := <-late
	assert.False(t, ok)
}

func TestEmitterConcurrentEmit(t *testing.T) {
	e := NewEmitter()
	ch, _ := e.Subscribe(1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				e.Emit(New("test", StatusProcessing, "x"))
			}
		}()
	}
	wg.Wait()
	e.Close()

	n := 0
	for range ch {
		n++
	}
	assert.Equal(t, 500, n)
}

func TestEmitterCloseWithStalledSubscriber(t *testing.T) {
	e := NewEmitter()
	ch, _ := e.Subscribe(0)
	e.Emit(New("test", StatusProcessing, "never read"))

	closed := make(chan struct{})
	go func() {
		e.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close blocked on a stalled subscriber")
	}
	_, ok := <-ch
	assert.False(t, ok)
}
