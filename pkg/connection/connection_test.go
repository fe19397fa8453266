package connection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	t.Run("DefaultSequence", func(t *testing.T) {
		b := NewBackoff()

		expected := []time.Duration{
			500 * time.Millisecond,
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
			8 * time.Second,
			16 * time.Second,
			30 * time.Second,
			30 * time.Second,
		}
		for i, exp := range expected {
			base := b.Current()
			_ = b.Next()
			if base != exp {
				t.Errorf("Attempt %d: base = %v, want %v", i, base, exp)
			}
		}
	})

	t.Run("JitterBounds", func(t *testing.T) {
		b := NewBackoff()
		for i := 0; i < 20; i++ {
			b.Reset()
			d := b.Next()
			upper := time.Duration(float64(InitialBackoff) * (1 + JitterFactor))
			if d < InitialBackoff || d > upper {
				t.Errorf("Sample %d: %v out of range [%v, %v]", i, d, InitialBackoff, upper)
			}
		}
	})

	t.Run("Reset", func(t *testing.T) {
		b := NewBackoff()
		for i := 0; i < 5; i++ {
			b.Next()
		}
		if b.Attempts() != 5 {
			t.Errorf("Attempts() = %d, want 5", b.Attempts())
		}

		b.Reset()
		if b.Current() != InitialBackoff {
			t.Errorf("Current() = %v after reset, want %v", b.Current(), InitialBackoff)
		}
		if b.Attempts() != 0 {
			t.Errorf("Attempts() = %d after reset, want 0", b.Attempts())
		}
	})

	t.Run("CustomConfig", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{
			Initial: 100 * time.Millisecond,
			Max:     500 * time.Millisecond,
		})
		expected := []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			400 * time.Millisecond,
			500 * time.Millisecond,
			500 * time.Millisecond,
		}
		for i, exp := range expected {
			if got := b.Next(); got != exp {
				t.Errorf("Attempt %d: got %v, want %v", i, got, exp)
			}
		}
	})
}

func fastBackoff() *Backoff {
	return NewBackoffWithConfig(BackoffConfig{Initial: 10 * time.Millisecond, Max: 40 * time.Millisecond})
}

func waitForState(t *testing.T, m *PowerManager, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("State() = %v, want %v", m.State(), want)
}

func TestPowerManager(t *testing.T) {
	t.Run("EnablesImmediately", func(t *testing.T) {
		var calls atomic.Int32
		m := NewPowerManager(func(ctx context.Context) error {
			calls.Add(1)
			return nil
		}, fastBackoff())
		defer m.Close()

		if err := m.Start(); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		waitForState(t, m, StatePoweredOn)

		if calls.Load() != 1 {
			t.Errorf("enable called %d times, want 1", calls.Load())
		}
		if !m.IsPoweredOn() {
			t.Error("IsPoweredOn() = false")
		}
	})

	t.Run("RetriesWithBackoff", func(t *testing.T) {
		var calls atomic.Int32
		var mu sync.Mutex
		var retries []int

		m := NewPowerManager(func(ctx context.Context) error {
			if calls.Add(1) < 3 {
				return errors.New("adapter not ready")
			}
			return nil
		}, fastBackoff())
		m.OnRetry(func(attempt int, delay time.Duration, err error) {
			mu.Lock()
			retries = append(retries, attempt)
			mu.Unlock()
		})
		defer m.Close()

		m.Start()
		waitForState(t, m, StatePoweredOn)

		if calls.Load() != 3 {
			t.Errorf("enable called %d times, want 3", calls.Load())
		}
		mu.Lock()
		defer mu.Unlock()
		if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
			t.Errorf("retries = %v, want [1 2]", retries)
		}
	})

	t.Run("ReenablesAfterPowerLoss", func(t *testing.T) {
		var calls atomic.Int32
		var mu sync.Mutex
		var transitions []State

		m := NewPowerManager(func(ctx context.Context) error {
			calls.Add(1)
			return nil
		}, fastBackoff())
		m.OnStateChange(func(oldState, newState State) {
			mu.Lock()
			transitions = append(transitions, newState)
			mu.Unlock()
		})
		defer m.Close()

		m.Start()
		waitForState(t, m, StatePoweredOn)

		m.NotifyPowerLost()
		waitForState(t, m, StatePoweredOn)

		if calls.Load() != 2 {
			t.Errorf("enable called %d times, want 2", calls.Load())
		}

		mu.Lock()
		defer mu.Unlock()
		want := []State{StateEnabling, StatePoweredOn, StatePoweredOff, StateEnabling, StatePoweredOn}
		if len(transitions) != len(want) {
			t.Fatalf("transitions = %v, want %v", transitions, want)
		}
		for i := range want {
			if transitions[i] != want[i] {
				t.Errorf("transition %d = %v, want %v", i, transitions[i], want[i])
			}
		}
	})

	t.Run("PowerLossIgnoredWhenOff", func(t *testing.T) {
		m := NewPowerManager(func(ctx context.Context) error { return nil }, fastBackoff())
		defer m.Close()

		m.NotifyPowerLost()
		if m.State() != StatePoweredOff {
			t.Errorf("State() = %v, want POWERED_OFF", m.State())
		}
	})

	t.Run("CloseStopsRetrying", func(t *testing.T) {
		var calls atomic.Int32
		m := NewPowerManager(func(ctx context.Context) error {
			calls.Add(1)
			return errors.New("off")
		}, fastBackoff())

		m.Start()
		time.Sleep(50 * time.Millisecond)
		m.Close()
		m.Close()

		n := calls.Load()
		time.Sleep(100 * time.Millisecond)
		if calls.Load() != n {
			t.Errorf("enable called after Close (%d -> %d)", n, calls.Load())
		}
		if m.State() != StateClosed {
			t.Errorf("State() = %v, want CLOSED", m.State())
		}
		if err := m.Start(); !errors.Is(err, ErrClosed) {
			t.Errorf("Start() after Close = %v, want ErrClosed", err)
		}
	})
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StatePoweredOff, "POWERED_OFF"},
		{StateEnabling, "ENABLING"},
		{StatePoweredOn, "POWERED_ON"},
		{StateClosed, "CLOSED"},
		{State(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
