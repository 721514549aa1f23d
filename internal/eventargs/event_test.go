package eventargs

import (
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
)

type captureLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *captureLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func TestCarriers(t *testing.T) {
	if got := NewArgs(42).Data; got != 42 {
		t.Errorf("Args.Data = %d, want 42", got)
	}

	c := NewChanged("off", "on")
	if c.Previous != "off" || c.Current != "on" {
		t.Errorf("Changed = %+v", c)
	}

	cancel := NewCancel(3.5)
	if cancel.Cancelled {
		t.Error("new Cancel should not be cancelled")
	}
	cancel.Veto()
	if !cancel.Cancelled || cancel.Data != 3.5 {
		t.Errorf("Cancel after Veto = %+v", cancel)
	}
}

func TestEvent_RaiseInSubscriptionOrder(t *testing.T) {
	var ev Event[Changed[int]]
	var order []string

	ev.Subscribe(func(e Changed[int]) { order = append(order, "first") })
	ev.Subscribe(func(e Changed[int]) { order = append(order, "second") })
	ev.Subscribe(nil)

	ev.Raise(NewChanged(1, 2))

	if want := []string{"first", "second"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if ev.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ev.Len())
	}
}

func TestEvent_Unsubscribe(t *testing.T) {
	var ev Event[Args[string]]
	var a, b int

	unsubA := ev.Subscribe(func(Args[string]) { a++ })
	ev.Subscribe(func(Args[string]) { b++ })

	ev.Raise(NewArgs("x"))
	unsubA()
	unsubA() // second call is a no-op
	ev.Raise(NewArgs("y"))

	if a != 1 || b != 2 {
		t.Errorf("a = %d, b = %d; want 1, 2", a, b)
	}
}

func TestEvent_UnsubscribeDuringRaise(t *testing.T) {
	var ev Event[int]
	var calls int

	var unsub func()
	unsub = ev.Subscribe(func(int) {
		calls++
		unsub()
	})
	ev.Subscribe(func(int) { calls++ })

	ev.Raise(1)
	ev.Raise(2)

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestEvent_CancelVeto(t *testing.T) {
	var ev Event[*Cancel[float64]]
	ev.Subscribe(func(c *Cancel[float64]) {
		if c.Data > 100 {
			c.Veto()
		}
	})

	ok := NewCancel(50.0)
	ev.Raise(ok)
	if ok.Cancelled {
		t.Error("50 should not be vetoed")
	}

	tooHigh := NewCancel(150.0)
	ev.Raise(tooHigh)
	if !tooHigh.Cancelled {
		t.Error("150 should be vetoed")
	}
}

func TestEvent_PanicRecovered(t *testing.T) {
	var ev Event[int]
	log := &captureLogger{}
	ev.SetLogger(log)

	var after bool
	ev.Subscribe(func(int) { panic("boom") })
	ev.Subscribe(func(int) { after = true })

	ev.Raise(1)

	if !after {
		t.Error("handler after a panicking one did not run")
	}
	if len(log.errors) != 1 {
		t.Errorf("logged %v, want one error", log.errors)
	}
}

func TestEvent_Concurrent(t *testing.T) {
	var ev Event[int]
	var total atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsub := ev.Subscribe(func(n int) { total.Add(int64(n)) })
			for j := 0; j < 100; j++ {
				ev.Raise(1)
			}
			unsub()
		}()
	}
	wg.Wait()

	if ev.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ev.Len())
	}
	if total.Load() == 0 {
		t.Error("no handler ran")
	}
}
