package runtime

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestZeroValueNotifyIsSafe(t *testing.T) {
	var o Observable
	o.Notify("Name") // no listeners, must not panic
}

func TestSubscribeReceivesNotifications(t *testing.T) {
	var o Observable
	var got []string

	o.Subscribe(func(property string) {
		got = append(got, property)
	})

	o.Notify("Name")
	o.Notify("Email")

	if len(got) != 2 || got[0] != "Name" || got[1] != "Email" {
		t.Errorf("Expected [Name Email], got %v", got)
	}
}

func TestListenersFireInRegistrationOrder(t *testing.T) {
	var o Observable
	var order []int

	for i := 0; i < 5; i++ {
		i := i
		o.Subscribe(func(string) {
			order = append(order, i)
		})
	}

	o.Notify("Name")

	if len(order) != 5 {
		t.Fatalf("Expected 5 calls, got %d", len(order))
	}
	for i, id := range order {
		if id != i {
			t.Fatalf("Expected registration order, got %v", order)
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	var o Observable
	calls := 0

	id := o.Subscribe(func(string) { calls++ })
	o.Notify("Name")
	o.Unsubscribe(id)
	o.Notify("Name")

	if calls != 1 {
		t.Errorf("Expected 1 call after unsubscribe, got %d", calls)
	}
	if o.ListenerCount() != 0 {
		t.Errorf("Expected 0 listeners, got %d", o.ListenerCount())
	}
}

func TestUnsubscribeUnknownIDIsSafe(t *testing.T) {
	var o Observable
	o.Subscribe(func(string) {})

	o.Unsubscribe(uuid.New())

	if o.ListenerCount() != 1 {
		t.Errorf("Unknown id should not remove anything, have %d listeners", o.ListenerCount())
	}
}

func TestUnsubscribeTwiceIsSafe(t *testing.T) {
	var o Observable
	id := o.Subscribe(func(string) {})

	o.Unsubscribe(id)
	o.Unsubscribe(id)

	if o.ListenerCount() != 0 {
		t.Errorf("Expected 0 listeners, got %d", o.ListenerCount())
	}
}

func TestUnsubscribeKeepsOrderOfRemaining(t *testing.T) {
	var o Observable
	var got []string

	o.Subscribe(func(string) { got = append(got, "first") })
	id := o.Subscribe(func(string) { got = append(got, "second") })
	o.Subscribe(func(string) { got = append(got, "third") })

	o.Unsubscribe(id)
	o.Notify("Name")

	if len(got) != 2 || got[0] != "first" || got[1] != "third" {
		t.Errorf("Expected [first third], got %v", got)
	}
}

func TestListenerMaySubscribeDuringNotify(t *testing.T) {
	var o Observable
	lateCalls := 0

	o.Subscribe(func(string) {
		o.Subscribe(func(string) { lateCalls++ })
	})

	o.Notify("Name")
	if lateCalls != 0 {
		t.Error("A listener added mid-notification should not fire in the same round")
	}

	o.Notify("Name")
	if lateCalls != 1 {
		t.Errorf("Expected the late listener on the next round, got %d calls", lateCalls)
	}
}

func TestListenerMayUnsubscribeItself(t *testing.T) {
	var o Observable
	calls := 0

	var id uuid.UUID
	id = o.Subscribe(func(string) {
		calls++
		o.Unsubscribe(id)
	})

	o.Notify("Name")
	o.Notify("Name")

	if calls != 1 {
		t.Errorf("Self-removing listener should fire once, got %d", calls)
	}
}

func TestEmbeddedObservablePromotesNotify(t *testing.T) {
	type Person struct {
		Observable
		name string
	}

	p := &Person{}
	var got []string
	p.Subscribe(func(property string) { got = append(got, property) })

	// The shape generated setters take.
	setName := func(value string) {
		changed := p.name != value
		p.name = value
		if !changed {
			return
		}
		p.Notify("Name")
	}

	setName("Ada")
	setName("Ada")
	setName("Grace")

	if len(got) != 2 || got[0] != "Name" || got[1] != "Name" {
		t.Errorf("Expected two Name notifications, got %v", got)
	}
}

func TestConcurrentSubscribeAndNotify(t *testing.T) {
	var o Observable
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id := o.Subscribe(func(string) {})
			o.Unsubscribe(id)
		}()
		go func() {
			defer wg.Done()
			o.Notify("Name")
		}()
	}

	wg.Wait()
}
