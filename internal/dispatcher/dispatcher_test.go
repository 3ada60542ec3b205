package dispatcher

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}

func TestPostLambdaEventExecutesAndCompletes(t *testing.T) {
	d := New(nil)
	defer d.Stop()

	var ran bool
	var gotStatus EventStatus
	var mu sync.Mutex

	ev := &Event{
		Kind:      EventLambda,
		Timestamp: IMMEDIATE_PROCESS,
		Lambda: func() (EventStatus, *Notification) {
			mu.Lock()
			ran = true
			mu.Unlock()
			return HandledOk, nil
		},
		Completion: func(e *Event, status EventStatus) {
			mu.Lock()
			gotStatus = status
			mu.Unlock()
		},
	}
	require.NoError(t, d.PostEvent(ev))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ran
	})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotStatus == HandledOk
	})
}

type fakeExecutor struct {
	mu       sync.Mutex
	executed []*Event
	result   EventStatus
}

func (f *fakeExecutor) Execute(ev *Event) (EventStatus, *Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, ev)
	return f.result, &Notification{Kind: NotificationParameterChange, ProcessorId: ev.ProcessorId}
}

func (f *fakeExecutor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.executed)
}

func TestRTOrderedEventWaitsForTick(t *testing.T) {
	d := New(nil)
	defer d.Stop()
	exec := &fakeExecutor{result: HandledOk}
	d.SetRTExecutor(exec)

	ev := &Event{Kind: EventParameterChange, Timestamp: IMMEDIATE_PROCESS, ProcessorId: 42}
	require.NoError(t, d.PostEvent(ev))

	waitFor(t, func() bool { return d.PendingCount() == 1 })
	assert.Equal(t, 0, exec.count())

	d.Tick(0)
	waitFor(t, func() bool { return exec.count() == 1 })
}

func TestFutureDatedEventHeldUntilSampleClockReachesIt(t *testing.T) {
	d := New(nil)
	defer d.Stop()
	exec := &fakeExecutor{result: HandledOk}
	d.SetRTExecutor(exec)

	ev := &Event{Kind: EventParameterChange, Timestamp: 1000, ProcessorId: 1}
	require.NoError(t, d.PostEvent(ev))
	waitFor(t, func() bool { return d.PendingCount() == 1 })

	d.Tick(500) // not yet due
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, exec.count())

	d.Tick(1000) // now due
	waitFor(t, func() bool { return exec.count() == 1 })
}

func TestSubscribeReceivesPublishedNotifications(t *testing.T) {
	d := New(nil)
	defer d.Stop()

	received := make(chan Notification, 1)
	d.Subscribe(NotificationParameterChange, func(n Notification) {
		received <- n
	})

	d.Publish(Notification{Kind: NotificationParameterChange, ProcessorId: 7})

	select {
	case n := <-received:
		assert.EqualValues(t, 7, n.ProcessorId)
	case <-time.After(time.Second):
		t.Fatal("notification not received")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	d := New(nil)
	defer d.Stop()

	var count int
	var mu sync.Mutex
	handle := d.Subscribe(NotificationTrackUpdate, func(n Notification) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	d.Publish(Notification{Kind: NotificationTrackUpdate})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	})

	d.Unsubscribe(NotificationTrackUpdate, handle)
	d.Publish(Notification{Kind: NotificationTrackUpdate})
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestUnregisteredPosterSuppressesCompletionButStillExecutes(t *testing.T) {
	d := New(nil)
	defer d.Stop()
	exec := &fakeExecutor{result: HandledOk}
	d.SetRTExecutor(exec)

	poster := d.RegisterPoster()
	d.UnregisterPoster(poster)

	var called bool
	var mu sync.Mutex
	ev := &Event{
		Kind:      EventParameterChange,
		Timestamp: IMMEDIATE_PROCESS,
		PosterId:  poster,
		Completion: func(e *Event, status EventStatus) {
			mu.Lock()
			called = true
			mu.Unlock()
		},
	}
	require.NoError(t, d.PostEvent(ev))
	waitFor(t, func() bool { return d.PendingCount() == 1 })
	d.Tick(0)

	waitFor(t, func() bool { return exec.count() == 1 })
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, called)
}

func TestQueueFullReturnsError(t *testing.T) {
	d := New(nil)
	defer d.Stop()

	// Flood the in queue faster than the worker can drain by blocking
	// the worker on a slow lambda first.
	block := make(chan struct{})
	require.NoError(t, d.PostEvent(&Event{
		Kind:      EventLambda,
		Timestamp: IMMEDIATE_PROCESS,
		Lambda: func() (EventStatus, *Notification) {
			<-block
			return HandledOk, nil
		},
	}))

	var lastErr error
	for i := 0; i < defaultInQueueSize+10; i++ {
		err := d.PostEvent(&Event{Kind: EventLambda, Timestamp: IMMEDIATE_PROCESS, Lambda: func() (EventStatus, *Notification) {
			return HandledOk, nil
		}})
		if err != nil {
			lastErr = err
			break
		}
	}
	close(block)
	assert.ErrorIs(t, lastErr, ErrQueueFull)
}
