package dispatcher

import (
	"container/heap"
	"errors"
	"log"
	"sync"
	"sync/atomic"
)

// ErrQueueFull is returned by PostEvent when the in queue is at capacity.
// The caller decides whether to retry.
var ErrQueueFull = errors.New("dispatcher: queue_full")

const (
	defaultInQueueSize  = 1024
	defaultRTQueueSize  = 1024
	defaultOutQueueSize = 1024
)

// RTExecutor performs the graph-mutating side effects of RT-ordered
// events (parameter/property/keyboard/program/bypass). It is wired in
// after the dispatcher is constructed, mirroring the late-binding
// pattern used for the OSC frontend in §9.
type RTExecutor interface {
	Execute(event *Event) (EventStatus, *Notification)
}

type subscription struct {
	id       int64
	kind     NotificationKind
	listener func(Notification)
}

// Dispatcher is the only sanctioned channel for control-plane mutations
// that touch RT state. See package doc and spec §4.D.
type Dispatcher struct {
	logger *log.Logger

	nextEventId int64
	nextSubId   int64
	nextPoster  int64

	inCh  chan *Event
	rtCh  chan *Event
	outCh chan Notification

	completionCh chan completionJob

	pendingMu sync.Mutex
	pending   pendingHeap

	executorMu sync.RWMutex
	executor   RTExecutor

	postersMu sync.Mutex
	posters   map[PosterId]bool

	subsMu sync.RWMutex
	subs   map[NotificationKind]map[int64]func(Notification)

	stopCh chan struct{}
	wg     sync.WaitGroup
}

type completionJob struct {
	event  *Event
	status EventStatus
}

// New constructs a Dispatcher and starts its worker goroutines. Stop
// must be called to release them.
func New(logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	d := &Dispatcher{
		logger:       logger,
		inCh:         make(chan *Event, defaultInQueueSize),
		rtCh:         make(chan *Event, defaultRTQueueSize),
		outCh:        make(chan Notification, defaultOutQueueSize),
		completionCh: make(chan completionJob, defaultInQueueSize),
		posters:      make(map[PosterId]bool),
		subs:         make(map[NotificationKind]map[int64]func(Notification)),
		stopCh:       make(chan struct{}),
	}
	d.wg.Add(3)
	go d.runInWorker()
	go d.runCompletionWorker()
	go d.runOutWorker()
	return d
}

// Stop shuts the dispatcher's worker goroutines down. In-flight events
// are not guaranteed to finish executing.
func (d *Dispatcher) Stop() {
	close(d.stopCh)
	d.wg.Wait()
}

// SetRTExecutor wires the RT-side executor in, or clears it if nil.
func (d *Dispatcher) SetRTExecutor(executor RTExecutor) {
	d.executorMu.Lock()
	defer d.executorMu.Unlock()
	d.executor = executor
}

// RegisterPoster enumerates a new poster identity.
func (d *Dispatcher) RegisterPoster() PosterId {
	p := PosterId(atomic.AddInt64(&d.nextPoster, 1))
	d.postersMu.Lock()
	d.posters[p] = true
	d.postersMu.Unlock()
	return p
}

// UnregisterPoster stops future completion callbacks for p; events
// already posted by p still execute, but their completion is suppressed.
func (d *Dispatcher) UnregisterPoster(p PosterId) {
	d.postersMu.Lock()
	defer d.postersMu.Unlock()
	delete(d.posters, p)
}

func (d *Dispatcher) posterActive(p PosterId) bool {
	if p == 0 {
		return true // unattributed posts (e.g. internal) always get their callback
	}
	d.postersMu.Lock()
	defer d.postersMu.Unlock()
	return d.posters[p]
}

// PostEvent transfers ownership of event into the dispatcher. Posting is
// wait-free for the caller: it returns ErrQueueFull immediately rather
// than blocking if the in queue is at capacity.
func (d *Dispatcher) PostEvent(event *Event) error {
	event.Id = atomic.AddInt64(&d.nextEventId, 1)
	select {
	case d.inCh <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe registers listener for notifications of kind. Returns a
// handle usable with Unsubscribe.
func (d *Dispatcher) Subscribe(kind NotificationKind, listener func(Notification)) int64 {
	id := atomic.AddInt64(&d.nextSubId, 1)
	d.subsMu.Lock()
	defer d.subsMu.Unlock()
	if d.subs[kind] == nil {
		d.subs[kind] = make(map[int64]func(Notification))
	}
	d.subs[kind][id] = listener
	return id
}

// Unsubscribe removes a listener. No further delivery occurs after it
// returns; deliveries already in flight complete normally.
func (d *Dispatcher) Unsubscribe(kind NotificationKind, handle int64) {
	d.subsMu.Lock()
	defer d.subsMu.Unlock()
	delete(d.subs[kind], handle)
}

// Publish pushes a notification onto the out queue. Used both internally
// (after event execution) and by components that observe state changes
// outside the event path (e.g. the RT thread publishing a CPU timing
// update).
func (d *Dispatcher) Publish(n Notification) {
	select {
	case d.outCh <- n:
	default:
		d.logger.Printf("dispatcher: out queue full, dropping notification kind=%d", n.Kind)
	}
}

// runInWorker drains the in queue. Lambda events execute immediately;
// RT-ordered events are forwarded to the RT-thread SPSC queue.
func (d *Dispatcher) runInWorker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.stopCh:
			return
		case ev := <-d.inCh:
			if !ev.Kind.IsRTOrdered() {
				status, notif := d.runLambda(ev)
				if notif != nil {
					d.Publish(*notif)
				}
				d.completionCh <- completionJob{ev, status}
				continue
			}
			select {
			case d.rtCh <- ev:
			default:
				d.logger.Printf("dispatcher: rt queue full, dropping event id=%d", ev.Id)
				d.completionCh <- completionJob{ev, EventError}
			}
		}
	}
}

func (d *Dispatcher) runLambda(ev *Event) (EventStatus, *Notification) {
	if ev.Lambda == nil {
		return UnrecognizedEvent, nil
	}
	return ev.Lambda()
}

// Tick drains the RT SPSC queue into the priority structure and executes
// every event that is ready given sampleClock. It must be called once
// per audio block from the RT thread (or, in tests, from whatever
// drives the simulated transport).
func (d *Dispatcher) Tick(sampleClock int64) {
	d.pendingMu.Lock()
drain:
	for {
		select {
		case ev := <-d.rtCh:
			heap.Push(&d.pending, ev)
		default:
			break drain
		}
	}
	var ready []*Event
	for d.pending.Len() > 0 && d.pending[0].ready(sampleClock) {
		ev := heap.Pop(&d.pending).(*Event)
		ready = append(ready, ev)
	}
	d.pendingMu.Unlock()

	for _, ev := range ready {
		status, notif := d.executeRT(ev)
		if notif != nil {
			d.Publish(*notif)
		}
		d.completionCh <- completionJob{ev, status}
	}
}

func (d *Dispatcher) executeRT(ev *Event) (EventStatus, *Notification) {
	d.executorMu.RLock()
	exec := d.executor
	d.executorMu.RUnlock()
	if exec == nil {
		return NotHandled, nil
	}
	return exec.Execute(ev)
}

func (d *Dispatcher) runCompletionWorker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.stopCh:
			return
		case job := <-d.completionCh:
			if job.event.Completion != nil && d.posterActive(job.event.PosterId) {
				job.event.Completion(job.event, job.status)
			}
		}
	}
}

func (d *Dispatcher) runOutWorker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.stopCh:
			return
		case n := <-d.outCh:
			d.subsMu.RLock()
			listeners := make([]func(Notification), 0, len(d.subs[n.Kind]))
			for _, l := range d.subs[n.Kind] {
				listeners = append(listeners, l)
			}
			d.subsMu.RUnlock()
			for _, l := range listeners {
				l(n)
			}
		}
	}
}

// PendingCount reports how many RT-ordered events are currently held
// (queued on the SPSC channel or waiting in the priority structure),
// primarily useful for tests and diagnostics.
func (d *Dispatcher) PendingCount() int {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	return d.pending.Len() + len(d.rtCh)
}
