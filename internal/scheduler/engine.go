package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sandeepkv93/remindd/internal/logging"
	"github.com/sandeepkv93/remindd/internal/metrics"
	"github.com/sandeepkv93/remindd/internal/model"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrEngineStopped      = errors.New("scheduler: engine stopped")
	ErrUnknownHandle      = errors.New("scheduler: unknown alarm handle")
	ErrInvalidChannel     = errors.New("scheduler: channel id is required")
)

// Alarm is a one-shot alert armed in the engine.
type Alarm struct {
	Handle  string
	FireAt  time.Time
	Payload model.Payload
	ArmedAt time.Time
}

// AlarmStore keeps armed alarms across restarts. DeleteAlarm must not fail
// for a handle that is already gone.
type AlarmStore interface {
	SaveAlarm(ctx context.Context, a Alarm) error
	DeleteAlarm(ctx context.Context, handle string) error
	ListAlarms(ctx context.Context) ([]Alarm, error)
}

// Authorizer answers whether alerts may be shown to the user.
type Authorizer interface {
	Status(ctx context.Context) (bool, error)
	Request(ctx context.Context) (bool, error)
}

type queueItem struct {
	handle string
	fireAt time.Time
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].fireAt.Before(pq[j].fireAt)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

type Option func(*Engine)

func WithStore(s AlarmStore) Option {
	return func(e *Engine) { e.store = s }
}

func WithAuthorizer(a Authorizer) Option {
	return func(e *Engine) { e.auth = a }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = metrics.OrNoop(r) }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = logging.OrDiscard(l) }
}

// Engine is the delayed-delivery dispatcher. Disarmed alarms stay in the
// heap until they surface and are skipped because they are no longer pending.
type Engine struct {
	mu       sync.Mutex
	queue    priorityQueue
	pending  map[string]Alarm
	retired  map[string]bool // fired or disarmed handle -> removed from the store
	armSeq   uint64
	armedAt  map[string]uint64 // local arms a running Sync may not have seen
	channels map[string]model.ChannelConfig
	out      chan Alarm
	wakeup   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	dropped  uint64

	store     AlarmStore
	auth      Authorizer
	metrics   metrics.Recorder
	logger    *log.Logger
	newHandle func() string
}

func NewEngine(bufferSize int, opts ...Option) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	e := &Engine{
		queue:     make(priorityQueue, 0),
		pending:   make(map[string]Alarm),
		retired:   make(map[string]bool),
		armedAt:   make(map[string]uint64),
		channels:  make(map[string]model.ChannelConfig),
		out:       make(chan Alarm, bufferSize),
		wakeup:    make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		metrics:   metrics.Noop{},
		logger:    logging.Discard(),
		newHandle: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// C delivers alarms as they come due.
func (e *Engine) C() <-chan Alarm {
	return e.out
}

// Restore loads persisted alarms into the pending set without delivering
// anything. Start calls it; short-lived tools call it directly so they can
// disarm alarms armed by an earlier process.
func (e *Engine) Restore(ctx context.Context) (int, error) {
	if e.store == nil {
		return 0, nil
	}
	list, err := e.store.ListAlarms(ctx)
	if err != nil {
		return 0, fmt.Errorf("restore alarms: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	restored := 0
	for _, a := range list {
		if _, ok := e.pending[a.Handle]; ok {
			continue
		}
		if _, ok := e.retired[a.Handle]; ok {
			continue
		}
		e.pending[a.Handle] = a
		heap.Push(&e.queue, queueItem{handle: a.Handle, fireAt: a.FireAt})
		restored++
	}
	return restored, nil
}

// Sync makes the pending set match the store, picking up alarms armed by
// another process and dropping ones disarmed elsewhere. Fired and disarmed
// handles are remembered until a listing no longer returns them, so a listing
// taken before their row was deleted cannot bring them back. Alarms armed
// here after the listing started are kept.
func (e *Engine) Sync(ctx context.Context) (added, dropped int, err error) {
	if e.store == nil {
		return 0, 0, nil
	}
	e.mu.Lock()
	seq := e.armSeq
	e.mu.Unlock()
	list, err := e.store.ListAlarms(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("sync alarms: %w", err)
	}
	stored := make(map[string]Alarm, len(list))
	for _, a := range list {
		stored[a.Handle] = a
	}

	e.mu.Lock()
	for h, forgotten := range e.retired {
		if _, ok := stored[h]; forgotten && !ok {
			delete(e.retired, h)
		}
	}
	for h, n := range e.armedAt {
		if n <= seq {
			delete(e.armedAt, h)
		}
	}
	for h := range e.pending {
		if _, ok := e.armedAt[h]; ok {
			continue
		}
		if _, ok := stored[h]; !ok {
			delete(e.pending, h)
			dropped++
		}
	}
	for h, a := range stored {
		if _, ok := e.pending[h]; ok {
			continue
		}
		if _, ok := e.retired[h]; ok {
			continue
		}
		e.pending[h] = a
		heap.Push(&e.queue, queueItem{handle: h, fireAt: a.FireAt})
		added++
	}
	e.mu.Unlock()

	if added+dropped > 0 {
		e.signalWakeup()
	}
	return added, dropped, nil
}

// Start restores persisted alarms and launches the timer loop. Alarms that
// came due while nothing was running fire right away.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if started {
		return nil
	}

	restored, err := e.Restore(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return nil
	}
	e.started = true
	if restored > 0 {
		e.logger.Info("restored alarms", "count", restored)
	}
	go e.loop()
	return nil
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Arm schedules a one-shot alert and returns its handle.
func (e *Engine) Arm(ctx context.Context, fireAt time.Time, p model.Payload) (string, error) {
	if fireAt.IsZero() {
		return "", ErrInvalidTriggerTime
	}
	if p.Channel == "" {
		p.Channel = model.DefaultChannelID
	}

	e.mu.Lock()
	stopped := e.stopped
	e.mu.Unlock()
	if stopped {
		return "", ErrEngineStopped
	}

	alarm := Alarm{
		Handle:  e.newHandle(),
		FireAt:  fireAt,
		Payload: p,
		ArmedAt: time.Now().UTC(),
	}
	if e.store != nil {
		if err := e.store.SaveAlarm(ctx, alarm); err != nil {
			return "", fmt.Errorf("persist alarm: %w", err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store != nil {
		e.armSeq++
		e.armedAt[alarm.Handle] = e.armSeq
	}
	e.pending[alarm.Handle] = alarm
	heap.Push(&e.queue, queueItem{handle: alarm.Handle, fireAt: alarm.FireAt})
	e.signalWakeup()
	return alarm.Handle, nil
}

// Disarm cancels a pending alarm. ErrUnknownHandle means it already fired
// or was never armed.
func (e *Engine) Disarm(ctx context.Context, handle string) error {
	e.mu.Lock()
	_, ok := e.pending[handle]
	delete(e.pending, handle)
	if ok {
		e.retire(handle)
	}
	e.mu.Unlock()
	if !ok {
		return ErrUnknownHandle
	}
	if err := e.forgetHandle(ctx, handle); err != nil {
		return err
	}
	e.signalWakeup()
	return nil
}

// DisarmAll cancels every pending alarm and reports how many were removed.
func (e *Engine) DisarmAll(ctx context.Context) (int, error) {
	e.mu.Lock()
	handles := make([]string, 0, len(e.pending))
	for h := range e.pending {
		handles = append(handles, h)
		e.retire(h)
	}
	e.pending = make(map[string]Alarm)
	e.queue = e.queue[:0]
	e.mu.Unlock()

	var errs []error
	if e.store != nil {
		persisted, err := e.store.ListAlarms(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("list alarms: %w", err))
		}
		seen := make(map[string]bool, len(handles))
		for _, h := range handles {
			seen[h] = true
		}
		for _, a := range persisted {
			if !seen[a.Handle] {
				handles = append(handles, a.Handle)
				e.mu.Lock()
				e.retire(a.Handle)
				e.mu.Unlock()
			}
		}
		for _, h := range handles {
			if err := e.forgetHandle(ctx, h); err != nil {
				errs = append(errs, err)
			}
		}
	}
	e.signalWakeup()
	return len(handles), errors.Join(errs...)
}

// Pending lists armed alarms ordered by fire time.
func (e *Engine) Pending() []Alarm {
	e.mu.Lock()
	out := make([]Alarm, 0, len(e.pending))
	for _, a := range e.pending {
		out = append(out, a)
	}
	e.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

// PermissionStatus reports the current authorization. Without an
// authorizer alerts are always allowed.
func (e *Engine) PermissionStatus(ctx context.Context) (bool, error) {
	if e.auth == nil {
		return true, nil
	}
	return e.auth.Status(ctx)
}

func (e *Engine) RequestPermission(ctx context.Context) (bool, error) {
	if e.auth == nil {
		return true, nil
	}
	return e.auth.Request(ctx)
}

// EnsureChannel registers a delivery channel. Registering the same id again
// replaces its settings.
func (e *Engine) EnsureChannel(_ context.Context, cfg model.ChannelConfig) error {
	if strings.TrimSpace(cfg.ID) == "" {
		return ErrInvalidChannel
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.channels[cfg.ID] = cfg
	return nil
}

func (e *Engine) Channel(id string) (model.ChannelConfig, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cfg, ok := e.channels[id]
	return cfg, ok
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.fireAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now().UTC())
			for _, a := range due {
				e.forget(a)
				select {
				case e.out <- a:
					e.metrics.AlarmFired(string(a.Payload.Kind))
				default:
					atomic.AddUint64(&e.dropped, 1)
					e.metrics.AlarmDropped()
					e.logger.Warn("alarm dropped, consumer too slow", "handle", a.Handle, "task", a.Payload.TaskID)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) forget(a Alarm) {
	if err := e.forgetHandle(context.Background(), a.Handle); err != nil {
		e.logger.Error("forget fired alarm", "handle", a.Handle, "err", err)
	}
}

// retire marks a handle that left the pending set. Callers hold e.mu.
func (e *Engine) retire(handle string) {
	if e.store != nil {
		e.retired[handle] = false
	}
	delete(e.armedAt, handle)
}

// forgetHandle deletes the stored row of a retired handle.
func (e *Engine) forgetHandle(ctx context.Context, handle string) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.DeleteAlarm(ctx, handle); err != nil {
		return fmt.Errorf("forget alarm %s: %w", handle, err)
	}
	e.mu.Lock()
	if _, ok := e.retired[handle]; ok {
		e.retired[handle] = true
	}
	e.mu.Unlock()
	return nil
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

// peek discards disarmed entries sitting at the top of the heap.
func (e *Engine) peek() (queueItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.queue) > 0 {
		top := e.queue[0]
		if _, ok := e.pending[top.handle]; ok {
			return top, true
		}
		heap.Pop(&e.queue)
	}
	return queueItem{}, false
}

func (e *Engine) popDue(now time.Time) []Alarm {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Alarm, 0)
	for len(e.queue) > 0 {
		next := e.queue[0]
		if next.fireAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		alarm, ok := e.pending[item.handle]
		if !ok {
			continue
		}
		delete(e.pending, item.handle)
		e.retire(item.handle)
		out = append(out, alarm)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
