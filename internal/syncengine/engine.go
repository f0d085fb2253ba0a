package syncengine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/md-faizanahmad/quick-tracker/internal/connectivity"
	"github.com/md-faizanahmad/quick-tracker/internal/models"
	"github.com/md-faizanahmad/quick-tracker/internal/store"

	"github.com/sirupsen/logrus"
)

// Status is the process-wide sync state consumed by the presentation
// layer.
type Status string

const (
	// StatusIdle means nothing is pending or in flight.
	StatusIdle Status = "idle"
	// StatusSyncing means a pass is draining the pending set right now.
	StatusSyncing Status = "syncing"
	// StatusWaiting means the last pass failed and exactly one retry is
	// scheduled.
	StatusWaiting Status = "waiting"
	// StatusError means the remote rejected the batch as malformed; no
	// automatic retry is scheduled for this pass.
	StatusError Status = "error"
)

// Engine drains pending records to the remote endpoint. It owns the sync
// status and the retry timer; at most one pass is ever in flight. It is
// constructed once and lives independently of any presentation lifecycle.
type Engine struct {
	store      *store.Store
	client     *Client
	monitor    *connectivity.Monitor
	log        *logrus.Logger
	retryDelay time.Duration

	mu         sync.Mutex
	status     Status
	inFlight   bool
	stopped    bool
	retryTimer *time.Timer
	subs       map[int]func(Status)
	nextSub    int
	unsubMon   func()

	wg sync.WaitGroup
}

func New(st *store.Store, client *Client, mon *connectivity.Monitor, log *logrus.Logger, retryDelay time.Duration) *Engine {
	return &Engine{
		store:      st,
		client:     client,
		monitor:    mon,
		log:        log,
		retryDelay: retryDelay,
		status:     StatusIdle,
		subs:       make(map[int]func(Status)),
	}
}

// Start subscribes to connectivity transitions and, if the host is
// already online, kicks off an initial pass.
func (e *Engine) Start() {
	e.mu.Lock()
	e.unsubMon = e.monitor.Subscribe(func(online bool) {
		if online {
			e.TriggerSync()
		} else {
			e.handleOffline()
		}
	})
	e.mu.Unlock()

	if e.monitor.Online() {
		e.TriggerSync()
	}
}

// Stop cancels any pending retry, unsubscribes from the monitor and
// waits for an in-flight pass to finish.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopped = true
	if e.unsubMon != nil {
		e.unsubMon()
		e.unsubMon = nil
	}
	e.cancelRetryLocked()
	e.mu.Unlock()

	e.wg.Wait()
}

// Status returns the current sync status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Online reports the monitor's current reading.
func (e *Engine) Online() bool {
	return e.monitor.Online()
}

// SubscribeStatus registers a status listener and returns its
// unsubscribe function.
func (e *Engine) SubscribeStatus(fn func(Status)) (cancel func()) {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// TriggerSync starts a sync pass unless one is already in flight or the
// host is offline. A trigger while waiting supersedes the scheduled
// retry and runs immediately.
func (e *Engine) TriggerSync() {
	e.mu.Lock()
	if e.stopped || e.inFlight || !e.monitor.Online() {
		e.mu.Unlock()
		return
	}
	e.inFlight = true
	e.cancelRetryLocked()
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.runPass()
	}()
}

// RetryRecord re-sends a single record outside the normal pass, as
// requested by the user from the list view. The record is flipped back
// to pending first so the UI reflects it immediately; on failure it is
// simply left pending for the next automatic pass.
func (e *Engine) RetryRecord(id string) error {
	rec, err := e.store.Get(id)
	if err != nil {
		return err
	}
	if err := e.store.MarkPending(id); err != nil {
		return err
	}
	rec.Synced = false

	if _, err := e.client.PushBatch(context.Background(), []models.ExpenseRecord{*rec}); err != nil {
		e.log.WithError(err).WithField("id", id).Warn("manual retry failed, record stays pending")
		return nil
	}
	return e.store.MarkSynced(id)
}

func (e *Engine) runPass() {
	defer func() {
		e.mu.Lock()
		e.inFlight = false
		e.mu.Unlock()
	}()

	pending, err := e.store.GetUnsynced()
	if err != nil {
		// a storage read failure counts as a failed pass, retried later
		e.log.WithError(err).Error("read pending set")
		e.scheduleRetry()
		return
	}
	// empty pending set: no network call, no "syncing" blip in the UI
	if len(pending) == 0 {
		e.setStatus(StatusIdle)
		return
	}

	e.setStatus(StatusSyncing)

	accepted, err := e.client.PushBatch(context.Background(), pending)
	if err != nil {
		if errors.Is(err, ErrRejected) {
			e.log.WithError(err).Error("batch rejected, no automatic retry")
			e.setStatus(StatusError)
			return
		}
		e.log.WithError(err).Warn("sync pass failed")
		e.scheduleRetry()
		return
	}

	// each record is its own atomic flip: a crash mid-drain leaves a
	// partially synced batch, which the next pass safely finishes
	for i := range pending {
		if err := e.store.MarkSynced(pending[i].ID); err != nil {
			e.log.WithError(err).WithField("id", pending[i].ID).Error("mark synced")
		}
	}

	e.log.WithFields(logrus.Fields{
		"sent":     len(pending),
		"accepted": accepted,
	}).Info("sync pass complete")
	e.setStatus(StatusIdle)
}

// scheduleRetry arms exactly one retry after the fixed delay. The retry
// re-reads the pending set fresh; the failed batch is never reused. If
// the host went offline in the meantime there is nothing to wait for,
// so the engine goes straight back to idle.
func (e *Engine) scheduleRetry() {
	e.mu.Lock()
	online := e.monitor.Online() && !e.stopped
	if online {
		e.cancelRetryLocked()
		e.retryTimer = time.AfterFunc(e.retryDelay, e.TriggerSync)
	}
	e.mu.Unlock()

	if online {
		e.setStatus(StatusWaiting)
	} else {
		e.setStatus(StatusIdle)
	}
}

// handleOffline cancels the pending retry on an offline transition. An
// in-flight pass is left to fail on its own network call.
func (e *Engine) handleOffline() {
	e.mu.Lock()
	e.cancelRetryLocked()
	inFlight := e.inFlight
	e.mu.Unlock()

	if !inFlight {
		e.setStatus(StatusIdle)
	}
}

func (e *Engine) cancelRetryLocked() {
	if e.retryTimer != nil {
		e.retryTimer.Stop()
		e.retryTimer = nil
	}
}

func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	if e.status == s {
		e.mu.Unlock()
		return
	}
	e.status = s
	fns := make([]func(Status), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
