// Package sched schedules validator invocations per field path. It owns the
// debounce/throttle timers and the per-path fencing tokens used to discard
// stale asynchronous results: results apply in request order by token, never
// in completion order.
package sched

import (
	"sync"
	"time"
)

// Policy selects at most one of debounce or throttle for a path.
type Policy struct {
	Debounce time.Duration
	Throttle time.Duration
}

// Job is a scheduled invocation. It receives the fencing token issued for the
// request; whoever applies the job's result must check the token is still the
// latest for the path before mutating any state.
type Job func(token uint64)

type entry struct {
	policy    Policy
	seq       uint64
	job       Job
	timer     *time.Timer
	windowEnd time.Time
}

// Runner keeps at most one pending invocation per path. A new invocation
// supersedes the pending one: debounce restarts the quiescence timer,
// throttle defers to the window's end with the latest job winning.
type Runner struct {
	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
}

func New() *Runner {
	return &Runner{entries: map[string]*entry{}}
}

// SetPolicy configures the scheduling policy for a path. An enabled throttle
// always carries an explicit window; the caller normalizes zero to its default.
func (r *Runner) SetPolicy(path string, p Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensure(path).policy = p
}

func (r *Runner) ensure(path string) *entry {
	e, ok := r.entries[path]
	if !ok {
		e = &entry{}
		r.entries[path] = e
	}
	return e
}

// Reserve issues a new fencing token for the path. Callers reserve inside the
// same critical section that captures the value to validate, so token order
// always matches value order even under concurrent requests. Returns 0 when
// the runner is closed.
func (r *Runner) Reserve(path string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0
	}
	e := r.ensure(path)
	e.seq++
	return e.seq
}

// Schedule arranges for job to run under the path's policy, fenced by a token
// from Reserve. A zero or stale token (a newer reservation exists) drops the
// job; the newer request owns the path. With no policy the job runs
// synchronously before Schedule returns.
func (r *Runner) Schedule(path string, token uint64, job Job) {
	r.mu.Lock()
	if r.closed || token == 0 {
		r.mu.Unlock()
		return
	}
	e := r.ensure(path)
	if e.seq != token {
		r.mu.Unlock()
		return
	}
	e.job = job

	switch {
	case e.policy.Debounce > 0:
		if e.timer != nil {
			e.timer.Stop()
		}
		e.timer = time.AfterFunc(e.policy.Debounce, func() { r.fireDebounce(path, token) })
		r.mu.Unlock()

	case e.policy.Throttle > 0:
		now := time.Now()
		if e.timer == nil && now.After(e.windowEnd) {
			// Leading edge: start a fresh window and run immediately.
			e.windowEnd = now.Add(e.policy.Throttle)
			r.mu.Unlock()
			job(token)
			return
		}
		if e.timer == nil {
			e.timer = time.AfterFunc(time.Until(e.windowEnd), func() { r.fireThrottle(path) })
		}
		// Within the window: the stored job (latest value) runs at window end.
		r.mu.Unlock()

	default:
		r.mu.Unlock()
		job(token)
	}
}

func (r *Runner) fireDebounce(path string, token uint64) {
	r.mu.Lock()
	e, ok := r.entries[path]
	if !ok || r.closed || e.seq != token {
		// A newer request restarted the timer (or superseded us); abandon.
		r.mu.Unlock()
		return
	}
	e.timer = nil
	job := e.job
	r.mu.Unlock()
	job(token)
}

func (r *Runner) fireThrottle(path string) {
	r.mu.Lock()
	e, ok := r.entries[path]
	if !ok || r.closed || e.job == nil {
		r.mu.Unlock()
		return
	}
	e.timer = nil
	e.windowEnd = time.Now().Add(e.policy.Throttle)
	token := e.seq
	job := e.job
	r.mu.Unlock()
	job(token)
}

// Supersede invalidates any pending or in-flight invocation for the path and
// returns a fresh token the caller may run a pipeline under directly (submit
// and reset paths). Late results carrying older tokens become no-ops.
func (r *Runner) Supersede(path string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0
	}
	e := r.ensure(path)
	e.seq++
	e.job = nil
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	return e.seq
}

// IsLatest reports whether token is still the newest issued for the path.
// A zero token is never latest.
func (r *Runner) IsLatest(path string, token uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || token == 0 {
		return false
	}
	e, ok := r.entries[path]
	return ok && e.seq == token
}

// Close stops all timers and invalidates every outstanding token. Any result
// arriving after Close is a guaranteed no-op.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for _, e := range r.entries {
		e.seq++
		e.job = nil
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
	}
}
