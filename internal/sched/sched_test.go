package sched

import (
	"sync"
	"testing"
	"time"
)

// recorder collects fired tokens in order.
type recorder struct {
	mu     sync.Mutex
	tokens []uint64
}

func (r *recorder) job(token uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, token)
}

func (r *recorder) fired() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint64(nil), r.tokens...)
}

// schedule reserves a token and hands the job over in one step, the way a
// single uncontended request flows.
func schedule(r *Runner, path string, job Job) uint64 {
	token := r.Reserve(path)
	r.Schedule(path, token, job)
	return token
}

func TestSchedule_NoPolicy_RunsSynchronously(t *testing.T) {
	r := New()
	defer r.Close()
	rec := &recorder{}

	token := schedule(r, "f", rec.job)
	if got := rec.fired(); len(got) != 1 || got[0] != token {
		t.Fatalf("expected synchronous run with token %d, got %v", token, got)
	}
	if !r.IsLatest("f", token) {
		t.Fatalf("token should still be latest")
	}
}

// A token reserved earlier than another is stale by the time it is scheduled:
// the job must be dropped so an older value can never run under a newer slot.
func TestSchedule_StaleTokenDropped(t *testing.T) {
	r := New()
	defer r.Close()
	older := &recorder{}
	newer := &recorder{}

	t1 := r.Reserve("f")
	t2 := r.Reserve("f")
	r.Schedule("f", t2, newer.job)
	r.Schedule("f", t1, older.job)

	if got := older.fired(); len(got) != 0 {
		t.Fatalf("stale token must not run, got %v", got)
	}
	if got := newer.fired(); len(got) != 1 || got[0] != t2 {
		t.Fatalf("latest token should run, got %v", got)
	}
	if r.IsLatest("f", t1) || !r.IsLatest("f", t2) {
		t.Fatalf("latest must be %d, not %d", t2, t1)
	}
}

func TestSchedule_Debounce_LatestWins(t *testing.T) {
	r := New()
	defer r.Close()
	r.SetPolicy("f", Policy{Debounce: 50 * time.Millisecond})
	rec := &recorder{}

	schedule(r, "f", rec.job)
	schedule(r, "f", rec.job)
	last := schedule(r, "f", rec.job)

	time.Sleep(250 * time.Millisecond)
	got := rec.fired()
	if len(got) != 1 || got[0] != last {
		t.Fatalf("expected exactly one fire with latest token %d, got %v", last, got)
	}
}

func TestSchedule_Debounce_RestartsOnNewRequest(t *testing.T) {
	r := New()
	defer r.Close()
	r.SetPolicy("f", Policy{Debounce: 80 * time.Millisecond})
	rec := &recorder{}

	schedule(r, "f", rec.job)
	time.Sleep(40 * time.Millisecond)
	if len(rec.fired()) != 0 {
		t.Fatalf("fired before quiescence elapsed")
	}
	last := schedule(r, "f", rec.job) // restart the timer
	time.Sleep(40 * time.Millisecond)
	if len(rec.fired()) != 0 {
		t.Fatalf("restarted timer fired too early")
	}
	time.Sleep(200 * time.Millisecond)
	got := rec.fired()
	if len(got) != 1 || got[0] != last {
		t.Fatalf("expected one fire for %d, got %v", last, got)
	}
}

func TestSchedule_Throttle_LeadingAndTrailing(t *testing.T) {
	r := New()
	defer r.Close()
	r.SetPolicy("f", Policy{Throttle: 100 * time.Millisecond})
	rec := &recorder{}

	first := schedule(r, "f", rec.job) // leading edge, runs immediately
	if got := rec.fired(); len(got) != 1 || got[0] != first {
		t.Fatalf("expected immediate leading run, got %v", got)
	}

	schedule(r, "f", rec.job)         // within window, deferred
	last := schedule(r, "f", rec.job) // supersedes the deferred one
	time.Sleep(300 * time.Millisecond)

	got := rec.fired()
	if len(got) != 2 {
		t.Fatalf("expected leading + one trailing fire, got %v", got)
	}
	if got[1] != last {
		t.Fatalf("trailing fire should carry the latest token %d, got %d", last, got[1])
	}
}

func TestSupersede_CancelsPendingAndInvalidates(t *testing.T) {
	r := New()
	defer r.Close()
	r.SetPolicy("f", Policy{Debounce: 40 * time.Millisecond})
	rec := &recorder{}

	old := schedule(r, "f", rec.job)
	fresh := r.Supersede("f")
	time.Sleep(150 * time.Millisecond)

	if got := rec.fired(); len(got) != 0 {
		t.Fatalf("superseded timer must not fire, got %v", got)
	}
	if r.IsLatest("f", old) {
		t.Fatalf("old token should be stale")
	}
	if !r.IsLatest("f", fresh) {
		t.Fatalf("supersede token should be latest")
	}
}

func TestClose_InvalidatesEverything(t *testing.T) {
	r := New()
	r.SetPolicy("f", Policy{Debounce: 40 * time.Millisecond})
	rec := &recorder{}

	token := schedule(r, "f", rec.job)
	r.Close()
	time.Sleep(120 * time.Millisecond)

	if got := rec.fired(); len(got) != 0 {
		t.Fatalf("closed runner must not fire, got %v", got)
	}
	if r.IsLatest("f", token) {
		t.Fatalf("tokens must be invalid after Close")
	}
	if got := r.Reserve("f"); got != 0 {
		t.Fatalf("Reserve after Close should return 0, got %d", got)
	}
	r.Schedule("f", 0, rec.job)
	if got := rec.fired(); len(got) != 0 {
		t.Fatalf("zero token must never run, got %v", got)
	}
}
