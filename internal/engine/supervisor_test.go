package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/petrijr/sigflow/pkg/api"
)

func TestTimeoutReturnsPristinePreRunState(t *testing.T) {
	ctx := context.Background()
	eng := New(nil)

	chain := api.Chain{
		Name: "slow",
		Handlers: []api.Handler{
			{Name: "mutate", Fn: func(ctx context.Context, sig api.Signal, state api.State) api.Result {
				state["touched"] = true
				return api.Emit(sig, state)
			}},
			{Name: "block", Fn: func(ctx context.Context, sig api.Signal, state api.State) api.Result {
				select {
				case <-time.After(5 * time.Second):
					return api.Halt("too late")
				case <-ctx.Done():
					return api.Fail("cancelled", state)
				}
			}},
		},
	}

	initial := api.State{"touched": false, "n": 42}

	start := time.Now()
	ex := eng.Execute(ctx, chain, api.NewSignal("go", nil), initial, api.Limits{
		Timeout: 50 * time.Millisecond,
	})
	elapsed := time.Since(start)

	if ex.Status != api.StatusTimedOut {
		t.Fatalf("expected TIMED_OUT, got %q", ex.Status)
	}
	if !api.IsTimeout(ex.Err) {
		t.Fatalf("expected TimeoutError, got %v", ex.Err)
	}
	if elapsed > time.Second {
		t.Fatalf("supervisor waited too long: %s", elapsed)
	}

	// The state on a timeout is the snapshot taken before the run started,
	// untouched by the aborted pass.
	if v, _ := ex.State["touched"].(bool); v {
		t.Fatalf("timed-out run leaked mutated state: %+v", ex.State)
	}
	if n, _ := ex.State["n"].(int); n != 42 {
		t.Fatalf("pre-run state not preserved: %+v", ex.State)
	}
}

func TestTimeoutNotTriggeredWhenRunFinishesInTime(t *testing.T) {
	ctx := context.Background()
	eng := New(nil)

	chain := api.Chain{
		Name: "fast",
		Handlers: []api.Handler{
			{Name: "halt", Fn: func(ctx context.Context, sig api.Signal, state api.State) api.Result {
				return api.HaltWith("done", api.State{"ran": true})
			}},
		},
	}

	ex := eng.Execute(ctx, chain, api.NewSignal("go", nil), api.State{}, api.Limits{
		Timeout: time.Second,
	})

	if ex.Status != api.StatusCompleted || ex.Result != "done" {
		t.Fatalf("unexpected outcome: status=%q result=%v err=%v", ex.Status, ex.Result, ex.Err)
	}
	if v, _ := ex.State["ran"].(bool); !v {
		t.Fatalf("expected the run's final state, got %+v", ex.State)
	}
}

func TestTimeoutCancelsPassContext(t *testing.T) {
	ctx := context.Background()
	eng := New(nil)

	cancelled := make(chan struct{})
	chain := api.Chain{
		Name: "cooperative",
		Handlers: []api.Handler{
			{Name: "block", Fn: func(ctx context.Context, sig api.Signal, state api.State) api.Result {
				<-ctx.Done()
				close(cancelled)
				return api.Fail("cancelled", state)
			}},
		},
	}

	ex := eng.Execute(ctx, chain, api.NewSignal("go", nil), api.State{}, api.Limits{
		Timeout: 30 * time.Millisecond,
	})

	if ex.Status != api.StatusTimedOut {
		t.Fatalf("expected TIMED_OUT, got %q", ex.Status)
	}

	select {
	case <-cancelled:
		// The orphaned handler observed the cancellation.
	case <-time.After(time.Second):
		t.Fatalf("pass context was not cancelled on timeout")
	}
}

func TestTimeoutWithUncloneableStateFailsUpfront(t *testing.T) {
	ctx := context.Background()
	eng := New(nil)

	ran := false
	chain := api.Chain{
		Name: "never",
		Handlers: []api.Handler{
			{Name: "noop", Fn: func(ctx context.Context, sig api.Signal, state api.State) api.Result {
				ran = true
				return api.Halt(nil)
			}},
		},
	}

	// Channels cannot round-trip through the state codec.
	state := api.State{"ch": make(chan int)}
	ex := eng.Execute(ctx, chain, api.NewSignal("go", nil), state, api.Limits{
		Timeout: time.Second,
	})

	if ex.Status != api.StatusFailed {
		t.Fatalf("expected FAILED, got %q", ex.Status)
	}
	if ran {
		t.Fatalf("handler must not run when the pre-run snapshot fails")
	}
}

func TestCollectorSealedAfterTimeout(t *testing.T) {
	ctx := context.Background()
	eng := New(nil)

	release := make(chan struct{})
	chain := api.Chain{
		Name: "orphaned",
		Handlers: []api.Handler{
			{Name: "block", Fn: func(ctx context.Context, sig api.Signal, state api.State) api.Result {
				<-release
				return api.Emit(sig, state)
			}},
			{Name: "after", Fn: func(ctx context.Context, sig api.Signal, state api.State) api.Result {
				return api.Halt(nil)
			}},
		},
	}

	ex := eng.Execute(ctx, chain, api.NewSignal("go", nil), api.State{}, api.Limits{
		Timeout:      30 * time.Millisecond,
		CollectStats: true,
		ReturnStats:  true,
	})
	close(release)

	if ex.Status != api.StatusTimedOut {
		t.Fatalf("expected TIMED_OUT, got %q", ex.Status)
	}
	if ex.Stats == nil {
		t.Fatalf("expected finalized stats on timeout")
	}
	if ex.Stats.Outcome != api.StatusTimedOut {
		t.Fatalf("expected stats outcome TIMED_OUT, got %q", ex.Stats.Outcome)
	}
	// Only the blocked handler's invocation was recorded before sealing; the
	// orphaned pass's later steps are dropped.
	if ex.Stats.Steps != 1 {
		t.Fatalf("expected 1 recorded step, got %d", ex.Stats.Steps)
	}
}

type lifecycleRecorder struct {
	api.NoopObserver

	mu     sync.Mutex
	events []string
}

func (r *lifecycleRecorder) add(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *lifecycleRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *lifecycleRecorder) OnRunFailed(ctx context.Context, ex *api.Execution, err error) {
	r.add("run.failed")
}

func (r *lifecycleRecorder) OnStepStart(ctx context.Context, ex *api.Execution, handler string, index int, sig api.Signal) {
	r.add("step.start:" + handler)
}

func (r *lifecycleRecorder) OnStepCompleted(ctx context.Context, ex *api.Execution, handler string, index int, res api.Result, d time.Duration) {
	r.add("step.completed:" + handler)
}

func (r *lifecycleRecorder) OnSignalEmitted(ctx context.Context, ex *api.Execution, sig api.Signal) {
	r.add("signal:" + sig.Type)
}

func TestTimeoutSilencesOrphanedPassCallbacks(t *testing.T) {
	ctx := context.Background()
	rec := &lifecycleRecorder{}
	eng := New(rec)

	release := make(chan struct{})
	returned := make(chan struct{})
	chain := api.Chain{
		Name: "orphaned",
		Handlers: []api.Handler{
			{Name: "block", Fn: func(ctx context.Context, sig api.Signal, state api.State) api.Result {
				defer close(returned)
				<-release
				return api.Emit(sig, state)
			}},
			{Name: "after", Fn: func(ctx context.Context, sig api.Signal, state api.State) api.Result {
				return api.Halt(nil)
			}},
		},
	}

	ex := eng.Execute(ctx, chain, api.NewSignal("go", nil), api.State{}, api.Limits{
		Timeout: 30 * time.Millisecond,
	})
	if ex.Status != api.StatusTimedOut {
		t.Fatalf("expected TIMED_OUT, got %q", ex.Status)
	}

	// Unblock the orphaned pass and let it run to its ctx check.
	close(release)
	<-returned
	time.Sleep(50 * time.Millisecond)

	want := []string{"step.start:block", "run.failed"}
	got := rec.snapshot()
	if len(got) != len(want) {
		t.Fatalf("expected events %v after the terminal callback, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: expected %q, got %q (all: %v)", i, want[i], got[i], got)
		}
	}
}
