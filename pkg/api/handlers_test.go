package api

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestTransformHandlerRewritesSignal(t *testing.T) {
	ctx := context.Background()
	h := TransformHandler("upcase", func(s Signal) Signal {
		return s.WithData(strings.ToUpper(s.Data.(string)))
	})

	res := h.Fn(ctx, NewSignal("text", "abc"), State{"k": 1})
	emit, ok := res.(EmitResult)
	if !ok {
		t.Fatalf("expected EmitResult, got %T", res)
	}
	if emit.Signal.Data != "ABC" {
		t.Fatalf("unexpected data: %v", emit.Signal.Data)
	}
	if emit.State["k"] != 1 {
		t.Fatalf("state must pass through unchanged: %+v", emit.State)
	}
}

func TestMapDataHandlerErrorBecomesFail(t *testing.T) {
	ctx := context.Background()
	h := MapDataHandler("parse", func(in any) (any, error) {
		return nil, errors.New("bad input")
	})

	res := h.Fn(ctx, NewSignal("text", "abc"), State{})
	fail, ok := res.(FailResult)
	if !ok {
		t.Fatalf("expected FailResult, got %T", res)
	}
	if fail.Reason != "bad input" {
		t.Fatalf("unexpected reason: %q", fail.Reason)
	}
}

func TestMapDataHandlerDerivesSignal(t *testing.T) {
	ctx := context.Background()
	h := MapDataHandler("double", func(in any) (any, error) {
		return in.(int) * 2, nil
	})

	parent := NewSignal("num", 21)
	res := h.Fn(ctx, parent, State{})
	emit, ok := res.(EmitResult)
	if !ok {
		t.Fatalf("expected EmitResult, got %T", res)
	}
	if emit.Signal.Data != 42 {
		t.Fatalf("unexpected data: %v", emit.Signal.Data)
	}
	if emit.Signal.Meta.CorrelationID != parent.Meta.TraceID {
		t.Fatalf("derived signal must correlate with its parent")
	}
}

func TestIfHandlerRoutesThenAndElse(t *testing.T) {
	ctx := context.Background()

	h := IfHandler("route",
		func(sig Signal, state State) bool { return sig.Data.(int) > 10 },
		[]Handler{HaltHandler("big", "big")},
		[]Handler{HaltHandler("small", "small")},
	)

	res := h.Fn(ctx, NewSignal("n", 50), State{})
	if halt, ok := res.(HaltResult); !ok || halt.Value != "big" {
		t.Fatalf("expected then-branch halt, got %#v", res)
	}

	res = h.Fn(ctx, NewSignal("n", 3), State{})
	if halt, ok := res.(HaltResult); !ok || halt.Value != "small" {
		t.Fatalf("expected else-branch halt, got %#v", res)
	}
}

func TestIfHandlerFoldsSubChainAndEmits(t *testing.T) {
	ctx := context.Background()

	add := func(n int) Handler {
		return NamedHandler("add", func(ctx context.Context, sig Signal, state State) Result {
			return Emit(sig.WithData(sig.Data.(int)+n), state)
		})
	}

	h := IfHandler("route",
		func(Signal, State) bool { return true },
		[]Handler{add(1), add(10)},
		nil,
	)

	res := h.Fn(ctx, NewSignal("n", 5), State{"seen": true})
	emit, ok := res.(EmitResult)
	if !ok {
		t.Fatalf("expected EmitResult after folding, got %T", res)
	}
	if emit.Signal.Data != 16 {
		t.Fatalf("expected folded value 16, got %v", emit.Signal.Data)
	}
	if v, _ := emit.State["seen"].(bool); !v {
		t.Fatalf("state lost through the fold: %+v", emit.State)
	}
}

func TestIfHandlerEmptyBranchEmitsInput(t *testing.T) {
	ctx := context.Background()

	h := IfHandler("route", func(Signal, State) bool { return false }, []Handler{HaltHandler("x", 1)}, nil)

	sig := NewSignal("n", 5)
	res := h.Fn(ctx, sig, State{})
	emit, ok := res.(EmitResult)
	if !ok {
		t.Fatalf("expected EmitResult for empty branch, got %T", res)
	}
	if emit.Signal.Data != 5 {
		t.Fatalf("expected the input signal through, got %v", emit.Signal.Data)
	}
}

func TestIfHandlerPropagatesTerminalResults(t *testing.T) {
	ctx := context.Background()

	h := IfHandler("route",
		func(Signal, State) bool { return true },
		[]Handler{WaitHandler("park", "waiting for upstream")},
		nil,
	)

	res := h.Fn(ctx, NewSignal("n", 5), State{})
	wait, ok := res.(WaitResult)
	if !ok {
		t.Fatalf("expected WaitResult, got %T", res)
	}
	if wait.Reason != "waiting for upstream" {
		t.Fatalf("unexpected reason: %q", wait.Reason)
	}
}
