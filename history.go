package sigflow

import (
	"context"
	"time"

	"github.com/petrijr/sigflow/pkg/api"
)

// HistoryObserver appends one RunEvent per engine callback to a
// HistoryStore, giving runs a queryable audit trail. Append errors are
// dropped: history is best-effort and must never alter run outcomes.
type HistoryObserver struct {
	store HistoryStore
}

// NewHistoryObserver creates an Observer that records run history into store.
func NewHistoryObserver(store HistoryStore) *HistoryObserver {
	return &HistoryObserver{store: store}
}

var _ api.Observer = (*HistoryObserver)(nil)

func (h *HistoryObserver) append(ctx context.Context, ev api.RunEvent) {
	ev.At = time.Now()
	_ = h.store.AppendEvent(ctx, ev)
}

func (h *HistoryObserver) OnRunStart(ctx context.Context, ex *Execution) {
	h.append(ctx, api.RunEvent{RunID: ex.ID, Chain: ex.Chain, Type: api.EventRunStarted})
}

func (h *HistoryObserver) OnRunCompleted(ctx context.Context, ex *Execution) {
	typ := api.EventRunCompleted
	if ex.Status == StatusWaiting {
		typ = api.EventRunWaiting
	}
	h.append(ctx, api.RunEvent{RunID: ex.ID, Chain: ex.Chain, Type: typ, Detail: ex.Reason})
}

func (h *HistoryObserver) OnRunFailed(ctx context.Context, ex *Execution, err error) {
	h.append(ctx, api.RunEvent{RunID: ex.ID, Chain: ex.Chain, Type: api.EventRunFailed, Detail: err.Error()})
}

func (h *HistoryObserver) OnStepStart(ctx context.Context, ex *Execution, handler string, index int, sig Signal) {
	h.append(ctx, api.RunEvent{
		RunID: ex.ID, Chain: ex.Chain, Type: api.EventStepStarted,
		Step: index, Detail: handler + " <- " + sig.Type,
	})
}

func (h *HistoryObserver) OnStepCompleted(ctx context.Context, ex *Execution, handler string, index int, res Result, d time.Duration) {
	h.append(ctx, api.RunEvent{
		RunID: ex.ID, Chain: ex.Chain, Type: api.EventStepCompleted,
		Step: index, Detail: handler,
	})
}

func (h *HistoryObserver) OnSignalEmitted(ctx context.Context, ex *Execution, sig Signal) {
	h.append(ctx, api.RunEvent{
		RunID: ex.ID, Chain: ex.Chain, Type: api.EventSignalEmitted,
		Step: -1, Detail: sig.Type,
	})
}
