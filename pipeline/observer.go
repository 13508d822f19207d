package pipeline

import "context"

// Stage event statuses
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// StageEvent reports one stage transition of a run
type StageEvent struct {
	RunID   string `json:"run_id"`
	Stage   string `json:"stage"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Observer receives stage events on the goroutine running the pipeline.
type Observer func(StageEvent)

type observerKey struct{}

// WithObserver returns a context whose runs report stage events to obs.
func WithObserver(ctx context.Context, obs Observer) context.Context {
	return context.WithValue(ctx, observerKey{}, obs)
}

func observerFrom(ctx context.Context) Observer {
	obs, _ := ctx.Value(observerKey{}).(Observer)
	return obs
}

// Notify sends ev to the observer attached to ctx, if any.
func Notify(ctx context.Context, ev StageEvent) {
	if obs := observerFrom(ctx); obs != nil {
		obs(ev)
	}
}
