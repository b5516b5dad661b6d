package orchestrator

import (
	"context"
	"sync"
)

// Outcome is the result of one item of a batch operation.
type Outcome struct {
	Name string
	Err  error
}

// OK reports whether the item succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// CreateMany creates each name concurrently. Outcomes are returned in
// input order; one failure never affects another item.
func (o *Orchestrator) CreateMany(ctx context.Context, names []string) []Outcome {
	return each(ctx, names, o.Create)
}

// RemoveMany removes each name concurrently.
func (o *Orchestrator) RemoveMany(ctx context.Context, names []string) []Outcome {
	return each(ctx, names, o.Remove)
}

func each(ctx context.Context, names []string, fn func(context.Context, string) error) []Outcome {
	out := make([]Outcome, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i] = Outcome{Name: name, Err: fn(ctx, name)}
		}()
	}
	wg.Wait()
	return out
}

// Summarize counts successful outcomes.
func Summarize(outcomes []Outcome) (succeeded, total int) {
	for _, oc := range outcomes {
		if oc.OK() {
			succeeded++
		}
	}
	return succeeded, len(outcomes)
}
