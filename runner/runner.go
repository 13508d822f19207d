package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
)

// DefaultConcurrency bounds concurrent generations when no limit is given
const DefaultConcurrency = 10

// Generator produces one chatbot project per request
type Generator interface {
	Generate(ctx context.Context, req *chatbot.GenerationRequest) *chatbot.GenerationResponse
}

// Runner bounds how many generations run at once
type Runner struct {
	generator      Generator
	maxConcurrency int
	semaphore      chan struct{}
}

// New creates a new runner
func New(generator Generator, maxConcurrency int) *Runner {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultConcurrency
	}
	return &Runner{
		generator:      generator,
		maxConcurrency: maxConcurrency,
		semaphore:      make(chan struct{}, maxConcurrency),
	}
}

// MaxConcurrency returns the concurrency limit
func (r *Runner) MaxConcurrency() int {
	return r.maxConcurrency
}

// Run waits for a free slot and generates. The error is non-nil only when
// ctx ends while waiting.
func (r *Runner) Run(ctx context.Context, req *chatbot.GenerationRequest) (*chatbot.GenerationResponse, error) {
	// Acquire semaphore
	select {
	case r.semaphore <- struct{}{}:
		defer func() { <-r.semaphore }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return r.generator.Generate(ctx, req), nil
}

// Task represents a task to be executed
type Task struct {
	ID      string
	Request *chatbot.GenerationRequest
}

// Result represents the result of a task execution
type Result struct {
	TaskID   string
	Response *chatbot.GenerationResponse
	Error    error
}

// RunParallel generates every task, at most MaxConcurrency at a time.
// Results are in task order.
func (r *Runner) RunParallel(ctx context.Context, tasks []*Task) []*Result {
	results := make([]*Result, len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(index int, t *Task) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					results[index] = &Result{
						TaskID: t.ID,
						Error:  fmt.Errorf("panic in task %s: %v", t.ID, rec),
					}
				}
			}()

			resp, err := r.Run(ctx, t.Request)
			results[index] = &Result{
				TaskID:   t.ID,
				Response: resp,
				Error:    err,
			}
		}(i, task)
	}

	wg.Wait()
	return results
}
