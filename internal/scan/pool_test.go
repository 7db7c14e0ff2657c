package scan

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_RunsEveryJob(t *testing.T) {
	var ran atomic.Int64

	jobs := make([]Job, 30)
	for i := range jobs {
		jobs[i] = Job{
			Name: "job",
			Run: func(context.Context) error {
				ran.Add(1)
				return nil
			},
		}
	}

	pool := NewPool(8, 10, nil, testLogger())

	ok, failed := pool.Run(context.Background(), jobs)
	assert.Equal(t, 30, ok)
	assert.Zero(t, failed)
	assert.Equal(t, int64(30), ran.Load())
}

func TestPool_FailuresAndPanicsAreIsolated(t *testing.T) {
	var ran atomic.Int64

	jobs := []Job{
		{Name: "ok-1", Run: func(context.Context) error { ran.Add(1); return nil }},
		{Name: "fails", Run: func(context.Context) error { ran.Add(1); return errors.New("boom") }},
		{Name: "panics", Run: func(context.Context) error { ran.Add(1); panic("bad principal") }},
		{Name: "ok-2", Run: func(context.Context) error { ran.Add(1); return nil }},
	}

	pool := NewPool(2, 1, nil, testLogger())

	ok, failed := pool.Run(context.Background(), jobs)
	assert.Equal(t, 2, ok)
	assert.Equal(t, 2, failed)
	assert.Equal(t, int64(4), ran.Load())
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const workers = 3

	var (
		mu      sync.Mutex
		active  int
		highest int
	)

	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = Job{
			Name: "job",
			Run: func(context.Context) error {
				mu.Lock()
				active++
				if active > highest {
					highest = active
				}
				mu.Unlock()

				mu.Lock()
				active--
				mu.Unlock()

				return nil
			},
		}
	}

	pool := NewPool(workers, 100, nil, testLogger())
	pool.Run(context.Background(), jobs)

	assert.LessOrEqual(t, highest, workers)
}

func TestPool_ProgressCadence(t *testing.T) {
	var mu sync.Mutex

	var reports [][2]int

	progress := func(done, total int) {
		mu.Lock()
		reports = append(reports, [2]int{done, total})
		mu.Unlock()
	}

	jobs := make([]Job, 5)
	for i := range jobs {
		jobs[i] = Job{Name: "job", Run: func(context.Context) error { return nil }}
	}

	// Single worker keeps completion order deterministic.
	pool := NewPool(1, 2, progress, testLogger())
	pool.Run(context.Background(), jobs)

	// Every 2 completions plus the final one.
	assert.Equal(t, [][2]int{{2, 5}, {4, 5}, {5, 5}}, reports)
}

func TestPool_EmptyJobList(t *testing.T) {
	pool := NewPool(4, 1, nil, testLogger())

	ok, failed := pool.Run(context.Background(), nil)
	assert.Zero(t, ok)
	assert.Zero(t, failed)
}
