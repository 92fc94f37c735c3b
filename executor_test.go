package sanmark

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
)

// chunkIDTransform returns each chunk's own ID, the simplest transform
// that makes ordering observable.
func chunkIDTransform(_ context.Context, c Chunk) ([]int, error) {
	return []int{c.ID}, nil
}

func TestExecutor_RunOrdered(t *testing.T) {
	t.Parallel()

	chunks := Partition(makeLines(40), 5)
	exec := NewExecutor[int](WithWorkers(4))

	results := exec.RunOrdered(context.Background(), chunks, chunkIDTransform)

	if len(results) != len(chunks) {
		t.Fatalf("got %d results, want %d", len(results), len(chunks))
	}
	for i, r := range results {
		if r.ChunkID != i {
			t.Errorf("result %d has ChunkID %d, want %d", i, r.ChunkID, i)
		}
		if len(r.Values) != 1 || r.Values[0] != i {
			t.Errorf("result %d values = %v, want [%d]", i, r.Values, i)
		}
	}

	rep := exec.Report()
	want := Report{Completed: len(chunks), Failed: 0, Total: len(chunks)}
	if rep != want {
		t.Errorf("Report = %+v, want %+v", rep, want)
	}
}

func TestExecutor_RunUnordered_DeliversAll(t *testing.T) {
	t.Parallel()

	chunks := Partition(makeLines(60), 4)
	exec := NewExecutor[int](WithWorkers(8))

	var got []int
	for r := range exec.RunUnordered(context.Background(), chunks, chunkIDTransform) {
		got = append(got, r.ChunkID)
	}

	if len(got) != len(chunks) {
		t.Fatalf("got %d results, want %d", len(got), len(chunks))
	}
	sort.Ints(got)
	for i, id := range got {
		if id != i {
			t.Errorf("missing or duplicated chunk id: got[%d] = %d", i, id)
		}
	}
}

func TestExecutor_FailedChunkIsIsolated(t *testing.T) {
	t.Parallel()

	chunks := Partition(makeLines(50), 10) // 5 chunks
	failID := 2
	exec := NewExecutor[int](WithWorkers(3))

	results := exec.RunOrdered(context.Background(), chunks, func(_ context.Context, c Chunk) ([]int, error) {
		if c.ID == failID {
			return nil, errors.New("boom")
		}
		return []int{c.ID}, nil
	})

	if len(results) != len(chunks)-1 {
		t.Fatalf("got %d results, want %d", len(results), len(chunks)-1)
	}
	for _, r := range results {
		if r.ChunkID == failID {
			t.Errorf("failed chunk %d produced a result", failID)
		}
	}

	rep := exec.Report()
	if rep.Completed != len(chunks) || rep.Failed != 1 {
		t.Errorf("Report = %+v, want Completed=%d Failed=1", rep, len(chunks))
	}
}

func TestExecutor_PanicBecomesFailure(t *testing.T) {
	t.Parallel()

	chunks := Partition(makeLines(30), 10) // 3 chunks
	exec := NewExecutor[int](WithWorkers(2))

	results := exec.RunOrdered(context.Background(), chunks, func(_ context.Context, c Chunk) ([]int, error) {
		if c.ID == 1 {
			panic("transform exploded")
		}
		return []int{c.ID}, nil
	})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	rep := exec.Report()
	if rep.Failed != 1 || rep.Completed != 3 {
		t.Errorf("Report = %+v, want Completed=3 Failed=1", rep)
	}
}

func TestExecutor_NilTransformPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("RunUnordered with nil transform did not panic")
		}
	}()

	exec := NewExecutor[int]()
	exec.RunUnordered(context.Background(), Partition(makeLines(10), 5), nil)
}

func TestExecutor_EmptyChunks(t *testing.T) {
	t.Parallel()

	exec := NewExecutor[int]()
	out := exec.RunUnordered(context.Background(), nil, chunkIDTransform)

	if _, open := <-out; open {
		t.Error("channel for zero chunks delivered a value")
	}
	if rep := exec.Report(); rep.Total != 0 || rep.Completed != 0 {
		t.Errorf("Report = %+v, want zero counters", rep)
	}
}

func TestExecutor_Progress(t *testing.T) {
	t.Parallel()

	chunks := Partition(makeLines(40), 10) // 4 chunks

	var mu sync.Mutex
	var events []Progress
	exec := NewExecutor[int](
		WithWorkers(2),
		WithProgress(func(p Progress) {
			mu.Lock()
			events = append(events, p)
			mu.Unlock()
		}),
	)

	exec.RunOrdered(context.Background(), chunks, chunkIDTransform)

	mu.Lock()
	defer mu.Unlock()
	if len(events) != len(chunks) {
		t.Fatalf("got %d progress events, want %d", len(events), len(chunks))
	}
	for i, p := range events {
		if p.Completed != i+1 {
			t.Errorf("event %d: Completed = %d, want %d", i, p.Completed, i+1)
		}
		if p.Total != len(chunks) {
			t.Errorf("event %d: Total = %d, want %d", i, p.Total, len(chunks))
		}
	}
	last := events[len(events)-1]
	if last.Percent != 100 {
		t.Errorf("final Percent = %v, want 100", last.Percent)
	}
}

func TestExecutor_ProgressFiresForFailures(t *testing.T) {
	t.Parallel()

	chunks := Partition(makeLines(30), 10) // 3 chunks
	fired := 0
	var mu sync.Mutex
	exec := NewExecutor[int](
		WithWorkers(1),
		WithProgress(func(Progress) {
			mu.Lock()
			fired++
			mu.Unlock()
		}),
	)

	exec.RunOrdered(context.Background(), chunks, func(_ context.Context, c Chunk) ([]int, error) {
		return nil, errors.New("always fails")
	})

	mu.Lock()
	defer mu.Unlock()
	if fired != len(chunks) {
		t.Errorf("progress fired %d times, want %d (failures count too)", fired, len(chunks))
	}
}

func TestExecutor_TaskTimeout(t *testing.T) {
	t.Parallel()

	chunks := Partition(makeLines(20), 10) // 2 chunks
	exec := NewExecutor[int](
		WithWorkers(2),
		WithExecTaskTimeout(20*time.Millisecond),
	)

	results := exec.RunOrdered(context.Background(), chunks, func(ctx context.Context, c Chunk) ([]int, error) {
		if c.ID == 0 {
			// Ignores ctx on purpose: the executor must reclaim the
			// worker slot anyway.
			time.Sleep(500 * time.Millisecond)
		}
		return []int{c.ID}, nil
	})

	if len(results) != 1 || results[0].ChunkID != 1 {
		t.Fatalf("results = %+v, want only chunk 1", results)
	}
	rep := exec.Report()
	if rep.Failed != 1 || rep.Completed != 2 {
		t.Errorf("Report = %+v, want Completed=2 Failed=1", rep)
	}
}

func TestExecutor_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chunks := Partition(makeLines(100), 10)
	exec := NewExecutor[int](WithWorkers(2))

	var delivered int
	for range exec.RunOrdered(ctx, chunks, chunkIDTransform) {
		delivered++
	}

	// The stream must terminate; whatever was in flight may complete,
	// but nothing close to the full set should.
	if delivered == len(chunks) {
		t.Errorf("all %d chunks delivered despite pre-cancelled context", delivered)
	}
}

func TestExecutor_LoggerReceivesFailures(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var logged []string
	exec := NewExecutor[int](
		WithWorkers(1),
		WithExecLogger(func(format string, args ...any) {
			mu.Lock()
			logged = append(logged, fmt.Sprintf(format, args...))
			mu.Unlock()
		}),
	)

	chunks := Partition(makeLines(10), 5) // 2 chunks
	exec.RunOrdered(context.Background(), chunks, func(_ context.Context, c Chunk) ([]int, error) {
		if c.ID == 1 {
			return nil, errors.New("bad chunk")
		}
		return nil, nil
	})

	mu.Lock()
	defer mu.Unlock()
	if len(logged) != 1 {
		t.Fatalf("logged %d messages, want 1: %v", len(logged), logged)
	}
	if want := "chunk 1 failed: bad chunk"; logged[0] != want {
		t.Errorf("log = %q, want %q", logged[0], want)
	}
}

func TestExecutor_WorkersCappedAtChunkCount(t *testing.T) {
	t.Parallel()

	// More workers than chunks must not deadlock or drop results.
	chunks := Partition(makeLines(6), 3) // 2 chunks
	exec := NewExecutor[int](WithWorkers(32))

	results := exec.RunOrdered(context.Background(), chunks, chunkIDTransform)
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestPartitionAndProcess(t *testing.T) {
	t.Parallel()

	lines := makeLines(350)
	results, rep := PartitionAndProcess(context.Background(), lines,
		func(_ context.Context, c Chunk) ([]string, error) {
			return c.Lines, nil
		},
	)

	if rep.Failed != 0 || rep.Completed != rep.Total {
		t.Fatalf("Report = %+v, want all chunks completed", rep)
	}

	var merged []string
	for i, r := range results {
		if i > 0 && results[i-1].ChunkID >= r.ChunkID {
			t.Errorf("results out of order at index %d", i)
		}
		merged = append(merged, r.Values...)
	}
	if len(merged) != len(lines) {
		t.Fatalf("reassembled %d lines, want %d", len(merged), len(lines))
	}
	for i, line := range merged {
		if line != lines[i] {
			t.Fatalf("line %d = %q, want %q", i, line, lines[i])
		}
	}
}
