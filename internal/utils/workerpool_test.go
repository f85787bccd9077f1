package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCloneFailed = errors.New("git clone failed")

func repoURLs(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://github.com/org/repo%d", i)
	}
	return urls
}

func TestParallelForEach(t *testing.T) {
	t.Parallel()

	t.Run("visits every source once", func(t *testing.T) {
		urls := repoURLs(12)
		var mu sync.Mutex
		seen := make(map[string]int)

		errs := ParallelForEach(context.Background(), urls, 4, func(ctx context.Context, url string) error {
			mu.Lock()
			seen[url]++
			mu.Unlock()
			return nil
		})

		require.Len(t, errs, len(urls))
		assert.Empty(t, CollectErrors(errs))
		for _, u := range urls {
			assert.Equal(t, 1, seen[u], u)
		}
	})

	t.Run("errors stay at the failing index", func(t *testing.T) {
		urls := repoURLs(5)

		errs := ParallelForEach(context.Background(), urls, 3, func(ctx context.Context, url string) error {
			if url == urls[1] || url == urls[3] {
				return fmt.Errorf("%s: %w", url, errCloneFailed)
			}
			return nil
		})

		require.Len(t, errs, 5)
		assert.NoError(t, errs[0])
		assert.ErrorIs(t, errs[1], errCloneFailed)
		assert.NoError(t, errs[2])
		assert.ErrorIs(t, errs[3], errCloneFailed)
		assert.NoError(t, errs[4])
	})

	t.Run("non-positive worker counts run serially", func(t *testing.T) {
		for _, workers := range []int{0, -3} {
			var active, peak atomic.Int32
			ParallelForEach(context.Background(), repoURLs(6), workers, func(ctx context.Context, url string) error {
				n := active.Add(1)
				if n > peak.Load() {
					peak.Store(n)
				}
				time.Sleep(2 * time.Millisecond)
				active.Add(-1)
				return nil
			})
			assert.Equal(t, int32(1), peak.Load(), "workers=%d", workers)
		}
	})

	t.Run("more workers than sources", func(t *testing.T) {
		var ran atomic.Int32
		errs := ParallelForEach(context.Background(), repoURLs(2), 16, func(ctx context.Context, url string) error {
			ran.Add(1)
			return nil
		})

		assert.Len(t, errs, 2)
		assert.Equal(t, int32(2), ran.Load())
	})

	t.Run("no sources", func(t *testing.T) {
		errs := ParallelForEach(context.Background(), []string{}, 4, func(ctx context.Context, url string) error {
			t.Fatal("fn must not run")
			return nil
		})
		assert.Empty(t, errs)
	})

	t.Run("cancellation leaves unstarted sources nil", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		urls := repoURLs(50)
		var ran atomic.Int32

		errs := ParallelForEach(ctx, urls, 1, func(ctx context.Context, url string) error {
			ran.Add(1)
			cancel()
			return errCloneFailed
		})

		assert.Less(t, int(ran.Load()), len(urls))
		assert.Len(t, CollectErrors(errs), int(ran.Load()))
	})

	t.Run("workers see the cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		started := make(chan struct{})
		done := make(chan struct{})

		go func() {
			defer close(done)
			ParallelForEach(ctx, repoURLs(1), 1, func(ctx context.Context, url string) error {
				close(started)
				<-ctx.Done()
				return ctx.Err()
			})
		}()

		<-started
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("in-flight work did not observe cancellation")
		}
	})

	t.Run("respects worker limit", func(t *testing.T) {
		var mu sync.Mutex
		active, peak := 0, 0

		ParallelForEach(context.Background(), repoURLs(20), 3, func(ctx context.Context, url string) error {
			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			return nil
		})

		assert.LessOrEqual(t, peak, 3)
	})
}

func TestFirstError(t *testing.T) {
	t.Parallel()

	errTimeout := errors.New("git clone timed out after 30 seconds")

	tests := []struct {
		name string
		errs []error
		want error
	}{
		{name: "all sources succeeded", errs: []error{nil, nil, nil}, want: nil},
		{name: "one failure", errs: []error{nil, errCloneFailed, nil}, want: errCloneFailed},
		{name: "earliest failure wins", errs: []error{nil, errTimeout, errCloneFailed}, want: errTimeout},
		{name: "empty", errs: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstError(tt.errs))
		})
	}
}

func TestCollectErrors(t *testing.T) {
	t.Parallel()

	e1 := errors.New("folder docs not found in the repository")
	e2 := errors.New("failed to launch git")

	tests := []struct {
		name string
		errs []error
		want []error
	}{
		{name: "none", errs: []error{nil, nil}, want: nil},
		{name: "keeps manifest order", errs: []error{nil, e2, nil, e1}, want: []error{e2, e1}},
		{name: "all", errs: []error{e1, e2}, want: []error{e1, e2}},
		{name: "empty", errs: []error{}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CollectErrors(tt.errs))
		})
	}
}
