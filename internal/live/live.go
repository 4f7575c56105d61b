// Package live turns change notifications into recomputed snapshots.
package live

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Stream is a restartable source of snapshots. Each Subscribe starts a fresh
// sequence; the channel is closed when the subscription ends.
type Stream[T any] interface {
	Subscribe(ctx context.Context) (<-chan T, error)
}

// Latest holds the most recent value by version. Older versions never
// replace newer ones.
type Latest[T any] struct {
	mu      sync.RWMutex
	version uint64
	val     T
	ok      bool
}

// Publish stores v if version is newer than the stored one.
func (l *Latest[T]) Publish(version uint64, v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ok && version <= l.version {
		return false
	}
	l.version, l.val, l.ok = version, v, true
	return true
}

func (l *Latest[T]) Load() (T, uint64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.val, l.version, l.ok
}

// Watcher recomputes a value for every event of a stream and keeps the
// result computed from the newest event.
type Watcher[E, T any] struct {
	Stream  Stream[E]
	Compute func(ctx context.Context, ev E) (T, error)
	Dst     *Latest[T]
	// Retry is the pause before resubscribing after the stream ends.
	Retry time.Duration
	// Resync recomputes from the zero event after every successful
	// subscribe, covering changes made while no subscription was open.
	Resync bool
	// OnResult, if set, is called after each finished computation; applied
	// is false when a newer result had already been published.
	OnResult func(version uint64, applied bool)

	seq atomic.Uint64
}

// Run subscribes and resubscribes until ctx is done. Computations run
// concurrently; each is tagged with the sequence number of its event.
func (w *Watcher[E, T]) Run(ctx context.Context) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for ctx.Err() == nil {
		ch, err := w.Stream.Subscribe(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("live: subscribe failed")
		} else {
			if w.Resync {
				var zero E
				w.spawn(ctx, &wg, zero)
			}
			for ev := range ch {
				w.spawn(ctx, &wg, ev)
			}
		}
		if !sleep(ctx, w.Retry) {
			return
		}
	}
}

// spawn versions ev before starting its computation so versions follow
// arrival order.
func (w *Watcher[E, T]) spawn(ctx context.Context, wg *sync.WaitGroup, ev E) {
	v := w.seq.Add(1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.apply(ctx, ev, v)
	}()
}

func (w *Watcher[E, T]) apply(ctx context.Context, ev E, version uint64) {
	res, err := w.Compute(ctx, ev)
	if err != nil {
		log.Warn().Err(err).Uint64("version", version).Msg("live: recompute failed")
		return
	}
	applied := w.Dst.Publish(version, res)
	if w.OnResult != nil {
		w.OnResult(version, applied)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
