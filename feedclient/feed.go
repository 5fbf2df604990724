package feedclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
)

// DefaultRefetchTimeout bounds one refetch triggered by MarkStale.
const DefaultRefetchTimeout = 20 * time.Second

// Status is the outcome of the latest refetch.
type Status int

const (
	Idle Status = iota
	Fresh
	TimedOut
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fresh:
		return "fresh"
	case TimedOut:
		return "timed_out"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is the cached first page and how it was obtained.
type Snapshot struct {
	Status Status
	// CaughtUp is true when the fresh page is the whole feed.
	CaughtUp  bool
	Page      *models.Page[models.Activity]
	Err       error
	FetchedAt time.Time
}

// Fetcher is satisfied by *Client.
type Fetcher interface {
	Activities(ctx context.Context, limit int, cursor string) (*models.Page[models.Activity], error)
}

// FeedOptions configures a Feed.
type FeedOptions struct {
	Limit          int
	RefetchTimeout time.Duration
	Logger         *zap.Logger
	// OnUpdate receives every new snapshot, from the refetching goroutine.
	OnUpdate func(Snapshot)
}

// Feed caches the first page of the activity feed. It implements
// wsclient.Invalidator: MarkStale starts one background refetch. Signals
// that arrive while a refetch runs are folded into a single follow-up
// refetch. A refetch that times out or fails is not retried until the next
// signal or an explicit Refresh.
type Feed struct {
	fetcher Fetcher
	opts    FeedOptions
	log     *zap.Logger

	mu       sync.Mutex
	snap     Snapshot
	inflight bool
	pending  bool
	wg       sync.WaitGroup
}

func NewFeed(fetcher Fetcher, opts FeedOptions) *Feed {
	if opts.RefetchTimeout <= 0 {
		opts.RefetchTimeout = DefaultRefetchTimeout
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{fetcher: fetcher, opts: opts, log: log}
}

// MarkStale schedules a refetch of the first page.
func (f *Feed) MarkStale() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inflight {
		f.pending = true
		return
	}
	f.inflight = true
	f.wg.Add(1)
	go f.refetchLoop()
}

func (f *Feed) refetchLoop() {
	defer f.wg.Done()

	for {
		f.Refresh(context.Background())

		f.mu.Lock()
		if !f.pending {
			f.inflight = false
			f.mu.Unlock()
			return
		}
		f.pending = false
		f.mu.Unlock()
	}
}

// Refresh fetches the first page now, bounded by RefetchTimeout, and
// returns the resulting snapshot.
func (f *Feed) Refresh(ctx context.Context) Snapshot {
	ctx, cancel := context.WithTimeout(ctx, f.opts.RefetchTimeout)
	defer cancel()

	page, err := f.fetcher.Activities(ctx, f.opts.Limit, "")

	snap := Snapshot{FetchedAt: time.Now()}
	switch {
	case err == nil:
		snap.Status = Fresh
		snap.Page = page
		snap.CaughtUp = page.NextCursor == ""
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		snap.Status = TimedOut
		snap.Err = err
		f.log.Warn("activity refetch timed out", zap.Duration("timeout", f.opts.RefetchTimeout))
	default:
		snap.Status = Failed
		snap.Err = err
		f.log.Warn("activity refetch failed", zap.Error(err))
	}

	f.mu.Lock()
	if snap.Page == nil {
		// keep showing the last good page
		snap.Page = f.snap.Page
	}
	f.snap = snap
	f.mu.Unlock()

	if f.opts.OnUpdate != nil {
		f.opts.OnUpdate(snap)
	}
	return snap
}

// Snapshot returns the latest snapshot.
func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// Wait blocks until background refetches have finished.
func (f *Feed) Wait() {
	f.wg.Wait()
}
