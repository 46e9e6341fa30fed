package realtime

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// default bounded interval for the degraded-mode poller
const defaultPollInterval = 5 * time.Second

// Subscriber is the change-feed subscription capability the synchronizer consumes.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan Event, func(), error)
}

// Synchronizer keeps one role-scoped view converged with the order collection.
// On every change event inside its scope it re-runs the full view query instead
// of patching incrementally, and pushes the fresh snapshot to Views. When the
// subscription cannot be established it degrades to bounded-interval polling;
// push and poll never run at the same time.
type Synchronizer[V any] struct {
	feed     Subscriber
	refetch  func(ctx context.Context) (V, error)
	inScope  func(Event) bool
	interval time.Duration
	logger   *zap.Logger
	views    chan V
}

// NewSynchronizer creates a synchronizer for one consumer. refetch re-derives
// the view; inScope filters events by the actor's slice of the order set.
func NewSynchronizer[V any](feed Subscriber, refetch func(ctx context.Context) (V, error), inScope func(Event) bool, logger *zap.Logger) *Synchronizer[V] {
	return &Synchronizer[V]{
		feed:     feed,
		refetch:  refetch,
		inScope:  inScope,
		interval: defaultPollInterval,
		logger:   logger,
		views:    make(chan V, 1),
	}
}

// Views delivers view snapshots. Only the latest snapshot is retained: a slow
// consumer sees last-write-wins, never a stale backlog.
func (s *Synchronizer[V]) Views() <-chan V {
	return s.views
}

// Run drives the synchronizer until ctx is cancelled. Teardown is
// deterministic: the subscription is closed and Views stops receiving.
func (s *Synchronizer[V]) Run(ctx context.Context) error {
	s.push(ctx)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		events, stop, err := s.feed.Subscribe(ctx)
		if err != nil {
			s.logger.Warn("change feed unavailable, polling", zap.Error(err))
			if err := s.poll(ctx); err != nil {
				return err
			}
			continue
		}

		err = s.consume(ctx, events)
		stop()
		if err != nil {
			return err
		}
	}
}

// consume applies events in receipt order until the feed closes or ctx ends
func (s *Synchronizer[V]) consume(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				// feed dropped; caller falls back to polling
				return nil
			}
			if s.inScope(ev) {
				s.push(ctx)
			}
		}
	}
}

// poll re-derives the view on a bounded interval for one cycle, then lets the
// caller attempt to resubscribe.
func (s *Synchronizer[V]) poll(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ticker.C:
		s.push(ctx)
	}

	return nil
}

// push re-runs the view query and replaces the buffered snapshot
func (s *Synchronizer[V]) push(ctx context.Context) {
	view, err := s.refetch(ctx)
	if err != nil {
		s.logger.Error("view refetch failed", zap.Error(err))
		return
	}

	// drop the undelivered snapshot, keep the latest
	select {
	case <-s.views:
	default:
	}
	select {
	case s.views <- view:
	default:
	}
}

// BuyerScope matches events on orders placed by userID.
func BuyerScope(userID string) func(Event) bool {
	return func(ev Event) bool { return ev.BuyerID == userID }
}

// VendorScope matches events on orders addressed to vendorID.
func VendorScope(vendorID string) func(Event) bool {
	return func(ev Event) bool { return ev.VendorID == vendorID }
}

// RunnerScope matches every event: a claim by another runner must remove the
// order from this runner's available list, so no equality predicate can narrow
// the feed for runners.
func RunnerScope(string) func(Event) bool {
	return func(Event) bool { return true }
}

// OrderScope matches events on a single order, used for delivery tracking.
func OrderScope(orderID string) func(Event) bool {
	return func(ev Event) bool { return ev.OrderID == orderID }
}
