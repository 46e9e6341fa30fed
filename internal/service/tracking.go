package service

import (
	"context"
	"errors"
	"time"

	"github.com/Chikothe3rd/campuseats/internal/geo"
	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/Chikothe3rd/campuseats/internal/realtime"
	"github.com/Chikothe3rd/campuseats/internal/retry"
	"go.uber.org/zap"
)

// TrackingRepository is the order access the tracker needs
type TrackingRepository interface {
	// GetOrderByID returns order by id
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	// UpdateRunnerLocation writes a runner position sample while delivering
	UpdateRunnerLocation(ctx context.Context, orderID string, lat, lng float64) error
}

// LocationSample is one reading from a device location source
type LocationSample struct {
	Lat      float64
	Lng      float64
	Accuracy float64
	At       time.Time
}

// LocationSource is a continuous-watch position stream. Implementations must
// deliver fresh, high-accuracy readings and close the channel when the watch
// ends.
type LocationSource interface {
	Watch(ctx context.Context) (<-chan LocationSample, error)
}

// TrackingService ingests runner positions and serves the delivery ETA
type TrackingService struct {
	repo      TrackingRepository
	feed      ChangePublisher
	logger    *zap.Logger
	retryOpts retry.Options
}

// NewTrackingService creates new TrackingService instance
func NewTrackingService(repo TrackingRepository, feed ChangePublisher, logger *zap.Logger) *TrackingService {
	return &TrackingService{
		repo:      repo,
		feed:      feed,
		logger:    logger,
		retryOpts: retry.DefaultOptions(),
	}
}

// UpdateLocation writes one position sample for the assigned runner. The
// repository update only touches the location fields and only while the order
// is delivering; ErrNotDelivering signals the tracker to stop.
func (ts *TrackingService) UpdateLocation(ctx context.Context, orderID, runnerID string, lat, lng float64) error {
	order, err := retry.Do(ctx, ts.retryOpts, func(ctx context.Context) (*models.Order, error) {
		return ts.repo.GetOrderByID(ctx, orderID)
	})
	if err != nil {
		return err
	}

	if order.RunnerID == nil || *order.RunnerID != runnerID {
		return models.ErrNotPermitted
	}

	_, err = retry.Do(ctx, ts.retryOpts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, ts.repo.UpdateRunnerLocation(ctx, orderID, lat, lng)
	})
	if err != nil {
		return err
	}

	if ts.feed != nil {
		_ = ts.feed.PublishOrderChange(ctx, realtime.Event{
			OrderID:  order.ID,
			BuyerID:  order.BuyerID,
			VendorID: order.VendorID,
			RunnerID: order.RunnerID,
			Status:   order.Status,
		})
	}

	return nil
}

// Track consumes src until the order leaves the delivering status or ctx is
// cancelled. Each sample goes through the retry wrapper; the watch is torn
// down deterministically on return.
func (ts *TrackingService) Track(ctx context.Context, orderID, runnerID string, src LocationSource) error {
	samples, err := src.Watch(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sample, ok := <-samples:
			if !ok {
				return nil
			}
			err := ts.UpdateLocation(ctx, orderID, runnerID, sample.Lat, sample.Lng)
			if errors.Is(err, models.ErrNotDelivering) {
				// terminal status reached, tracking auto-stops
				return nil
			}
			if err != nil {
				ts.logger.Error("location update", zap.String("order_id", orderID), zap.Error(err))
			}
		}
	}
}

// ETA returns the estimated minutes to delivery from the last known runner
// position. The second result is false when the ETA is indeterminate.
func (ts *TrackingService) ETA(ctx context.Context, orderID string) (int, bool, error) {
	order, err := retry.Do(ctx, ts.retryOpts, func(ctx context.Context) (*models.Order, error) {
		return ts.repo.GetOrderByID(ctx, orderID)
	})
	if err != nil {
		return 0, false, err
	}

	minutes, ok := geo.ETAMinutes(order.RunnerLat, order.RunnerLng, order.DeliveryLat, order.DeliveryLng)
	return minutes, ok, nil
}
