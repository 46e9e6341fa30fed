package service

import (
	"context"

	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/Chikothe3rd/campuseats/internal/retry"
	"go.uber.org/zap"
)

// PaymentRepository is interface for interacting with payment-related data
type PaymentRepository interface {
	// GetPendingPaymentIDs returns ids of orders awaiting payment settlement
	GetPendingPaymentIDs(ctx context.Context) ([]string, error)
	// UpdatePaymentStatus moves payment status under the conditional-update rule
	UpdatePaymentStatus(ctx context.Context, orderID, from, to string) error
}

// PaymentService settles pending payments. Payment processing is simulated:
// every pending payment settles as completed.
type PaymentService struct {
	repo      PaymentRepository
	logger    *zap.Logger
	retryOpts retry.Options
}

// NewPaymentService creates new PaymentService instance
func NewPaymentService(repo PaymentRepository, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		repo:      repo,
		logger:    logger,
		retryOpts: retry.DefaultOptions(),
	}
}

// SettlePayments marks orders from orderCh as paid
func (ps *PaymentService) SettlePayments(ctx context.Context, orderCh <-chan string) {
	for {
		select {
		case <-ctx.Done():
			ps.logger.Debug("payment settlement is done")
			return
		case orderID, ok := <-orderCh:
			if !ok {
				return
			}

			_, err := retry.Do(ctx, ps.retryOpts, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, ps.repo.UpdatePaymentStatus(ctx, orderID,
					models.PaymentStatusPending, models.PaymentStatusCompleted)
			})
			if err != nil {
				// a conflict means another settlement pass already won
				ps.logger.Debug("settle payment", zap.String("order_id", orderID), zap.Error(err))
				continue
			}

			ps.logger.Debug("payment settled", zap.String("order_id", orderID))
		}
	}
}

// GetPendingPayments writes awaiting order ids to channel for settlement
func (ps *PaymentService) GetPendingPayments(ctx context.Context, orderCh chan<- string) error {
	ids, err := retry.Do(ctx, ps.retryOpts, func(ctx context.Context) ([]string, error) {
		return ps.repo.GetPendingPaymentIDs(ctx)
	})
	if err != nil {
		return err
	}

	for _, id := range ids {
		orderCh <- id
	}

	return nil
}
