package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const settlementInterval = 5 * time.Second

type PaymentService interface {
	SettlePayments(ctx context.Context, orderCh <-chan string)
	GetPendingPayments(ctx context.Context, orderCh chan<- string) error
}

// PaymentProcessor is worker performing simulated payment settlement
type PaymentProcessor struct {
	svc    PaymentService
	logger *zap.Logger
}

// NewPaymentProcessor creates new payment processor
func NewPaymentProcessor(svc PaymentService, logger *zap.Logger) *PaymentProcessor {
	return &PaymentProcessor{svc: svc, logger: logger}
}

// ProcessPayments periodically collects pending payments and settles them
func (pp *PaymentProcessor) ProcessPayments(ctx context.Context) {
	orders := make(chan string, 10)

	go pp.svc.SettlePayments(ctx, orders)

	ticker := time.NewTicker(settlementInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			pp.logger.Debug("payment processor is done")
			return
		case <-ticker.C:
			if err := pp.svc.GetPendingPayments(ctx, orders); err != nil {
				pp.logger.Error("error getting pending payments", zap.Error(err))
			}
		}
	}
}
