package service

import (
	"context"

	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/Chikothe3rd/campuseats/internal/realtime"
	"github.com/Chikothe3rd/campuseats/internal/retry"
)

// OrderView is one role-scoped snapshot of the order set. Exactly one of
// Orders (buyer/vendor) or Runner is populated, matching the actor's role.
type OrderView struct {
	Role   string
	Orders []models.Order
	Runner *RunnerView
}

// ViewFor re-derives the actor's view of the order set. The realtime
// synchronizer calls this on every in-scope change event.
func (os *OrderService) ViewFor(ctx context.Context, actor models.Actor) (OrderView, error) {
	switch actor.Role {
	case models.RoleBuyer:
		orders, err := os.ListForBuyer(ctx, actor.UserID)
		if err != nil {
			return OrderView{}, err
		}
		return OrderView{Role: actor.Role, Orders: orders}, nil
	case models.RoleVendor:
		orders, err := os.ListForVendor(ctx, actor.UserID)
		if err != nil {
			return OrderView{}, err
		}
		return OrderView{Role: actor.Role, Orders: orders}, nil
	case models.RoleRunner:
		view, err := os.ListForRunner(ctx, actor.UserID)
		if err != nil {
			return OrderView{}, err
		}
		return OrderView{Role: actor.Role, Runner: &view}, nil
	default:
		return OrderView{}, models.ErrInvalidRole
	}
}

// ScopeFor returns the event filter for the actor's slice of the order set.
// Vendors are resolved to their vendor record once, at subscription time.
func (os *OrderService) ScopeFor(ctx context.Context, actor models.Actor) (func(realtime.Event) bool, error) {
	switch actor.Role {
	case models.RoleBuyer:
		return realtime.BuyerScope(actor.UserID), nil
	case models.RoleVendor:
		vendor, err := retry.Do(ctx, os.retryOpts, func(ctx context.Context) (*models.Vendor, error) {
			return os.vendors.GetVendorByUserID(ctx, actor.UserID)
		})
		if err != nil {
			return nil, err
		}
		return realtime.VendorScope(vendor.ID), nil
	case models.RoleRunner:
		return realtime.RunnerScope(actor.UserID), nil
	default:
		return nil, models.ErrInvalidRole
	}
}
