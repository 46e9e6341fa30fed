package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/Chikothe3rd/campuseats/internal/realtime"
	"github.com/Chikothe3rd/campuseats/internal/retry"
	"github.com/google/uuid"
)

const (
	taxRate        = 0.08
	deliveryFee    = 2.99
	deliveryWindow = 20 * time.Minute
	defaultPrepMin = 15
)

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// CreateOrder inserts new order to database
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrderByID returns order by id
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	// GetOrdersByBuyer gets buyer orders, newest first
	GetOrdersByBuyer(ctx context.Context, buyerID string) ([]models.Order, error)
	// GetOrdersByVendor gets vendor orders, newest first
	GetOrdersByVendor(ctx context.Context, vendorID string) ([]models.Order, error)
	// GetOrdersForRunner gets unclaimed pending orders plus the runner's own orders
	GetOrdersForRunner(ctx context.Context, runnerID string) ([]models.Order, error)
	// ClaimOrder assigns runner to a pending unclaimed order as a conditional update
	ClaimOrder(ctx context.Context, orderID, runnerID string) error
	// UpdateOrderStatus moves order status conditioned on the expected current status
	UpdateOrderStatus(ctx context.Context, orderID, from, to string) error
}

// VendorResolver resolves vendor records for acting users
type VendorResolver interface {
	// GetVendorByUserID returns the vendor record owned by user
	GetVendorByUserID(ctx context.Context, userID string) (*models.Vendor, error)
	// GetVendorByID returns vendor by id
	GetVendorByID(ctx context.Context, id string) (*models.Vendor, error)
}

// Notifier writes in-app notification records on order transitions
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, severity string, orderID *string) error
}

// ChangePublisher publishes an order change event to the realtime feed
type ChangePublisher interface {
	PublishOrderChange(ctx context.Context, ev realtime.Event) error
}

// CartItem is one cart line at checkout. The unit price is snapshotted into
// the order; later menu price changes never touch placed orders.
type CartItem struct {
	VendorID   string
	MenuItemID string
	Name       string
	UnitPrice  float64
	Quantity   int
}

// CheckoutRequest is a buyer checkout command
type CheckoutRequest struct {
	Items           []CartItem
	PaymentMethod   string
	DeliveryAddress string
	DeliveryNotes   string
	DeliveryLat     *float64
	DeliveryLng     *float64
}

// RunnerView is the runner slice of the order set, partitioned locally from a
// single query snapshot so the subsets stay mutually consistent.
type RunnerView struct {
	Available []models.Order
	Active    []models.Order
	Delivered []models.Order
}

// OrderService implements OrderService interface
type OrderService struct {
	repo      OrderRepository
	vendors   VendorResolver
	notifier  Notifier
	feed      ChangePublisher
	retryOpts retry.Options
}

// NewOrderService creates new OrderService instance
func NewOrderService(repo OrderRepository, vendors VendorResolver, notifier Notifier, feed ChangePublisher) *OrderService {
	return &OrderService{
		repo:      repo,
		vendors:   vendors,
		notifier:  notifier,
		feed:      feed,
		retryOpts: retry.DefaultOptions(),
	}
}

// roundCents rounds amount to whole cents
func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Checkout places the buyer's cart. Each vendor's line items become a separate
// order. Money is derived once here and stored redundantly; it is never
// recomputed from items on read.
func (os *OrderService) Checkout(ctx context.Context, buyerID string, req CheckoutRequest) ([]models.Order, error) {
	if len(req.Items) == 0 {
		return nil, models.ErrEmptyCart
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, models.ErrInvalidQuantity
		}
	}

	// group cart lines per vendor, preserving first-seen vendor order
	grouped := map[string][]CartItem{}
	vendorIDs := []string{}
	for _, item := range req.Items {
		if _, ok := grouped[item.VendorID]; !ok {
			vendorIDs = append(vendorIDs, item.VendorID)
		}
		grouped[item.VendorID] = append(grouped[item.VendorID], item)
	}

	orders := []models.Order{}

	for _, vendorID := range vendorIDs {
		items := grouped[vendorID]

		vendor, err := retry.Do(ctx, os.retryOpts, func(ctx context.Context) (*models.Vendor, error) {
			return os.vendors.GetVendorByID(ctx, vendorID)
		})
		if err != nil {
			return nil, err
		}

		lines := make([]models.OrderItem, 0, len(items))
		subtotal := 0.0
		for _, item := range items {
			lines = append(lines, models.OrderItem{
				MenuItemID: item.MenuItemID,
				Name:       item.Name,
				UnitPrice:  item.UnitPrice,
				Quantity:   item.Quantity,
			})
			subtotal += item.UnitPrice * float64(item.Quantity)
		}

		subtotal = roundCents(subtotal)
		tax := roundCents(subtotal * taxRate)

		prep := vendor.PreparationTime
		if prep <= 0 {
			prep = defaultPrepMin
		}

		order := models.Order{
			ID:                  uuid.NewString(),
			BuyerID:             buyerID,
			VendorID:            vendorID,
			Items:               lines,
			Subtotal:            subtotal,
			Tax:                 tax,
			DeliveryFee:         deliveryFee,
			Total:               subtotal + tax + deliveryFee,
			PaymentStatus:       models.PaymentStatusPending,
			PaymentMethod:       req.PaymentMethod,
			Status:              models.OrderStatusPending,
			DeliveryAddress:     req.DeliveryAddress,
			DeliveryNotes:       req.DeliveryNotes,
			DeliveryLat:         req.DeliveryLat,
			DeliveryLng:         req.DeliveryLng,
			EstimatedDeliveryAt: time.Now().Add(time.Duration(prep)*time.Minute + deliveryWindow),
		}

		created, err := retry.Do(ctx, os.retryOpts, func(ctx context.Context) (*models.Order, error) {
			return os.repo.CreateOrder(ctx, &order)
		})
		if err != nil {
			return nil, err
		}

		os.notify(ctx, vendor.UserID, "New order", "You received a new order.", models.SeverityInfo, created.ID)
		os.publish(ctx, created)

		orders = append(orders, *created)
	}

	return orders, nil
}

// Claim assigns the order to runner. The repository performs a single
// conditional update; of N racing claims exactly one wins and the rest see
// ErrAlreadyClaimed. A retried claim that already won is recognized as success.
func (os *OrderService) Claim(ctx context.Context, orderID, runnerID string) (*models.Order, error) {
	_, err := retry.Do(ctx, os.retryOpts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, os.repo.ClaimOrder(ctx, orderID, runnerID)
	})
	if err != nil && !errors.Is(err, models.ErrAlreadyClaimed) {
		return nil, err
	}

	order, readErr := os.getOrder(ctx, orderID)
	if readErr != nil {
		return nil, readErr
	}

	if errors.Is(err, models.ErrAlreadyClaimed) {
		// a lost response on a won claim retries into zero rows; only the
		// current assignee may treat that as success
		if order.RunnerID == nil || *order.RunnerID != runnerID {
			return nil, models.ErrAlreadyClaimed
		}
		return order, nil
	}

	os.notify(ctx, order.BuyerID, "Order accepted", "A runner accepted your order.", models.SeveritySuccess, order.ID)
	os.publish(ctx, order)

	return order, nil
}

// Advance moves order to target if target is the defined successor of the
// current status and actor's role is permitted to perform that edge. Retrying
// a successful advance with the same target is a no-op without a second
// notification.
func (os *OrderService) Advance(ctx context.Context, orderID string, actor models.Actor, target string) (*models.Order, error) {
	if !models.IsValidStatus(target) {
		return nil, models.ErrInvalidTransition
	}

	order, err := os.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// already there: idempotent replay of a completed advance
	if order.Status == target {
		if prev, ok := models.PrevStatus(target); ok && models.CanTransition(actor.Role, prev, target) {
			return order, nil
		}
		return nil, models.ErrInvalidTransition
	}

	if !models.CanTransition(actor.Role, order.Status, target) {
		return nil, models.ErrInvalidTransition
	}

	if err := os.checkActorOwnsEdge(ctx, order, actor); err != nil {
		return nil, err
	}

	from := order.Status
	_, err = retry.Do(ctx, os.retryOpts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, os.repo.UpdateOrderStatus(ctx, orderID, from, target)
	})
	if err != nil {
		if errors.Is(err, models.ErrConflictData) {
			// precondition no longer holds: either our own retried update
			// landed, or a concurrent transition won
			current, readErr := os.getOrder(ctx, orderID)
			if readErr != nil {
				return nil, readErr
			}
			if current.Status == target {
				return current, nil
			}
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	order.Status = target
	os.notify(ctx, order.BuyerID, "Order update", statusMessage(target), severityFor(target), order.ID)
	os.publish(ctx, order)

	return order, nil
}

// Cancel cancels a pending order on behalf of its buyer.
func (os *OrderService) Cancel(ctx context.Context, orderID, actorID string) (*models.Order, error) {
	order, err := os.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.BuyerID != actorID {
		return nil, models.ErrNotPermitted
	}
	if order.Status == models.OrderStatusCancelled {
		return order, nil
	}
	if order.Status != models.OrderStatusPending {
		return nil, models.ErrInvalidTransition
	}

	_, err = retry.Do(ctx, os.retryOpts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, os.repo.UpdateOrderStatus(ctx, orderID, models.OrderStatusPending, models.OrderStatusCancelled)
	})
	if err != nil {
		if errors.Is(err, models.ErrConflictData) {
			current, readErr := os.getOrder(ctx, orderID)
			if readErr != nil {
				return nil, readErr
			}
			if current.Status == models.OrderStatusCancelled {
				return current, nil
			}
			// claimed in between; cancellation window has closed
			return nil, models.ErrInvalidTransition
		}
		return nil, err
	}

	order.Status = models.OrderStatusCancelled

	vendor, vErr := os.vendors.GetVendorByID(ctx, order.VendorID)
	if vErr == nil {
		os.notify(ctx, vendor.UserID, "Order cancelled", "The buyer cancelled an order.", models.SeverityWarning, order.ID)
	}
	os.publish(ctx, order)

	return order, nil
}

// GetOrder returns order by id if actor is one of its parties.
func (os *OrderService) GetOrder(ctx context.Context, orderID string, actor models.Actor) (*models.Order, error) {
	order, err := os.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleBuyer:
		if order.BuyerID != actor.UserID {
			return nil, models.ErrNotPermitted
		}
	case models.RoleVendor:
		vendor, err := os.vendors.GetVendorByUserID(ctx, actor.UserID)
		if err != nil || vendor.ID != order.VendorID {
			return nil, models.ErrNotPermitted
		}
	case models.RoleRunner:
		unclaimed := order.Status == models.OrderStatusPending && order.RunnerID == nil
		mine := order.RunnerID != nil && *order.RunnerID == actor.UserID
		if !unclaimed && !mine {
			return nil, models.ErrNotPermitted
		}
	default:
		return nil, models.ErrNotPermitted
	}

	return order, nil
}

// ListForBuyer returns buyer orders, newest first
func (os *OrderService) ListForBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	return retry.Do(ctx, os.retryOpts, func(ctx context.Context) ([]models.Order, error) {
		return os.repo.GetOrdersByBuyer(ctx, buyerID)
	})
}

// ListForVendor resolves the vendor record for the acting user, then returns
// that vendor's orders.
func (os *OrderService) ListForVendor(ctx context.Context, userID string) ([]models.Order, error) {
	vendor, err := retry.Do(ctx, os.retryOpts, func(ctx context.Context) (*models.Vendor, error) {
		return os.vendors.GetVendorByUserID(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	return retry.Do(ctx, os.retryOpts, func(ctx context.Context) ([]models.Order, error) {
		return os.repo.GetOrdersByVendor(ctx, vendor.ID)
	})
}

// ListForRunner returns the runner view partitioned from one query snapshot.
func (os *OrderService) ListForRunner(ctx context.Context, runnerID string) (RunnerView, error) {
	orders, err := retry.Do(ctx, os.retryOpts, func(ctx context.Context) ([]models.Order, error) {
		return os.repo.GetOrdersForRunner(ctx, runnerID)
	})
	if err != nil {
		return RunnerView{}, err
	}

	return PartitionRunnerOrders(runnerID, orders), nil
}

// PartitionRunnerOrders splits a runner query result into available, active and
// delivered subsets. Orders claimed by other runners never appear: the query
// already excludes them.
func PartitionRunnerOrders(runnerID string, orders []models.Order) RunnerView {
	view := RunnerView{
		Available: []models.Order{},
		Active:    []models.Order{},
		Delivered: []models.Order{},
	}

	for _, order := range orders {
		switch {
		case order.Status == models.OrderStatusPending && order.RunnerID == nil:
			view.Available = append(view.Available, order)
		case order.RunnerID != nil && *order.RunnerID == runnerID && order.Status == models.OrderStatusDelivered:
			view.Delivered = append(view.Delivered, order)
		case order.RunnerID != nil && *order.RunnerID == runnerID:
			view.Active = append(view.Active, order)
		}
	}

	return view
}

// checkActorOwnsEdge verifies that the role-permitted actor also owns the
// order side it is advancing: the vendor record must match, the runner must be
// the assignee.
func (os *OrderService) checkActorOwnsEdge(ctx context.Context, order *models.Order, actor models.Actor) error {
	switch actor.Role {
	case models.RoleVendor:
		vendor, err := os.vendors.GetVendorByUserID(ctx, actor.UserID)
		if err != nil {
			return models.ErrNotPermitted
		}
		if vendor.ID != order.VendorID {
			return models.ErrNotPermitted
		}
	case models.RoleRunner:
		if order.RunnerID == nil || *order.RunnerID != actor.UserID {
			return models.ErrNotPermitted
		}
	case models.RoleBuyer:
		if order.BuyerID != actor.UserID {
			return models.ErrNotPermitted
		}
	}

	return nil
}

func (os *OrderService) getOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return retry.Do(ctx, os.retryOpts, func(ctx context.Context) (*models.Order, error) {
		return os.repo.GetOrderByID(ctx, orderID)
	})
}

// notify writes an in-app notification, best effort
func (os *OrderService) notify(ctx context.Context, userID, title, message, severity, orderID string) {
	if os.notifier == nil {
		return
	}
	_ = os.notifier.Notify(ctx, userID, title, message, severity, &orderID)
}

// publish emits an order change event, best effort
func (os *OrderService) publish(ctx context.Context, order *models.Order) {
	if os.feed == nil {
		return
	}
	_ = os.feed.PublishOrderChange(ctx, realtime.Event{
		OrderID:  order.ID,
		BuyerID:  order.BuyerID,
		VendorID: order.VendorID,
		RunnerID: order.RunnerID,
		Status:   order.Status,
	})
}

func statusMessage(status string) string {
	switch status {
	case models.OrderStatusPreparing:
		return "The vendor started preparing your order."
	case models.OrderStatusDelivering:
		return "Your order is on its way."
	case models.OrderStatusDelivered:
		return "Your order was delivered. Enjoy!"
	case models.OrderStatusCancelled:
		return "Your order was cancelled."
	default:
		return "Your order status changed to " + status + "."
	}
}

func severityFor(status string) string {
	switch status {
	case models.OrderStatusDelivered:
		return models.SeveritySuccess
	case models.OrderStatusCancelled:
		return models.SeverityWarning
	default:
		return models.SeverityInfo
	}
}
