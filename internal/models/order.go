package models

import "time"

// pending — заказ создан, ожидает курьера;
// accepted — курьер принял заказ;
// preparing — продавец готовит заказ;
// delivering — заказ в пути;
// delivered — заказ доставлен;
// cancelled — заказ отменён покупателем.

// delivery status
const (
	OrderStatusPending    = "pending"
	OrderStatusAccepted   = "accepted"
	OrderStatusPreparing  = "preparing"
	OrderStatusDelivering = "delivering"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// payment status
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// OrderItem is a line item with the unit price snapshotted at order time
type OrderItem struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
}

// Order is order entity
type Order struct {
	ID                  string
	BuyerID             string
	VendorID            string
	RunnerID            *string
	Items               []OrderItem
	Subtotal            float64
	Tax                 float64
	DeliveryFee         float64
	Total               float64
	PaymentStatus       string
	PaymentMethod       string
	Status              string
	DeliveryAddress     string
	DeliveryNotes       string
	DeliveryLat         *float64
	DeliveryLng         *float64
	RunnerLat           *float64
	RunnerLng           *float64
	LastLocationUpdate  *time.Time
	EstimatedDeliveryAt time.Time
	CreatedAt           time.Time
}

// successor holds the single legal next status along the delivery path
var successor = map[string]string{
	OrderStatusPending:    OrderStatusAccepted,
	OrderStatusAccepted:   OrderStatusPreparing,
	OrderStatusPreparing:  OrderStatusDelivering,
	OrderStatusDelivering: OrderStatusDelivered,
}

type transition struct {
	from string
	to   string
}

// transitionRole maps every legal edge to the role allowed to perform it.
// The runner claim (pending->accepted) goes through Claim, not Advance,
// but is listed so the edge set is complete.
var transitionRole = map[transition]string{
	{OrderStatusPending, OrderStatusAccepted}:     RoleRunner,
	{OrderStatusAccepted, OrderStatusPreparing}:   RoleVendor,
	{OrderStatusPreparing, OrderStatusDelivering}: RoleRunner,
	{OrderStatusDelivering, OrderStatusDelivered}: RoleRunner,
	{OrderStatusPending, OrderStatusCancelled}:    RoleBuyer,
}

// IsValidStatus reports whether s is one of the six delivery statuses.
func IsValidStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusPreparing,
		OrderStatusDelivering, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// NextStatus returns the successor of status on the delivery path.
func NextStatus(status string) (string, bool) {
	next, ok := successor[status]
	return next, ok
}

// PrevStatus returns the predecessor of status on the delivery path.
func PrevStatus(status string) (string, bool) {
	for from, to := range successor {
		if to == status {
			return from, true
		}
	}
	return "", false
}

// IsLegalTransition reports whether from->to is one of the legal edges.
func IsLegalTransition(from, to string) bool {
	_, ok := transitionRole[transition{from, to}]
	return ok
}

// CanTransition reports whether role is permitted to move an order from cur to next.
func CanTransition(role, cur, next string) bool {
	allowed, ok := transitionRole[transition{cur, next}]
	return ok && allowed == role
}

// IsTerminalStatus reports whether status has no outgoing edges.
func IsTerminalStatus(status string) bool {
	return status == OrderStatusDelivered || status == OrderStatusCancelled
}
