package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/Chikothe3rd/campuseats/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	orderColumns = `id, buyer_id, vendor_id, runner_id, items, subtotal, tax, delivery_fee, total,
						payment_status, payment_method, delivery_status, delivery_address, delivery_notes,
						delivery_lat, delivery_lng, runner_lat, runner_lng, last_location_update,
						estimated_delivery_at, created_at`

	insertOrderQuery = `
						INSERT INTO orders (id, buyer_id, vendor_id, items, subtotal, tax, delivery_fee, total,
							payment_status, payment_method, delivery_status, delivery_address, delivery_notes,
							delivery_lat, delivery_lng, estimated_delivery_at)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
						RETURNING created_at
`
	selectOrderByIDQuery = `
						SELECT ` + orderColumns + ` FROM orders
						WHERE id = $1
`
	selectOrdersByBuyerQuery = `
						SELECT ` + orderColumns + ` FROM orders
						WHERE buyer_id = $1
						ORDER BY created_at DESC
`
	selectOrdersByVendorQuery = `
						SELECT ` + orderColumns + ` FROM orders
						WHERE vendor_id = $1
						ORDER BY created_at DESC
`
	selectOrdersForRunnerQuery = `
						SELECT ` + orderColumns + ` FROM orders
						WHERE (delivery_status = 'pending' AND runner_id IS NULL) OR runner_id = $1
						ORDER BY created_at DESC
`
	claimOrderQuery = `
						UPDATE orders
						SET runner_id = $1, delivery_status = 'accepted'
						WHERE id = $2 AND delivery_status = 'pending' AND runner_id IS NULL
`
	updateStatusQuery = `
						UPDATE orders
						SET delivery_status = $1
						WHERE id = $2 AND delivery_status = $3
`
	updateLocationQuery = `
						UPDATE orders
						SET runner_lat = $1, runner_lng = $2, last_location_update = now()
						WHERE id = $3 AND delivery_status = 'delivering'
`
	updatePaymentQuery = `
						UPDATE orders
						SET payment_status = $1
						WHERE id = $2 AND payment_status = $3
`
	selectPendingPaymentsQuery = `
						SELECT id FROM orders
						WHERE payment_status = 'pending' AND delivery_status <> 'cancelled'
`
)

// OrderRepository implements OrderRepository interface
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// scanOrder reads one order row. Line items are stored as a jsonb snapshot.
func scanOrder(row pgx.Row) (*models.Order, error) {
	order := models.Order{}
	var items []byte

	err := row.Scan(&order.ID, &order.BuyerID, &order.VendorID, &order.RunnerID, &items,
		&order.Subtotal, &order.Tax, &order.DeliveryFee, &order.Total,
		&order.PaymentStatus, &order.PaymentMethod, &order.Status,
		&order.DeliveryAddress, &order.DeliveryNotes,
		&order.DeliveryLat, &order.DeliveryLng, &order.RunnerLat, &order.RunnerLng,
		&order.LastLocationUpdate, &order.EstimatedDeliveryAt, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, err
	}

	return &order, nil
}

// CreateOrder inserts new order to database
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}

	err = or.db.QueryRow(ctx, insertOrderQuery,
		order.ID, order.BuyerID, order.VendorID, items,
		order.Subtotal, order.Tax, order.DeliveryFee, order.Total,
		order.PaymentStatus, order.PaymentMethod, order.Status,
		order.DeliveryAddress, order.DeliveryNotes,
		order.DeliveryLat, order.DeliveryLng, order.EstimatedDeliveryAt).Scan(&order.CreatedAt)
	if err != nil {
		if errCode := or.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return order, nil
}

// GetOrderByID returns order by id
func (or *OrderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := scanOrder(or.db.QueryRow(ctx, selectOrderByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return order, nil
}

// queryOrders runs a list query and scans the result set
func (or *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := or.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			continue
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// GetOrdersByBuyer gets buyer orders, newest first
func (or *OrderRepository) GetOrdersByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	return or.queryOrders(ctx, selectOrdersByBuyerQuery, buyerID)
}

// GetOrdersByVendor gets vendor orders, newest first
func (or *OrderRepository) GetOrdersByVendor(ctx context.Context, vendorID string) ([]models.Order, error) {
	return or.queryOrders(ctx, selectOrdersByVendorQuery, vendorID)
}

// GetOrdersForRunner gets unclaimed pending orders together with the runner's own
// orders in a single query, so both subsets come from one snapshot.
func (or *OrderRepository) GetOrdersForRunner(ctx context.Context, runnerID string) ([]models.Order, error) {
	return or.queryOrders(ctx, selectOrdersForRunnerQuery, runnerID)
}

// ClaimOrder assigns runner to a pending unclaimed order as a single conditional
// update. The WHERE clause re-checks both fields, so of two racing claims exactly
// one affects a row; the loser gets ErrAlreadyClaimed.
func (or *OrderRepository) ClaimOrder(ctx context.Context, orderID, runnerID string) error {
	cmd, err := or.db.Exec(ctx, claimOrderQuery, runnerID, orderID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrAlreadyClaimed
	}

	return nil
}

// UpdateOrderStatus moves order from status to target. The update is conditioned
// on the expected current status; zero affected rows means the precondition no
// longer holds and is reported as ErrConflictData for the caller to resolve.
func (or *OrderRepository) UpdateOrderStatus(ctx context.Context, orderID, from, to string) error {
	cmd, err := or.db.Exec(ctx, updateStatusQuery, to, orderID, from)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrConflictData
	}

	return nil
}

// UpdateRunnerLocation writes a runner position sample. Only the location fields
// are touched and only while the order is out for delivery, so a sample can never
// clobber a concurrent status change.
func (or *OrderRepository) UpdateRunnerLocation(ctx context.Context, orderID string, lat, lng float64) error {
	cmd, err := or.db.Exec(ctx, updateLocationQuery, lat, lng, orderID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrNotDelivering
	}

	return nil
}

// UpdatePaymentStatus moves payment status under the same conditional-update rule
func (or *OrderRepository) UpdatePaymentStatus(ctx context.Context, orderID, from, to string) error {
	cmd, err := or.db.Exec(ctx, updatePaymentQuery, to, orderID, from)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrConflictData
	}

	return nil
}

// GetPendingPaymentIDs returns ids of orders awaiting payment settlement
func (or *OrderRepository) GetPendingPaymentIDs(ctx context.Context) ([]string, error) {
	rows, err := or.db.Query(ctx, selectPendingPaymentsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
