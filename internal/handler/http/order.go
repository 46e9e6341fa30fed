package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Chikothe3rd/campuseats/internal/apperr"
	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/Chikothe3rd/campuseats/internal/service"
	"github.com/go-chi/chi/v5"
)

type OrderService interface {
	// Checkout places the buyer's cart, one order per vendor group
	Checkout(ctx context.Context, buyerID string, req service.CheckoutRequest) ([]models.Order, error)
	// Claim assigns the order to runner under the at-most-one-claimant rule
	Claim(ctx context.Context, orderID, runnerID string) (*models.Order, error)
	// Advance moves order along the delivery path
	Advance(ctx context.Context, orderID string, actor models.Actor, target string) (*models.Order, error)
	// Cancel cancels a pending order on behalf of its buyer
	Cancel(ctx context.Context, orderID, actorID string) (*models.Order, error)
	// GetOrder returns order by id if actor is one of its parties
	GetOrder(ctx context.Context, orderID string, actor models.Actor) (*models.Order, error)
	// ViewFor re-derives the actor's role-scoped view
	ViewFor(ctx context.Context, actor models.Actor) (service.OrderView, error)
}

// OrderHandler represents HTTP handler for order-related requests
type OrderHandler struct {
	svc OrderService
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type checkoutItemRequest struct {
	VendorID   string  `json:"vendor_id"`
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
}

type checkoutRequest struct {
	Items           []checkoutItemRequest `json:"items"`
	PaymentMethod   string                `json:"payment_method"`
	DeliveryAddress string                `json:"delivery_address"`
	DeliveryNotes   string                `json:"delivery_notes,omitempty"`
	DeliveryLat     *float64              `json:"delivery_lat,omitempty"`
	DeliveryLng     *float64              `json:"delivery_lng,omitempty"`
}

type orderItemResponse struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
}

type orderResponse struct {
	ID                  string              `json:"id"`
	BuyerID             string              `json:"buyer_id"`
	VendorID            string              `json:"vendor_id"`
	RunnerID            *string             `json:"runner_id,omitempty"`
	Items               []orderItemResponse `json:"items"`
	Subtotal            float64             `json:"subtotal"`
	Tax                 float64             `json:"tax"`
	DeliveryFee         float64             `json:"delivery_fee"`
	Total               float64             `json:"total"`
	PaymentStatus       string              `json:"payment_status"`
	Status              string              `json:"status"`
	DeliveryAddress     string              `json:"delivery_address"`
	RunnerLat           *float64            `json:"runner_lat,omitempty"`
	RunnerLng           *float64            `json:"runner_lng,omitempty"`
	EstimatedDeliveryAt string              `json:"estimated_delivery_at"`
	CreatedAt           string              `json:"created_at"`
}

func toOrderResponse(order models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse(item))
	}

	return orderResponse{
		ID:                  order.ID,
		BuyerID:             order.BuyerID,
		VendorID:            order.VendorID,
		RunnerID:            order.RunnerID,
		Items:               items,
		Subtotal:            order.Subtotal,
		Tax:                 order.Tax,
		DeliveryFee:         order.DeliveryFee,
		Total:               order.Total,
		PaymentStatus:       order.PaymentStatus,
		Status:              order.Status,
		DeliveryAddress:     order.DeliveryAddress,
		RunnerLat:           order.RunnerLat,
		RunnerLng:           order.RunnerLng,
		EstimatedDeliveryAt: order.EstimatedDeliveryAt.Format(time.RFC3339),
		CreatedAt:           order.CreatedAt.Format(time.RFC3339),
	}
}

func toOrderListResponse(orders []models.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}
	return resp
}

type viewResponse struct {
	Role      string          `json:"role"`
	Orders    []orderResponse `json:"orders,omitempty"`
	Available []orderResponse `json:"available,omitempty"`
	Active    []orderResponse `json:"active,omitempty"`
	Delivered []orderResponse `json:"delivered,omitempty"`
}

func toViewResponse(view service.OrderView) viewResponse {
	resp := viewResponse{Role: view.Role}
	if view.Runner != nil {
		resp.Available = toOrderListResponse(view.Runner.Available)
		resp.Active = toOrderListResponse(view.Runner.Active)
		resp.Delivered = toOrderListResponse(view.Runner.Delivered)
		return resp
	}
	resp.Orders = toOrderListResponse(view.Orders)
	return resp
}

// CheckoutOrder places buyer order
// 201 — заказ создан;
// 400 — неверный формат запроса (пустая корзина, нулевое количество);
// 401 — пользователь не аутентифицирован;
// 500 — внутренняя ошибка сервера.
func (oh *OrderHandler) CheckoutOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req checkoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		items := make([]service.CartItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, service.CartItem{
				VendorID:   item.VendorID,
				MenuItemID: item.MenuItemID,
				Name:       item.Name,
				UnitPrice:  item.UnitPrice,
				Quantity:   item.Quantity,
			})
		}

		orders, err := oh.svc.Checkout(r.Context(), actor.UserID, service.CheckoutRequest{
			Items:           items,
			PaymentMethod:   req.PaymentMethod,
			DeliveryAddress: req.DeliveryAddress,
			DeliveryNotes:   req.DeliveryNotes,
			DeliveryLat:     req.DeliveryLat,
			DeliveryLng:     req.DeliveryLng,
		})
		if err != nil {
			switch {
			case errors.Is(err, models.ErrEmptyCart), errors.Is(err, models.ErrInvalidQuantity):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "vendor not found", http.StatusUnprocessableEntity)
			default:
				http.Error(w, apperr.UserMessage(err), http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)

		if err := json.NewEncoder(w).Encode(toOrderListResponse(orders)); err != nil {
			return
		}
	}
}

// ListOrders returns the actor's role-scoped view
// 200 — успешная обработка запроса;
// 401 — пользователь не аутентифицирован;
// 500 — внутренняя ошибка сервера.
func (oh *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		view, err := oh.svc.ViewFor(r.Context(), actor)
		if err != nil {
			http.Error(w, apperr.UserMessage(err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toViewResponse(view)); err != nil {
			return
		}
	}
}

// GetOrder returns one order
// 200 — успешная обработка запроса;
// 401 — пользователь не аутентифицирован;
// 403 — заказ принадлежит другому пользователю;
// 404 — заказ не найден.
func (oh *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		order, err := oh.svc.GetOrder(r.Context(), chi.URLParam(r, "orderID"), actor)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrNotPermitted):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, apperr.UserMessage(err), http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toOrderResponse(*order)); err != nil {
			return
		}
	}
}

// ClaimOrder claims a pending order for the acting runner
// 200 — заказ закреплён за курьером;
// 401 — пользователь не аутентифицирован;
// 403 — пользователь не является курьером;
// 404 — заказ не найден;
// 409 — заказ уже взят другим курьером;
// 500 — внутренняя ошибка сервера.
func (oh *OrderHandler) ClaimOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if actor.Role != models.RoleRunner {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		order, err := oh.svc.Claim(r.Context(), chi.URLParam(r, "orderID"), actor.UserID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrAlreadyClaimed):
				http.Error(w, apperr.UserMessage(err), http.StatusConflict)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				http.Error(w, apperr.UserMessage(err), http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toOrderResponse(*order)); err != nil {
			return
		}
	}
}

type advanceRequest struct {
	Status string `json:"status"`
}

// AdvanceOrder moves order to the requested status
// 200 — статус обновлён;
// 400 — неверный формат запроса;
// 401 — пользователь не аутентифицирован;
// 403 — актор не владеет этим переходом;
// 404 — заказ не найден;
// 409 — статус изменён конкурирующим обновлением;
// 422 — недопустимый переход статуса;
// 500 — внутренняя ошибка сервера.
func (oh *OrderHandler) AdvanceOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req advanceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		order, err := oh.svc.Advance(r.Context(), chi.URLParam(r, "orderID"), actor, req.Status)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidTransition):
				http.Error(w, "invalid status transition", http.StatusUnprocessableEntity)
			case errors.Is(err, models.ErrNotPermitted):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrConflictData):
				http.Error(w, apperr.UserMessage(err), http.StatusConflict)
			default:
				http.Error(w, apperr.UserMessage(err), http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toOrderResponse(*order)); err != nil {
			return
		}
	}
}

// CancelOrder cancels a pending order on behalf of its buyer
// 200 — заказ отменён;
// 401 — пользователь не аутентифицирован;
// 403 — заказ принадлежит другому покупателю;
// 404 — заказ не найден;
// 422 — заказ уже нельзя отменить;
// 500 — внутренняя ошибка сервера.
func (oh *OrderHandler) CancelOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		order, err := oh.svc.Cancel(r.Context(), chi.URLParam(r, "orderID"), actor.UserID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidTransition):
				http.Error(w, "order can no longer be cancelled", http.StatusUnprocessableEntity)
			case errors.Is(err, models.ErrNotPermitted):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				http.Error(w, apperr.UserMessage(err), http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toOrderResponse(*order)); err != nil {
			return
		}
	}
}
