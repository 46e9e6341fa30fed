package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Chikothe3rd/campuseats/internal/apperr"
	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/Chikothe3rd/campuseats/internal/realtime"
	"github.com/Chikothe3rd/campuseats/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TrackingService interface {
	// UpdateLocation writes one runner position sample
	UpdateLocation(ctx context.Context, orderID, runnerID string, lat, lng float64) error
	// ETA returns minutes to delivery; false means indeterminate
	ETA(ctx context.Context, orderID string) (int, bool, error)
}

type StreamService interface {
	// ViewFor re-derives the actor's role-scoped view
	ViewFor(ctx context.Context, actor models.Actor) (service.OrderView, error)
	// ScopeFor returns the actor's change event filter
	ScopeFor(ctx context.Context, actor models.Actor) (func(realtime.Event) bool, error)
}

// TrackingHandler represents HTTP handler for live tracking requests
type TrackingHandler struct {
	svc    TrackingService
	stream StreamService
	feed   realtime.Subscriber
	logger *zap.Logger
}

// NewTrackingHandler creates new TrackingHandler instance
func NewTrackingHandler(svc TrackingService, stream StreamService, feed realtime.Subscriber, logger *zap.Logger) *TrackingHandler {
	return &TrackingHandler{
		svc:    svc,
		stream: stream,
		feed:   feed,
		logger: logger,
	}
}

type locationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UpdateRunnerLocation ingests a runner position sample
// 204 — координаты записаны;
// 400 — неверный формат запроса;
// 401 — пользователь не аутентифицирован;
// 403 — заказ закреплён за другим курьером;
// 404 — заказ не найден;
// 409 — заказ не находится в доставке;
// 500 — внутренняя ошибка сервера.
func (th *TrackingHandler) UpdateRunnerLocation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req locationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		err := th.svc.UpdateLocation(r.Context(), chi.URLParam(r, "orderID"), actor.UserID, req.Lat, req.Lng)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrNotPermitted):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrNotDelivering):
				http.Error(w, "order is not out for delivery", http.StatusConflict)
			default:
				http.Error(w, apperr.UserMessage(err), http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type etaResponse struct {
	ETAMinutes    int  `json:"eta_minutes"`
	Indeterminate bool `json:"indeterminate"`
}

// GetOrderETA returns the live delivery estimate
// 200 — успешная обработка запроса;
// 401 — пользователь не аутентифицирован;
// 404 — заказ не найден;
// 500 — внутренняя ошибка сервера.
func (th *TrackingHandler) GetOrderETA() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		minutes, known, err := th.svc.ETA(r.Context(), chi.URLParam(r, "orderID"))
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				http.Error(w, apperr.UserMessage(err), http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(etaResponse{
			ETAMinutes:    minutes,
			Indeterminate: !known,
		}); err != nil {
			return
		}
	}
}

// StreamOrders serves the actor's live view over server-sent events. The
// subscription is established per request and torn down when the client
// disconnects.
// 200 — поток открыт;
// 401 — пользователь не аутентифицирован;
// 500 — внутренняя ошибка сервера.
func (th *TrackingHandler) StreamOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		scope, err := th.stream.ScopeFor(r.Context(), actor)
		if err != nil {
			http.Error(w, apperr.UserMessage(err), http.StatusInternalServerError)
			return
		}

		sync := realtime.NewSynchronizer(th.feed, func(ctx context.Context) (service.OrderView, error) {
			return th.stream.ViewFor(ctx, actor)
		}, scope, th.logger)

		ctx := r.Context()
		go func() {
			if err := sync.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				th.logger.Error("view synchronizer stopped", zap.Error(err))
			}
		}()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-ctx.Done():
				return
			case view := <-sync.Views():
				payload, err := json.Marshal(toViewResponse(view))
				if err != nil {
					continue
				}
				if _, err := w.Write([]byte("data: ")); err != nil {
					return
				}
				if _, err := w.Write(payload); err != nil {
					return
				}
				if _, err := w.Write([]byte("\n\n")); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
