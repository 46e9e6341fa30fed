package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Chikothe3rd/campuseats/internal/handler/http/mocks"
	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUpdateRunnerLocation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		buildStubs func(svc *mocks.MockTrackingService)
		wantStatus int
	}{
		{
			name: "sample accepted",
			body: `{"lat":-15.3875,"lng":28.3228}`,
			buildStubs: func(svc *mocks.MockTrackingService) {
				svc.EXPECT().
					UpdateLocation(gomock.Any(), gomock.Eq("o1"), gomock.Eq("r1"), gomock.Eq(-15.3875), gomock.Eq(28.3228)).
					Times(1).
					Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "malformed body",
			body:       `{`,
			buildStubs: func(svc *mocks.MockTrackingService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "assigned to another runner",
			body: `{"lat":1,"lng":2}`,
			buildStubs: func(svc *mocks.MockTrackingService) {
				svc.EXPECT().
					UpdateLocation(gomock.Any(), gomock.Eq("o1"), gomock.Eq("r1"), gomock.Any(), gomock.Any()).
					Times(1).
					Return(models.ErrNotPermitted)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "order is not out for delivery",
			body: `{"lat":1,"lng":2}`,
			buildStubs: func(svc *mocks.MockTrackingService) {
				svc.EXPECT().
					UpdateLocation(gomock.Any(), gomock.Eq("o1"), gomock.Eq("r1"), gomock.Any(), gomock.Any()).
					Times(1).
					Return(models.ErrNotDelivering)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "order not found",
			body: `{"lat":1,"lng":2}`,
			buildStubs: func(svc *mocks.MockTrackingService) {
				svc.EXPECT().
					UpdateLocation(gomock.Any(), gomock.Eq("o1"), gomock.Eq("r1"), gomock.Any(), gomock.Any()).
					Times(1).
					Return(models.ErrDataNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mocks.NewMockTrackingService(ctrl)
			tt.buildStubs(svc)

			handler := NewTrackingHandler(svc, nil, nil, zap.NewNop())

			r := newAuthedRequest(http.MethodPost, "/api/orders/o1/location",
				strings.NewReader(tt.body), runnerPayload("r1"), map[string]string{"orderID": "o1"})
			w := httptest.NewRecorder()

			handler.UpdateRunnerLocation().ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestGetOrderETA(t *testing.T) {
	buyerPayload := &models.TokenPayload{UserID: "b1", Role: models.RoleBuyer}

	t.Run("known estimate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := mocks.NewMockTrackingService(ctrl)
		svc.EXPECT().
			ETA(gomock.Any(), gomock.Eq("o1")).
			Times(1).
			Return(7, true, nil)

		handler := NewTrackingHandler(svc, nil, nil, zap.NewNop())

		r := newAuthedRequest(http.MethodGet, "/api/orders/o1/eta", nil, buyerPayload, map[string]string{"orderID": "o1"})
		w := httptest.NewRecorder()

		handler.GetOrderETA().ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var got etaResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, 7, got.ETAMinutes)
		assert.False(t, got.Indeterminate)
	})

	t.Run("indeterminate estimate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := mocks.NewMockTrackingService(ctrl)
		svc.EXPECT().
			ETA(gomock.Any(), gomock.Eq("o1")).
			Times(1).
			Return(0, false, nil)

		handler := NewTrackingHandler(svc, nil, nil, zap.NewNop())

		r := newAuthedRequest(http.MethodGet, "/api/orders/o1/eta", nil, buyerPayload, map[string]string{"orderID": "o1"})
		w := httptest.NewRecorder()

		handler.GetOrderETA().ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var got etaResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Zero(t, got.ETAMinutes)
		assert.True(t, got.Indeterminate)
	})

	t.Run("order not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := mocks.NewMockTrackingService(ctrl)
		svc.EXPECT().
			ETA(gomock.Any(), gomock.Eq("o1")).
			Times(1).
			Return(0, false, models.ErrDataNotFound)

		handler := NewTrackingHandler(svc, nil, nil, zap.NewNop())

		r := newAuthedRequest(http.MethodGet, "/api/orders/o1/eta", nil, buyerPayload, map[string]string{"orderID": "o1"})
		w := httptest.NewRecorder()

		handler.GetOrderETA().ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
