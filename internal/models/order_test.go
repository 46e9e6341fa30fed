package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLegalTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{
			name: "claim edge",
			from: OrderStatusPending,
			to:   OrderStatusAccepted,
			want: true,
		},
		{
			name: "vendor starts preparing",
			from: OrderStatusAccepted,
			to:   OrderStatusPreparing,
			want: true,
		},
		{
			name: "runner picks up",
			from: OrderStatusPreparing,
			to:   OrderStatusDelivering,
			want: true,
		},
		{
			name: "runner delivers",
			from: OrderStatusDelivering,
			to:   OrderStatusDelivered,
			want: true,
		},
		{
			name: "buyer cancels pending",
			from: OrderStatusPending,
			to:   OrderStatusCancelled,
			want: true,
		},
		{
			name: "skip a step",
			from: OrderStatusPending,
			to:   OrderStatusPreparing,
			want: false,
		},
		{
			name: "backwards",
			from: OrderStatusDelivering,
			to:   OrderStatusPreparing,
			want: false,
		},
		{
			name: "cancel after claim",
			from: OrderStatusAccepted,
			to:   OrderStatusCancelled,
			want: false,
		},
		{
			name: "out of delivered",
			from: OrderStatusDelivered,
			to:   OrderStatusDelivering,
			want: false,
		},
		{
			name: "out of cancelled",
			from: OrderStatusCancelled,
			to:   OrderStatusPending,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLegalTransition(tt.from, tt.to))
		})
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		role string
		cur  string
		next string
		want bool
	}{
		{
			name: "runner claims pending",
			role: RoleRunner,
			cur:  OrderStatusPending,
			next: OrderStatusAccepted,
			want: true,
		},
		{
			name: "vendor cannot claim",
			role: RoleVendor,
			cur:  OrderStatusPending,
			next: OrderStatusAccepted,
			want: false,
		},
		{
			name: "vendor starts preparing",
			role: RoleVendor,
			cur:  OrderStatusAccepted,
			next: OrderStatusPreparing,
			want: true,
		},
		{
			name: "runner cannot start preparing",
			role: RoleRunner,
			cur:  OrderStatusAccepted,
			next: OrderStatusPreparing,
			want: false,
		},
		{
			name: "runner picks up",
			role: RoleRunner,
			cur:  OrderStatusPreparing,
			next: OrderStatusDelivering,
			want: true,
		},
		{
			name: "runner completes delivery",
			role: RoleRunner,
			cur:  OrderStatusDelivering,
			next: OrderStatusDelivered,
			want: true,
		},
		{
			name: "buyer cancels pending",
			role: RoleBuyer,
			cur:  OrderStatusPending,
			next: OrderStatusCancelled,
			want: true,
		},
		{
			name: "runner cannot cancel",
			role: RoleRunner,
			cur:  OrderStatusPending,
			next: OrderStatusCancelled,
			want: false,
		},
		{
			name: "buyer cannot cancel preparing",
			role: RoleBuyer,
			cur:  OrderStatusPreparing,
			next: OrderStatusCancelled,
			want: false,
		},
		{
			name: "illegal edge has no role",
			role: RoleVendor,
			cur:  OrderStatusPending,
			next: OrderStatusDelivered,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.role, tt.cur, tt.next))
		})
	}
}

func TestNextStatus(t *testing.T) {
	next, ok := NextStatus(OrderStatusPending)
	assert.True(t, ok)
	assert.Equal(t, OrderStatusAccepted, next)

	next, ok = NextStatus(OrderStatusDelivering)
	assert.True(t, ok)
	assert.Equal(t, OrderStatusDelivered, next)

	_, ok = NextStatus(OrderStatusDelivered)
	assert.False(t, ok)

	_, ok = NextStatus(OrderStatusCancelled)
	assert.False(t, ok)
}

func TestPrevStatus(t *testing.T) {
	prev, ok := PrevStatus(OrderStatusAccepted)
	assert.True(t, ok)
	assert.Equal(t, OrderStatusPending, prev)

	prev, ok = PrevStatus(OrderStatusDelivered)
	assert.True(t, ok)
	assert.Equal(t, OrderStatusDelivering, prev)

	_, ok = PrevStatus(OrderStatusPending)
	assert.False(t, ok)
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{
		OrderStatusPending, OrderStatusAccepted, OrderStatusPreparing,
		OrderStatusDelivering, OrderStatusDelivered, OrderStatusCancelled,
	} {
		assert.True(t, IsValidStatus(s), s)
	}

	assert.False(t, IsValidStatus("shipped"))
	assert.False(t, IsValidStatus(""))
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(OrderStatusDelivered))
	assert.True(t, IsTerminalStatus(OrderStatusCancelled))
	assert.False(t, IsTerminalStatus(OrderStatusPending))
	assert.False(t, IsTerminalStatus(OrderStatusDelivering))
}
