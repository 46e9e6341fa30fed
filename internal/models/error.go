package models

import "errors"

var (
	ErrConflictData       = errors.New("data conflicts with existing data")
	ErrDataNotFound       = errors.New("data not found")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")

	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrAlreadyClaimed    = errors.New("order already claimed by another runner")
	ErrNotPermitted      = errors.New("actor is not permitted to perform this operation")
	ErrNotDelivering     = errors.New("order is not out for delivery")
	ErrEmptyCart         = errors.New("cart contains no items")
	ErrInvalidQuantity   = errors.New("line item quantity must be positive")

	ErrInternalError = errors.New("internal error")
)
