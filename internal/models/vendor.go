package models

import "time"

// Vendor is vendor entity owned by a user with the vendor role
type Vendor struct {
	ID              string
	UserID          string
	Name            string
	IsActive        bool
	PreparationTime int // minutes
	CreatedAt       time.Time
}
