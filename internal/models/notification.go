package models

import "time"

// notification severity
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Notification is an in-app notification record.
// Created by the system on order transitions, mutated only by the owner marking it read.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Severity  string
	Read      bool
	OrderID   *string
	CreatedAt time.Time
}
