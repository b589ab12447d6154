package entity

import "time"

type NotificationType string

const (
	NotificationFollow NotificationType = "FOLLOW"
)

// Notification is addressed to UserID and was caused by ActorID.
type Notification struct {
	ID          string
	UserID      string
	ActorID     string
	Type        NotificationType
	Message     string
	ReferenceID string
	IsRead      bool
	CreatedAt   time.Time
}
