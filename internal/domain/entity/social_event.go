package entity

import "time"

type SocialEventType string

const (
	EventFollow   SocialEventType = "follow"
	EventUnfollow SocialEventType = "unfollow"
)

// SocialEvent is the JSON payload put on the events queue after a graph change.
type SocialEvent struct {
	Type       SocialEventType `json:"type"`
	ActorID    string          `json:"actor_id"`
	TargetID   string          `json:"target_id"`
	OccurredAt time.Time       `json:"occurred_at"`
}
