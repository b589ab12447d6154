package handlers

import (
	"time"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
)

// userResponse is the caller's own record. It carries the raw follow sets,
// which other viewers only see as counts.
type userResponse struct {
	ID         string         `json:"id"`
	Email      string         `json:"email"`
	Username   string         `json:"username"`
	PhoneNo    string         `json:"phone_no"`
	Address    string         `json:"address"`
	Education  string         `json:"education"`
	PhotoURL   string         `json:"photo_url"`
	Skills     []entity.Skill `json:"skills"`
	Followers  entity.IDSet   `json:"followers"`
	Following  entity.IDSet   `json:"following"`
	IsVerified bool           `json:"is_verified"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func toUserResponse(u *entity.User) userResponse {
	u.Normalize()
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		PhoneNo:    u.PhoneNo,
		Address:    u.Address,
		Education:  u.Education,
		PhotoURL:   u.PhotoURL,
		Skills:     u.Skills,
		Followers:  u.Followers,
		Following:  u.Following,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

type postResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	ImageURLs []string  `json:"image_urls"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPostResponse(p *entity.Post) postResponse {
	urls := p.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return postResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Content:   p.Content,
		ImageURLs: urls,
		IsPublic:  p.IsPublic,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toPostResponses(posts []*entity.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	return out
}

type notificationResponse struct {
	ID          string    `json:"id"`
	ActorID     string    `json:"actor_id"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	ReferenceID string    `json:"reference_id,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

func toNotificationResponses(ns []*entity.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, notificationResponse{
			ID:          n.ID,
			ActorID:     n.ActorID,
			Type:        string(n.Type),
			Message:     n.Message,
			ReferenceID: n.ReferenceID,
			IsRead:      n.IsRead,
			CreatedAt:   n.CreatedAt,
		})
	}
	return out
}
