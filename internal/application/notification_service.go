package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	repo "github.com/oksasatya/go-social-graph/internal/domain/repository"
	"github.com/oksasatya/go-social-graph/pkg/mailer"
)

// NotificationService records and serves per-user notifications. The worker
// feeds it social events; the API reads and acknowledges them.
type NotificationService struct {
	Repo   repo.NotificationRepository
	Users  repo.UserRepository
	Logger *logrus.Logger

	now func() time.Time
}

func NewNotificationService(notifications repo.NotificationRepository, users repo.UserRepository, logger *logrus.Logger) *NotificationService {
	return &NotificationService{Repo: notifications, Users: users, Logger: logger, now: time.Now}
}

// HandleEvent turns a social event into a notification for its target.
// It returns the stored notification, or nil for events that notify nobody.
func (s *NotificationService) HandleEvent(ctx context.Context, ev entity.SocialEvent) (*entity.Notification, error) {
	if ev.Type != entity.EventFollow {
		return nil, nil
	}
	if ev.ActorID == "" || ev.TargetID == "" || ev.ActorID == ev.TargetID {
		return nil, fmt.Errorf("%w: actor=%q target=%q", ErrMalformedEvent, ev.ActorID, ev.TargetID)
	}
	actorName := "Someone"
	if actor, err := s.Users.GetByID(ctx, ev.ActorID); err == nil && actor.Username != "" {
		actorName = actor.Username
	}
	at := ev.OccurredAt
	if at.IsZero() {
		at = s.now()
	}
	n := &entity.Notification{
		ID:          uuid.NewString(),
		UserID:      ev.TargetID,
		ActorID:     ev.ActorID,
		Type:        entity.NotificationFollow,
		Message:     actorName + " started following you",
		ReferenceID: ev.ActorID,
		CreatedAt:   at,
	}
	if err := s.Repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// FollowerEmail builds the email telling the target about a new follower.
func (s *NotificationService) FollowerEmail(ctx context.Context, ev entity.SocialEvent, profileBaseURL string) (*mailer.EmailJob, error) {
	target, err := s.Users.GetByID(ctx, ev.TargetID)
	if err != nil {
		return nil, err
	}
	data := map[string]any{"Name": target.Username}
	if actor, aErr := s.Users.GetByID(ctx, ev.ActorID); aErr == nil {
		data["ActorName"] = actor.Username
	}
	if profileBaseURL != "" {
		data["ProfileURL"] = profileBaseURL + "/" + ev.ActorID
	}
	return &mailer.EmailJob{To: target.Email, Template: mailer.TemplateNewFollower, Data: data}, nil
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error) {
	return s.Repo.ListByUser(ctx, userID, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	err := s.Repo.MarkRead(ctx, id, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotificationNotFound, id)
	}
	return err
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.Repo.MarkAllRead(ctx, userID)
}
