package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/infrastructure/memory"
	"github.com/oksasatya/go-social-graph/pkg/mailer"
)

func newNotificationService(t *testing.T) *NotificationService {
	t.Helper()
	users := memory.NewUserRepository()
	seedUsers(t, users, "alice", "bob")
	svc := NewNotificationService(memory.NewNotificationRepository(), users, quietLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func followEvent(actor, target string, at time.Time) entity.SocialEvent {
	return entity.SocialEvent{Type: entity.EventFollow, ActorID: actor, TargetID: target, OccurredAt: at}
}

func TestHandleFollowEvent(t *testing.T) {
	svc := newNotificationService(t)
	ctx := context.Background()

	n, err := svc.HandleEvent(ctx, followEvent("alice", "bob", fixedNow.Add(time.Minute)))
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "bob", n.UserID)
	assert.Equal(t, "alice", n.ActorID)
	assert.Equal(t, entity.NotificationFollow, n.Type)
	assert.Equal(t, "user-alice started following you", n.Message)
	assert.Equal(t, fixedNow.Add(time.Minute), n.CreatedAt)

	list, err := svc.List(ctx, "bob", true)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	n, err = svc.HandleEvent(ctx, followEvent("ghost", "bob", time.Time{}))
	require.NoError(t, err)
	assert.Equal(t, "Someone started following you", n.Message)
	assert.Equal(t, fixedNow, n.CreatedAt)
}

func TestHandleEventIgnoresUnfollow(t *testing.T) {
	svc := newNotificationService(t)
	n, err := svc.HandleEvent(context.Background(), entity.SocialEvent{Type: entity.EventUnfollow, ActorID: "alice", TargetID: "bob"})
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestHandleEventRejectsMalformed(t *testing.T) {
	svc := newNotificationService(t)
	for _, ev := range []entity.SocialEvent{
		followEvent("", "bob", fixedNow),
		followEvent("alice", "", fixedNow),
		followEvent("bob", "bob", fixedNow),
	} {
		_, err := svc.HandleEvent(context.Background(), ev)
		assert.ErrorIs(t, err, ErrMalformedEvent)
	}
}

func TestMarkRead(t *testing.T) {
	svc := newNotificationService(t)
	ctx := context.Background()
	first, err := svc.HandleEvent(ctx, followEvent("alice", "bob", fixedNow))
	require.NoError(t, err)
	_, err = svc.HandleEvent(ctx, followEvent("alice", "bob", fixedNow.Add(time.Second)))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkRead(ctx, "alice", first.ID), ErrNotificationNotFound)
	require.NoError(t, svc.MarkRead(ctx, "bob", first.ID))

	unread, err := svc.List(ctx, "bob", true)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	n, err := svc.MarkAllRead(ctx, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	unread, err = svc.List(ctx, "bob", true)
	require.NoError(t, err)
	assert.Empty(t, unread)
	all, err := svc.List(ctx, "bob", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFollowerEmail(t *testing.T) {
	svc := newNotificationService(t)
	job, err := svc.FollowerEmail(context.Background(), followEvent("alice", "bob", fixedNow), "https://app.test/u")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", job.To)
	assert.Equal(t, mailer.TemplateNewFollower, job.Template)
	assert.Equal(t, "user-alice", job.Data["ActorName"])
	assert.Equal(t, "https://app.test/u/alice", job.Data["ProfileURL"])

	_, err = svc.FollowerEmail(context.Background(), followEvent("alice", "ghost", fixedNow), "")
	assert.Error(t, err)
}
