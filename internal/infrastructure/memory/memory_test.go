package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/domain/repository"
)

func TestUserRepositoryCopiesRecords(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	u := entity.NewUser("u1", "Ann@Example.com", "h", "ann", time.Now())
	require.NoError(t, repo.Save(ctx, u))

	u.Following.Add("u2")
	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Following.Len(), "caller mutation leaked into the store")

	got.Followers.Add("u3")
	again, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Followers.Len(), "returned record shares state with the store")
}

func TestUserRepositoryLookups(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, entity.NewUser("b", "b@x.io", "h", "b", base.Add(time.Hour))))
	require.NoError(t, repo.Save(ctx, entity.NewUser("a", "a@x.io", "h", "a", base)))

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	found, err := repo.FindAllByID(ctx, []string{"b", "ghost", "a"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "b", found[0].ID)

	ok, err := repo.ExistsByEmail(ctx, "A@X.IO")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.ExistsByEmail(ctx, "nobody@x.io")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
}

func TestPostRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range []*entity.Post{
		{ID: "p1", UserID: "u1", IsPublic: true, CreatedAt: base},
		{ID: "p2", UserID: "u1", IsPublic: false, CreatedAt: base.Add(time.Minute)},
		{ID: "p3", UserID: "u2", IsPublic: true, CreatedAt: base.Add(2 * time.Minute)},
	} {
		require.NoError(t, repo.Create(ctx, p), "post %d", i)
	}

	mine, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "p2", mine[0].ID)

	public, err := repo.ListPublic(ctx, 1)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "p3", public[0].ID)

	require.NoError(t, repo.Delete(ctx, "p3"))
	assert.ErrorIs(t, repo.Delete(ctx, "p3"), repository.ErrNotFound)
	_, err = repo.GetByID(ctx, "p3")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &entity.Post{ID: "nope"}), repository.ErrNotFound)
}

func TestNotificationRepositoryOwnership(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository()
	require.NoError(t, repo.Create(ctx, &entity.Notification{ID: "n1", UserID: "u1", CreatedAt: time.Now()}))
	require.NoError(t, repo.Create(ctx, &entity.Notification{ID: "n2", UserID: "u1", CreatedAt: time.Now().Add(time.Second)}))

	assert.ErrorIs(t, repo.MarkRead(ctx, "n1", "u2"), repository.ErrNotFound)
	require.NoError(t, repo.MarkRead(ctx, "n1", "u1"))

	unread, err := repo.ListByUser(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "n2", unread[0].ID)

	n, err := repo.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSkillRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSkillRepository([]entity.Skill{
		{Sport: "Tennis", SkillName: "Serve"},
		{Sport: "Football", SkillName: "Passing"},
		{Sport: "Tennis", SkillName: "Backhand"},
	})
	sports, err := repo.ListSports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Football", "Tennis"}, sports)

	skills, err := repo.ListSkillsBySport(ctx, "tennis")
	require.NoError(t, err)
	assert.Equal(t, []string{"Backhand", "Serve"}, skills)
}
