package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/infrastructure/memory"
)

var errDisk = errors.New("disk full")

// faultyStore wraps the memory store, records saves and fails the ones the
// test asks for.
type faultyStore struct {
	*memory.UserRepository

	mu     sync.Mutex
	saves  []string
	failOn func(u *entity.User, attempt int) error
	counts map[string]int
}

func newFaultyStore() *faultyStore {
	return &faultyStore{UserRepository: memory.NewUserRepository(), counts: map[string]int{}}
}

func (s *faultyStore) Save(ctx context.Context, u *entity.User) error {
	s.mu.Lock()
	s.counts[u.ID]++
	attempt := s.counts[u.ID]
	s.saves = append(s.saves, u.ID)
	fail := s.failOn
	s.mu.Unlock()
	if fail != nil {
		if err := fail(u, attempt); err != nil {
			return err
		}
	}
	return s.UserRepository.Save(ctx, u)
}

func (s *faultyStore) savedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.saves...)
}

func (s *faultyStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = nil
	s.failOn = nil
	s.counts = map[string]int{}
}

// txStore adds all-or-nothing semantics on top of faultyStore by restoring a
// snapshot when fn fails.
type txStore struct {
	*faultyStore
	txCalls int
}

func (s *txStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txCalls++
	snapshot, err := s.UserRepository.ListAll(ctx)
	if err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		for _, u := range snapshot {
			_ = s.UserRepository.Save(ctx, u)
		}
		return err
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	bodies []any
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bodies = append(p.bodies, body)
	return p.err
}

func (p *recordingPublisher) events() []entity.SocialEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []entity.SocialEvent{}
	for _, b := range p.bodies {
		if ev, ok := b.(entity.SocialEvent); ok {
			out = append(out, ev)
		}
	}
	return out
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func seedUsers(t *testing.T, store interface {
	Save(context.Context, *entity.User) error
}, ids ...string) {
	t.Helper()
	for i, id := range ids {
		u := entity.NewUser(id, id+"@example.com", "hash", "user-"+id, fixedNow.Add(time.Duration(i)*time.Second))
		require.NoError(t, store.Save(context.Background(), u))
	}
}

func mustGet(t *testing.T, store *faultyStore, id string) *entity.User {
	t.Helper()
	u, err := store.UserRepository.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}
