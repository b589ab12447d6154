package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	repo "github.com/oksasatya/go-social-graph/internal/domain/repository"
)

// EventPublisher is satisfied by helpers.RabbitPublisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// SocialGraphService maintains the follow graph stored on user records.
//
// Every edge lives on two records: the actor's Following set and the
// target's Followers set. Writes go target first, then actor. When the store
// is a repo.Transactor both writes share one transaction; otherwise a failed
// actor write is undone with a reversing write on the target.
type SocialGraphService struct {
	Repo   repo.UserRepository
	Tx     repo.Transactor
	Events EventPublisher
	Logger *logrus.Logger

	CompensationAttempts int
	CompensationBackoff  time.Duration
	CompensationTimeout  time.Duration

	now func() time.Time
}

func NewSocialGraphService(users repo.UserRepository, events EventPublisher, logger *logrus.Logger, compensationAttempts int) *SocialGraphService {
	if compensationAttempts < 1 {
		compensationAttempts = 1
	}
	s := &SocialGraphService{
		Repo:                 users,
		Events:               events,
		Logger:               logger,
		CompensationAttempts: compensationAttempts,
		CompensationBackoff:  50 * time.Millisecond,
		CompensationTimeout:  10 * time.Second,
		now:                  time.Now,
	}
	if tx, ok := users.(repo.Transactor); ok {
		s.Tx = tx
	}
	return s
}

// Follow makes actorID follow targetID and returns the actor's updated record.
func (s *SocialGraphService) Follow(ctx context.Context, actorID, targetID string) (*entity.User, error) {
	if actorID == targetID {
		return nil, ErrSelfFollow
	}
	var out *entity.User
	err := s.run(ctx, "follow", actorID, func(ctx context.Context) error {
		actor, target, err := s.loadPair(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if actor.Following.Has(targetID) {
			return ErrAlreadyFollowing
		}
		actor.Following.Add(targetID)
		target.Followers.Add(actorID)
		revert := func(t *entity.User) bool { return t.Followers.Remove(actorID) }
		if err := s.persistPair(ctx, "follow", actor, target, revert); err != nil {
			return err
		}
		out = actor
		return nil
	})
	if err != nil {
		s.logFailure("follow", actorID, targetID, err)
		return nil, err
	}
	s.logDebug("follow", actorID, targetID)
	s.publish(ctx, entity.EventFollow, actorID, targetID)
	return out, nil
}

// Unfollow removes the edge actorID -> targetID. Removing an edge that does
// not exist is a no-op and returns the actor's record unchanged.
func (s *SocialGraphService) Unfollow(ctx context.Context, actorID, targetID string) (*entity.User, error) {
	var (
		out     *entity.User
		changed bool
	)
	err := s.run(ctx, "unfollow", actorID, func(ctx context.Context) error {
		actor, target, err := s.loadPair(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		out = actor
		droppedFollowing := actor.Following.Remove(targetID)
		droppedFollower := target.Followers.Remove(actorID)
		if !droppedFollowing && !droppedFollower {
			return nil
		}
		changed = true
		revert := func(t *entity.User) bool { return droppedFollower && t.Followers.Add(actorID) }
		return s.persistPair(ctx, "unfollow", actor, target, revert)
	})
	if err != nil {
		s.logFailure("unfollow", actorID, targetID, err)
		return nil, err
	}
	if changed {
		s.logDebug("unfollow", actorID, targetID)
		s.publish(ctx, entity.EventUnfollow, actorID, targetID)
	}
	return out, nil
}

// IsFollowing checks the actor's own Following set. The target does not have
// to exist: a stale or deleted id simply reports false.
func (s *SocialGraphService) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	actor, err := s.load(ctx, actorID)
	if err != nil {
		return false, err
	}
	return actor.Following.Has(targetID), nil
}

// ListFollowers projects the followers of userID for viewerID. Ids that no
// longer resolve are skipped.
func (s *SocialGraphService) ListFollowers(ctx context.Context, userID, viewerID string) ([]ProfileView, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, u.ID, u.Followers.Slice(), viewerID)
}

// ListFollowing projects the users userID follows for viewerID.
func (s *SocialGraphService) ListFollowing(ctx context.Context, userID, viewerID string) ([]ProfileView, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, u.ID, u.Following.Slice(), viewerID)
}

func (s *SocialGraphService) resolve(ctx context.Context, subjectID string, ids []string, viewerID string) ([]ProfileView, error) {
	if len(ids) == 0 {
		return []ProfileView{}, nil
	}
	users, err := s.Repo.FindAllByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	byID := make(map[string]*entity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	ordered := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ProjectProfiles(ordered, viewerID, subjectID), nil
}

// run executes fn inside a store transaction when one is available.
func (s *SocialGraphService) run(ctx context.Context, op, actorID string, fn func(ctx context.Context) error) error {
	if s.Tx == nil {
		return fn(ctx)
	}
	err := s.Tx.WithinTx(ctx, fn)
	if err == nil || isGraphError(err) {
		return err
	}
	return &PersistenceError{Op: op, UserID: actorID, Err: err}
}

func isGraphError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrSelfFollow) ||
		errors.Is(err, ErrAlreadyFollowing) ||
		errors.Is(err, ErrStorePersistence)
}

func (s *SocialGraphService) load(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && u == nil) {
		return nil, userNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	u.Normalize()
	return u, nil
}

// loadPair reads both records in ascending id order so concurrent operations
// on the same pair take row locks in the same order.
func (s *SocialGraphService) loadPair(ctx context.Context, actorID, targetID string) (*entity.User, *entity.User, error) {
	first, second := actorID, targetID
	if second < first {
		first, second = second, first
	}
	a, err := s.load(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	b, err := s.load(ctx, second)
	if err != nil {
		return nil, nil, err
	}
	if first == actorID {
		return a, b, nil
	}
	return b, a, nil
}

func (s *SocialGraphService) persistPair(ctx context.Context, op string, actor, target *entity.User, revert func(*entity.User) bool) error {
	now := s.now()
	target.UpdatedAt = now
	if err := s.Repo.Save(ctx, target); err != nil {
		return &PersistenceError{Op: op, UserID: target.ID, Err: err}
	}
	actor.UpdatedAt = now
	if err := s.Repo.Save(ctx, actor); err != nil {
		perr := &PersistenceError{Op: op, UserID: actor.ID, Err: err}
		if s.Tx != nil {
			return perr
		}
		if cerr := s.compensate(ctx, target.ID, revert); cerr != nil {
			perr.Partial = true
			if s.Logger != nil {
				s.Logger.WithError(cerr).WithFields(logrus.Fields{
					"op":        op,
					"actor_id":  actor.ID,
					"target_id": target.ID,
				}).Error("graph left asymmetric: target write could not be reverted")
			}
		} else {
			perr.Compensated = true
		}
		return perr
	}
	return nil
}

// compensate reloads the target and applies revert, retrying with a linear
// backoff. It runs detached from ctx so a cancelled request still gets its
// reversing write.
func (s *SocialGraphService) compensate(ctx context.Context, targetID string, revert func(*entity.User) bool) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.CompensationTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= s.CompensationAttempts; attempt++ {
		if err = s.revertOnce(cctx, targetID, revert); err == nil {
			return nil
		}
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{
				"target_id": targetID,
				"attempt":   attempt,
			}).Warn("compensating write failed")
		}
		if attempt == s.CompensationAttempts {
			break
		}
		select {
		case <-cctx.Done():
			return cctx.Err()
		case <-time.After(time.Duration(attempt) * s.CompensationBackoff):
		}
	}
	return err
}

func (s *SocialGraphService) revertOnce(ctx context.Context, targetID string, revert func(*entity.User) bool) error {
	t, err := s.Repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	t.Normalize()
	if !revert(t) {
		return nil
	}
	t.UpdatedAt = s.now()
	return s.Repo.Save(ctx, t)
}

func (s *SocialGraphService) publish(ctx context.Context, typ entity.SocialEventType, actorID, targetID string) {
	if s.Events == nil {
		return
	}
	ev := entity.SocialEvent{Type: typ, ActorID: actorID, TargetID: targetID, OccurredAt: s.now().UTC()}
	if err := s.Events.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"type":      typ,
			"actor_id":  actorID,
			"target_id": targetID,
		}).Warn("publish social event failed")
	}
}

func (s *SocialGraphService) logDebug(op, actorID, targetID string) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithFields(logrus.Fields{"actor_id": actorID, "target_id": targetID}).Debug(op)
}

func (s *SocialGraphService) logFailure(op, actorID, targetID string, err error) {
	if s.Logger == nil {
		return
	}
	entry := s.Logger.WithError(err).WithFields(logrus.Fields{"actor_id": actorID, "target_id": targetID})
	if errors.Is(err, ErrStorePersistence) {
		entry.Error(op + " failed")
		return
	}
	entry.Debug(op + " rejected")
}
