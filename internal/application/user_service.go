package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	repo "github.com/oksasatya/go-social-graph/internal/domain/repository"
	"github.com/oksasatya/go-social-graph/pkg/helpers"
	"github.com/oksasatya/go-social-graph/pkg/mailer"
)

const resetTokenTTL = 30 * time.Minute

// UserIndexer keeps a searchable copy of profile fields.
type UserIndexer interface {
	Index(ctx context.Context, u *entity.User) error
	Search(ctx context.Context, q string, size int) ([]string, error)
}

// ObjectStorage stores uploaded files and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// Service handles accounts, sessions and profile data.
type Service struct {
	Repo    repo.UserRepository
	JWT     *helpers.JWTManager
	Storage ObjectStorage
	Redis   *redis.Client
	Logger  *logrus.Logger
	Index   UserIndexer
	Mail    EventPublisher

	ResetPasswordURL string
	MailSendEnabled  bool
	UploadMaxBytes   int64

	now func() time.Time
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func NewService(users repo.UserRepository, jwt *helpers.JWTManager, storage ObjectStorage, rdb *redis.Client, logger *logrus.Logger, index UserIndexer) *Service {
	return &Service{
		Repo:           users,
		JWT:            jwt,
		Storage:        storage,
		Redis:          rdb,
		Logger:         logger,
		Index:          index,
		UploadMaxBytes: 5 << 20,
		now:            time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type RegisterInput struct {
	Email    string
	Password string
	Username string
}

// Register creates an account with empty follow sets and no skills.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	email := normalizeEmail(in.Email)
	exists, err := s.Repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := entity.NewUser(uuid.NewString(), email, hash, strings.TrimSpace(in.Username), s.now())
	if err := s.Repo.Save(ctx, u); err != nil {
		return nil, err
	}
	s.indexUser(ctx, u)
	return u, nil
}

type LoginResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *Service) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.tokenPair(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate tokens failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"username":   u.Username,
			"sid":        sid,
			"created_at": nowRFC3339(),
		}
		if rErr := helpers.SaveSession(ctx, s.Redis, u.ID, fields); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("user_id", u.ID).Warn("redis session write failed")
		}
	}
	return pair, nil
}

func (s *Service) tokenPair(userID, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	resp := &LoginResponse{UserID: u.ID, Email: u.Email, Username: u.Username, Message: "Welcome back, " + u.Username + "!"}
	return resp, pair, nil
}

// Refresh validates the refresh token against the live session and rotates both tokens.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	if s.Redis != nil {
		data, rErr := helpers.LoadSession(ctx, s.Redis, u.ID)
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	sid := uuid.NewString()
	pair, err := s.tokenPair(u.ID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	if s.Redis != nil {
		_ = helpers.SaveSession(ctx, s.Redis, u.ID, map[string]any{"sid": sid, "updated_at": nowRFC3339()})
	}
	return pair, u.ID, nil
}

// Logout drops the user's session; outstanding access tokens stop working
// at the auth middleware.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if s.Redis == nil || userID == "" {
		return nil
	}
	return helpers.DeleteSession(ctx, s.Redis, userID)
}

// GetProfile returns the caller's own record.
func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && u == nil) {
		return nil, userNotFound(userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	return u, nil
}

// mutateUser loads userID, applies fn and saves the record. With a
// transactional store the read and the write share one transaction, so the
// full-record save cannot overwrite a follow edge written in between.
func (s *Service) mutateUser(ctx context.Context, userID string, fn func(u *entity.User) error) (*entity.User, error) {
	var out *entity.User
	op := func(ctx context.Context) error {
		u, err := s.GetProfile(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
		u.UpdatedAt = s.now()
		if err := s.Repo.Save(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	}
	var err error
	if tx, ok := s.Repo.(repo.Transactor); ok {
		err = tx.WithinTx(ctx, op)
	} else {
		err = op(ctx)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetUserProfile projects another user's record for viewerID.
func (s *Service) GetUserProfile(ctx context.Context, userID, viewerID string) (ProfileView, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}
	return ProjectProfile(u, viewerID), nil
}

// ListUsers projects every user for viewerID.
func (s *Service) ListUsers(ctx context.Context, viewerID string) ([]ProfileView, error) {
	users, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return ProjectProfiles(users, viewerID, ""), nil
}

// UpdateProfileInput carries optional changes; nil fields are left alone.
type UpdateProfileInput struct {
	Username  *string
	PhoneNo   *string
	Address   *string
	Education *string
	Skills    []entity.Skill
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.mutateUser(ctx, userID, func(u *entity.User) error {
		setIf(&u.Username, in.Username)
		setIf(&u.PhoneNo, in.PhoneNo)
		setIf(&u.Address, in.Address)
		setIf(&u.Education, in.Education)
		if in.Skills != nil {
			u.Skills = append([]entity.Skill{}, in.Skills...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Redis != nil && in.Username != nil {
		if rErr := helpers.SaveSession(ctx, s.Redis, u.ID, map[string]any{"username": u.Username, "updated_at": nowRFC3339()}); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("user_id", u.ID).Warn("redis session write failed")
		}
	}
	s.indexUser(ctx, u)
	return u, nil
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// UploadAvatar stores an image and points the user's photoURL at it.
func (s *Service) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string, size int64) (string, error) {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return "", err
	}
	url, err := uploadImage(ctx, s.Storage, "avatars", userID, r, filename, contentType, size, s.UploadMaxBytes)
	if err != nil {
		return "", err
	}
	u, err := s.mutateUser(ctx, userID, func(u *entity.User) error {
		u.PhotoURL = url
		return nil
	})
	if err != nil {
		return "", err
	}
	s.indexUser(ctx, u)
	return url, nil
}

// SearchUsers looks users up in the search index and projects the hits that
// still exist, in relevance order.
func (s *Service) SearchUsers(ctx context.Context, q string, size int, viewerID string) ([]ProfileView, error) {
	if s.Index == nil || strings.TrimSpace(q) == "" {
		return []ProfileView{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	ids, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, err
	}
	users, err := s.Repo.FindAllByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]ProfileView, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, ProjectProfile(u, viewerID))
		}
	}
	return out, nil
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("search index failed")
	}
}

func genToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ResetInit issues a password reset token for email and queues the reset
// email. Unknown emails are ignored so the endpoint cannot be used to probe
// for accounts.
func (s *Service) ResetInit(ctx context.Context, email string) error {
	if s.Redis == nil {
		return ErrResetUnavailable
	}
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	tok, err := genToken(32)
	if err != nil {
		return err
	}
	if err := s.Redis.Set(ctx, helpers.ResetTokenKey(tok), u.ID, resetTokenTTL).Err(); err != nil {
		return err
	}
	if s.Mail != nil && s.MailSendEnabled {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: mailer.TemplatePasswordReset,
			Data: map[string]any{
				"Name":      u.Username,
				"ResetURL":  s.ResetPasswordURL + "?token=" + tok,
				"ExpiresIn": resetTokenTTL.String(),
			},
		}
		if pErr := s.Mail.PublishJSON(ctx, job); pErr != nil && s.Logger != nil {
			s.Logger.WithError(pErr).WithField("user_id", u.ID).Warn("enqueue reset email failed")
		}
	}
	return nil
}

// ResetConfirm sets a new password for the token's user and ends their session.
func (s *Service) ResetConfirm(ctx context.Context, token, newPassword string) error {
	if s.Redis == nil {
		return ErrResetUnavailable
	}
	uid, err := s.Redis.Get(ctx, helpers.ResetTokenKey(token)).Result()
	if err != nil || uid == "" {
		return ErrInvalidResetToken
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	_, err = s.mutateUser(ctx, uid, func(u *entity.User) error {
		u.Password = hash
		return nil
	})
	if errors.Is(err, ErrUserNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	s.Redis.Del(ctx, helpers.ResetTokenKey(token))
	_ = helpers.DeleteSession(ctx, s.Redis, uid)
	return nil
}
