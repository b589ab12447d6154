package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/domain/repository"
)

const collectionUsers = "users"

// UserRepository keeps one document per user. It has no multi-document
// transactions, so graph writes on it rely on compensation.
type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection(collectionUsers)}
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email_lower", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	})
	return err
}

type skillDocument struct {
	Sport     string `bson:"sport"`
	SkillName string `bson:"skill_name"`
}

type userDocument struct {
	ID         string          `bson:"id"`
	Email      string          `bson:"email"`
	EmailLower string          `bson:"email_lower"`
	Password   string          `bson:"password_hash"`
	Username   string          `bson:"username"`
	PhoneNo    string          `bson:"phone_no"`
	Address    string          `bson:"address"`
	Education  string          `bson:"education"`
	PhotoURL   string          `bson:"photo_url"`
	Skills     []skillDocument `bson:"skills"`
	Followers  []string        `bson:"followers"`
	Following  []string        `bson:"following"`
	IsVerified bool            `bson:"is_verified"`
	CreatedAt  time.Time       `bson:"created_at"`
	UpdatedAt  time.Time       `bson:"updated_at"`
}

func toDocument(u *entity.User) userDocument {
	skills := make([]skillDocument, 0, len(u.Skills))
	for _, s := range u.Skills {
		skills = append(skills, skillDocument{Sport: s.Sport, SkillName: s.SkillName})
	}
	followers := u.Followers.Clone()
	followers.Remove(u.ID)
	following := u.Following.Clone()
	following.Remove(u.ID)
	return userDocument{
		ID:         u.ID,
		Email:      u.Email,
		EmailLower: strings.ToLower(u.Email),
		Password:   u.Password,
		Username:   u.Username,
		PhoneNo:    u.PhoneNo,
		Address:    u.Address,
		Education:  u.Education,
		PhotoURL:   u.PhotoURL,
		Skills:     skills,
		Followers:  followers.Slice(),
		Following:  following.Slice(),
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func (d *userDocument) toEntity() *entity.User {
	u := &entity.User{
		ID:         d.ID,
		Email:      d.Email,
		Password:   d.Password,
		Username:   d.Username,
		PhoneNo:    d.PhoneNo,
		Address:    d.Address,
		Education:  d.Education,
		PhotoURL:   d.PhotoURL,
		Skills:     make([]entity.Skill, 0, len(d.Skills)),
		Followers:  entity.NewIDSet(d.Followers...),
		Following:  entity.NewIDSet(d.Following...),
		IsVerified: d.IsVerified,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	for _, s := range d.Skills {
		u.Skills = append(u.Skills, entity.Skill{Sport: s.Sport, SkillName: s.SkillName})
	}
	u.Normalize()
	return u
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email_lower": strings.ToLower(email)})
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"email_lower": strings.ToLower(email)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepository) FindAllByID(ctx context.Context, ids []string) ([]*entity.User, error) {
	if len(ids) == 0 {
		return []*entity.User{}, nil
	}
	return r.find(ctx, bson.M{"id": bson.M{"$in": ids}}, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
}

func (r *UserRepository) ListAll(ctx context.Context) ([]*entity.User, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "id", Value: 1}}))
}

func (r *UserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*entity.User, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]*entity.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, nil
}

// Save replaces the whole document, inserting it when missing.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"id": u.ID}, toDocument(u), options.Replace().SetUpsert(true))
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
