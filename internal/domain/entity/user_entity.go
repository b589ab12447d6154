package entity

import (
	"time"
)

// User is the aggregate root for the user domain and doubles as a node of the
// social graph. Passwords are stored as bcrypt hashes in Password.
//
// Following and Followers mirror each other across records: a.Following has
// b.ID exactly when b.Followers has a.ID. Neither set ever holds the owner's
// own id.
type User struct {
	ID         string
	Email      string
	Password   string
	Username   string
	PhoneNo    string
	Address    string
	Education  string
	PhotoURL   string
	Skills     []Skill
	Followers  IDSet
	Following  IDSet
	IsVerified bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Skill is one (sport, skill) pair on a profile. Order on the profile is kept.
type Skill struct {
	Sport     string `json:"sport" bson:"sport"`
	SkillName string `json:"skill_name" bson:"skill_name"`
}

// NewUser returns a freshly registered user with empty graph sets.
func NewUser(id, email, passwordHash, username string, now time.Time) *User {
	return &User{
		ID:        id,
		Email:     email,
		Password:  passwordHash,
		Username:  username,
		Skills:    []Skill{},
		Followers: IDSet{},
		Following: IDSet{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Normalize makes sure both sets are allocated and strips self-loops.
// Stores call it on every record they load.
func (u *User) Normalize() {
	if u.Followers == nil {
		u.Followers = IDSet{}
	}
	if u.Following == nil {
		u.Following = IDSet{}
	}
	if u.Skills == nil {
		u.Skills = []Skill{}
	}
	u.Followers.Remove(u.ID)
	u.Following.Remove(u.ID)
}

// Clone returns a deep copy, so callers can mutate without touching shared state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Followers = u.Followers.Clone()
	c.Following = u.Following.Clone()
	c.Skills = append([]Skill(nil), u.Skills...)
	if c.Skills == nil {
		c.Skills = []Skill{}
	}
	return &c
}
