package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewUserStartsWithEmptyGraph(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	u := NewUser("u1", "a@b.co", "hash", "ann", now)

	assert.Equal(t, 0, u.Followers.Len())
	assert.Equal(t, 0, u.Following.Len())
	assert.NotNil(t, u.Skills)
	assert.Equal(t, now, u.CreatedAt)
	assert.Equal(t, now, u.UpdatedAt)
}

func TestNormalizeStripsSelfLoops(t *testing.T) {
	u := &User{ID: "u1", Followers: NewIDSet("u1", "u2"), Following: NewIDSet("u1")}
	u.Normalize()

	assert.Equal(t, []string{"u2"}, u.Followers.Slice())
	assert.Equal(t, 0, u.Following.Len())
	assert.NotNil(t, u.Skills)

	var zero User
	zero.Normalize()
	assert.NotNil(t, zero.Followers)
	assert.NotNil(t, zero.Following)
}

func TestCloneIsDeep(t *testing.T) {
	u := &User{
		ID:        "u1",
		Skills:    []Skill{{Sport: "Tennis", SkillName: "Serve"}},
		Followers: NewIDSet("u2"),
		Following: NewIDSet("u3"),
	}
	c := u.Clone()
	c.Followers.Add("u4")
	c.Following.Remove("u3")
	c.Skills[0].SkillName = "Volley"

	assert.Equal(t, []string{"u2"}, u.Followers.Slice())
	assert.True(t, u.Following.Has("u3"))
	assert.Equal(t, "Serve", u.Skills[0].SkillName)

	var nilUser *User
	assert.Nil(t, nilUser.Clone())
}
