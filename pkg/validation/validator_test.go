package validation

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type skillReq struct {
	Sport     string `json:"sport" validate:"required,sport"`
	SkillName string `json:"skill_name" validate:"required"`
}

type profileReq struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,pwd"`
	Username string     `json:"username" validate:"omitempty,username"`
	Skills   []skillReq `json:"skills" validate:"max=2,dive"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestToDetailsUsesJSONPaths(t *testing.T) {
	err := newValidator().Struct(profileReq{
		Email:    "nope",
		Password: "short",
		Username: "ab",
		Skills:   []skillReq{{Sport: "Tennis"}},
	})
	details := ToDetails(err)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be between 8 and 72 characters", details["password"])
	assert.Equal(t, "must be between 3 and 32 characters", details["username"])
	assert.Equal(t, "is required", details["skills[0].skill_name"])
}

func TestToDetailsCollectionLimit(t *testing.T) {
	err := newValidator().Struct(profileReq{
		Email:    "a@b.co",
		Password: "longenough",
		Skills:   []skillReq{{"a", "b"}, {"c", "d"}, {"e", "f"}},
	})
	assert.Equal(t, map[string]string{"skills": "must contain at most 2 items"}, ToDetails(err))
}

func TestToDetailsInvalidJSON(t *testing.T) {
	var dst map[string]any
	err := json.Unmarshal([]byte("{"), &dst)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	var n int
	err = json.Unmarshal([]byte(`"x"`), &n)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(assert.AnError))
}
