package application

import "github.com/oksasatya/go-social-graph/internal/domain/entity"

// ProfileView is the public face of a user as seen by one viewer. It is
// derived on every read and never stored.
type ProfileView struct {
	ID                 string         `json:"id"`
	Username           string         `json:"username"`
	Email              string         `json:"email"`
	PhoneNo            string         `json:"phone_no,omitempty"`
	Address            string         `json:"address,omitempty"`
	Education          string         `json:"education,omitempty"`
	PhotoURL           string         `json:"photo_url,omitempty"`
	Skills             []entity.Skill `json:"skills"`
	FollowersCount     int            `json:"followers_count"`
	FollowingCount     int            `json:"following_count"`
	IsFollowedByViewer bool           `json:"is_followed_by_viewer"`
}

// ProjectProfile renders u for viewerID. An empty viewerID is an anonymous viewer.
func ProjectProfile(u *entity.User, viewerID string) ProfileView {
	skills := append([]entity.Skill(nil), u.Skills...)
	if skills == nil {
		skills = []entity.Skill{}
	}
	return ProfileView{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		PhoneNo:            u.PhoneNo,
		Address:            u.Address,
		Education:          u.Education,
		PhotoURL:           u.PhotoURL,
		Skills:             skills,
		FollowersCount:     u.Followers.Len(),
		FollowingCount:     u.Following.Len(),
		IsFollowedByViewer: viewerID != "" && viewerID != u.ID && u.Followers.Has(viewerID),
	}
}

// ProjectProfiles renders users in order, skipping the record with skipID.
func ProjectProfiles(users []*entity.User, viewerID, skipID string) []ProfileView {
	out := make([]ProfileView, 0, len(users))
	for _, u := range users {
		if u == nil || u.ID == skipID {
			continue
		}
		out = append(out, ProjectProfile(u, viewerID))
	}
	return out
}
