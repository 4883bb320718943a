package application

import (
	"time"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
)

// UserView is the public projection of a user. It has no password field, so
// the hash cannot leak through any response.
type UserView struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Bio         string    `json:"bio"`
	Gender      string    `json:"gender"`
	AvatarURL   string    `json:"avatar_url"`
	PhoneNumber string    `json:"phone_number"`
	Role        string    `json:"role"`
	AccountType string    `json:"account_type"`
	Followers   []string  `json:"followers"`
	Following   []string  `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToView(u *entity.User) UserView {
	v := UserView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Bio:         u.Bio,
		Gender:      string(u.Gender),
		AvatarURL:   u.AvatarURL,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		AccountType: string(u.AccountType),
		Followers:   append([]string{}, u.Followers...),
		Following:   append([]string{}, u.Following...),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	return v
}

func toViews(users []*entity.User) []UserView {
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, ToView(u))
	}
	return out
}
