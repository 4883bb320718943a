package entity

import (
	"slices"
	"time"
)

// User is the aggregate root for the identity and social graph domain.
// PasswordHash holds a bcrypt hash and never leaves the application layer.
//
// Followers and Following are stored redundantly on both endpoints of an edge;
// B in A.Following must imply A in B.Followers.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Bio          string
	Gender       Gender
	AvatarURL    string
	PhoneNumber  string
	Role         Role
	AccountType  AccountType
	Followers    []string
	Following    []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) IsFollowing(id string) bool { return slices.Contains(u.Following, id) }

func (u *User) HasFollower(id string) bool { return slices.Contains(u.Followers, id) }

// Gender is optional; the zero value means "not set". Accepted values are
// checked by the "gender" validation alias.
type Gender string

const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// AccountType is a descriptive attribute managed by admins. It carries no
// authorization meaning. Accepted values are checked by the "accounttype"
// validation alias.
type AccountType string

const (
	AccountTypeUnset     AccountType = ""
	AccountTypeStudent   AccountType = "student"
	AccountTypeTeacher   AccountType = "teacher"
	AccountTypeInstitute AccountType = "institute"
)
