package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// UserRepository defines the interface for user-related storage operations.
//
// Every method touches at most one record except List, ListSuggested and
// ListReferencing, which are reads. Follow edges are therefore written one side
// at a time; callers coordinate the two sides.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByLogin matches either username or email.
	GetByLogin(ctx context.Context, login string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	// ListSuggested returns users other than userID that userID does not follow,
	// newest first.
	ListSuggested(ctx context.Context, userID string, limit int) ([]*entity.User, error)
	// Patch writes only the fields set in p, in one statement, and returns the
	// stored record. Columns left nil keep whatever a concurrent writer put there.
	Patch(ctx context.Context, id string, p UserPatch) (*entity.User, error)
	Delete(ctx context.Context, id string) error

	// ToggleFollowing flips targetID in userID's following set and reports
	// whether it is present afterwards.
	ToggleFollowing(ctx context.Context, userID, targetID string) (bool, error)
	// SetFollowing forces the membership of targetID in userID's following set.
	SetFollowing(ctx context.Context, userID, targetID string, present bool) error
	// MirrorFollower sets followerID's membership in userID's followers to match
	// whether followerID currently follows userID, reading and writing in one
	// step. It reports the resulting membership.
	MirrorFollower(ctx context.Context, userID, followerID string) (bool, error)
	// ListReferencing returns ids of users whose followers or following contain id.
	ListReferencing(ctx context.Context, id string) ([]string, error)
	// RemoveReferences drops refID from both follow sets of userID.
	RemoveReferences(ctx context.Context, userID, refID string) error
}

// UserPatch lists column changes; nil means unchanged. Follow sets and the
// password hash are never patched.
type UserPatch struct {
	Username    *string
	Email       *string
	Bio         *string
	Gender      *entity.Gender
	AvatarURL   *string
	PhoneNumber *string
	Role        *entity.Role
	AccountType *entity.AccountType
}
