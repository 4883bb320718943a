package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	repo "github.com/oksasatya/go-social-graph/internal/domain/repository"
	"github.com/oksasatya/go-social-graph/pkg/validation"
)

type AdminService struct {
	Users    repo.UserRepository
	Sessions repo.SessionStore
	Repairs  JobPublisher
	Notifier *Notifier
	Retry    RetryPolicy
	Logger   logrus.FieldLogger
}

func NewAdminService(users repo.UserRepository, sessions repo.SessionStore, repairs JobPublisher, notifier *Notifier, retry RetryPolicy, logger logrus.FieldLogger) *AdminService {
	return &AdminService{Users: users, Sessions: sessions, Repairs: repairs, Notifier: notifier, Retry: retry, Logger: logger}
}

// AdminEditInput is a partial update; nil fields are left unchanged. Keys
// follow the admin client (phoneNumber, accountType).
type AdminEditInput struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
	Role        *string `json:"role"`
	AccountType *string `json:"accountType"`
}

func requireAdmin(caller entity.Identity) error {
	if !caller.Role.Allows(entity.RoleAdmin) {
		return authzErr("admin privileges required")
	}
	return nil
}

func (s *AdminService) ListUsers(ctx context.Context, caller entity.Identity) ([]UserView, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, internalErr("failed to list users", err)
	}
	return toViews(users), nil
}

func (s *AdminService) EditUser(ctx context.Context, caller entity.Identity, targetID string, in AdminEditInput) (UserView, error) {
	if err := requireAdmin(caller); err != nil {
		return UserView{}, err
	}
	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		in.Username = &trimmed
	}
	if in.Email != nil {
		trimmed := strings.TrimSpace(*in.Email)
		in.Email = &trimmed
	}
	if details := validateAdminEdit(in); len(details) > 0 {
		return UserView{}, validationErr("invalid user fields", details)
	}

	u, err := loadUser(ctx, s.Users, targetID)
	if err != nil {
		return UserView{}, err
	}

	var patch repo.UserPatch
	if in.Username != nil && *in.Username != u.Username {
		if err := s.ensureFree(ctx, s.Users.GetByUsername, *in.Username, u.ID, "username already taken"); err != nil {
			return UserView{}, err
		}
		patch.Username = in.Username
	}
	if in.Email != nil && *in.Email != u.Email {
		if err := s.ensureFree(ctx, s.Users.GetByEmail, *in.Email, u.ID, "email already registered"); err != nil {
			return UserView{}, err
		}
		patch.Email = in.Email
	}
	patch.PhoneNumber = in.PhoneNumber
	if in.AccountType != nil {
		at := entity.AccountType(*in.AccountType)
		patch.AccountType = &at
	}
	roleChanged := false
	if in.Role != nil {
		role := entity.Role(*in.Role)
		patch.Role = &role
		roleChanged = role != u.Role
	}

	updated, err := s.Users.Patch(ctx, u.ID, patch)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return UserView{}, notFoundErr("user not found")
		case errors.Is(err, repo.ErrDuplicateUsername):
			return UserView{}, conflictErr("username already taken")
		case errors.Is(err, repo.ErrDuplicateEmail):
			return UserView{}, conflictErr("email already registered")
		}
		return UserView{}, internalErr("failed to update user", err)
	}

	if roleChanged {
		// Sessions cache the role; force a fresh login.
		if err := s.Sessions.Delete(ctx, u.ID); err != nil {
			s.log().WithError(err).WithField("user_id", u.ID).Warn("failed to end session after role change")
		}
	}
	s.log().WithFields(logrus.Fields{"admin_id": caller.UserID, "user_id": u.ID}).Info("user edited by admin")
	return ToView(updated), nil
}

func validateAdminEdit(in AdminEditInput) map[string]string {
	details := map[string]string{}
	check := func(field string, v *string, tag string) {
		if v == nil {
			return
		}
		if err := validation.Var(*v, tag); err != nil {
			details[field] = validation.Message(err)
		}
	}
	check("username", in.Username, "required,uname")
	check("email", in.Email, "required,email")
	check("phoneNumber", in.PhoneNumber, "omitempty,phone")
	check("role", in.Role, "required,role")
	check("accountType", in.AccountType, "omitempty,accounttype")
	return details
}

func (s *AdminService) ensureFree(ctx context.Context, find func(context.Context, string) (*entity.User, error), value, selfID, msg string) error {
	other, err := find(ctx, value)
	switch {
	case err == nil && other.ID != selfID:
		return conflictErr(msg)
	case err == nil, errors.Is(err, repo.ErrNotFound):
		return nil
	default:
		return internalErr("failed to update user", err)
	}
}

// DeleteUser removes the target and then purges its id from every follow set.
// The record goes first so no new edge can point at it; the purge is
// idempotent and is queued for repair if it cannot finish here.
func (s *AdminService) DeleteUser(ctx context.Context, caller entity.Identity, targetID string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	u, err := loadUser(ctx, s.Users, targetID)
	if err != nil {
		return err
	}

	if err := s.Users.Delete(ctx, u.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundErr("user not found")
		}
		return internalErr("failed to delete user", err)
	}
	if err := s.Sessions.Delete(ctx, u.ID); err != nil {
		s.log().WithError(err).WithField("user_id", u.ID).Warn("failed to end session of deleted user")
	}

	log := s.log().WithFields(logrus.Fields{"admin_id": caller.UserID, "user_id": u.ID})
	if err := purgeReferences(ctx, s.Users, s.Retry, u.ID); err != nil {
		log.WithError(err).Error("cascade cleanup incomplete")
		enqueueRepair(ctx, s.Repairs, s.log(), RepairJob{Kind: RepairPurge, PeerID: u.ID})
		return internalErr("user deleted but follower cleanup is incomplete", err)
	}

	log.Info("user deleted by admin")
	s.Notifier.AccountRemoved(ctx, u)
	return nil
}

// purgeReferences removes id from the follow sets of every record that holds
// it, one record at a time. It keeps going past failures and reports the first.
func purgeReferences(ctx context.Context, users repo.UserRepository, retry RetryPolicy, id string) error {
	var refs []string
	if err := retry.do(ctx, func() error {
		var err error
		refs, err = users.ListReferencing(ctx, id)
		return err
	}); err != nil {
		return err
	}

	var firstErr error
	for _, ref := range refs {
		err := retry.do(ctx, func() error { return users.RemoveReferences(ctx, ref, id) })
		if err != nil && !errors.Is(err, repo.ErrNotFound) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *AdminService) log() logrus.FieldLogger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}
