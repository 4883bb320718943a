package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	repo "github.com/oksasatya/go-social-graph/internal/domain/repository"
	"github.com/oksasatya/go-social-graph/pkg/helpers"
	"github.com/oksasatya/go-social-graph/pkg/validation"
)

var errInvalidCredentials = authErr("invalid credentials")

type AuthService struct {
	Users    repo.UserRepository
	Sessions repo.SessionStore
	JWT      *helpers.JWTManager
	Notifier *Notifier
	Logger   logrus.FieldLogger
}

func NewAuthService(users repo.UserRepository, sessions repo.SessionStore, jwt *helpers.JWTManager, notifier *Notifier, logger logrus.FieldLogger) *AuthService {
	return &AuthService{Users: users, Sessions: sessions, JWT: jwt, Notifier: notifier, Logger: logger}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,uname"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
}

type LoginResult struct {
	User   UserView
	Tokens TokenPair
}

// Register creates a member account and returns its public view.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (UserView, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return UserView{}, validationErr("invalid registration", validation.ToDetails(err))
	}

	if err := s.ensureAvailable(ctx, in.Username, in.Email); err != nil {
		return UserView{}, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return UserView{}, internalErr("failed to create account", err)
	}

	u := &entity.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         entity.RoleMember,
		Followers:    []string{},
		Following:    []string{},
	}
	if err := s.Users.Create(ctx, u); err != nil {
		// The pre-check can race with a concurrent registration; the unique
		// constraints are authoritative.
		switch {
		case errors.Is(err, repo.ErrDuplicateUsername):
			return UserView{}, conflictErr("username already taken")
		case errors.Is(err, repo.ErrDuplicateEmail):
			return UserView{}, conflictErr("email already registered")
		}
		return UserView{}, internalErr("failed to create account", err)
	}

	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("account registered")
	}
	s.Notifier.Welcome(ctx, u)
	return ToView(u), nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.Users.GetByUsername(ctx, username); err == nil {
		return conflictErr("username already taken")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return internalErr("failed to create account", err)
	}
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return conflictErr("email already registered")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return internalErr("failed to create account", err)
	}
	return nil
}

// Authenticate validates username-or-email and password without issuing a session.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*entity.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, errInvalidCredentials
	}
	u, err := s.Users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, internalErr("failed to sign in", err)
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, errInvalidCredentials
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	u, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return nil, err
	}
	pair, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: ToView(u), Tokens: pair}, nil
}

// issueSession replaces any previous session of u with a fresh one.
func (s *AuthService) issueSession(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, internalErr("failed to issue session", err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, internalErr("failed to issue session", err)
	}

	sess := entity.Session{UserID: u.ID, SessionID: sid, Role: u.Role, CreatedAt: time.Now()}
	if err := s.Sessions.Save(ctx, sess, time.Until(rexp)); err != nil {
		return TokenPair{}, internalErr("failed to issue session", err)
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Logout ends the session named by accessToken. It never fails: a missing,
// expired or foreign token simply has nothing to end.
func (s *AuthService) Logout(ctx context.Context, accessToken string) {
	if accessToken == "" {
		return
	}
	claims, err := s.JWT.ParseAccessToken(accessToken)
	if err != nil {
		return
	}
	sess, err := s.Sessions.Get(ctx, claims.UserID)
	if err != nil || sess.SessionID != claims.SessionID {
		return
	}
	if err := s.Sessions.Delete(ctx, claims.UserID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", claims.UserID).Warn("failed to delete session on logout")
	}
}

// Refresh rotates the session id and both tokens.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, authErr("invalid refresh token")
	}
	u, err := s.checkSession(ctx, claims)
	if err != nil {
		return TokenPair{}, err
	}
	return s.issueSession(ctx, u)
}

// VerifySession resolves an access token into the caller's identity. The role
// is read from the user record so admin changes apply immediately.
func (s *AuthService) VerifySession(ctx context.Context, accessToken string) (entity.Identity, error) {
	if accessToken == "" {
		return entity.Identity{}, authErr("missing access token")
	}
	claims, err := s.JWT.ParseAccessToken(accessToken)
	if err != nil {
		return entity.Identity{}, authErr("invalid access token")
	}
	u, err := s.checkSession(ctx, claims)
	if err != nil {
		return entity.Identity{}, err
	}
	return entity.Identity{UserID: u.ID, Role: u.Role, SessionID: claims.SessionID}, nil
}

func (s *AuthService) checkSession(ctx context.Context, claims *helpers.Claims) (*entity.User, error) {
	sess, err := s.Sessions.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, authErr("session not found")
		}
		return nil, internalErr("failed to verify session", err)
	}
	if sess.SessionID != claims.SessionID {
		return nil, authErr("session has been replaced")
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			_ = s.Sessions.Delete(ctx, claims.UserID)
			return nil, authErr("account no longer exists")
		}
		return nil, internalErr("failed to verify session", err)
	}
	return u, nil
}
