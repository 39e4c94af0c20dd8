package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/local_store/internal/events"
	"github.com/Skotchmaster/local_store/internal/models"
	"github.com/Skotchmaster/local_store/internal/repo"
	"github.com/Skotchmaster/local_store/internal/session"
	"github.com/Skotchmaster/local_store/internal/transport"
	"github.com/Skotchmaster/local_store/pkg/hash"
	"github.com/Skotchmaster/local_store/pkg/logging"
	"github.com/Skotchmaster/local_store/pkg/tokens"
)

type AuthService struct {
	Repo       *repo.GormRepo
	Sessions   session.Store
	Events     events.Publisher
	Secret     []byte
	SessionTTL time.Duration
	BcryptCost int
}

type LoginResult struct {
	User      transport.SessionUser
	Token     string
	ExpiresAt time.Time
}

func sessionUser(u *models.User) transport.SessionUser {
	return transport.SessionUser{
		ID:       u.ID,
		FullName: u.FullName,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*transport.RegisteredUser, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || req.Password == "" || strings.TrimSpace(req.FullName) == "" {
		return nil, fmt.Errorf("full name, username, email and password are required: %w", ErrValidation)
	}

	taken, err := s.Repo.IdentityTaken(ctx, req.Email, req.Username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("user with this email or username already exists: %w", ErrConflict)
	}

	pwHash, err := hash.HashPassword(req.Password, s.BcryptCost)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		FullName:     strings.TrimSpace(req.FullName),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("user with this email or username already exists: %w", ErrConflict)
		}
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicUser, events.UserKey(user.ID), events.UserEvent{
		Type:       "user_registered",
		UserID:     user.ID,
		Username:   user.Username,
		OccurredAt: time.Now().UTC(),
	})

	return &transport.RegisteredUser{
		ID:        user.ID,
		FullName:  user.FullName,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	user, err := s.Repo.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthenticated)
	}

	now := time.Now().UTC()
	if err := s.Repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	sess := session.New(user.ID, user.Role, s.SessionTTL)
	if err := s.Sessions.Create(ctx, sess); err != nil {
		l.Error("login_error", "reason", "cannot store session", "error", err)
		return nil, err
	}

	token, err := tokens.SignSession(s.Secret, sess.ID, user.ID, user.Role, sess.ExpiresAt)
	if err != nil {
		_ = s.Sessions.Delete(ctx, sess.ID)
		return nil, err
	}

	l.Info("login_successful", "user_id", user.ID)
	return &LoginResult{User: sessionUser(user), Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

// Authenticate resolves a session cookie value to the caller it belongs to.
func (s *AuthService) Authenticate(ctx context.Context, token string) (AuthContext, error) {
	claims, err := tokens.SessionClaimsFromToken(token, s.Secret)
	if err != nil {
		return AuthContext{}, fmt.Errorf("%v: %w", err, ErrUnauthenticated)
	}
	uid, err := claims.UserID()
	if err != nil {
		return AuthContext{}, fmt.Errorf("%v: %w", err, ErrUnauthenticated)
	}

	sess, err := s.Sessions.Get(ctx, claims.ID)
	if errors.Is(err, session.ErrNotFound) {
		return AuthContext{}, fmt.Errorf("session revoked or expired: %w", ErrUnauthenticated)
	}
	if err != nil {
		return AuthContext{}, err
	}
	if sess.UserID != uid {
		return AuthContext{}, fmt.Errorf("session subject mismatch: %w", ErrUnauthenticated)
	}

	return AuthContext{UserID: sess.UserID, Role: sess.Role, SessionID: sess.ID}, nil
}

func (s *AuthService) Logout(ctx context.Context, auth AuthContext) error {
	if auth.SessionID == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, auth.SessionID)
}

func (s *AuthService) Me(ctx context.Context, auth AuthContext) (*transport.SessionUser, error) {
	if err := requireUser(auth); err != nil {
		return nil, err
	}
	user, err := s.Repo.UserByID(ctx, auth.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", auth.UserID, ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	u := sessionUser(user)
	return &u, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, auth AuthContext, username, email string) (*transport.SessionUser, error) {
	if err := requireUser(auth); err != nil {
		return nil, err
	}
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, fmt.Errorf("username and email are required: %w", ErrValidation)
	}

	taken, err := s.Repo.IdentityTaken(ctx, email, username, auth.UserID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("username or email already in use: %w", ErrConflict)
	}

	user, err := s.Repo.UpdateProfile(ctx, auth.UserID, username, email)
	switch {
	case errors.Is(err, repo.ErrDuplicate):
		return nil, fmt.Errorf("username or email already in use: %w", ErrConflict)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("user %d: %w", auth.UserID, ErrUnauthenticated)
	case err != nil:
		return nil, err
	}
	u := sessionUser(user)
	return &u, nil
}

// ChangePassword also revokes the caller's other sessions.
func (s *AuthService) ChangePassword(ctx context.Context, auth AuthContext, current, next string) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password")

	if err := requireUser(auth); err != nil {
		return err
	}
	if current == "" || len(next) < 6 {
		return fmt.Errorf("new password must be at least 6 characters: %w", ErrValidation)
	}

	user, err := s.Repo.UserByID(ctx, auth.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("user %d: %w", auth.UserID, ErrUnauthenticated)
	}
	if err != nil {
		return err
	}
	if !hash.CheckPassword(user.PasswordHash, current) {
		return fmt.Errorf("current password is incorrect: %w", ErrValidation)
	}

	pwHash, err := hash.HashPassword(next, s.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePasswordHash(ctx, user.ID, pwHash); err != nil {
		return err
	}

	if err := s.Sessions.DeleteUser(ctx, user.ID); err != nil {
		l.Error("revoke_sessions_error", "user_id", user.ID, "error", err)
		return fmt.Errorf("revoke sessions: %w", err)
	}
	if auth.SessionID != "" {
		sess := session.New(user.ID, user.Role, s.SessionTTL)
		sess.ID = auth.SessionID
		if err := s.Sessions.Create(ctx, sess); err != nil {
			l.Error("restore_session_error", "user_id", user.ID, "error", err)
		}
	}
	return nil
}
