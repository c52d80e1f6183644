package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"safespace.app/backend/internal/auth"
	"safespace.app/backend/internal/logger"
	"safespace.app/backend/internal/store"
)

type AccountStore interface {
	ProfessionalLookup
	CreateUser(ctx context.Context, email, passwordHash string, displayName *string) (*store.User, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
	GetUserByID(ctx context.Context, id string) (*store.User, error)
	GetProfile(ctx context.Context, userID string) (*store.Profile, error)
	GetRoles(ctx context.Context, userID string) ([]string, error)
	GrantRole(ctx context.Context, userID, role string) error
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

type Credentials struct {
	Email       string `json:"email" validate:"required,email,max=320"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

// AuthResult is returned by sign up and log in.
type AuthResult struct {
	Token   string       `json:"token"`
	User    *store.User  `json:"user"`
	Session auth.Session `json:"-"`
}

// Me describes the signed-in user for the app shell.
type Me struct {
	UserID             string   `json:"user_id"`
	Email              string   `json:"email"`
	DisplayName        *string  `json:"display_name"`
	Roles              []string `json:"roles"`
	ProfessionalStatus *string  `json:"professional_status"`
	ShowDashboard      bool     `json:"show_dashboard"`
}

type AccountService struct {
	store  AccountStore
	jwt    *auth.JWTManager
	logger *logger.Logger
}

func NewAccountService(st AccountStore, jwt *auth.JWTManager, log *logger.Logger) *AccountService {
	return &AccountService{store: st, jwt: jwt, logger: log}
}

func (s *AccountService) Signup(ctx context.Context, creds Credentials) (*AuthResult, error) {
	creds.Email = store.NormalizeEmail(creds.Email)
	creds.DisplayName = strings.TrimSpace(creds.DisplayName)
	if err := validateStruct(creds); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := s.store.CreateUser(ctx, creds.Email, hash, optional(creds.DisplayName))
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return s.issue(user)
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AccountService) issue(user *store.User) (*AuthResult, error) {
	token, sess, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{Token: token, User: user, Session: sess}, nil
}

// Logout revokes the session's token.
func (s *AccountService) Logout(ctx context.Context, sess auth.Session) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if err := s.store.RevokeToken(ctx, sess.TokenID, sess.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Authenticate turns a bearer token into a session. Revoked tokens and
// tokens of deleted users are rejected.
func (s *AccountService) Authenticate(ctx context.Context, token string) (auth.Session, error) {
	sess, err := s.jwt.VerifyToken(token)
	if err != nil {
		return auth.Session{}, ErrUnauthenticated
	}
	revoked, err := s.store.IsTokenRevoked(ctx, sess.TokenID)
	if err != nil {
		return auth.Session{}, fmt.Errorf("failed to check token: %w", err)
	}
	if revoked {
		return auth.Session{}, ErrUnauthenticated
	}
	if _, err := s.store.GetUserByID(ctx, sess.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return auth.Session{}, ErrUnauthenticated
		}
		return auth.Session{}, fmt.Errorf("failed to look up user: %w", err)
	}
	return sess, nil
}

func (s *AccountService) Me(ctx context.Context, sess auth.Session) (*Me, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	me := &Me{UserID: sess.UserID, Email: sess.Email}

	profile, err := s.store.GetProfile(ctx, sess.UserID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile != nil {
		me.DisplayName = profile.DisplayName
	}

	if me.Roles, err = s.store.GetRoles(ctx, sess.UserID); err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	pro, verified, err := verifiedProfessional(ctx, s.store, sess.UserID)
	if err != nil {
		return nil, err
	}
	if pro != nil {
		status := pro.Status
		me.ProfessionalStatus = &status
	}
	me.ShowDashboard = verified
	return me, nil
}

// GrantAdmin gives the admin role to the user with the given email.
func (s *AccountService) GrantAdmin(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user %s: %w", email, err)
	}
	if err := s.store.GrantRole(ctx, user.ID, store.RoleAdmin); err != nil {
		return err
	}
	s.logger.Info("admin role granted", "user_id", user.ID)
	return nil
}
