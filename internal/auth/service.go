// Package auth is the identity provider: account registration, password
// login, JWT access and refresh tokens, and the user profile endpoints.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"pickleball/internal/apperr"
	"pickleball/internal/db"
	"pickleball/internal/games"
	"pickleball/internal/logging"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxNameLength = 100

type Service struct {
	db     *gorm.DB
	tokens *tokenIssuer
}

func NewService(conn *gorm.DB, cfg TokenConfig) *Service {
	return &Service{db: conn, tokens: newTokenIssuer(cfg)}
}

// Profile is the public view of a user. The password hash and refresh token
// never leave this package.
type Profile struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	SkillLevel string    `json:"skill_level"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Session is a profile plus a fresh token pair.
type Session struct {
	User Profile `json:"user"`
	TokenPair
}

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	SkillLevel *string
}

func profileOf(user db.User) Profile {
	return Profile{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		SkillLevel: user.SkillLevel,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return Session{}, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return Session{}, err
	}
	if len(in.Password) < minPasswordLength {
		return Session{}, apperr.Validation("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	level := games.DefaultSkillLevel
	if in.SkillLevel != nil {
		if level, err = games.ParseSkillLevel(*in.SkillLevel); err != nil {
			return Session{}, err
		}
	}
	hashed, err := HashPassword(in.Password)
	if err != nil {
		return Session{}, apperr.Internal("failed to register user", err)
	}

	conn := s.db.WithContext(ctx)
	var count int64
	if err := conn.Model(&db.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return Session{}, apperr.Internal("failed to register user", err)
	}
	if count > 0 {
		return Session{}, emailTaken()
	}
	user := db.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		SkillLevel:   string(level),
	}
	if err := conn.Create(&user).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return Session{}, emailTaken()
		}
		return Session{}, apperr.Internal("failed to register user", err)
	}
	logging.Infof("user registered user_id=%s", user.ID)
	return s.startSession(ctx, user)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user db.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, invalidCredentials()
	}
	if err != nil {
		return Session{}, apperr.Internal("failed to log in", err)
	}
	if !checkPassword(user.PasswordHash, password) {
		return Session{}, invalidCredentials()
	}
	logging.Infof("user logged in user_id=%s", user.ID)
	return s.startSession(ctx, user)
}

// Refresh exchanges a refresh token for a new pair. Only the most recently
// issued refresh token is accepted.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.tokens.parseRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	user, err := s.loadUser(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, apperr.Unauthenticated("refresh token is invalid")
	}
	if user.RefreshToken == nil || *user.RefreshToken != strings.TrimSpace(refreshToken) {
		return TokenPair{}, apperr.Unauthenticated("refresh token is invalid")
	}
	session, err := s.startSession(ctx, user)
	if err != nil {
		return TokenPair{}, err
	}
	return session.TokenPair, nil
}

func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&db.User{}).
		Where("id = ?", userID).
		Update("refresh_token", nil).Error
	if err != nil {
		return apperr.Internal("failed to log out", err)
	}
	logging.Infof("user logged out user_id=%s", userID)
	return nil
}

// Authenticate resolves a bearer access token to a live user.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (Profile, error) {
	claims, err := s.tokens.parseAccess(accessToken)
	if err != nil {
		return Profile{}, err
	}
	user, err := s.loadUser(ctx, claims.UserID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return Profile{}, apperr.Unauthenticated("user no longer exists")
		}
		return Profile{}, err
	}
	return profileOf(user), nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (Profile, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return profileOf(user), nil
}

func (s *Service) startSession(ctx context.Context, user db.User) (Session, error) {
	pair, err := s.tokens.issue(user.ID, user.Email)
	if err != nil {
		return Session{}, apperr.Internal("failed to issue tokens", err)
	}
	err = s.db.WithContext(ctx).Model(&db.User{}).
		Where("id = ?", user.ID).
		Update("refresh_token", pair.RefreshToken).Error
	if err != nil {
		return Session{}, apperr.Internal("failed to store refresh token", err)
	}
	return Session{User: profileOf(user), TokenPair: pair}, nil
}

func (s *Service) loadUser(ctx context.Context, userID uuid.UUID) (db.User, error) {
	var user db.User
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.User{}, apperr.NotFound(apperr.CodeUserNotFound, "user not found")
	}
	if err != nil {
		return db.User{}, apperr.Internal("failed to load user", err)
	}
	return user, nil
}

func validateName(raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), " ")
	if name == "" {
		return "", apperr.Validation("name", "name is required")
	}
	if len(name) > maxNameLength {
		return "", apperr.Validation("name", fmt.Sprintf("name must be %d characters or fewer", maxNameLength))
	}
	return name, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperr.Validation("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Validation("email", "email is invalid")
	}
	return email, nil
}

func emailTaken() *apperr.Error {
	return apperr.Conflict(apperr.CodeEmailTaken, "email is already registered", nil)
}

func invalidCredentials() *apperr.Error {
	return apperr.New(apperr.KindUnauthenticated, apperr.CodeInvalidCredentials, "invalid email or password")
}
