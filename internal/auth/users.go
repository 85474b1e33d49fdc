package auth

import (
	"context"

	"pickleball/internal/apperr"
	"pickleball/internal/db"
	"pickleball/internal/games"
	"pickleball/internal/logging"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type UserPage struct {
	Users      []Profile `json:"users"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Total      int64     `json:"total"`
	TotalPages int       `json:"total_pages"`
}

type UpdateUserInput struct {
	Name       *string
	SkillLevel *string
}

// ListUsers returns live users newest first.
func (s *Service) ListUsers(ctx context.Context, page, limit int) (UserPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	conn := s.db.WithContext(ctx)
	var total int64
	if err := conn.Model(&db.User{}).Count(&total).Error; err != nil {
		return UserPage{}, apperr.Internal("failed to list users", err)
	}
	var users []db.User
	err := conn.Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return UserPage{}, apperr.Internal("failed to list users", err)
	}
	result := UserPage{
		Users:      make([]Profile, 0, len(users)),
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
	for _, user := range users {
		result.Users = append(result.Users, profileOf(user))
	}
	return result, nil
}

func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (Profile, error) {
	return s.Me(ctx, userID)
}

// UpdateUser edits the caller's own name or skill level.
func (s *Service) UpdateUser(ctx context.Context, callerID, userID uuid.UUID, in UpdateUserInput) (Profile, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if callerID != userID {
		return Profile{}, apperr.Forbidden("you can only update your own profile")
	}
	updates := map[string]any{}
	if in.Name != nil {
		name, err := validateName(*in.Name)
		if err != nil {
			return Profile{}, err
		}
		updates["name"] = name
	}
	if in.SkillLevel != nil {
		level, err := games.ParseSkillLevel(*in.SkillLevel)
		if err != nil {
			return Profile{}, err
		}
		updates["skill_level"] = string(level)
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return Profile{}, apperr.Internal("failed to update user", err)
		}
	}
	return s.Me(ctx, userID)
}

// DeleteUser soft-deletes the caller's own account and revokes its refresh
// token.
func (s *Service) DeleteUser(ctx context.Context, callerID, userID uuid.UUID) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if callerID != userID {
		return apperr.Forbidden("you can only delete your own account")
	}
	conn := s.db.WithContext(ctx)
	if err := conn.Model(&user).Update("refresh_token", nil).Error; err != nil {
		return apperr.Internal("failed to delete user", err)
	}
	if err := conn.Delete(&user).Error; err != nil {
		return apperr.Internal("failed to delete user", err)
	}
	logging.Infof("user deleted user_id=%s", userID)
	return nil
}
