package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name         string         `gorm:"size:100;not null"`
	Email        string         `gorm:"size:255;not null;uniqueIndex:idx_users_email,where:deleted_at IS NULL"`
	PasswordHash string         `gorm:"size:255;not null"`
	SkillLevel   string         `gorm:"size:16;not null"`
	RefreshToken *string        `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
