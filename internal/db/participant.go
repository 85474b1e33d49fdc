package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GameParticipant is one user's request to occupy a slot in a game. The
// partial unique index keeps at most one live row per (game, user).
type GameParticipant struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	GameID    uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_game_participants_game_user,where:deleted_at IS NULL"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_game_participants_game_user,where:deleted_at IS NULL"`
	Status    string         `gorm:"size:16;not null;index"`
	Game      Game           `gorm:"foreignKey:GameID"`
	User      User           `gorm:"foreignKey:UserID"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (p *GameParticipant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
