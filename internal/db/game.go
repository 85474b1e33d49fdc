package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Game struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Location     string         `gorm:"size:255;not null"`
	Date         datatypes.Date `gorm:"not null;index"`
	StartTime    datatypes.Time `gorm:"not null"`
	EndTime      datatypes.Time `gorm:"not null"`
	MaxPlayers   int            `gorm:"not null"`
	SkillLevel   string         `gorm:"size:16;not null"`
	Status       string         `gorm:"size:16;not null;index"`
	CreatorID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Creator      User           `gorm:"foreignKey:CreatorID"`
	Notes        *string        `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
	Participants []GameParticipant
	Events       []GameEvent
}

func (g *Game) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
