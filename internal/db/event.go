package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GameEvent struct {
	ID        uint           `gorm:"primaryKey"`
	GameID    uuid.UUID      `gorm:"type:uuid;index;not null"`
	ActorID   *uuid.UUID     `gorm:"type:uuid;index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
