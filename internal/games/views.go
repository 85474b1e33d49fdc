package games

import (
	"encoding/json"
	"time"

	"pickleball/internal/db"

	"github.com/google/uuid"
)

// UserSummary is the public slice of a user attached to game views.
type UserSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	SkillLevel string    `json:"skill_level"`
}

type GameView struct {
	ID            uuid.UUID    `json:"id"`
	Location      string       `json:"location"`
	Date          string       `json:"date"`
	StartTime     string       `json:"start_time"`
	EndTime       string       `json:"end_time"`
	MaxPlayers    int          `json:"max_players"`
	SkillLevel    SkillLevel   `json:"skill_level"`
	Status        Status       `json:"status"`
	CreatorID     uuid.UUID    `json:"creator_id"`
	Notes         *string      `json:"notes"`
	ApprovedCount *int         `json:"approved_count,omitempty"`
	OpenSlots     *int         `json:"open_slots,omitempty"`
	Creator       *UserSummary `json:"creator,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type ParticipantView struct {
	ID        uuid.UUID         `json:"id"`
	GameID    uuid.UUID         `json:"game_id"`
	UserID    uuid.UUID         `json:"user_id"`
	Status    ParticipantStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	User      *UserSummary      `json:"user,omitempty"`
	Game      *GameView         `json:"game,omitempty"`
}

type EventView struct {
	ID        uint            `json:"id"`
	GameID    uuid.UUID       `json:"game_id"`
	ActorID   *uuid.UUID      `json:"actor_id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

func summarizeUser(user db.User) *UserSummary {
	if user.ID == uuid.Nil {
		return nil
	}
	return &UserSummary{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		SkillLevel: user.SkillLevel,
	}
}

func gameView(record db.Game) GameView {
	return GameView{
		ID:         record.ID,
		Location:   record.Location,
		Date:       formatDate(record.Date),
		StartTime:  formatClock(record.StartTime),
		EndTime:    formatClock(record.EndTime),
		MaxPlayers: record.MaxPlayers,
		SkillLevel: SkillLevel(record.SkillLevel),
		Status:     Status(record.Status),
		CreatorID:  record.CreatorID,
		Notes:      record.Notes,
		Creator:    summarizeUser(record.Creator),
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}

func (v *GameView) withCounts(approved int) {
	open := JoinableSlots(v.MaxPlayers) - approved
	if open < 0 {
		open = 0
	}
	v.ApprovedCount = &approved
	v.OpenSlots = &open
}

func participantView(record db.GameParticipant) ParticipantView {
	view := ParticipantView{
		ID:        record.ID,
		GameID:    record.GameID,
		UserID:    record.UserID,
		Status:    ParticipantStatus(record.Status),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		User:      summarizeUser(record.User),
	}
	if record.Game.ID != uuid.Nil {
		game := gameView(record.Game)
		view.Game = &game
	}
	return view
}

func eventView(record db.GameEvent) EventView {
	return EventView{
		ID:        record.ID,
		GameID:    record.GameID,
		ActorID:   record.ActorID,
		Type:      record.Type,
		Payload:   json.RawMessage(record.Payload),
		CreatedAt: record.CreatedAt,
	}
}
