package games

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"pickleball/internal/apperr"
	"pickleball/internal/db"
	"pickleball/internal/logging"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errJoinRace = errors.New("participant inserted concurrently")

// Join files a pending join request for the caller. When the game turns out
// to be full the cached status is flipped to full and committed even though
// the request itself is refused.
func (s *Service) Join(ctx context.Context, callerID, gameID uuid.UUID) (ParticipantView, error) {
	var record db.GameParticipant
	var refused error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		game, err := lockGame(tx, gameID)
		if err != nil {
			return err
		}
		if game.CreatorID == callerID {
			return apperr.New(apperr.KindInvalidOperation, apperr.CodeCannotJoinOwnGame, "cannot join own game")
		}
		if Status(game.Status) != StatusOpen {
			return apperr.WithDetails(apperr.KindInvalidOperation, apperr.CodeGameNotJoinable,
				"game not joinable in its current status: "+game.Status,
				map[string]string{"game_status": game.Status})
		}

		var existing db.GameParticipant
		err = tx.Where("game_id = ? AND user_id = ?", gameID, callerID).Limit(1).Find(&existing).Error
		if err != nil {
			return err
		}
		if existing.ID != uuid.Nil {
			return duplicateJoin(existing)
		}

		approved, err := countApproved(tx, gameID, uuid.Nil)
		if err != nil {
			return err
		}
		if IsFull(approved, game.MaxPlayers) {
			refused = gameFull(game, approved)
			return markFull(tx, &game, callerID, approved)
		}

		record = db.GameParticipant{
			GameID: gameID,
			UserID: callerID,
			Status: string(ParticipantPending),
		}
		if err := tx.Omit(clause.Associations).Create(&record).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return errJoinRace
			}
			return err
		}
		return recordEvent(tx, gameID, callerID, EventJoinRequested, map[string]any{
			"participant_id": record.ID.String(),
			"user_id":        callerID.String(),
		})
	})
	if errors.Is(err, errJoinRace) {
		return ParticipantView{}, s.raceDuplicate(ctx, gameID, callerID)
	}
	if err != nil {
		return ParticipantView{}, wrapInternal("failed to join game", err)
	}
	if refused != nil {
		return ParticipantView{}, refused
	}
	logging.Infof("join requested game_id=%s user_id=%s participant_id=%s", gameID, callerID, record.ID)
	return participantView(record), nil
}

// raceDuplicate reports the row that won a concurrent insert for the same
// game and user.
func (s *Service) raceDuplicate(ctx context.Context, gameID, callerID uuid.UUID) error {
	var existing db.GameParticipant
	err := s.db.WithContext(ctx).Where("game_id = ? AND user_id = ?", gameID, callerID).First(&existing).Error
	if err != nil {
		return apperr.Conflict(apperr.CodeDuplicateJoin, "duplicate join request", nil)
	}
	return duplicateJoin(existing)
}

func duplicateJoin(existing db.GameParticipant) *apperr.Error {
	return apperr.Conflict(apperr.CodeDuplicateJoin, "duplicate join request", map[string]string{
		"status":         existing.Status,
		"participant_id": existing.ID.String(),
	})
}

// Decide applies the creator's approve or reject decision to a participant.
// Checks run in order: existence, ownership, target, capacity.
func (s *Service) Decide(ctx context.Context, callerID, gameID, participantID uuid.UUID, target string) (ParticipantView, error) {
	var record db.GameParticipant
	var refused error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		game, err := lockGame(tx, gameID)
		if err != nil {
			return err
		}
		err = tx.Where("id = ? AND game_id = ?", participantID, gameID).First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(apperr.CodeParticipantNotFound, "participant not found")
		}
		if err != nil {
			return err
		}
		if game.CreatorID != callerID {
			return apperr.Forbidden("only the game creator can approve or reject participants")
		}
		next := ParticipantStatus(strings.ToLower(strings.TrimSpace(target)))
		if !next.Decision() {
			return apperr.Validation("status", "status must be approved or rejected")
		}

		var approved int
		if next == ParticipantApproved {
			if approved, err = countApproved(tx, gameID, record.ID); err != nil {
				return err
			}
			if IsFull(approved, game.MaxPlayers) {
				refused = gameFull(game, approved)
				if Status(game.Status).Terminal() {
					return nil
				}
				return markFull(tx, &game, callerID, approved)
			}
		}

		previous := ParticipantStatus(record.Status)
		if err := tx.Model(&record).Update("status", string(next)).Error; err != nil {
			return err
		}
		record.Status = string(next)
		if previous != next {
			eventType := EventParticipantRejected
			if next == ParticipantApproved {
				eventType = EventParticipantApproved
			}
			if err := recordEvent(tx, gameID, callerID, eventType, map[string]any{
				"participant_id": record.ID.String(),
				"user_id":        record.UserID.String(),
				"from":           string(previous),
			}); err != nil {
				return err
			}
		}

		// Every approval, repeated or not, recounts the roster.
		// Rejections leave the game status alone.
		if next != ParticipantApproved || Status(game.Status).Terminal() {
			return nil
		}
		if IsFull(approved+1, game.MaxPlayers) {
			return markFull(tx, &game, callerID, approved+1)
		}
		return nil
	})
	if err != nil {
		return ParticipantView{}, wrapInternal("failed to update participant", err)
	}
	if refused != nil {
		return ParticipantView{}, refused
	}
	logging.Infof("participant decided game_id=%s participant_id=%s status=%s", gameID, participantID, record.Status)
	return participantView(record), nil
}

// ListParticipants returns every participant row for a game with the
// requesting user attached. Only the creator and users holding a row may
// read the roster.
func (s *Service) ListParticipants(ctx context.Context, callerID, gameID uuid.UUID) ([]ParticipantView, error) {
	conn := s.db.WithContext(ctx)
	var game db.Game
	if err := conn.Where("id = ?", gameID).First(&game).Error; err != nil {
		return nil, gameLookupError(err)
	}
	var records []db.GameParticipant
	err := conn.Preload("User", unscoped).
		Where("game_id = ?", gameID).
		Order("created_at asc").
		Find(&records).Error
	if err != nil {
		return nil, wrapInternal("failed to list participants", err)
	}
	if game.CreatorID != callerID && !holdsRow(records, callerID) {
		return nil, apperr.Forbidden("only the game creator and its participants can view the roster")
	}
	views := make([]ParticipantView, 0, len(records))
	for _, record := range records {
		views = append(views, participantView(record))
	}
	return views, nil
}

func holdsRow(records []db.GameParticipant, userID uuid.UUID) bool {
	for _, record := range records {
		if record.UserID == userID {
			return true
		}
	}
	return false
}

// ListForUser returns the user's join requests, newest first, each with its
// game and the game's creator. Requests whose game was deleted are skipped.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]ParticipantView, error) {
	var records []db.GameParticipant
	err := s.db.WithContext(ctx).
		Preload("Game").
		Preload("Game.Creator", unscoped).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&records).Error
	if err != nil {
		return nil, wrapInternal("failed to list games for user", err)
	}
	views := make([]ParticipantView, 0, len(records))
	for _, record := range records {
		if record.Game.ID == uuid.Nil {
			continue
		}
		views = append(views, participantView(record))
	}
	return views, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
