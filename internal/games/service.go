// Package games is the game lifecycle manager: game creation and edits, join
// requests, host decisions, and the capacity accounting that keeps a game's
// status in step with its approved participants.
package games

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pickleball/internal/apperr"
	"pickleball/internal/db"
	"pickleball/internal/logging"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// NewService builds the lifecycle manager. loc decides which calendar day
// counts as today when rejecting past dates.
func NewService(conn *gorm.DB, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{db: conn, loc: loc, now: time.Now}
}

func (s *Service) today() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) Create(ctx context.Context, callerID uuid.UUID, in CreateInput) (GameView, error) {
	fields, err := in.normalize(s.today())
	if err != nil {
		return GameView{}, err
	}
	record := db.Game{
		Location:   fields.Location,
		Date:       datatypes.Date(fields.Date),
		StartTime:  newClock(fields.Start),
		EndTime:    newClock(fields.End),
		MaxPlayers: fields.MaxPlayers,
		SkillLevel: string(fields.SkillLevel),
		Status:     string(StatusOpen),
		CreatorID:  callerID,
		Notes:      fields.Notes,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&record).Error; err != nil {
			return err
		}
		return recordEvent(tx, record.ID, callerID, EventGameCreated, map[string]any{
			"location":    record.Location,
			"date":        formatDate(record.Date),
			"max_players": record.MaxPlayers,
		})
	})
	if err != nil {
		return GameView{}, wrapInternal("failed to create game", err)
	}
	logging.Infof("game created game_id=%s creator_id=%s", record.ID, callerID)
	return s.Get(ctx, record.ID)
}

// Get returns the game with its creator and current approved count.
func (s *Service) Get(ctx context.Context, gameID uuid.UUID) (GameView, error) {
	conn := s.db.WithContext(ctx)
	var record db.Game
	err := conn.Preload("Creator", unscoped).Where("id = ?", gameID).First(&record).Error
	if err != nil {
		return GameView{}, gameLookupError(err)
	}
	approved, err := countApproved(conn, gameID, uuid.Nil)
	if err != nil {
		return GameView{}, wrapInternal("failed to load game", err)
	}
	view := gameView(record)
	view.withCounts(approved)
	return view, nil
}

// ListOpen returns every live game still accepting join requests, soonest
// first.
func (s *Service) ListOpen(ctx context.Context) ([]GameView, error) {
	var records []db.Game
	err := s.db.WithContext(ctx).
		Preload("Creator", unscoped).
		Where("status = ?", string(StatusOpen)).
		Order("date asc").Order("start_time asc").Order("created_at asc").
		Find(&records).Error
	if err != nil {
		return nil, wrapInternal("failed to list games", err)
	}
	ids := make([]uuid.UUID, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	counts, err := approvedCounts(s.db.WithContext(ctx), ids)
	if err != nil {
		return nil, wrapInternal("failed to list games", err)
	}
	views := make([]GameView, 0, len(records))
	for _, record := range records {
		view := gameView(record)
		view.withCounts(counts[record.ID])
		views = append(views, view)
	}
	return views, nil
}

// approvedCounts returns approved participant counts keyed by game.
func approvedCounts(conn *gorm.DB, gameIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(gameIDs))
	if len(gameIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		GameID uuid.UUID
		Total  int
	}
	err := conn.Model(&db.GameParticipant{}).
		Select("game_id, count(*) as total").
		Where("game_id IN ? AND status = ?", gameIDs, string(ParticipantApproved)).
		Group("game_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.GameID] = row.Total
	}
	return counts, nil
}

// Update applies a creator's partial edit. Open and Full are recomputed from
// the roster whenever capacity changes; Cancelled and Completed are terminal.
func (s *Service) Update(ctx context.Context, callerID, gameID uuid.UUID, in UpdateInput) (GameView, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		game, err := lockGame(tx, gameID)
		if err != nil {
			return err
		}
		if game.CreatorID != callerID {
			return apperr.Forbidden("only the game creator can update this game")
		}
		current := Status(game.Status)
		if current.Terminal() {
			return apperr.Conflict(apperr.CodeGameClosed, "game is "+string(current)+" and can no longer be edited", map[string]string{
				"game_status": string(current),
			})
		}

		updates, err := s.applyUpdate(&game, in)
		if err != nil {
			return err
		}

		approved, err := countApproved(tx, gameID, uuid.Nil)
		if err != nil {
			return err
		}
		if approved > JoinableSlots(game.MaxPlayers) {
			return apperr.Conflict(apperr.CodeCapacityBelowRoster, "max_players is below the approved roster", map[string]string{
				"approved_count": itoa(approved),
			})
		}

		next := DerivedStatus(approved, game.MaxPlayers)
		if in.Status != nil {
			if next, err = parseCreatorStatus(*in.Status); err != nil {
				return err
			}
		}
		if next != current {
			updates["status"] = string(next)
			game.Status = string(next)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&db.Game{}).Where("id = ?", gameID).Updates(updates).Error; err != nil {
			return err
		}
		if err := recordEvent(tx, gameID, callerID, EventGameUpdated, updatesPayload(updates)); err != nil {
			return err
		}
		if next != current {
			return recordEvent(tx, gameID, callerID, statusEvent(next), map[string]any{
				"from": string(current),
				"to":   string(next),
			})
		}
		return nil
	})
	if err != nil {
		return GameView{}, wrapInternal("failed to update game", err)
	}
	logging.Infof("game updated game_id=%s", gameID)
	return s.Get(ctx, gameID)
}

func (s *Service) applyUpdate(game *db.Game, in UpdateInput) (map[string]any, error) {
	updates := map[string]any{}
	if in.Location != nil {
		location, err := validateLocation(*in.Location)
		if err != nil {
			return nil, err
		}
		game.Location = location
		updates["location"] = location
	}
	if in.Date != nil {
		date, err := parseGameDate(*in.Date, s.today())
		if err != nil {
			return nil, err
		}
		game.Date = datatypes.Date(date)
		updates["date"] = game.Date
	}
	if in.StartTime != nil {
		start, err := parseClock("start_time", *in.StartTime)
		if err != nil {
			return nil, err
		}
		game.StartTime = newClock(start)
		updates["start_time"] = game.StartTime
	}
	if in.EndTime != nil {
		end, err := parseClock("end_time", *in.EndTime)
		if err != nil {
			return nil, err
		}
		game.EndTime = newClock(end)
		updates["end_time"] = game.EndTime
	}
	if clockOf(game.EndTime) <= clockOf(game.StartTime) {
		return nil, apperr.Validation("end_time", "end time must be after start time")
	}
	if in.MaxPlayers != nil {
		maxPlayers, err := validateMaxPlayers(*in.MaxPlayers)
		if err != nil {
			return nil, err
		}
		game.MaxPlayers = maxPlayers
		updates["max_players"] = maxPlayers
	}
	if in.SkillLevel != nil {
		level, err := parseSkillLevel(*in.SkillLevel)
		if err != nil {
			return nil, err
		}
		game.SkillLevel = string(level)
		updates["skill_level"] = string(level)
	}
	if in.Notes != nil {
		notes, err := normalizeNotes(in.Notes)
		if err != nil {
			return nil, err
		}
		game.Notes = notes
		updates["notes"] = notes
	}
	if in.Status != nil {
		if _, err := parseCreatorStatus(*in.Status); err != nil {
			return nil, err
		}
	}
	return updates, nil
}

// Delete soft-deletes the game and its participant rows.
func (s *Service) Delete(ctx context.Context, callerID, gameID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		game, err := lockGame(tx, gameID)
		if err != nil {
			return err
		}
		if game.CreatorID != callerID {
			return apperr.Forbidden("only the game creator can delete this game")
		}
		if err := tx.Where("game_id = ?", gameID).Delete(&db.GameParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&game).Error; err != nil {
			return err
		}
		return recordEvent(tx, gameID, callerID, EventGameDeleted, map[string]any{
			"status": game.Status,
		})
	})
	if err != nil {
		return wrapInternal("failed to delete game", err)
	}
	logging.Infof("game deleted game_id=%s", gameID)
	return nil
}

// ListEvents returns the game's lifecycle log. Only the creator may read it.
func (s *Service) ListEvents(ctx context.Context, callerID, gameID uuid.UUID) ([]EventView, error) {
	conn := s.db.WithContext(ctx)
	var game db.Game
	if err := conn.Where("id = ?", gameID).First(&game).Error; err != nil {
		return nil, gameLookupError(err)
	}
	if game.CreatorID != callerID {
		return nil, apperr.Forbidden("only the game creator can view the event log")
	}
	var records []db.GameEvent
	if err := conn.Where("game_id = ?", gameID).Order("id asc").Find(&records).Error; err != nil {
		return nil, wrapInternal("failed to load events", err)
	}
	views := make([]EventView, 0, len(records))
	for _, record := range records {
		views = append(views, eventView(record))
	}
	return views, nil
}

// lockGame loads a live game row and holds it for the rest of the
// transaction. Every count-then-write sequence goes through here.
func lockGame(tx *gorm.DB, gameID uuid.UUID) (db.Game, error) {
	var game db.Game
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", gameID).First(&game).Error
	if err != nil {
		return db.Game{}, gameLookupError(err)
	}
	return game, nil
}

// countApproved counts approved participants, skipping exclude when set.
func countApproved(tx *gorm.DB, gameID, exclude uuid.UUID) (int, error) {
	query := tx.Model(&db.GameParticipant{}).
		Where("game_id = ? AND status = ?", gameID, string(ParticipantApproved))
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// markFull flips an open game to full and logs it. Other statuses are left
// alone.
func markFull(tx *gorm.DB, game *db.Game, actorID uuid.UUID, approved int) error {
	if Status(game.Status) != StatusOpen {
		return nil
	}
	if err := tx.Model(&db.Game{}).Where("id = ?", game.ID).Update("status", string(StatusFull)).Error; err != nil {
		return err
	}
	game.Status = string(StatusFull)
	logging.Infof("game full game_id=%s approved=%d max_players=%d", game.ID, approved, game.MaxPlayers)
	return recordEvent(tx, game.ID, actorID, EventGameFull, map[string]any{
		"approved_count": approved,
		"max_players":    game.MaxPlayers,
	})
}

func recordEvent(tx *gorm.DB, gameID, actorID uuid.UUID, eventType string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := db.GameEvent{
		GameID:  gameID,
		Type:    eventType,
		Payload: datatypes.JSON(data),
	}
	if actorID != uuid.Nil {
		actor := actorID
		event.ActorID = &actor
	}
	return tx.Create(&event).Error
}

func statusEvent(status Status) string {
	switch status {
	case StatusCancelled:
		return EventGameCancelled
	case StatusCompleted:
		return EventGameCompleted
	case StatusFull:
		return EventGameFull
	default:
		return EventGameReopened
	}
}

func updatesPayload(updates map[string]any) map[string]any {
	payload := make(map[string]any, len(updates))
	for key, value := range updates {
		switch v := value.(type) {
		case datatypes.Date:
			payload[key] = formatDate(v)
		case datatypes.Time:
			payload[key] = formatClock(v)
		default:
			payload[key] = v
		}
	}
	return payload
}

func unscoped(tx *gorm.DB) *gorm.DB {
	return tx.Unscoped()
}

func gameFull(game db.Game, approved int) *apperr.Error {
	return apperr.Conflict(apperr.CodeGameFull, "game is full", map[string]string{
		"game_status":    game.Status,
		"approved_count": itoa(approved),
		"max_players":    itoa(game.MaxPlayers),
	})
}

func gameLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(apperr.CodeGameNotFound, "game not found")
	}
	return err
}

// wrapInternal passes domain errors through and hides storage failures.
func wrapInternal(message string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Internal(message, err)
}
