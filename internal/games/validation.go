package games

import (
	"fmt"
	"strings"
	"time"

	"pickleball/internal/apperr"

	"gorm.io/datatypes"
)

// CreateInput carries the caller-supplied fields for a new game. Optional
// fields are pointers so that defaults apply only when they are omitted.
type CreateInput struct {
	Location   string
	Date       string
	StartTime  string
	EndTime    string
	MaxPlayers *int
	SkillLevel *string
	Notes      *string
}

// UpdateInput is a partial edit; nil fields are left unchanged.
type UpdateInput struct {
	Location   *string
	Date       *string
	StartTime  *string
	EndTime    *string
	MaxPlayers *int
	SkillLevel *string
	Notes      *string
	Status     *string
}

type gameFields struct {
	Location   string
	Date       time.Time
	Start      time.Duration
	End        time.Duration
	MaxPlayers int
	SkillLevel SkillLevel
	Notes      *string
}

func (in CreateInput) normalize(today time.Time) (gameFields, error) {
	var fields gameFields
	var err error
	if fields.Location, err = validateLocation(in.Location); err != nil {
		return fields, err
	}
	if fields.Date, err = parseGameDate(in.Date, today); err != nil {
		return fields, err
	}
	if fields.Start, err = parseClock("start_time", in.StartTime); err != nil {
		return fields, err
	}
	if fields.End, err = parseClock("end_time", in.EndTime); err != nil {
		return fields, err
	}
	if fields.End <= fields.Start {
		return fields, apperr.Validation("end_time", "end time must be after start time")
	}
	fields.MaxPlayers = DefaultMaxPlayers
	if in.MaxPlayers != nil {
		if fields.MaxPlayers, err = validateMaxPlayers(*in.MaxPlayers); err != nil {
			return fields, err
		}
	}
	fields.SkillLevel = DefaultSkillLevel
	if in.SkillLevel != nil {
		if fields.SkillLevel, err = parseSkillLevel(*in.SkillLevel); err != nil {
			return fields, err
		}
	}
	if fields.Notes, err = normalizeNotes(in.Notes); err != nil {
		return fields, err
	}
	return fields, nil
}

func validateLocation(raw string) (string, error) {
	location := strings.TrimSpace(raw)
	if location == "" {
		return "", apperr.Validation("location", "location is required")
	}
	if len(location) > maxLocationLength {
		return "", apperr.Validation("location", fmt.Sprintf("location must be %d characters or fewer", maxLocationLength))
	}
	return location, nil
}

// parseGameDate accepts a calendar date or an RFC 3339 timestamp and rejects
// dates before today. today must already be in the service timezone.
func parseGameDate(raw string, today time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperr.Validation("date", "date is required")
	}
	date, err := time.Parse(DateLayout, raw)
	if err != nil {
		stamp, stampErr := time.Parse(time.RFC3339, raw)
		if stampErr != nil {
			return time.Time{}, apperr.Validation("date", "date must be formatted as YYYY-MM-DD")
		}
		stamp = stamp.In(today.Location())
		date = time.Date(stamp.Year(), stamp.Month(), stamp.Day(), 0, 0, 0, 0, time.UTC)
	}
	floor := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(floor) {
		return time.Time{}, apperr.Validation("date", "date cannot be in the past")
	}
	return date, nil
}

func parseClock(field, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperr.Validation(field, field+" is required")
	}
	parsed, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return 0, apperr.Validation(field, field+" must match HH:MM (24-hour)")
	}
	return time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute, nil
}

func validateMaxPlayers(value int) (int, error) {
	if value < MinMaxPlayers || value > MaxMaxPlayers {
		return 0, apperr.Validation("max_players", fmt.Sprintf("max_players must be between %d and %d", MinMaxPlayers, MaxMaxPlayers))
	}
	return value, nil
}

func parseSkillLevel(raw string) (SkillLevel, error) {
	level := SkillLevel(strings.ToLower(strings.TrimSpace(raw)))
	if !level.Valid() {
		return "", apperr.Validation("skill_level", "skill_level must be one of beginner, intermediate, advanced, pro")
	}
	return level, nil
}

// ParseSkillLevel is shared with the user profile endpoints.
func ParseSkillLevel(raw string) (SkillLevel, error) {
	return parseSkillLevel(raw)
}

func normalizeNotes(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	notes := strings.TrimSpace(*raw)
	if notes == "" {
		return nil, nil
	}
	if len(notes) > maxNotesLength {
		return nil, apperr.Validation("notes", fmt.Sprintf("notes must be %d characters or fewer", maxNotesLength))
	}
	return &notes, nil
}

// parseCreatorStatus accepts only the statuses a creator may set by hand.
func parseCreatorStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Terminal() {
		return "", apperr.Validation("status", "status may only be set to cancelled or completed")
	}
	return status, nil
}

func clockOf(t datatypes.Time) time.Duration {
	return time.Duration(t)
}

func newClock(d time.Duration) datatypes.Time {
	return datatypes.NewTime(int(d/time.Hour), int(d%time.Hour/time.Minute), 0, 0)
}

func formatClock(t datatypes.Time) string {
	d := clockOf(t)
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

func formatDate(d datatypes.Date) string {
	return time.Time(d).UTC().Format(DateLayout)
}
