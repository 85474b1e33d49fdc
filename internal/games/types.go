package games

// Status is the lifecycle state of a game. Open and Full are maintained by
// the service from the approved participant count; Cancelled and Completed
// are set by the creator and stop any further automatic recomputation.
type Status string

const (
	StatusOpen      Status = "open"
	StatusFull      Status = "full"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Terminal reports whether the status was set by the creator and is final.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusFull, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillPro          SkillLevel = "pro"
)

func (l SkillLevel) Valid() bool {
	switch l {
	case SkillBeginner, SkillIntermediate, SkillAdvanced, SkillPro:
		return true
	}
	return false
}

type ParticipantStatus string

const (
	ParticipantPending  ParticipantStatus = "pending"
	ParticipantApproved ParticipantStatus = "approved"
	ParticipantRejected ParticipantStatus = "rejected"
)

// Decision reports whether the status is a valid host decision target.
func (s ParticipantStatus) Decision() bool {
	return s == ParticipantApproved || s == ParticipantRejected
}

const (
	DefaultMaxPlayers = 4
	MinMaxPlayers     = 2
	MaxMaxPlayers     = 8
	DefaultSkillLevel = SkillIntermediate

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	maxLocationLength = 255
	maxNotesLength    = 2000
)

// JoinableSlots is the number of seats open to participants; the creator
// always holds one of maxPlayers.
func JoinableSlots(maxPlayers int) int {
	return maxPlayers - 1
}

// IsFull reports whether approved participants use every joinable slot.
func IsFull(approved, maxPlayers int) bool {
	return approved >= JoinableSlots(maxPlayers)
}

// DerivedStatus is the system-maintained status for a non-terminal game.
func DerivedStatus(approved, maxPlayers int) Status {
	if IsFull(approved, maxPlayers) {
		return StatusFull
	}
	return StatusOpen
}

const (
	EventGameCreated         = "game_created"
	EventGameUpdated         = "game_updated"
	EventGameCancelled       = "game_cancelled"
	EventGameCompleted       = "game_completed"
	EventGameDeleted         = "game_deleted"
	EventGameFull            = "game_full"
	EventGameReopened        = "game_reopened"
	EventJoinRequested       = "join_requested"
	EventParticipantApproved = "participant_approved"
	EventParticipantRejected = "participant_rejected"
)
