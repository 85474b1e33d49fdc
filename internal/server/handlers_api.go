package server

import (
	"net/http"

	"pickleball/internal/apperr"
	"pickleball/internal/games"

	"github.com/gin-gonic/gin"
)

type createGameRequest struct {
	Location   string  `json:"location" binding:"required,notblank"`
	Date       string  `json:"date" binding:"required"`
	StartTime  string  `json:"start_time" binding:"required,clock"`
	EndTime    string  `json:"end_time" binding:"required,clock"`
	MaxPlayers *int    `json:"max_players"`
	SkillLevel *string `json:"skill_level" binding:"omitempty,skill_level"`
	Notes      *string `json:"notes"`
}

type updateGameRequest struct {
	Location   *string `json:"location"`
	Date       *string `json:"date"`
	StartTime  *string `json:"start_time" binding:"omitempty,clock"`
	EndTime    *string `json:"end_time" binding:"omitempty,clock"`
	MaxPlayers *int    `json:"max_players"`
	SkillLevel *string `json:"skill_level" binding:"omitempty,skill_level"`
	Notes      *string `json:"notes"`
	Status     *string `json:"status"`
}

// The target status is checked by the service after ownership, so binding
// only requires its presence.
type decideRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) handleCreateGame(c *gin.Context) {
	var req createGameRequest
	if !bindJSON(c, &req, createGameMessages, "invalid game") {
		return
	}
	game, err := s.games.Create(c.Request.Context(), callerID(c), games.CreateInput{
		Location:   req.Location,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		MaxPlayers: req.MaxPlayers,
		SkillLevel: req.SkillLevel,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, game)
}

func (s *Server) handleListOpenGames(c *gin.Context) {
	list, err := s.games.ListOpen(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, list)
}

func (s *Server) handleGetGame(c *gin.Context) {
	gameID, ok := bindGameID(c)
	if !ok {
		return
	}
	game, err := s.games.Get(c.Request.Context(), gameID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, game)
}

func (s *Server) handleUpdateGame(c *gin.Context) {
	gameID, ok := bindGameID(c)
	if !ok {
		return
	}
	var req updateGameRequest
	if !bindJSON(c, &req, updateGameMessages, "invalid game update") {
		return
	}
	game, err := s.games.Update(c.Request.Context(), callerID(c), gameID, games.UpdateInput{
		Location:   req.Location,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		MaxPlayers: req.MaxPlayers,
		SkillLevel: req.SkillLevel,
		Notes:      req.Notes,
		Status:     req.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, game)
}

func (s *Server) handleDeleteGame(c *gin.Context) {
	gameID, ok := bindGameID(c)
	if !ok {
		return
	}
	if err := s.games.Delete(c.Request.Context(), callerID(c), gameID); err != nil {
		writeError(c, err)
		return
	}
	writeMessage(c, http.StatusOK, "game deleted")
}

func (s *Server) handleJoinGame(c *gin.Context) {
	gameID, ok := bindGameID(c)
	if !ok {
		return
	}
	participant, err := s.games.Join(c.Request.Context(), callerID(c), gameID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, participant)
}

func (s *Server) handleListParticipants(c *gin.Context) {
	gameID, ok := bindGameID(c)
	if !ok {
		return
	}
	list, err := s.games.ListParticipants(c.Request.Context(), callerID(c), gameID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, list)
}

func (s *Server) handleDecideParticipant(c *gin.Context) {
	gameID, ok := bindGameID(c)
	if !ok {
		return
	}
	participantID, ok := bindID(c, "participantId", apperr.CodeParticipantNotFound, "participant not found")
	if !ok {
		return
	}
	var req decideRequest
	if !bindJSON(c, &req, decideMessages, "status is required") {
		return
	}
	participant, err := s.games.Decide(c.Request.Context(), callerID(c), gameID, participantID, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, participant)
}

// handleMyGames serves the caller's dashboard. The optional userId must be
// the caller's own id.
func (s *Server) handleMyGames(c *gin.Context) {
	userID := callerID(c)
	if raw := c.Param("userId"); raw != "" {
		requested, ok := bindID(c, "userId", apperr.CodeUserNotFound, "user not found")
		if !ok {
			return
		}
		if requested != userID {
			writeError(c, apperr.Forbidden("you can only view your own games"))
			return
		}
	}
	list, err := s.games.ListForUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, list)
}

func (s *Server) handleGameEvents(c *gin.Context) {
	gameID, ok := bindGameID(c)
	if !ok {
		return
	}
	events, err := s.games.ListEvents(c.Request.Context(), callerID(c), gameID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, events)
}
