package server

import (
	"net/http"

	"pickleball/internal/apperr"
	"pickleball/internal/auth"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name       string  `json:"name" binding:"required,notblank"`
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=6"`
	SkillLevel *string `json:"skill_level" binding:"omitempty,skill_level"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req, registerMessages, "invalid registration") {
		return
	}
	session, err := s.auth.Register(c.Request.Context(), auth.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		SkillLevel: req.SkillLevel,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, session)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, loginMessages, "invalid login") {
		return
	}
	session, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, session)
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req, refreshMessages, "refresh_token is required") {
		return
	}
	pair, err := s.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, pair)
}

func (s *Server) handleLogout(c *gin.Context) {
	if err := s.auth.Logout(c.Request.Context(), callerID(c)); err != nil {
		writeError(c, err)
		return
	}
	writeMessage(c, http.StatusOK, "logged out")
}

func (s *Server) handleMe(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"user": caller(c)})
}

type updateUserRequest struct {
	Name       *string `json:"name" binding:"omitempty,notblank"`
	SkillLevel *string `json:"skill_level" binding:"omitempty,skill_level"`
}

func (s *Server) handleListUsers(c *gin.Context) {
	page, limit := parsePagination(c, 20, 100)
	result, err := s.auth.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, result)
}

func (s *Server) handleGetUser(c *gin.Context) {
	userID, ok := bindID(c, "id", apperr.CodeUserNotFound, "user not found")
	if !ok {
		return
	}
	profile, err := s.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, profile)
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	userID, ok := bindID(c, "id", apperr.CodeUserNotFound, "user not found")
	if !ok {
		return
	}
	var req updateUserRequest
	if !bindJSON(c, &req, updateUserMessages, "invalid profile update") {
		return
	}
	profile, err := s.auth.UpdateUser(c.Request.Context(), callerID(c), userID, auth.UpdateUserInput{
		Name:       req.Name,
		SkillLevel: req.SkillLevel,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, profile)
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	userID, ok := bindID(c, "id", apperr.CodeUserNotFound, "user not found")
	if !ok {
		return
	}
	if err := s.auth.DeleteUser(c.Request.Context(), callerID(c), userID); err != nil {
		writeError(c, err)
		return
	}
	writeMessage(c, http.StatusOK, "user deleted")
}
