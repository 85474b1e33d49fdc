package server

import (
	"pickleball/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func bindGameID(c *gin.Context) (uuid.UUID, bool) {
	return bindID(c, "id", apperr.CodeGameNotFound, "game not found")
}
