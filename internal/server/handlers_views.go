package server

import (
	"net/http"

	"pickleball/internal/db"
	"pickleball/internal/games"
	"pickleball/internal/logging"
	"pickleball/internal/web"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

const boardPageSize = 10

func (s *Server) handleBoard(c *gin.Context) {
	list, err := s.games.ListOpen(c.Request.Context())
	if err != nil {
		logging.Errorf("board load failed err=%v", err)
		c.String(http.StatusInternalServerError, "failed to load games")
		return
	}
	page, perPage := parsePagination(c, boardPageSize, 50)
	pagination := buildPaginationData("/", page, perPage, int64(len(list)))
	start, end := pageBounds(pagination, len(list))
	data := web.BoardData{
		Games:      make([]web.BoardGame, 0, end-start),
		Timezone:   s.loc.String(),
		Pagination: pagination,
	}
	for _, game := range list[start:end] {
		data.Games = append(data.Games, boardGame(game))
	}
	templ.Handler(web.Board(data)).ServeHTTP(c.Writer, c.Request)
}

func boardGame(game games.GameView) web.BoardGame {
	row := web.BoardGame{
		ID:         game.ID.String(),
		Location:   game.Location,
		Date:       game.Date,
		StartTime:  game.StartTime,
		EndTime:    game.EndTime,
		SkillLevel: string(game.SkillLevel),
		MaxPlayers: game.MaxPlayers,
	}
	if game.OpenSlots != nil {
		row.OpenSlots = *game.OpenSlots
	}
	if game.Creator != nil {
		row.HostName = game.Creator.Name
	}
	if game.Notes != nil {
		row.Notes = *game.Notes
	}
	return row
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := db.Ping(s.db); err != nil {
		logging.Errorf("health check failed err=%v", err)
		writeJSON(c, http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}
