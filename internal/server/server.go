package server

import (
	"net/http"
	"time"

	"pickleball/internal/auth"
	"pickleball/internal/config"
	"pickleball/internal/games"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Server struct {
	db       *gorm.DB
	cfg      config.Config
	games    *games.Service
	auth     *auth.Service
	inflight *inflightTracker
	loc      *time.Location
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.UTC
	}
	tokens := auth.TokenConfig{
		AccessSecret:  cfg.JWTSecret,
		AccessExpiry:  cfg.JWTExpiry,
		RefreshSecret: cfg.JWTRefreshSecret,
		RefreshExpiry: cfg.JWTRefreshExpiry,
	}
	return &Server{
		db:       conn,
		cfg:      cfg,
		games:    games.NewService(conn, loc),
		auth:     auth.NewService(conn, tokens),
		inflight: newInflightTracker(cfg.InflightTTL),
		loc:      loc,
	}
}

func (s *Server) Handler() http.Handler {
	registerValidators()
	if s.cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), requestTimeout(s.cfg.RequestTimeout))
	router.NoRoute(func(c *gin.Context) {
		writeError(c, routeNotFound())
	})

	router.GET("/", s.handleBoard)
	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", s.handleRegister)
	authRoutes.POST("/login", s.handleLogin)
	authRoutes.POST("/refresh-token", s.handleRefresh)
	authRoutes.POST("/logout", s.requireAuth, s.handleLogout)
	authRoutes.GET("/me", s.requireAuth, s.handleMe)

	users := api.Group("/users", s.requireAuth)
	users.GET("", s.handleListUsers)
	users.GET("/:id", s.handleGetUser)
	users.PUT("/:id", s.handleUpdateUser)
	users.DELETE("/:id", s.handleDeleteUser)

	gamesRoutes := api.Group("/games")
	gamesRoutes.GET("", s.handleListOpenGames)
	gamesRoutes.POST("", s.requireAuth, s.dedupe("create_game"), s.handleCreateGame)
	gamesRoutes.GET("/user", s.requireAuth, s.handleMyGames)
	gamesRoutes.GET("/user/:userId", s.requireAuth, s.handleMyGames)
	gamesRoutes.GET("/:id", s.handleGetGame)
	gamesRoutes.PUT("/:id", s.requireAuth, s.handleUpdateGame)
	gamesRoutes.DELETE("/:id", s.requireAuth, s.handleDeleteGame)
	gamesRoutes.POST("/:id/join", s.requireAuth, s.dedupe("join_game"), s.handleJoinGame)
	gamesRoutes.GET("/:id/participants", s.requireAuth, s.handleListParticipants)
	gamesRoutes.PUT("/:id/participants/:participantId", s.requireAuth, s.dedupe("decide_participant"), s.handleDecideParticipant)
	gamesRoutes.GET("/:id/events", s.requireAuth, s.handleGameEvents)
	return router
}
