package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/everafter-ai/everafter/internal/common"
	"github.com/everafter-ai/everafter/internal/config"
	"github.com/everafter-ai/everafter/internal/httpapi/handlers"
	"github.com/everafter-ai/everafter/internal/httpapi/middleware"
	"github.com/everafter-ai/everafter/internal/store/rabbitmq"
	"github.com/everafter-ai/everafter/internal/store/redisstore"
)

func NewRouter(db *gorm.DB, cfg config.Config, rds *redisstore.Store, rabbit *rabbitmq.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	h := handlers.NewHandler(db, cfg, rds, rabbit)

	r.GET("/ping", h.Ping)

	// accounts
	r.POST("/tenants", h.Register)
	r.POST("/login", h.Login)

	// public analytics ingestion (rate-limited per session)
	r.POST("/events",
		middleware.EventRateLimit(rds, cfg.EventRatePerMin, time.Duration(cfg.EventRateWindow)*time.Second),
		h.IngestEvent)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.GET("/me", h.Me)

	// planner (JWT required)
	authGroup.POST("/planner/turns", h.HandleOnboardingTurn)
	authGroup.GET("/planner/transcript", h.ListTranscript)
	authGroup.POST("/planner/tools", h.ExecuteToolCall)
	authGroup.GET("/planner/decisions", h.GetDecisions)
	authGroup.GET("/planner/decisions/progress", h.GetDecisionProgress)
	authGroup.GET("/planner/gaps", h.GetPlanningGaps)
	authGroup.GET("/planner/kernel", h.GetKernel)

	return r
}
