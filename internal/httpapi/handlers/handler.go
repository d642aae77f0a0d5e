package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/everafter-ai/everafter/internal/ai"
	"github.com/everafter-ai/everafter/internal/config"
	"github.com/everafter-ai/everafter/internal/convo"
	"github.com/everafter-ai/everafter/internal/decisions"
	"github.com/everafter-ai/everafter/internal/kernel"
	"github.com/everafter-ai/everafter/internal/planning"
	"github.com/everafter-ai/everafter/internal/store/rabbitmq"
	"github.com/everafter-ai/everafter/internal/store/redisstore"
	"github.com/everafter-ai/everafter/internal/tools"
)

// EventPublisher is the slice of the queue layer the ingestion handler needs.
type EventPublisher interface {
	PublishEvent(ctx context.Context, msg rabbitmq.EventMessage) error
}

type Handler struct {
	DB      *gorm.DB
	Cfg     config.Config
	Redis   *redisstore.Store
	Rabbit  EventPublisher
	Convo   *convo.Service
	Tools   *tools.Executor
	Tracker *decisions.Tracker
	Kernels *kernel.Repo
	Pages   *planning.Repo
}

func NewHandler(db *gorm.DB, cfg config.Config, rds *redisstore.Store, rabbit *rabbitmq.Publisher) *Handler {
	reg := ai.NewRegistry()
	reg.Register("ollama", func(_ context.Context, model string) (ai.Provider, error) {
		if strings.TrimSpace(model) == "" {
			model = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, model), nil
	})
	reg.Register("openrouter", func(_ context.Context, model string) (ai.Provider, error) {
		if strings.TrimSpace(model) == "" {
			model = cfg.OpenRouterModel
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey,
			model, cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})

	name := cfg.AIProvider
	if name == "" {
		name = "ollama"
	}
	provider, err := reg.Get(context.Background(), name, "")
	if err != nil {
		panic(fmt.Sprintf("unsupported AI_PROVIDER=%q", cfg.AIProvider))
	}

	kernels := kernel.NewRepo(db)
	tracker := decisions.NewTracker(db)
	pages := planning.NewRepo(db)

	return &Handler{
		DB:      db,
		Cfg:     cfg,
		Redis:   rds,
		Rabbit:  rabbit,
		Convo:   convo.NewService(db, convo.NewRepo(db), kernels, tracker, provider, cfg.ChatContextWindowSize),
		Tools:   tools.NewExecutor(pages, tracker, tools.MatchFirst),
		Tracker: tracker,
		Kernels: kernels,
		Pages:   pages,
	}
}

// Ping is the health check.
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(200, gin.H{"message": "pong"})
}
