package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	authUsecase "gemini-task-backend/internal/auth/usecase"
	chatDelivery "gemini-task-backend/internal/chat/delivery"
	chatUsecasePkg "gemini-task-backend/internal/chat/usecase"
	relayDelivery "gemini-task-backend/internal/relay/delivery"
	settingsDelivery "gemini-task-backend/internal/settings/delivery"
	settingsRepo "gemini-task-backend/internal/settings/repository"
	settingsUsecasePkg "gemini-task-backend/internal/settings/usecase"
	taskDelivery "gemini-task-backend/internal/task/delivery"
	taskRepo "gemini-task-backend/internal/task/repository"
	taskUsecasePkg "gemini-task-backend/internal/task/usecase"
	"gemini-task-backend/pkg/ai"
	"gemini-task-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

type Handler struct {
	config          *config.Config
	verifier        authUsecase.TokenVerifier
	runtime         *RuntimeConfig
	relayHandler    *relayDelivery.RelayHandler
	chatHandler     *chatDelivery.ChatHandler
	taskHandler     *taskDelivery.TaskHandler
	settingsHandler *settingsDelivery.SettingsHandler
	aiSettings      *AISettingsHandler
}

// Dependencies are the storage and provider pieces chosen in main
type Dependencies struct {
	Verifier     authUsecase.TokenVerifier
	TaskRepo     taskRepo.TaskRepository
	SettingsRepo settingsRepo.SettingsRepository
	RawGenerator relayDelivery.RawGenerator

	// Generator overrides the configured AI provider when set
	Generator ai.TextGenerator
}

func NewHandler(ctx context.Context, cfg *config.Config, deps Dependencies) (*Handler, error) {
	// Runtime config for the settings API
	runtime := NewRuntimeConfig(cfg.OllamaBaseURL, cfg.OllamaModel)

	generator := deps.Generator
	if generator == nil {
		aiCfg := ai.Config{
			Provider:         ai.ProviderType(cfg.AIProvider),
			GeminiAPIKey:     cfg.GeminiApiKey,
			GeminiModel:      cfg.GeminiModel,
			GetOllamaBaseURL: runtime.OllamaBaseURL,
			GetOllamaModel:   runtime.OllamaModel,
		}
		var err error
		generator, err = ai.NewTextGenerator(ctx, aiCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize AI service: %w", err)
		}
		log.Printf("AI service initialized with provider: %s (dynamic config enabled)", cfg.AIProvider)
	}

	taskUc := taskUsecasePkg.NewTaskUsecase(deps.TaskRepo)
	settingsUc := settingsUsecasePkg.NewSettingsUsecase(deps.SettingsRepo)
	chatUc := chatUsecasePkg.NewChatUsecase(generator, taskUc, settingsUc)

	return &Handler{
		config:          cfg,
		verifier:        deps.Verifier,
		runtime:         runtime,
		relayHandler:    relayDelivery.NewRelayHandler(deps.RawGenerator),
		chatHandler:     chatDelivery.NewChatHandler(chatUc),
		taskHandler:     taskDelivery.NewTaskHandler(taskUc),
		settingsHandler: settingsDelivery.NewSettingsHandler(settingsUc),
		aiSettings:      NewAISettingsHandler(runtime, ai.NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)),
	}, nil
}

// Router builds the gin engine with CORS and every route registered
func (h *Handler) Router() *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware(h.config.FrontendOrigin))
	SetupRoutes(r, h)
	return r
}

func (h *Handler) Start(addr string) error {
	if !h.config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	return h.Router().Run(addr)
}

// corsMiddleware allows the configured frontend origins (comma separated)
func corsMiddleware(frontendOrigin string) gin.HandlerFunc {
	var origins []string
	for _, o := range strings.Split(frontendOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept", "Origin", "Cache-Control", "X-Requested-With"},
		AllowCredentials: true,
	})

	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)
		if ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}
