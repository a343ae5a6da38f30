package main

import (
	"context"
	"log"
	"strings"

	api "gemini-task-backend/cmd/api"
	authUsecase "gemini-task-backend/internal/auth/usecase"
	"gemini-task-backend/internal/notification"
	settingsRepo "gemini-task-backend/internal/settings/repository"
	taskRepo "gemini-task-backend/internal/task/repository"
	"gemini-task-backend/pkg/config"
	"gemini-task-backend/pkg/database"
	"gemini-task-backend/pkg/firebaseapp"
	"gemini-task-backend/pkg/gemini"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Firebase backs both the default identity provider and the default store
	var fbApp *firebaseapp.App
	if cfg.NeedsFirebase() {
		var err error
		fbApp, err = firebaseapp.NewApp(ctx, cfg.FirebaseCredentials, cfg.FirebaseProjectID)
		if err != nil {
			log.Fatal("Failed to initialize Firebase: ", err)
		}
	}

	// Initialize repositories (dependency injection)
	var tasks taskRepo.TaskRepository
	var settings settingsRepo.SettingsRepository
	switch cfg.StoreBackend {
	case config.StoreFirestore:
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			log.Fatal("Failed to connect to Firestore: ", err)
		}
		defer client.Close()
		tasks = taskRepo.NewFirestoreTaskRepository(client)
		settings = settingsRepo.NewFirestoreSettingsRepository(client)

	case config.StorePostgres:
		db, err := database.NewPostgresConnection(cfg)
		if err != nil {
			log.Fatal("Failed to connect to database: ", err)
		}
		if tasks, err = taskRepo.NewGormTaskRepository(db); err != nil {
			log.Fatal("Failed to migrate tasks: ", err)
		}
		if settings, err = settingsRepo.NewGormSettingsRepository(db); err != nil {
			log.Fatal("Failed to migrate settings: ", err)
		}

	default:
		log.Println("[WARN] Using the in-memory store, data is lost on restart")
		tasks = taskRepo.NewMemoryTaskRepository()
		settings = settingsRepo.NewMemorySettingsRepository()
	}

	// Task change events (Pub/Sub), only when a topic is configured
	if cfg.TaskEventsTopic != "" && cfg.FirebaseProjectID != "" {
		topicName := cfg.TaskEventsTopic
		if parts := strings.Split(topicName, "/"); len(parts) > 1 {
			topicName = parts[len(parts)-1]
		}
		publisher, err := notification.NewPublisher(ctx, cfg.FirebaseProjectID, topicName, cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize task event publisher: %v", err)
		} else {
			defer publisher.Close()
			tasks = taskRepo.WithEventPublisher(tasks, publisher)
		}
	} else {
		log.Printf("[WARN] TASK_EVENTS_TOPIC or FIREBASE_PROJECT_ID not configured, task events disabled")
	}

	// An untyped nil keeps NewTokenVerifier's nil check meaningful
	var idTokens authUsecase.IDTokenVerifier
	if fbApp != nil && !cfg.AuthBypass && cfg.AuthProvider == config.AuthFirebase {
		client, err := fbApp.Auth(ctx)
		if err != nil {
			log.Fatal("Failed to initialize Firebase Auth: ", err)
		}
		idTokens = client
	}
	verifier, err := authUsecase.NewTokenVerifier(cfg, idTokens)
	if err != nil {
		log.Fatal("Failed to initialize token verifier: ", err)
	}

	if cfg.GeminiApiKey == "" {
		log.Println("[WARN] GEMINI_API_KEY not set, /api/generate will fail upstream")
	}

	handler, err := api.NewHandler(ctx, cfg, api.Dependencies{
		Verifier:     verifier,
		TaskRepo:     tasks,
		SettingsRepo: settings,
		RawGenerator: gemini.NewGeminiService(cfg.GeminiApiKey, cfg.GeminiModel),
	})
	if err != nil {
		log.Fatal("Failed to initialize handler: ", err)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
