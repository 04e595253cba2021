package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hanbit-dev/pagecraft/internal/config"
	"github.com/hanbit-dev/pagecraft/internal/core"
	db "github.com/hanbit-dev/pagecraft/internal/core/database"
	"github.com/hanbit-dev/pagecraft/internal/core/llm"
	objectclient "github.com/hanbit-dev/pagecraft/internal/core/object-client"
	"github.com/hanbit-dev/pagecraft/internal/core/runway"
	"github.com/hanbit-dev/pagecraft/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	LLM          *llm.GeminiLLM
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel, cfg.VisionModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm provider, %w", err)
	}

	runwayClient := runway.NewClient(cfg.RunwayBaseURL, cfg.RunwayAPIKey)

	contentSvc := services.NewContentService(dbClient, llmProvider)
	storySvc := services.NewStoryService(llmProvider)
	mediaSvc := services.NewMediaService(dbClient, objClient, runwayClient, cfg.BucketName)
	sidebarSvc := services.NewSidebarService(dbClient)

	server := NewServer(cfg, contentSvc, storySvc, mediaSvc, sidebarSvc)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		LLM:          llmProvider,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
