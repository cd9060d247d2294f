package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"supplysight/pkg/api/upload"
	"supplysight/pkg/core/llm"
	"supplysight/pkg/core/mapping"
	"supplysight/pkg/core/pipeline"
	"supplysight/pkg/core/prompt"
	"supplysight/pkg/core/store"
	"supplysight/pkg/logger"
)

// serviceConfig mirrors config/models.yaml.
type serviceConfig struct {
	Provider       string `yaml:"provider"` // gemini | deepseek
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	LogMode        string `yaml:"log_mode"`
	MongoDatabase  string `yaml:"mongo_database"`
}

func loadConfig() serviceConfig {
	cfg := serviceConfig{
		Provider:       "gemini",
		TimeoutSeconds: 45,
		LogMode:        "dev",
		MongoDatabase:  "supplysight",
	}
	data, err := os.ReadFile("config/models.yaml")
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Printf("[WARNING] config/models.yaml unreadable: %v\n", err)
	}
	return cfg
}

func buildProvider(cfg serviceConfig) llm.Provider {
	switch cfg.Provider {
	case "deepseek":
		return &llm.DeepSeekProvider{Model: cfg.Model}
	default:
		return &llm.GeminiProvider{Model: cfg.Model}
	}
}

func main() {
	godotenv.Load()
	cfg := loadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("[FATAL] logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := prompt.LoadFromDirectory("resources"); err != nil {
		log.Warn("prompt library not loaded, using hardcoded prompts", "error", err)
	} else {
		log.Info("prompt library loaded", "prompts", prompt.Get().Count())
	}

	ctx := context.Background()

	recordStore, err := store.ConnectMongo(ctx, cfg.MongoDatabase)
	if err != nil {
		log.Error("mongo connection failed", "error", err)
		os.Exit(1)
	}
	defer recordStore.Disconnect(ctx)

	oracle := mapping.NewOracle(buildProvider(cfg), time.Duration(cfg.TimeoutSeconds)*time.Second)
	orch := pipeline.New(oracle, recordStore, log)

	var batchRepo *store.OutcomeRepo
	if err := store.InitDB(ctx); err != nil {
		log.Warn("batch archive disabled", "error", err)
	} else {
		defer store.Close()
		batchRepo = store.NewOutcomeRepo()
		orch.SetAuditLog(batchRepo)
	}

	uploadHandler := upload.NewHandler(orch, log)
	batchesHandler := upload.NewBatchesHandler(batchRepo, log)

	http.HandleFunc("/api/upload", uploadHandler.HandleUpload)
	http.HandleFunc("/api/upload/preview", uploadHandler.HandlePreview)
	http.HandleFunc("/api/batches", batchesHandler.HandleList)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Info("api server starting", "port", port, "provider", cfg.Provider)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}
