package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iammorganparry/companion/internal/api"
	"github.com/iammorganparry/companion/internal/chat"
	"github.com/iammorganparry/companion/internal/config"
	"github.com/iammorganparry/companion/internal/embedding"
	"github.com/iammorganparry/companion/internal/llm"
	"github.com/iammorganparry/companion/internal/models"
	"github.com/iammorganparry/companion/internal/opening"
	"github.com/iammorganparry/companion/internal/persona"
	"github.com/iammorganparry/companion/internal/profile"
	"github.com/iammorganparry/companion/internal/search"
	"github.com/iammorganparry/companion/internal/store"
	"github.com/iammorganparry/companion/internal/summary"
	"github.com/iammorganparry/companion/internal/vectorstore"
)

// provider is what the server needs from a language-model backend.
type provider interface {
	llm.Completer
	llm.Embedder
	llm.Checker
}

func newProvider(cfg *config.Config) provider {
	if cfg.LLMProvider == "ollama" {
		return llm.NewOllamaClient(cfg.OllamaBaseURL, cfg.LLMModel, cfg.EmbeddingModel, cfg.LLMTemperature, cfg.LLMMaxTokens)
	}
	return llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		Model:          cfg.LLMModel,
		EmbeddingModel: cfg.EmbeddingModel,
		Temperature:    cfg.LLMTemperature,
		MaxTokens:      cfg.LLMMaxTokens,
	})
}

func newOpeningStates(cfg *config.Config, logger *slog.Logger) (opening.StateStore, func()) {
	if cfg.RedisURL == "" {
		return opening.NewMemoryStateStore(cfg.OpeningSessionCapacity), func() {}
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("invalid REDIS_URL, keeping opening sessions in memory", "error", err)
		return opening.NewMemoryStateStore(cfg.OpeningSessionCapacity), func() {}
	}
	client := redis.NewClient(opts)
	return opening.NewRedisStateStore(client, "companion:opening", cfg.OpeningSessionTTL), func() { client.Close() }
}

func main() {
	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// SQLite
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Stores
	conversationStore := store.NewConversationStore(db)
	messageStore := store.NewMessageStore(db)
	summaryStore := store.NewSummaryStore(db)
	profileStore := store.NewProfileStore(db)
	personaStore := store.NewPersonaStore(db)
	bm25Store := store.NewBM25Store(db)
	embCacheStore := store.NewEmbeddingCacheStore(db)

	// Personas
	if cfg.PersonasFile != "" {
		catalog, err := persona.LoadCatalog(cfg.PersonasFile)
		if err != nil {
			logger.Error("failed to load persona catalog", "path", cfg.PersonasFile, "error", err)
			os.Exit(1)
		}
		n, err := persona.Seed(context.Background(), personaStore, catalog)
		if err != nil {
			logger.Error("failed to seed personas", "error", err)
			os.Exit(1)
		}
		logger.Info("personas seeded", "count", n)
	}
	personas := persona.NewResolver(personaStore, logger)

	// External services
	llmClient := newProvider(cfg)
	embedder := embedding.NewCachedEmbedder(llmClient, embCacheStore, cfg.EmbeddingModel, logger)
	qdrantClient := vectorstore.NewQdrantClient(cfg.QdrantURL, cfg.EmbeddingDim)
	collMgr := vectorstore.NewCollectionManager(qdrantClient)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 5*time.Second)
	if err := qdrantClient.HealthCheck(startCtx); err != nil {
		logger.Warn("qdrant not available at startup, falling back to keyword search until it is", "error", err)
	}
	cancelStart()

	// Search
	retriever := search.NewSemanticRetriever(embedder, qdrantClient, bm25Store, cfg.SearchMinScore, logger)
	indexer := search.NewIndexer(embedder, collMgr, bm25Store, logger)

	// Summaries and profiles
	summaryCfg := summary.DefaultConfig
	summaryCfg.MaxTokens = cfg.SummaryMaxTokens
	summaryCfg.CompressionRatio = cfg.SummaryCompressionRatio
	summarizer := summary.NewAutoManager(summary.NewSummarizer(llmClient, logger), summaryStore, messageStore, summaryCfg, logger)
	legacy := summary.NewLegacySummarizer(messageStore, conversationStore, logger)
	profiles := profile.NewManager(profile.NewAnalyzer(cfg.Timezone), profileStore, messageStore, logger)

	// Opening messages
	openingStates, closeStates := newOpeningStates(cfg, logger)
	defer closeStates()

	// Chat
	svc := chat.NewService(chat.Deps{
		Conversations: conversationStore,
		Messages:      messageStore,
		Summaries:     summaryStore,
		Personas:      personas,
		Retriever:     retriever,
		Indexer:       indexer,
		Profiles:      profiles,
		Completer:     llmClient,
		Openings:      opening.NewSelector(opening.DefaultMessages, openingStates),
		Triggers:      []chat.Trigger{summarizer, legacy},
	}, chat.Options{
		ContextCount: cfg.VectorContextCount,
		Completion: llm.Options{
			Temperature: llm.Temperature(cfg.LLMTemperature),
			MaxTokens:   cfg.LLMMaxTokens,
		},
		Location: cfg.Timezone,
	}, logger)

	// Router
	router := api.NewRouter(api.Deps{
		DB:         db,
		Qdrant:     qdrantClient,
		LLM:        llmClient,
		Chat:       svc,
		Summaries:  summaryStore,
		Summarizer: summarizer,
		SummaryCfg: summaryCfg,
		Profiles:   profiles,
		Personas:   personas,
	}, cfg.APIKey, logger)

	// Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("companion server starting",
			"addr", addr,
			"provider", cfg.LLMProvider,
			"model", cfg.LLMModel,
			"summary_schema", models.SummarySchemaVersion,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	// Let in-flight indexing, summaries and profile updates finish.
	svc.Wait()
	logger.Info("server stopped")
}
