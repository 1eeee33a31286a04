package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/Farid841/rara/internal/ai"
	"github.com/Farid841/rara/internal/config"
	"github.com/Farid841/rara/internal/embedcache"
	"github.com/Farid841/rara/internal/filestore"
	"github.com/Farid841/rara/internal/handler"
	"github.com/Farid841/rara/internal/job"
	"github.com/Farid841/rara/internal/middleware"
	"github.com/Farid841/rara/internal/registry"
	"github.com/Farid841/rara/internal/schedule"
	"github.com/Farid841/rara/internal/searchindex"
	"github.com/Farid841/rara/internal/service"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rara",
		Short: "rare-disease retrieval-augmented assistant",
	}
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newIngestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "run the assistant server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

// loadConfig reads .env (when present) and the environment, and brings the
// logger up. Configuration errors are fatal before any pipeline runs.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.Log.File,
		cfg.Log.Level,
		int(cfg.Log.FileCount),
		int(cfg.Log.FileSize),
		int(cfg.Log.KeepDays),
		cfg.Log.Console,
	)
	return cfg, nil
}

type services struct {
	registry *registry.Registry
	ingest   *service.IngestService
	chats    *service.ChatService
}

func buildServices(cfg *config.Config) (*services, error) {
	reg, err := registry.New(cfg.ModelsDir)
	if err != nil {
		return nil, fmt.Errorf("init model registry: %w", err)
	}
	archive, err := filestore.New(cfg.FileStore)
	if err != nil {
		return nil, fmt.Errorf("init file store: %w", err)
	}

	var embedder ai.Embedder = ai.NewEmbeddingClient(cfg.Embedding, cfg.RequestTimeout)
	embedder = embedcache.Wrap(embedder, cfg.EmbedCacheSize, cfg.EmbedCacheTTL)
	index := searchindex.NewClient(cfg.Search, cfg.RequestTimeout)
	completer := ai.NewCompletionClient(cfg.OpenAI, cfg.RequestTimeout)

	return &services{
		registry: reg,
		ingest:   service.NewIngestService(embedder, index, archive),
		chats:    service.NewChatService(embedder, index, completer),
	}, nil
}

func runServer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcs, err := buildServices(cfg)
	if err != nil {
		return err
	}

	deps := handler.RouterDeps{
		Models:          handler.NewModelHandler(svcs.registry, svcs.ingest, cfg.UploadMaxBytes),
		Chat:            handler.NewChatHandler(svcs.registry, svcs.chats),
		RateLimitWindow: cfg.RateLimitWindow,
	}
	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(nil),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewSessionCleanupJob(svcs.chats, cfg.SessionTTL), cfg.SessionSweep); err != nil {
		return fmt.Errorf("schedule session cleanup: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(ctx).Info("server starting",
		zap.Int("port", cfg.Port),
		zap.String("models_dir", cfg.ModelsDir),
		zap.String("file_store", cfg.FileStore.Type),
	)
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(ctx).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
