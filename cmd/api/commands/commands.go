package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tasktrail/core/internal/adapters/repository"
	"github.com/tasktrail/core/internal/application/services"
	"github.com/tasktrail/core/internal/infrastructure/config"
	"github.com/tasktrail/core/internal/infrastructure/logger"
	"github.com/tasktrail/core/internal/infrastructure/server"
	"github.com/tasktrail/core/internal/infrastructure/storage"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the TaskTrail API server",
		Long:  "Start the TaskTrail API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewSweepCommand creates the one-shot retention purge command
func NewSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Purge completed tasks past the retention window",
		Long:  "Run a single retention sweep against the local state file and exit",
		Run: func(cmd *cobra.Command, args []string) {
			runSweep()
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print TaskTrail version",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				fmt.Println("TaskTrail")
				return
			}
			fmt.Printf("TaskTrail %s\n", cfg.App.Version)
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	store := storage.New(cfg.Storage)
	tasks, stats, err := store.Load(context.Background())
	if err != nil {
		appLogger.Fatalw("Failed to load state", "error", err.Error())
	}

	taskRepo := repository.NewTaskRepository(tasks, store)
	statsRepo := repository.NewStatsRepository(stats, store)

	srv, err := server.New(cfg, store, taskRepo, statsRepo, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err.Error())
	}

	sweeper := services.NewRetentionSweeper(taskRepo, statsRepo, cfg.Retention, appLogger)
	sweeper.Start(context.Background())
	defer sweeper.Stop()

	appLogger.Infow("Starting TaskTrail API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
	)

	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
			appLogger.Warnw("Server stopped", "error", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorw("Server shutdown failed", "error", err.Error())
	}
}

func runSweep() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	store := storage.New(cfg.Storage)
	tasks, stats, err := store.Load(context.Background())
	if err != nil {
		appLogger.Fatalw("Failed to load state", "error", err.Error())
	}

	taskRepo := repository.NewTaskRepository(tasks, store)
	statsRepo := repository.NewStatsRepository(stats, store)

	sweeper := services.NewRetentionSweeper(taskRepo, statsRepo, cfg.Retention, appLogger)
	removed, err := sweeper.SweepOnce(context.Background())
	if err != nil {
		appLogger.Fatalw("Retention sweep failed", "error", err.Error())
	}

	fmt.Printf("Removed %d completed task(s) past the retention window\n", removed)
}
