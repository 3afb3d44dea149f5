package cli

import (
	"context"
	"fmt"
	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/logger"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/storage"
	"taskboard/internal/web"

	"github.com/gin-gonic/gin"
)

// app holds everything a command needs, built from one Config.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	service *service.TaskService
	closers []func() error
}

func newApp(cfg *config.Config, log logger.Logger) (*app, error) {
	backend, closeBackend, err := openBackend(cfg.Storage)
	if err != nil {
		return nil, err
	}

	newID, err := service.NewIDGenerator(cfg.IDs.Scheme)
	if err != nil {
		closeBackend()
		return nil, err
	}

	repo := repository.NewTaskRepository(backend, log)
	svc := service.NewTaskService(repo, newID, log)

	log.Info("storage ready", "backend", cfg.Storage.Backend, "ids", cfg.IDs.Scheme)
	return &app{
		cfg:     cfg,
		log:     log,
		service: svc,
		closers: []func() error{closeBackend},
	}, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
}

func (a *app) router() *gin.Engine {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestLogger(a.log))

	handler.NewTaskHandler(a.service, a.log).RegisterRoutes(router)
	web.RegisterRoutes(router)
	return router
}

func openBackend(cfg config.StorageConfig) (storage.Backend, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendCSV:
		return storage.NewFileBackend(cfg.CSVPath), noop, nil
	case config.BackendMemory:
		return storage.NewMemoryBackend(), noop, nil
	case config.BackendKV:
		var kv storage.KV
		switch cfg.KV.Driver {
		case config.KVDriverSQLite:
			sqlite, err := storage.NewSQLiteKV(cfg.KV.Path)
			if err != nil {
				return nil, nil, fmt.Errorf("open sqlite kv: %w", err)
			}
			kv = sqlite
		case config.KVDriverMemory:
			kv = storage.NewMemoryKV()
		default:
			return nil, nil, fmt.Errorf("unknown kv driver %q", cfg.KV.Driver)
		}
		return storage.NewBlobBackend(kv, cfg.KV.Key), kv.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func newLogger(ctx context.Context, cfg *config.Config) logger.Logger {
	return logger.NewAsyncLogger(ctx, logger.Config{
		Level:        logger.ParseLevel(cfg.Log.Level),
		IsProduction: cfg.IsProduction(),
	})
}
