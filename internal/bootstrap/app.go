package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ragfilechat/internal/config"
	"ragfilechat/internal/gemini"
	"ragfilechat/internal/logger"
	"ragfilechat/internal/model"
	mysqlClient "ragfilechat/internal/platform/mysql"
	rabbitmqClient "ragfilechat/internal/platform/rabbitmq"
	redisClient "ragfilechat/internal/platform/redis"
	"ragfilechat/internal/worker"
)

type App struct {
	Config        *config.Config
	Log           *zap.Logger
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	Gemini        *gemini.Client
	CleanupWorker *worker.FileCleanupWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.App.Env)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Upload.ScratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.ChatSession{}, &model.Message{}, &model.Document{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	geminiCli, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	if err != nil {
		return nil, err
	}

	cleanupWorker := worker.NewFileCleanupWorker(mqConn, geminiCli, cfg.RabbitMQ.FileCleanupQueue, log)
	if err := cleanupWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start cleanup worker failed: %w", err)
	}

	return &App{
		Config:        cfg,
		Log:           log,
		MySQL:         mysqlDB,
		Redis:         redisCli,
		MQConn:        mqConn,
		Gemini:        geminiCli,
		CleanupWorker: cleanupWorker,
		StartedAt:     time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.CleanupWorker != nil {
		a.CleanupWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	return closeErr
}
