package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/cache"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/config"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/handler"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/logging"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/queue"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/repository"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/schedule"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/seed"
)

func main() {
	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("无法加载配置文件", "error", err)
		return
	}

	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger, logCloser := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer logCloser.Close()
	slog.SetDefault(logger)

	// Validate 已经检查过时区
	loc, _ := cfg.Location()

	/**********************************************
	 * 连接存储后端
	 **********************************************/
	store, closeStore, err := repository.Open(context.Background(), cfg)
	if err != nil {
		logger.Error("无法连接存储后端", "driver", cfg.StorageDriver, "error", err)
		return
	}
	defer closeStore()
	logger.Info("存储后端已就绪", "driver", cfg.StorageDriver)

	/**********************************************
	 * 确保存在初始管理员
	 **********************************************/
	if err := seed.EnsureInitialAdmin(context.Background(), store, cfg.InitialAdmin.Username, cfg.InitialAdmin.Password); err != nil {
		logger.Error("无法创建初始管理员", "error", err)
		return
	}

	/**********************************************
	 * 内存模式下插入演示数据
	 **********************************************/
	if cfg.StorageDriver == config.StorageMemory && cfg.SeedDemoData {
		if err := seed.SeedDemoData(context.Background(), store, time.Now(), loc); err != nil {
			logger.Error("无法插入演示数据", "error", err)
			return
		}
	}

	/**********************************************
	 * 连接 redis
	 **********************************************/
	var weekCache cache.WeekCache = cache.Nop{}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Error("无法连接到 redis", "error", err)
			return
		}

		weekCache = cache.NewRedisWeekCache(
			rdb,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			time.Duration(cfg.Redis.OperationTimeout)*time.Second,
		)
		logger.Info("已启用 redis 周排班缓存")
	}

	/**********************************************
	 * 连接 rabbitmq
	 **********************************************/
	var publisher queue.Publisher = queue.Nop{}
	if cfg.RabbitMQ.Enabled {
		conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
		if err != nil {
			logger.Error("无法连接到 rabbitmq", "error", err)
			return
		}
		defer conn.Close()

		// 建立通道
		ch, err := conn.Channel()
		if err != nil {
			logger.Error("无法建立通道", "error", err)
			return
		}
		defer ch.Close()

		if _, err := queue.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
			logger.Error("无法声明队列", "error", err)
			return
		}

		publisher = queue.NewAMQPPublisher(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
		logger.Info("已启用顶班提醒邮件", "queue", cfg.RabbitMQ.Queue)
	}

	/**********************************************
	 * 创建 handler
	 **********************************************/
	aggregator := schedule.NewAggregator(store, weekCache, loc)

	handler, err := handler.NewHandler(cfg, store, aggregator, publisher)
	if err != nil {
		logger.Error("无法创建 handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * 启动 HTTP 服务器
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("正在启动服务器...", "port", cfg.Server.Port, "timezone", loc.String(), "authRequired", cfg.AuthRequired)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("无法启动服务器", slog.String("error", err.Error()))
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("关闭服务器失败", slog.String("error", err.Error()))
	}
	logger.Info("服务器已成功关闭")
}
