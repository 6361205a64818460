package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-user-service/internal/core/auth"
	"go-user-service/internal/core/cache"
	"go-user-service/internal/core/config"
	"go-user-service/internal/core/database"
	"go-user-service/internal/core/logger"
	"go-user-service/internal/core/server"
	"go-user-service/internal/domain"
	"go-user-service/internal/events"
	"go-user-service/internal/service"
	"go-user-service/internal/store"
	"go-user-service/internal/transport/http/handler"
	"go-user-service/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db := mustOpenStore(cfg, log)
	log.Info("store connected", zap.String("driver", cfg.Store.Driver))

	if cfg.Store.AutoMigrate {
		if err := store.Migrate(db, cfg.Store.Driver); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	tokens := &auth.Tokens{
		Issuer: cfg.Token.Issuer,
		Type:   cfg.Token.Type,
		Access: auth.KindConfig{
			Secret: []byte(cfg.Token.AccessSecret),
			TTL:    time.Duration(cfg.Token.AccessTTLMin) * time.Minute,
		},
		Refresh: auth.KindConfig{
			Secret: []byte(cfg.Token.RefreshSecret),
			TTL:    time.Duration(cfg.Token.RefreshTTLDay) * 24 * time.Hour,
		},
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// with redis: shared read cache + cross-process invalidation broadcast;
	// without: no cache, in-process bus keeps the contract alive
	var (
		bc events.Broadcaster
		c  *cache.Cache
	)
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		c.Listen(rootCtx, log, events.Topic(domain.CollectionUsers))
		bc = events.NewRedisBroadcaster(c.RDB, log)
		log.Info("redis cache enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		bc = events.NewBus()
		log.Info("redis disabled, using in-process event bus")
	}

	svc := service.NewUserService(store.New(db), tokens, bc, c, cfg.Hash.Cost, log)
	h := handler.NewUserHandler(svc)

	r := router.NewAPIEngine(log, h, tokens)
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	opsAddr := server.Addr(cfg.App.Ops.Host, cfg.App.Ops.Port)
	opsSrv := server.BuildServer(opsAddr, server.NewOpsEngine(log), 5*time.Second, 10*time.Second, 60*time.Second)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("users_v1", baseURL+"/v1/users"),
		zap.String("ops", "http://"+host4human+":"+fmt.Sprint(cfg.App.Ops.Port)+"/metrics"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("user api start FAILED", zap.Error(err))
		}
	}()
	go func() {
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ops listener start FAILED", zap.Error(err))
		}
	}()
	log.Info("user api started SUCCESS")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	_ = opsSrv.Shutdown(ctx)
	log.Info("user api stopped gracefully")
}

func mustOpenStore(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.Store.Driver,
		DSN:                cfg.Store.DSN,
		Username:           cfg.Store.Username,
		Password:           cfg.Store.Password,
		MaxOpenConns:       cfg.Store.MaxOpenConns,
		MaxIdleConns:       cfg.Store.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.Store.ConnMaxLifetimeMin,
		LogLevel:           cfg.Store.LogLevel,
	})
	if err != nil {
		l.Fatal("store open", zap.Error(err))
	}
	return db
}
