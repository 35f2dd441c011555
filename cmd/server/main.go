package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cod_confirm/internal/config"
	"cod_confirm/internal/notify"
	"cod_confirm/internal/router"
	"cod_confirm/internal/store"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. 连接 SQLite，自动建表
	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	st := store.New(db)
	if err := st.AutoMigrate(); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// 2. Redis：限流 + 确认事件 outbox
	rdb := rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis ping: %v", err)
	}
	defer rdb.Close()

	// 3. Kafka 生产者 + Relay（outbox -> kafka，异步通知下游自动化）
	producer := notify.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()
	relay := notify.NewRelay(rdb, producer,
		cfg.ConfirmEventStream, cfg.ConfirmEventGroup, cfg.ConfirmEventConsumer)
	go relay.Run(ctx)

	outbox := notify.NewOutbox(rdb, cfg.ConfirmEventStream)

	r := gin.Default()
	router.Setup(r, st, rdb, outbox, cfg)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()
	log.Printf("listening on %s", cfg.HTTPAddr)

	// 收到信号后先停 HTTP，再由 defer 释放 relay/redis/kafka。
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}
