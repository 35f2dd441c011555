package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig 聚合运行时配置，尽量通过环境变量注入，避免硬编码。
type AppConfig struct {
	HTTPAddr string
	DBPath   string

	RedisAddr string
	RedisDB   int

	// Kafka 集群地址（逗号分隔）与确认事件 Topic
	KafkaBrokers []string
	KafkaTopic   string

	// Redis Stream outbox（确认接口原子入流，Relay 异步转 Kafka）
	ConfirmEventStream   string
	ConfirmEventGroup    string
	ConfirmEventConsumer string

	// token 类接口限流（按 IP，防 token 枚举探测）
	TokenRateLimit  int
	TokenRateWindow time.Duration

	// 订单链接有效期
	OrderExpiry time.Duration
}

// Load 读取并校验配置，缺失时使用默认值。
func Load() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DBPath:               getEnv("DB_PATH", "cod_confirm.db"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              0,
		KafkaBrokers:         splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:           getEnv("KAFKA_TOPIC", "cod-order-confirmations"),
		ConfirmEventStream:   getEnv("CONFIRM_EVENT_STREAM", "cod_confirm:confirm_events"),
		ConfirmEventGroup:    getEnv("CONFIRM_EVENT_GROUP", "cod-confirm-relay-group"),
		ConfirmEventConsumer: getEnv("CONFIRM_EVENT_CONSUMER", "cod-confirm-relay-1"),
		TokenRateLimit:       60,
		TokenRateWindow:      time.Minute,
		OrderExpiry:          48 * time.Hour,
	}

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	rateLimit, err := getEnvInt("TOKEN_RATE_LIMIT", cfg.TokenRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid TOKEN_RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("TOKEN_RATE_LIMIT must be > 0")
	}
	cfg.TokenRateLimit = rateLimit

	rateWindowSec, err := getEnvInt("TOKEN_RATE_WINDOW_SEC", int(cfg.TokenRateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid TOKEN_RATE_WINDOW_SEC: %w", err)
	}
	if rateWindowSec <= 0 {
		return AppConfig{}, fmt.Errorf("TOKEN_RATE_WINDOW_SEC must be > 0")
	}
	cfg.TokenRateWindow = time.Duration(rateWindowSec) * time.Second

	expiryHour, err := getEnvInt("ORDER_EXPIRY_HOUR", int(cfg.OrderExpiry.Hours()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid ORDER_EXPIRY_HOUR: %w", err)
	}
	if expiryHour <= 0 {
		return AppConfig{}, fmt.Errorf("ORDER_EXPIRY_HOUR must be > 0")
	}
	cfg.OrderExpiry = time.Duration(expiryHour) * time.Hour

	if len(cfg.KafkaBrokers) == 0 {
		return AppConfig{}, fmt.Errorf("KAFKA_BROKERS must not be empty")
	}
	if cfg.KafkaTopic == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_TOPIC must not be empty")
	}
	if cfg.ConfirmEventStream == "" {
		return AppConfig{}, fmt.Errorf("CONFIRM_EVENT_STREAM must not be empty")
	}
	if cfg.ConfirmEventGroup == "" {
		return AppConfig{}, fmt.Errorf("CONFIRM_EVENT_GROUP must not be empty")
	}
	if cfg.ConfirmEventConsumer == "" {
		return AppConfig{}, fmt.Errorf("CONFIRM_EVENT_CONSUMER must not be empty")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
