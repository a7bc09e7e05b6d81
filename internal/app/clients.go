package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
	"github.com/yungbote/shortcraft-backend/internal/platform/openai"
	"github.com/yungbote/shortcraft-backend/internal/realtime/bus"
)

type Clients struct {
	OpenAI openai.Client
	Events bus.Bus
	// Redis is nil when events stay in process.
	Redis goredis.UniversalClient
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	ai, err := openai.NewClient(cfg.OpenAI, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	if cfg.Redis.Addr == "" {
		log.Info("REDIS_ADDR not set; artifact events stay in process")
		return Clients{OpenAI: ai, Events: bus.NewMemoryBus()}, nil
	}
	events, rdb, err := bus.NewRedisBus(cfg.Redis, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis bus: %w", err)
	}
	return Clients{OpenAI: ai, Events: events, Redis: rdb}, nil
}

func (c Clients) Close() {
	if c.Events != nil {
		_ = c.Events.Close()
	}
}
