package main

import (
	"log"
	"os"

	"github.com/everafter-ai/everafter/internal/config"
	"github.com/everafter-ai/everafter/internal/db"
	"github.com/everafter-ai/everafter/internal/httpapi"
	"github.com/everafter-ai/everafter/internal/store/rabbitmq"
	"github.com/everafter-ai/everafter/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	rabbit, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Fatalf("rabbit connect: %v", err)
	}
	defer rabbit.Close()

	r := httpapi.NewRouter(gdb, cfg, rds, rabbit)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
