package main

import (
	"log"

	dispatch "fleet-dispatch/cmd/dispatch-service"
	"fleet-dispatch/internal/common/config"
	"fleet-dispatch/internal/common/db"
	"fleet-dispatch/internal/common/logger"
	"fleet-dispatch/internal/common/rmq"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	cfg.Print()

	pg, err := db.NewPostgres(
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pg.Close()

	if err := pg.RunMigrations("migrations"); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// Notifications degrade to websocket-only when RabbitMQ is down;
	// the service itself still starts.
	mq, err := rmq.NewRabbitMQ(
		cfg.RabbitMQ.Host, cfg.RabbitMQ.Port,
		cfg.RabbitMQ.User, cfg.RabbitMQ.Password,
	)
	if err != nil {
		logger.Warn("rmq_unavailable", "Starting without RabbitMQ notifications", "", "", err.Error())
		mq = nil
	} else {
		defer mq.Close()
	}

	if err := dispatch.Run(cfg, pg.Conn, mq); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
