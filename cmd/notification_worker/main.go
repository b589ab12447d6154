package main

import (
	"context"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/go-social-graph/config"
	"github.com/oksasatya/go-social-graph/internal/application"
	"github.com/oksasatya/go-social-graph/internal/container"
	pginfra "github.com/oksasatya/go-social-graph/internal/infrastructure/postgres"
	"github.com/oksasatya/go-social-graph/internal/worker"
	"github.com/oksasatya/go-social-graph/pkg/helpers"
	"github.com/oksasatya/go-social-graph/pkg/mailer"
)

const prefetch = 16

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if cfg.RabbitMQURL == "" {
		log.Fatal("RabbitMQ not configured")
	}
	logger := helpers.NewLogger(cfg.AppName+"-worker", cfg.Env, cfg.LogLevel)
	for _, w := range cfg.Warnings {
		logger.Warn("config: " + w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pginfra.NewPool(ctx, pginfra.OptionsFromConfig(cfg, cfg.AppName+"-worker"))
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users, mongoClient, err := container.OpenUserStore(ctx, cfg, pool)
	if err != nil {
		log.Fatalf("failed to open user store: %v", err)
	}
	if mongoClient != nil {
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	eventsCh, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = eventsCh.Close() }()
	emailCh, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = emailCh.Close() }()

	events, err := helpers.Consume(eventsCh, cfg.RabbitMQEventsQueue, prefetch)
	if err != nil {
		log.Fatalf("consume %s: %v", cfg.RabbitMQEventsQueue, err)
	}
	emails, err := helpers.Consume(emailCh, cfg.RabbitMQEmailQueue, prefetch)
	if err != nil {
		log.Fatalf("consume %s: %v", cfg.RabbitMQEmailQueue, err)
	}

	emailPub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		log.Fatalf("email publisher: %v", err)
	}
	defer emailPub.Close()
	emailPub.Type = "email_job"

	w := &worker.Worker{
		Notifications:   application.NewNotificationService(pginfra.NewNotificationRepository(pool), users, logger),
		EmailQueue:      emailPub,
		Logger:          logger,
		ProfileBaseURL:  cfg.ProfileBaseURL,
		MailSendEnabled: cfg.MailSendEnabled,
	}
	if cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" && cfg.MailgunSender != "" {
		w.Mail = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	} else if cfg.MailSendEnabled {
		logger.Warn("Mailgun not configured; emails will be dropped")
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.Run(ctx, cfg.RabbitMQEventsQueue, events, w.HandleEvent)
	}()
	go func() {
		defer wg.Done()
		w.Run(ctx, cfg.RabbitMQEmailQueue, emails, w.HandleEmail)
	}()

	logger.Infof("notification worker listening on queues=%s,%s", cfg.RabbitMQEventsQueue, cfg.RabbitMQEmailQueue)
	wg.Wait()
	logger.Info("notification worker stopped")
}
