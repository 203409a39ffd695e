package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-landing-pages/config"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/helpers"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/mailer"
)

// The email worker drains the contact-email queue filled by the API.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env, cfg.LogLevel)
	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, 16)
	if err != nil {
		log.Fatalf("amqp consumer: %v", err)
	}
	defer consumer.Close()

	sender := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	err = consumer.Run(ctx, func(ctx context.Context, body []byte) helpers.Outcome {
		job, err := mailer.Process(ctx, sender, body)
		switch {
		case errors.Is(err, mailer.ErrInvalidJob):
			logger.WithError(err).Warn("dropping bad email job")
			return helpers.Drop
		case err != nil:
			logger.WithError(err).WithField("to", job.To).Warn("send failed, requeueing")
			return helpers.Requeue
		}
		logger.WithField("to", job.To).WithField("subject", job.Subject).Info("email sent")
		return helpers.Ack
	})
	if err != nil {
		logger.WithError(err).Error("consumer stopped")
	}
	logger.Info("email worker exited")
}
