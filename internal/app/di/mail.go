package di

import (
	"fmt"
	"log/slog"

	"expense_tracker/internal/feature/auth/usecase"
	"expense_tracker/internal/platform/config"
	"expense_tracker/internal/platform/mail"
)

// NewMailer selects the mail transport named by cfg.MailTransport.
// The returned close function releases transport resources and is never nil.
func NewMailer(cfg *config.Config) (usecase.Mailer, func() error, error) {
	noop := func() error { return nil }

	switch cfg.MailTransport {
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, noop, fmt.Errorf("SMTP_HOST is required for the smtp mail transport")
		}
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			FromName: cfg.MailFromName,
		}), noop, nil
	case "kafka":
		if cfg.KafkaBroker == "" {
			return nil, noop, fmt.Errorf("KAFKA_BROKER is required for the kafka mail transport")
		}
		sender := mail.NewKafkaSender(mail.KafkaConfig{
			Broker:   cfg.KafkaBroker,
			Topic:    cfg.KafkaMailTopic,
			Username: cfg.KafkaUsername,
			Password: cfg.KafkaPassword,
			From:     cfg.MailFrom,
			FromName: cfg.MailFromName,
		})
		return sender, sender.Close, nil
	case "log", "":
		slog.Warn("mail transport is log; emails are written to the log and not delivered")
		return mail.NewLogSender(slog.Default()), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown MAIL_TRANSPORT %q", cfg.MailTransport)
	}
}
