// Package sender отправляет письма пользователям по SMTP.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/lib/smtp"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/rabbitmq"
)

const (
	WelcomeSubject = "Welcome to the Natours Family!"
	ResetSubject   = "Your password reset token (valid for only 10 minutes)"
)

// SenderService формирует и отправляет письма.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendWelcome обрабатывает сообщение из очереди приветственных писем.
func (s *SenderService) SendWelcome(body []byte) error {
	const op = "sender.SendWelcome"

	var message models.WelcomeEmail
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w: %w", op, rabbitmq.ErrUnprocessable, err)
	}
	if message.Email == "" {
		return fmt.Errorf("%s: message without recipient: %w", op, rabbitmq.ErrUnprocessable)
	}

	bodyText := fmt.Sprintf("Hi %s,\n\nWelcome to Natours, we're glad to have you!\n\nUpload a photo and tell us about yourself: %s\n",
		firstName(message.Name), message.URL)

	if err := s.sendEmail([]string{message.Email}, WelcomeSubject, bodyText); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SendPasswordReset отправляет ссылку сброса пароля.
func (s *SenderService) SendPasswordReset(_ context.Context, to, name, resetURL string) error {
	const op = "sender.SendPasswordReset"

	bodyText := fmt.Sprintf("Hi %s,\n\nForgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s.\n"+
		"If you didn't forget your password, please ignore this email!\n", firstName(name), resetURL)

	if err := s.sendEmail([]string{to}, ResetSubject, bodyText); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}

// envelopeFrom извлекает адрес из "Natours <hello@natours.io>".
func envelopeFrom(sender string) string {
	addr, err := mail.ParseAddress(sender)
	if err != nil {
		return sender
	}
	return addr.Address
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	const op = "sender.sendEmail"
	log := s.log.With(slog.String("op", op))

	sender := s.transport.GetSender()
	msg := strings.Join([]string{
		"From: " + sender,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Debug("smtp client close", sl.Err(err))
		}
	}()

	from := envelopeFrom(sender)
	if err := client.Mail(from); err != nil {
		log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	log.Info("email sent successfully", slog.Any("to", to), slog.String("subject", subject))
	return nil
}
