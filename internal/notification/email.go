package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Sender отправка одного письма
type Sender interface {
	Send(to string, subject string, body string) error
}

// SMTPSender отправляет письма через SMTP, авторизация только при заданном логине
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPSender создает отправителя
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	host = strings.TrimSpace(host)
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@salon.local"
	}

	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		auth: auth,
	}
}

func (s *SMTPSender) Send(to string, subject string, body string) error {
	msg := buildMessage(s.from, to, subject, body)
	return smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg))
}

func buildMessage(from, to, subject, body string) string {
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from,
		to,
		subject,
		body,
	)
}

// EmailChannel письмо клиенту по email из бронирования
type EmailChannel struct {
	sender   Sender
	location *time.Location
}

// NewEmailChannel создает email-канал
func NewEmailChannel(sender Sender, location *time.Location) *EmailChannel {
	return &EmailChannel{sender: sender, location: location}
}

func (c *EmailChannel) Name() string { return "email" }

// Send отправляет письмо; net/smtp не принимает контекст, поэтому отмена
// прерывает только ожидание результата
func (c *EmailChannel) Send(ctx context.Context, event domain.NotificationEvent) error {
	to := strings.TrimSpace(event.Booking.CustomerEmail)
	if to == "" {
		return fmt.Errorf("notification: booking %s has no customer email", event.Booking.ID)
	}

	subject, body, err := renderMessage(event, c.location)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- c.sender.Send(to, subject, body)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
