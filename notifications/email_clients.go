// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cinema-server/commons"

	amqp "github.com/rabbitmq/amqp091-go"
	"gopkg.in/gomail.v2"
)

// mockOutboxLimit bounds the mock provider's memory; older emails are
// discarded first.
const mockOutboxLimit = 100

var (
	mockMu     sync.Mutex
	mockOutbox []NotificationData
)

func MockEmailClient(data NotificationData) error {
	commons.Logger.Info("=== MOCK EMAIL NOTIFICATION ===")
	commons.Logger.Infof("To: %s", data.To)
	commons.Logger.Infof("Subject: %s", data.Subject)
	commons.Logger.Infof("Template: %s", data.Template)

	if len(data.Variables) > 0 {
		commons.Logger.Info("Variables:")
		for key, value := range data.Variables {
			commons.Logger.Infof("  %s: %v", key, value)
		}
	}

	htmlBody, err := renderTemplate(data.Template, data.Variables)
	if err != nil {
		commons.Logger.Errorf("Failed to render template: %v", err)
		return fmt.Errorf("failed to render template: %w", err)
	}
	commons.Logger.Debugf("Rendered email content:\n%s", htmlBody)

	mockMu.Lock()
	mockOutbox = append(mockOutbox, data)
	if over := len(mockOutbox) - mockOutboxLimit; over > 0 {
		mockOutbox = append(mockOutbox[:0:0], mockOutbox[over:]...)
	}
	mockMu.Unlock()

	commons.Logger.Info("=== EMAIL MOCK COMPLETE ===")
	return nil
}

// MockOutbox returns the emails delivered through the mock provider to to.
func MockOutbox(to string) []NotificationData {
	mockMu.Lock()
	defer mockMu.Unlock()

	var sent []NotificationData
	for _, d := range mockOutbox {
		if d.To == to {
			sent = append(sent, d)
		}
	}
	return sent
}

func SMTPClient(cfg commons.MailSettings, data NotificationData) error {
	commons.Logger.Debug("Sending email via SMTP")

	if cfg.Host == "" {
		return fmt.Errorf("EMAIL_HOST environment variable is not set")
	}
	if cfg.From == "" {
		return fmt.Errorf("EMAIL_FROM environment variable is not set")
	}

	htmlBody, err := renderTemplate(data.Template, data.Variables)
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	toName := ""
	if data.ToName != nil {
		toName = *data.ToName
	}

	message := gomail.NewMessage()
	message.SetHeader("From", message.FormatAddress(cfg.From, cfg.FromName))
	message.SetHeader("To", message.FormatAddress(data.To, toName))
	message.SetHeader("Subject", data.Subject)
	message.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: false,
	}

	if err := dialer.DialAndSend(message); err != nil {
		commons.Logger.Error("Failed to send email via SMTP:", err)
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}

	commons.Logger.Info("Email sent successfully via SMTP")
	return nil
}

// AMQPClient hands the email to the mail worker through a durable queue.
func AMQPClient(ctx context.Context, cfg commons.MailSettings, data NotificationData) error {
	commons.Logger.Debugf("Publishing email to queue %s", cfg.Queue)

	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	defer ch.Close()

	queue, err := DeclareEmailQueue(ch, cfg.Queue)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := ch.PublishWithContext(ctx, "", queue.Name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	commons.Logger.Info("Email published to queue")
	return nil
}

func DeclareEmailQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	queue, err := ch.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("queue declare: %w", err)
	}
	return queue, nil
}
