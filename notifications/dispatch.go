// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"context"
	"fmt"

	"cinema-server/commons"
)

// DispatchNotification delivers data through the provider configured in cfg.
// Callers run it on its own goroutine; failures are logged and returned but
// never retried.
func DispatchNotification(ctx context.Context, cfg commons.MailSettings, _type NotificationTypes, data NotificationData) error {
	provider := NotificationProviders(cfg.Provider)
	commons.Logger.Debugf("Dispatching notification:\n- type=%s\n- provider=%s", _type, provider)

	var err error
	switch _type {
	case Email:
		err = dispatchEmail(ctx, cfg, provider, data)
	default:
		err = fmt.Errorf("unsupported notification type: %s", _type)
	}

	if err != nil {
		commons.Logger.Errorf("Failed to dispatch notification:\n%v", err)
		return err
	}

	commons.Logger.Infof("Notification dispatched successfully:\n- type=%s\n- provider=%s", _type, provider)
	return nil
}

func dispatchEmail(ctx context.Context, cfg commons.MailSettings, provider NotificationProviders, data NotificationData) error {
	if err := data.validate(); err != nil {
		return err
	}

	switch provider {
	case SMTP:
		return SMTPClient(cfg, data)
	case AMQP:
		return AMQPClient(ctx, cfg, data)
	case Mock:
		return MockEmailClient(data)
	default:
		return fmt.Errorf("unsupported email provider: %s", provider)
	}
}

func (d NotificationData) validate() error {
	if d.To == "" {
		return fmt.Errorf("'to' field is required")
	}
	if d.Subject == "" {
		return fmt.Errorf("'subject' field is required")
	}
	if d.Template == "" {
		return fmt.Errorf("'template' field is required")
	}
	return nil
}
