// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"net/url"
	"strings"
	"time"
)

func NewActivationEmail(baseURL, to, token string, ttl time.Duration) NotificationData {
	return NotificationData{
		To:       to,
		Subject:  "Activate your account",
		Template: ActivationTemplate,
		Variables: map[string]any{
			"activation_link":    link(baseURL, "/activate", token),
			"expiration_minutes": int(ttl.Minutes()),
		},
	}
}

func NewPasswordResetEmail(baseURL, to, token string, ttl time.Duration) NotificationData {
	return NotificationData{
		To:       to,
		Subject:  "Reset your password",
		Template: PasswordResetTemplate,
		Variables: map[string]any{
			"reset_link":       link(baseURL, "/reset_password", token),
			"expiration_hours": int(ttl.Hours()),
		},
	}
}

func link(baseURL, path, token string) string {
	return strings.TrimRight(baseURL, "/") + path + "?token=" + url.QueryEscape(token)
}
