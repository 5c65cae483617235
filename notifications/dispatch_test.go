// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cinema-server/commons"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplates(t *testing.T) {
	body, err := renderTemplate(ActivationTemplate, map[string]any{
		"activation_link":    "http://localhost:8000/activate?token=abc",
		"expiration_minutes": 15,
	})
	require.NoError(t, err)
	assert.Contains(t, body, "http://localhost:8000/activate?token=abc")
	assert.Contains(t, body, "15 minutes")

	body, err = renderTemplate(PasswordResetTemplate, map[string]any{
		"reset_link":       "http://localhost:8000/reset_password?token=prt_1",
		"expiration_hours": 24,
	})
	require.NoError(t, err)
	assert.Contains(t, body, "reset_password?token=prt_1")
	assert.Contains(t, body, "24 hours")

	_, err = renderTemplate("missing", nil)
	assert.Error(t, err)
}

func TestDispatchMockEmailIsRecorded(t *testing.T) {
	cfg := commons.MailSettings{Provider: string(Mock)}

	err := DispatchNotification(context.Background(), cfg, Email, NotificationData{
		To:        "mock@x.com",
		Subject:   "Activate your account",
		Template:  ActivationTemplate,
		Variables: map[string]any{"activation_link": "link", "expiration_minutes": 15},
	})
	require.NoError(t, err)

	sent := MockOutbox("mock@x.com")
	require.Len(t, sent, 1)
	assert.Equal(t, "Activate your account", sent[0].Subject)
}

func TestDispatchRejectsIncompleteData(t *testing.T) {
	cfg := commons.MailSettings{Provider: string(Mock)}

	err := DispatchNotification(context.Background(), cfg, Email, NotificationData{Subject: "s", Template: ActivationTemplate})
	assert.Error(t, err)

	err = DispatchNotification(context.Background(), cfg, Email, NotificationData{To: "a@x.com", Template: ActivationTemplate})
	assert.Error(t, err)
}

func TestDispatchUnknownProvider(t *testing.T) {
	cfg := commons.MailSettings{Provider: "pigeon"}

	err := DispatchNotification(context.Background(), cfg, Email, NotificationData{
		To: "a@x.com", Subject: "s", Template: ActivationTemplate,
	})
	assert.Error(t, err)
}

func TestSMTPClientRequiresHost(t *testing.T) {
	err := SMTPClient(commons.MailSettings{From: "noreply@x.com"}, NotificationData{
		To: "a@x.com", Subject: "s", Template: ActivationTemplate,
	})
	assert.Error(t, err)
}

func TestEmailBuilders(t *testing.T) {
	activation := NewActivationEmail("http://localhost:8000/", "a@x.com", "tok en", 15*time.Minute)
	assert.Equal(t, "a@x.com", activation.To)
	assert.Equal(t, ActivationTemplate, activation.Template)
	assert.Equal(t, "http://localhost:8000/activate?token=tok+en", activation.Variables["activation_link"])
	assert.Equal(t, 15, activation.Variables["expiration_minutes"])

	reset := NewPasswordResetEmail("http://localhost:8000", "a@x.com", "prt_1", 24*time.Hour)
	assert.Equal(t, PasswordResetTemplate, reset.Template)
	assert.Equal(t, "http://localhost:8000/reset_password?token=prt_1", reset.Variables["reset_link"])
	assert.Equal(t, 24, reset.Variables["expiration_hours"])
}

func TestMockOutboxIsBounded(t *testing.T) {
	for i := 0; i < mockOutboxLimit+50; i++ {
		email := NewActivationEmail("http://localhost:8000", "flood@x.com", fmt.Sprintf("tok-%d", i), 15*time.Minute)
		require.NoError(t, MockEmailClient(email))
	}

	sent := MockOutbox("flood@x.com")
	require.Len(t, sent, mockOutboxLimit)
	assert.Contains(t, sent[len(sent)-1].Variables["activation_link"], fmt.Sprintf("tok-%d", mockOutboxLimit+49))
	assert.Contains(t, sent[0].Variables["activation_link"], "tok-50")

	mockMu.Lock()
	total := len(mockOutbox)
	mockMu.Unlock()
	assert.LessOrEqual(t, total, mockOutboxLimit)
}
