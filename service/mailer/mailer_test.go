package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendRequiresConfiguration(t *testing.T) {
	m := &Mailer{}

	err := m.Send("client@example.com", "subject", "body")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP not configured")
}

func TestUnconfiguredHelpersSurfaceTheError(t *testing.T) {
	m := &Mailer{}

	assert.Error(t, m.SendBookingReceived("client@example.com", "2025-03-01", "09:00"))
	assert.Error(t, m.SendStatusUpdate("client@example.com", "confirmed", "2025-03-01", "09:00"))
	assert.Error(t, m.SendPasswordReset("owner@example.com", 1, "token"))
}
