package lib

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailMessage(t *testing.T) {
	msg, err := NewMailMessage(&SendMailInput{
		From:     "tickets@example.com",
		FromName: "Tickets",
		To:       []string{"fan@example.com"},
		Subject:  "Ticket confirmed",
		Body:     "A seat opened up for Concert.",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "fan@example.com")
	assert.Contains(t, out, "Ticket confirmed")
	assert.Contains(t, out, "A seat opened up for Concert.")
}

func TestNewMailMessageRejectsBadAddress(t *testing.T) {
	_, err := NewMailMessage(&SendMailInput{
		From: "tickets@example.com",
		To:   []string{"not an address"},
	})
	assert.Error(t, err)
}
