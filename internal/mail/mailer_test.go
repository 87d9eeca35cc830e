package mail

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPasswordReset_SkipsWithoutHost(t *testing.T) {
	m := New("", 587, "", "", "noreply@example.com", nil)
	assert.NoError(t, m.SendPasswordReset("a@example.com", "123456", 15*time.Minute))
}

func TestBuild_RendersCode(t *testing.T) {
	m := New("", 587, "", "", "noreply@example.com", nil)

	msg, err := m.build("a@example.com", resetData{Code: "482913", ExpiresIn: "15m0s"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Your password reset code"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "482913")
	assert.Contains(t, buf.String(), "15m0s")
}
