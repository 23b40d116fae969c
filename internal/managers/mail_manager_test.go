package managers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starter-server/internal/config"
	"starter-server/internal/schemas"
)

type sentMail struct {
	to, subject, html, text string
}

type recordingTransport struct {
	sent []sentMail
	err  error
}

func (t *recordingTransport) Send(_ context.Context, to, subject, html, text string) error {
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, sentMail{to, subject, html, text})
	return nil
}

func newTestMailManager(transport MailTransport) *MailManager {
	mm := NewMailManager(&config.Config{AppName: "Starter", Environment: config.EnvTest}).(*MailManager)
	mm.Transport = transport
	return mm
}

func TestMailManagerRendersLinks(t *testing.T) {
	transport := &recordingTransport{}
	mm := newTestMailManager(transport)
	recipient := &schemas.User{Name: "A", Email: "a@x.com"}
	ctx := context.Background()

	require.NoError(t, mm.SendWelcomeMail(ctx, recipient))
	require.NoError(t, mm.SendVerifyEmailMail(ctx, recipient, "http://fe.test/auth/verify-email?token=abc&email=a%40x.com"))
	require.NoError(t, mm.SendPasswordResetMail(ctx, recipient, "http://fe.test/auth/reset-password?token=def&email=a%40x.com"))

	require.Len(t, transport.sent, 3)
	assert.Equal(t, "a@x.com", transport.sent[0].to)
	assert.Equal(t, "Welcome to Starter", transport.sent[0].subject)
	assert.Contains(t, transport.sent[1].text, "token=abc")
	assert.Equal(t, "Reset your password", transport.sent[2].subject)
	assert.Contains(t, transport.sent[2].text, "token=def")
}

func TestMailManagerPropagatesTransportErrors(t *testing.T) {
	mm := newTestMailManager(&recordingTransport{err: errors.New("smtp down")})

	err := mm.SendWelcomeMail(context.Background(), &schemas.User{Name: "A", Email: "a@x.com"})
	assert.EqualError(t, err, "smtp down")
}

func TestNewMailManagerOnlyLogsOutsideProduction(t *testing.T) {
	mm := NewMailManager(&config.Config{Environment: config.EnvDevelopment, Mail: config.MailConfig{Driver: config.MailDriverSMTP}}).(*MailManager)
	assert.IsType(t, &LogTransport{}, mm.Transport)

	mm = NewMailManager(&config.Config{Environment: config.EnvProduction, Mail: config.MailConfig{Driver: config.MailDriverSMTP, SMTPHost: "localhost"}}).(*MailManager)
	assert.IsType(t, &SMTPTransport{}, mm.Transport)
}
