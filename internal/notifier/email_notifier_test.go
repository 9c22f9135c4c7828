package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type fakeMailSender struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeMailSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func testEmailConfig() config.EmailConfig {
	return config.EmailConfig{
		Enabled:    true,
		SMTPServer: "smtp.example.com",
		SMTPPort:   587,
		FromAddr:   "monitor@example.com",
		ToAddrs:    []string{"ops@example.com", "dev@example.com"},
	}
}

func TestEmailNotifier_Notify(t *testing.T) {
	sender := &fakeMailSender{}
	en := newEmailNotifier(testEmailConfig(), NewFormatter(0), sender, zerolog.Nop())

	require.NoError(t, en.Notify(context.Background(), sampleNotification()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"Website changed: Example"}, msg.GetGenHeader(mail.HeaderSubject))
	recipients, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ops@example.com", "dev@example.com"}, recipients)

	var sb strings.Builder
	_, err = msg.WriteTo(&sb)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), "+new price")
}

func TestEmailNotifier_SendFailure(t *testing.T) {
	en := newEmailNotifier(testEmailConfig(), NewFormatter(0), &fakeMailSender{err: errors.New("auth failed")}, zerolog.Nop())

	err := en.Notify(context.Background(), sampleNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp.example.com")
}

func TestEmailNotifier_InvalidRecipient(t *testing.T) {
	cfg := testEmailConfig()
	cfg.ToAddrs = []string{"not an address"}
	en := newEmailNotifier(cfg, NewFormatter(0), &fakeMailSender{}, zerolog.Nop())

	assert.Error(t, en.Notify(context.Background(), sampleNotification()))
}
