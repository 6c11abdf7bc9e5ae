package mail

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/neptunetech/storefront/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type sentMessage struct {
	from string
	to   []string
	raw  string
}

type fakeSendCloser struct {
	sent    *[]sentMessage
	sendErr error
	closed  bool
}

func (f *fakeSendCloser) Send(from string, to []string, msg io.WriterTo) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return err
	}
	*f.sent = append(*f.sent, sentMessage{from: from, to: to, raw: buf.String()})
	return nil
}

func (f *fakeSendCloser) Close() error {
	f.closed = true
	return nil
}

type fakeDialer struct {
	dialErr error
	sc      *fakeSendCloser
}

func (d *fakeDialer) Dial() (gomail.SendCloser, error) {
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.sc, nil
}

func newTestMailer(sendErr, dialErr error) (*SMTPMailer, *fakeDialer, *[]sentMessage) {
	sent := &[]sentMessage{}
	d := &fakeDialer{dialErr: dialErr, sc: &fakeSendCloser{sent: sent, sendErr: sendErr}}
	return NewMailer(d, "shop@example.com", "Storefront", "https://shop.test"), d, sent
}

func TestLinks(t *testing.T) {
	m, _, _ := newTestMailer(nil, nil)
	assert.Equal(t, "https://shop.test/auth/email-verification?token=abc", m.verificationLink("abc"))
	assert.Equal(t, "https://shop.test/auth/new-password?token=abc", m.resetLink("abc"))
}

func TestSendVerificationEmail(t *testing.T) {
	m, d, sent := newTestMailer(nil, nil)

	require.NoError(t, m.SendVerificationEmail(context.Background(), "ada@example.com", "tok"))

	require.Len(t, *sent, 1)
	assert.Equal(t, "shop@example.com", (*sent)[0].from)
	assert.Equal(t, []string{"ada@example.com"}, (*sent)[0].to)
	assert.Contains(t, (*sent)[0].raw, "Subject: Verify your email")
	assert.True(t, d.sc.closed)
}

func TestSendTwoFactorTokenEmail(t *testing.T) {
	m, _, sent := newTestMailer(nil, nil)

	require.NoError(t, m.SendTwoFactorTokenEmail(context.Background(), "ada@example.com", "123456"))

	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].raw, "Subject: Two factor authentication code")
	assert.Contains(t, (*sent)[0].raw, "123456")
}

func TestSend_DialFailureIsSwallowed(t *testing.T) {
	m, _, sent := newTestMailer(nil, errors.New("connection refused"))

	assert.NoError(t, m.SendPasswordResetEmail(context.Background(), "ada@example.com", "tok"))
	assert.Empty(t, *sent)
}

func TestSend_SendFailureIsDeliveryError(t *testing.T) {
	m, d, _ := newTestMailer(errors.New("550 mailbox unavailable"), nil)

	err := m.SendVerificationEmail(context.Background(), "ada@example.com", "tok")
	assert.ErrorIs(t, err, apperrors.ErrDelivery)
	assert.True(t, d.sc.closed)
}
