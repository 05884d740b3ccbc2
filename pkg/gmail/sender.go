package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	From         string
}

// Message is a plain-text email to one recipient.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Sender delivers mail through the Gmail API on behalf of one account.
type Sender struct {
	srv    *gmail.Service
	from   string
	logger *zap.Logger
}

// NewSender builds a Gmail client authorized by a long-lived refresh token.
func NewSender(ctx context.Context, cfg Config, logger *zap.Logger) (*Sender, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("gmail oauth credentials not configured")
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now(),
	}

	srv, err := gmail.NewService(ctx, option.WithTokenSource(config.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("unable to create gmail service: %w", err)
	}
	return newSender(srv, cfg.From, logger), nil
}

func newSender(srv *gmail.Service, from string, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{srv: srv, from: from, logger: logger.Named("gmail")}
}

func (s *Sender) Send(ctx context.Context, msg Message) error {
	raw, err := BuildRaw(s.from, msg, time.Now())
	if err != nil {
		return err
	}

	sent, err := s.srv.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to send message: %w", err)
	}

	s.logger.Info("message sent", zap.String("to", msg.To), zap.String("id", sent.Id))
	return nil
}

// BuildRaw renders msg as an RFC 5322 message with a UTF-8 text body.
// An empty from leaves the header for Gmail to fill in.
func BuildRaw(from string, msg Message, date time.Time) ([]byte, error) {
	if msg.To == "" {
		return nil, errors.New("recipient is required")
	}

	var h mail.Header
	h.SetDate(date)
	if from != "" {
		h.SetAddressList("From", []*mail.Address{{Address: from}})
	}
	h.SetAddressList("To", []*mail.Address{{Name: msg.ToName, Address: msg.To}})
	h.SetSubject(msg.Subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	if _, err := w.Write([]byte(msg.Body)); err != nil {
		return nil, fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close message: %w", err)
	}
	return buf.Bytes(), nil
}
