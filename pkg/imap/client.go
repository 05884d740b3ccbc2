package imap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sort"
	"time"

	goimap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Mailbox  string
	Timeout  time.Duration
}

// Store opens authenticated sessions on one IMAP mailbox.
type Store struct {
	cfg    Config
	logger *zap.Logger
}

func NewStore(cfg Config, logger *zap.Logger) *Store {
	if cfg.Port == 0 {
		cfg.Port = 993
	}
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{cfg: cfg, logger: logger.Named("imap")}
}

// Open dials the server over TLS, logs in and selects the mailbox.
// Cancelling ctx terminates the connection.
func (s *Store) Open(ctx context.Context) (*Session, error) {
	if s.cfg.Host == "" || s.cfg.Username == "" {
		return nil, errors.New("imap credentials not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	dialer := &net.Dialer{Timeout: s.cfg.Timeout}

	c, err := client.DialWithDialerTLS(dialer, addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	c.Timeout = s.cfg.Timeout

	stop := context.AfterFunc(ctx, func() { _ = c.Terminate() })

	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		stop()
		_ = c.Logout()
		return nil, fmt.Errorf("login: %w", err)
	}

	if _, err := c.Select(s.cfg.Mailbox, false); err != nil {
		stop()
		_ = c.Logout()
		return nil, fmt.Errorf("select %s: %w", s.cfg.Mailbox, err)
	}

	s.logger.Debug("mailbox opened", zap.String("addr", addr), zap.String("mailbox", s.cfg.Mailbox))
	return &Session{c: c, stop: stop, logger: s.logger}, nil
}

type Session struct {
	c      *client.Client
	stop   func() bool
	logger *zap.Logger
}

// ListUnseen returns the UIDs of messages without the \Seen flag, oldest first.
func (s *Session) ListUnseen(ctx context.Context) ([]uint32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	criteria := goimap.NewSearchCriteria()
	criteria.WithoutFlags = []string{goimap.SeenFlag}

	uids, err := s.c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("search unseen: %w", err)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	return uids, nil
}

// Fetch downloads and parses one message. Fetching with markSeen reads
// BODY[], which makes the server set \Seen; otherwise BODY.PEEK[] is used.
func (s *Session) Fetch(ctx context.Context, uid uint32, markSeen bool) (*Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seqset := new(goimap.SeqSet)
	seqset.AddNum(uid)

	section := &goimap.BodySectionName{Peek: !markSeen}
	items := []goimap.FetchItem{goimap.FetchUid, section.FetchItem()}

	messages := make(chan *goimap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.c.UidFetch(seqset, items, messages)
	}()

	var fetched *goimap.Message
	for m := range messages {
		fetched = m
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch uid %d: %w", uid, err)
	}
	if fetched == nil {
		return nil, fmt.Errorf("uid %d not found", uid)
	}

	body := fetched.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("uid %d: server returned no body", uid)
	}

	msg, err := ParseMessage(body)
	if err != nil {
		return nil, fmt.Errorf("parse uid %d: %w", uid, err)
	}
	msg.UID = uid
	return msg, nil
}

func (s *Session) Close() error {
	s.stop()
	if err := s.c.Logout(); err != nil && !errors.Is(err, client.ErrAlreadyLoggedOut) {
		return err
	}
	return nil
}
