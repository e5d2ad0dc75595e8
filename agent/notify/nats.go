package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	telemetryx "github.com/tanpawarit/screening-decision/pkg/telemetry"
)

const defaultSubject = "screening.decisions"

type NATSConfig struct {
	URL            string        `envconfig:"URL"`
	Subject        string        `envconfig:"SUBJECT" default:"screening.decisions"`
	ConnectTimeout time.Duration `envconfig:"CONNECT_TIMEOUT" split_words:"true" default:"5s"`
}

func (c NATSConfig) Enabled() bool {
	return c.URL != ""
}

// Conn is satisfied by *nats.Conn.
type Conn interface {
	Publish(subject string, data []byte) error
}

// NATS publishes notifications to <subject>.<team_id>.<notification_type>.
type NATS struct {
	conn    Conn
	subject string
	closer  func()
}

var _ contractx.Notifier = (*NATS)(nil)

func NewNATS(conn Conn, subject string) *NATS {
	if subject == "" {
		subject = defaultSubject
	}
	return &NATS{conn: conn, subject: subject}
}

// DialNATS connects to the configured server and returns a ready notifier.
func DialNATS(cfg NATSConfig) (*NATS, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	conn, err := nats.Connect(url,
		nats.Name("screening-decision"),
		nats.Timeout(timeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	n := NewNATS(conn, cfg.Subject)
	n.closer = conn.Close
	return n, nil
}

func (p *NATS) Subject(n contractx.Notification) string {
	return fmt.Sprintf("%s.%s.%s", p.subject, n.TeamID, n.NotificationType)
}

func (p *NATS) Notify(_ context.Context, n contractx.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("notify: encode notification: %w", err)
	}
	err = p.conn.Publish(p.Subject(n), data)
	telemetryx.RecordNotification("nats", err == nil)
	if err != nil {
		return fmt.Errorf("notify: nats publish: %w", err)
	}
	return nil
}

func (p *NATS) Close() error {
	if p.closer != nil {
		p.closer()
	}
	return nil
}
