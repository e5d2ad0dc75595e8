package lease

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
)

const (
	defaultKeyPrefix     = "screening:analysis:lease:"
	maxResponseSizeBytes = 1 << 20
)

// releaseScript deletes the key only while it still carries our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

// Option customizes UpstashRedis.
type Option func(*UpstashRedis)

func WithKeyPrefix(prefix string) Option {
	return func(s *UpstashRedis) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *UpstashRedis) {
		s.ttl = ttl
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(s *UpstashRedis) {
		if client != nil {
			s.httpClient = client
		}
	}
}

type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	TTL     time.Duration `envconfig:"TTL" default:"5m"`
}

func (c UpstashRedisConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != "" && strings.TrimSpace(c.Token) != ""
}

// UpstashRedis holds leases in Upstash Redis through its REST API using SET NX PX.
type UpstashRedis struct {
	baseURL    string
	token      string
	httpClient *http.Client
	keyPrefix  string
	ttl        time.Duration
}

var _ contractx.Locker = (*UpstashRedis)(nil)

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func NewUpstashRedis(cfg UpstashRedisConfig, opts ...Option) (*UpstashRedis, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}

	l := &UpstashRedis{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		keyPrefix:  defaultKeyPrefix,
		ttl:        ttl,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.ttl <= 0 {
		return nil, errors.New("lease ttl must be > 0")
	}

	return l, nil
}

func (l *UpstashRedis) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	redisKey, err := l.redisKey(key)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	resp, err := l.exec(ctx, []any{"SET", redisKey, token, "NX", "PX", l.ttl.Milliseconds()})
	if err != nil {
		return nil, err
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, fmt.Errorf("%w: %s", contractx.ErrLeaseHeld, key)
	}

	return func(ctx context.Context) error {
		_, err := l.exec(ctx, []any{"EVAL", releaseScript, 1, redisKey, token})
		return err
	}, nil
}

func (l *UpstashRedis) redisKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: lease key is empty", contractx.ErrValidation)
	}
	return strings.TrimSpace(l.keyPrefix) + key, nil
}

func (l *UpstashRedis) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+l.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}
