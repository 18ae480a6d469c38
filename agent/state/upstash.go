package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultStoreKeyPrefix = "buildershub:call:"
	defaultStoreTTL       = 24 * time.Hour
	maxResponseSizeBytes  = 2 << 20
)

// saveScript writes ARGV[1] only if the stored call is still at version
// ARGV[2]; 0 means the key must not exist yet. ARGV[3] is the TTL in seconds.
const saveScript = `local cur = redis.call('GET', KEYS[1])
local expected = tonumber(ARGV[2])
if cur then
  if tonumber(cjson.decode(cur)['version']) ~= expected then return 0 end
elseif expected ~= 0 then
  return 0
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
  redis.call('SET', KEYS[1], ARGV[1], 'EX', ttl)
else
  redis.call('SET', KEYS[1], ARGV[1])
end
return 1`

type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	TTL     time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
}

func (c UpstashRedisConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != "" && strings.TrimSpace(c.Token) != ""
}

// StoreOption customizes UpstashRedisStore.
type StoreOption func(*UpstashRedisStore)

func WithKeyPrefix(prefix string) StoreOption {
	return func(s *UpstashRedisStore) {
		if p := strings.TrimSpace(prefix); p != "" {
			s.keyPrefix = p
		}
	}
}

func WithTTL(ttl time.Duration) StoreOption {
	return func(s *UpstashRedisStore) {
		s.ttl = ttl
	}
}

func WithHTTPClient(client *http.Client) StoreOption {
	return func(s *UpstashRedisStore) {
		if client != nil {
			s.rest.httpClient = client
		}
	}
}

// UpstashRedisStore persists calls in Upstash Redis over its REST API so a
// call can move between processes between turns.
type UpstashRedisStore struct {
	rest      restClient
	keyPrefix string
	ttl       time.Duration
}

var _ Store = (*UpstashRedisStore)(nil)

func NewUpstashRedisStore(cfg UpstashRedisConfig, opts ...StoreOption) (*UpstashRedisStore, error) {
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
		ttl = defaultStoreTTL
	}

	s := &UpstashRedisStore{
		rest: restClient{
			baseURL:    baseURL,
			token:      token,
			httpClient: &http.Client{Timeout: timeout},
		},
		keyPrefix: defaultStoreKeyPrefix,
		ttl:       ttl,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}
	return s, nil
}

func (s *UpstashRedisStore) Load(ctx context.Context, callID string) (*CallState, error) {
	key, err := s.redisKey(callID)
	if err != nil {
		return nil, err
	}

	result, err := s.rest.do(ctx, "GET", key)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, fmt.Errorf("%w: %s", ErrStateNotFound, callID)
	}

	var encoded string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return nil, fmt.Errorf("decode call payload: %w", err)
	}
	var st CallState
	if err := json.Unmarshal([]byte(encoded), &st); err != nil {
		return nil, fmt.Errorf("unmarshal call state: %w", err)
	}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("invalid call state loaded from store: %w", err)
	}
	st.loadedVersion = st.Version
	return &st, nil
}

func (s *UpstashRedisStore) Save(ctx context.Context, st *CallState) error {
	if err := prepareSave(st); err != nil {
		return err
	}
	key, err := s.redisKey(st.CallID)
	if err != nil {
		return err
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now()
	}
	st.UpdatedAt = st.UpdatedAt.UTC()

	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal call state: %w", err)
	}

	result, err := s.rest.do(ctx, "EVAL", saveScript, "1", key,
		string(payload),
		strconv.Itoa(st.loadedVersion),
		strconv.FormatInt(ttlSeconds(s.ttl), 10),
	)
	if err != nil {
		return err
	}

	var written int
	if err := json.Unmarshal(result, &written); err != nil {
		return fmt.Errorf("decode save result: %w", err)
	}
	if written != 1 {
		return fmt.Errorf("%w: %s at version %d", ErrVersionConflict, st.CallID, st.loadedVersion)
	}
	st.loadedVersion = st.Version
	return nil
}

func (s *UpstashRedisStore) Delete(ctx context.Context, callID string) error {
	key, err := s.redisKey(callID)
	if err != nil {
		return err
	}
	_, err = s.rest.do(ctx, "DEL", key)
	return err
}

func (s *UpstashRedisStore) redisKey(callID string) (string, error) {
	if strings.TrimSpace(callID) == "" {
		return "", ErrInvalidCall
	}
	return s.keyPrefix + callID, nil
}

// ttlSeconds rounds up to whole seconds; 0 disables expiry.
func ttlSeconds(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	seconds := int64(ttl / time.Second)
	if ttl%time.Second != 0 {
		seconds++
	}
	return seconds
}

// restClient posts single Redis commands to the Upstash REST endpoint.
type restClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type restResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func (c restClient) do(ctx context.Context, args ...string) (json.RawMessage, error) {
	if len(args) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("redis %s: %w", args[0], err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis %s: status=%d body=%s", args[0], resp.StatusCode, string(raw))
	}

	var parsed restResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("redis %s: %s", args[0], parsed.Error)
	}
	return bytes.TrimSpace(parsed.Result), nil
}
