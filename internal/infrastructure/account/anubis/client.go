package anubis

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/toto/internal/domain/member"
	basecache "github.com/riskibarqy/toto/internal/platform/cache"
	"github.com/riskibarqy/toto/internal/platform/logging"
	"github.com/riskibarqy/toto/internal/platform/metrics"
	"github.com/riskibarqy/toto/internal/platform/resilience"
	"github.com/riskibarqy/toto/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultIntrospectPath = "/v1/auth/introspect"
	defaultTimeout        = 5 * time.Second
	maxResponseBodySize   = 1 << 20
)

var errAnubisTransient = crerr.New("anubis transient failure")

type ClientConfig struct {
	BaseURL        string
	IntrospectPath string
	AdminKey       string
	Timeout        time.Duration
	// CacheTTL keeps verified principals per token hash; zero disables caching.
	CacheTTL       time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client verifies bearer tokens against the Anubis introspection endpoint.
type Client struct {
	httpClient    *fasthttp.Client
	introspectURL string
	adminKey      string
	timeout       time.Duration
	breaker       *resilience.CircuitBreaker
	cache         *basecache.Store
	logger        *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	path := cfg.IntrospectPath
	if strings.TrimSpace(path) == "" {
		path = defaultIntrospectPath
	}

	var cache *basecache.Store
	if cfg.CacheTTL > 0 {
		cache = basecache.NewStore(cfg.CacheTTL)
	}

	return &Client{
		httpClient: &fasthttp.Client{
			Name:                     "toto-anubis-client",
			ReadTimeout:              timeout,
			WriteTimeout:             timeout,
			MaxResponseBodySize:      maxResponseBodySize,
			NoDefaultUserAgentHeader: true,
		},
		introspectURL: buildURL(cfg.BaseURL, path),
		adminKey:      strings.TrimSpace(cfg.AdminKey),
		timeout:       timeout,
		breaker:       newBreaker(cfg.CircuitBreaker),
		cache:         cache,
		logger:        logger,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (member.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return member.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	cacheKey := basecache.Key("principal", hashToken(token))
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, cacheKey); ok {
			if principal, ok := cached.(member.Principal); ok {
				return principal, nil
			}
		}
	}

	var principal member.Principal
	call := func() error {
		var err error
		principal, err = c.introspect(ctx, token)
		return err
	}

	err := c.breaker.Execute(call, isCircuitFailure)
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "anubis circuit breaker rejected request", "state", c.breaker.State())
		return member.Principal{}, fmt.Errorf("%w: auth provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return member.Principal{}, err
	}

	if c.cache != nil {
		c.cache.Set(ctx, cacheKey, principal)
	}
	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (member.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return member.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.introspectURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}
	req.SetBodyRaw(encoded)

	if err := c.httpClient.DoDeadline(req, resp, requestDeadline(ctx, c.timeout)); err != nil {
		return member.Principal{}, fmt.Errorf("%w: %w: request introspection: %v", usecase.ErrDependencyUnavailable, errAnubisTransient, err)
	}

	status := resp.StatusCode()
	switch {
	case status == fasthttp.StatusUnauthorized:
		return member.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	case status == fasthttp.StatusForbidden:
		// Anubis rejected our admin key, not the caller's token.
		c.logger.ErrorContext(ctx, "anubis rejected admin key", "status_code", status)
		return member.Principal{}, fmt.Errorf("%w: auth provider rejected service credentials", usecase.ErrDependencyUnavailable)
	case status >= fasthttp.StatusInternalServerError || status == fasthttp.StatusTooManyRequests:
		c.logger.WarnContext(ctx, "anubis introspection unavailable", "status_code", status)
		return member.Principal{}, fmt.Errorf("%w: %w: status %d", usecase.ErrDependencyUnavailable, errAnubisTransient, status)
	case status != fasthttp.StatusOK:
		c.logger.WarnContext(ctx, "anubis introspection non-200", "status_code", status)
		return member.Principal{}, fmt.Errorf("anubis introspection failed with status %d", status)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(resp.Body(), &decoded); err != nil {
		return member.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}
	if !decoded.Active {
		return member.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return member.Principal{}, fmt.Errorf("invalid introspect response: user_id is empty")
	}

	return member.Principal{
		UserID: decoded.UserID,
		Email:  decoded.Email,
	}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func newBreaker(cfg resilience.CircuitBreakerConfig) *resilience.CircuitBreaker {
	cfg.Name = "anubis"
	cfg.OnStateChange = metrics.CircuitTransition
	return resilience.NewCircuitBreaker(cfg)
}
