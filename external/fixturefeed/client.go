package fixturefeed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/toto/internal/domain/game"
	"github.com/riskibarqy/toto/internal/platform/logging"
	"github.com/riskibarqy/toto/internal/platform/metrics"
	"github.com/riskibarqy/toto/internal/platform/resilience"
	"github.com/riskibarqy/toto/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultBackoff      = time.Second
	maxResponseBodySize = 2 << 20
	maxLoggedBody       = 256
)

var (
	apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)
	errFeedTransient   = crerr.New("fixture feed transient failure")
)

type ClientConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
	// Backoff is multiplied by the attempt number between retries.
	Backoff        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client pulls fixture slates from the upstream feed.
type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	token      string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	breaker    *resilience.CircuitBreaker
	flight     resilience.Group[[]byte]
	logger     *logging.Logger
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
	backoff := cfg.Backoff
	if backoff < 0 {
		backoff = 0
	} else if backoff == 0 {
		backoff = defaultBackoff
	}

	return &Client{
		httpClient: &fasthttp.Client{
			Name:                     "toto-fixture-feed",
			ReadTimeout:              timeout,
			WriteTimeout:             timeout,
			MaxResponseBodySize:      maxResponseBodySize,
			NoDefaultUserAgentHeader: true,
		},
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:      strings.TrimSpace(cfg.Token),
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		backoff:    backoff,
		breaker:    newBreaker(cfg.CircuitBreaker),
		logger:     logger,
	}
}

// FetchSlate returns the fixtures published under ref, in feed order.
func (c *Client) FetchSlate(ctx context.Context, ref string) ([]game.Fixture, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: slate reference is required", usecase.ErrInvalidInput)
	}

	var envelope slateEnvelope
	if err := c.doJSON(ctx, "/slates/"+url.PathEscape(ref), &envelope); err != nil {
		return nil, fmt.Errorf("fetch slate ref=%s: %w", ref, err)
	}

	out := make([]game.Fixture, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		out = append(out, game.Fixture{
			League:    strings.TrimSpace(item.League),
			HomeTeam:  strings.TrimSpace(item.Home),
			AwayTeam:  strings.TrimSpace(item.Away),
			KickoffAt: item.KickoffAt,
		})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	values := url.Values{}
	values.Set("api_token", c.token)
	fullURL := c.baseURL + path + "?" + values.Encode()

	raw, _, err := c.flight.Do(path, func() ([]byte, error) {
		var body []byte
		call := func() error {
			var reqErr error
			body, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}
		err := c.breaker.Execute(call, isCircuitFailure)
		if errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "fixture feed circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: fixture feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return body, err
	})
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode fixture feed payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, status, err := c.get(ctx, fullURL)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: %w: send request: %s", usecase.ErrDependencyUnavailable, errFeedTransient, sanitizeSensitiveText(err.Error(), c.token))
		case status >= 200 && status < 300:
			return raw, nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: %w: feed status=%d body=%s", usecase.ErrDependencyUnavailable, errFeedTransient, status, abbreviateBody(raw))
		case status == fasthttp.StatusNotFound:
			return nil, fmt.Errorf("%w: slate not published upstream", usecase.ErrNotFound)
		default:
			return nil, fmt.Errorf("feed status=%d body=%s", status, abbreviateBody(raw))
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "fixture feed request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return nil, 0, err
	}

	// resp is released on return.
	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), nil
}

type slateEnvelope struct {
	Data []slateFixture `json:"data"`
}

type slateFixture struct {
	League    string     `json:"league"`
	Home      string     `json:"home"`
	Away      string     `json:"away"`
	KickoffAt *time.Time `json:"kickoff_at"`
}

func newBreaker(cfg resilience.CircuitBreakerConfig) *resilience.CircuitBreaker {
	cfg.Name = "fixture_feed"
	cfg.OnStateChange = metrics.CircuitTransition
	return resilience.NewCircuitBreaker(cfg)
}
