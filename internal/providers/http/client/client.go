package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/placechat/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/tracing"
)

var (
	// ErrServerStatus marks a 5xx answer when the breaker records a failure
	ErrServerStatus = errors.New("upstream returned server error")

	errCallerGone = errors.New("caller cancelled the request")
)

// Options configures a Client. Zero values take the defaults in New.
type Options struct {
	Name              string
	BaseURL           string
	Timeout           time.Duration // 0 leaves deadlines to the request context
	RetryMax          int
	RetryWaitMin      time.Duration
	RetryWaitMax      time.Duration
	RequestsPerSecond float64 // <= 0 means unlimited
	UserAgent         string
	Breaker           resilience.Settings
	Logger            *zap.Logger
	Metrics           *monitoring.Metrics
}

// Client is a resty client over a retrying transport, gated by a token-bucket
// limiter and a circuit breaker. Safe for concurrent use.
type Client struct {
	name    string
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *zap.Logger
	mu      sync.RWMutex
}

// New creates a client for one upstream
func New(opts Options) *Client {
	if opts.Name == "" {
		opts.Name = "http-external"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "placechat/1.0"
	}
	if opts.RetryWaitMin == 0 {
		opts.RetryWaitMin = 200 * time.Millisecond
	}
	if opts.RetryWaitMax == 0 {
		opts.RetryWaitMax = 2 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("upstream", opts.Name))

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = opts.RetryWaitMin
	retryClient.RetryWaitMax = opts.RetryWaitMax
	retryClient.Logger = leveledLogger{logger.Sugar()}
	// hand 5xx responses back instead of a "giving up" error
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	restyClient := resty.New().
		SetTransport(&retryablehttp.RoundTripper{Client: retryClient}).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetHeader("User-Agent", opts.UserAgent)
	if opts.BaseURL != "" {
		restyClient.SetBaseURL(opts.BaseURL)
	}
	if opts.Timeout > 0 {
		restyClient.SetTimeout(opts.Timeout)
	}

	settings := opts.Breaker
	settings.IsSuccessful = upstreamHealthy(settings.IsSuccessful)
	userHook := settings.OnStateChange
	settings.OnStateChange = func(name string, from, to resilience.State) {
		logger.Warn("circuit breaker state change",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		opts.Metrics.SetBreakerState(name, int(to))
		if userHook != nil {
			userHook(name, from, to)
		}
	}

	c := &Client{
		name:    opts.Name,
		resty:   restyClient,
		breaker: resilience.New(opts.Name, settings),
		logger:  logger,
	}
	c.SetRateLimit(opts.RequestsPerSecond)
	opts.Metrics.SetBreakerState(opts.Name, int(resilience.StateClosed))
	return c
}

func (c *Client) Name() string {
	return c.name
}

// SetHeader adds a default header
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resty.SetHeader(key, value)
}

// SetRateLimit configures the outbound rate (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Request waits for the limiter and returns a request bound to ctx carrying
// the trace headers of ctx.
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	c.mu.RLock()
	limiter := c.limiter
	c.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	req := c.resty.R().SetContext(ctx)
	tracing.Inject(ctx, req.Header)
	return req, nil
}

// Execute sends one request through the breaker. build customises the
// request (query, body, parse options). Transport errors and 5xx answers
// count against the breaker; caller cancellation does not.
func (c *Client) Execute(ctx context.Context, method, url string, build func(*resty.Request)) (*resty.Response, error) {
	done, err := c.breaker.Allow()
	if err != nil {
		return nil, fmt.Errorf("%s unavailable: %w", c.name, err)
	}

	req, err := c.Request(ctx)
	if err != nil {
		done(nil)
		return nil, err
	}
	if build != nil {
		build(req)
	}

	resp, err := req.Execute(method, url)
	done(classify(ctx, resp, err))
	return resp, err
}

// Breaker exposes the circuit breaker for health reporting
func (c *Client) Breaker() *resilience.Breaker {
	return c.breaker
}

// upstreamHealthy treats caller cancellation as neutral, then defers to the
// caller's own classifier
func upstreamHealthy(accept func(error) bool) func(error) bool {
	return func(err error) bool {
		if err == nil || errors.Is(err, errCallerGone) {
			return true
		}
		return accept != nil && accept(err)
	}
}

// classify turns one exchange into the error the breaker judges
func classify(ctx context.Context, resp *resty.Response, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", errCallerGone, ctx.Err())
	}
	if err != nil {
		return err
	}
	if resp != nil && resp.StatusCode() >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %d", ErrServerStatus, resp.StatusCode())
	}
	return nil
}

// leveledLogger routes retryablehttp's logging to zap
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
