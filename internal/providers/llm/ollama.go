package llm

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/placechat/internal/infrastructure/config"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/placechat/internal/providers/http/client"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

const (
	chatPath     = "/api/chat"
	maxFrameSize = 1 << 20
)

var (
	// ErrEmptyReply is returned when a non-streaming call yields no content
	ErrEmptyReply = errors.New("llm returned an empty reply")
)

// TokenHandler receives each content delta in arrival order. Returning an
// error stops the stream.
type TokenHandler func(delta string) error

// Client talks to an Ollama-compatible /api/chat endpoint
type Client struct {
	http    *client.Client
	model   string
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// New creates a client from the LLM section of the configuration. Deadlines
// are carried by the request context.
func New(cfg config.LLMConfig, logger *zap.Logger, metrics *monitoring.Metrics) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http: client.New(client.Options{
			Name:     "ollama",
			BaseURL:  strings.TrimRight(cfg.BaseURL, "/"),
			RetryMax: 1,
			Breaker: resilience.Settings{
				ReadyToTrip: func(c resilience.Counts) bool {
					return c.ConsecutiveFailures >= 5
				},
			},
			Logger:  logger,
			Metrics: metrics,
		}),
		model:   cfg.Model,
		logger:  logger.Named("llm"),
		metrics: metrics,
	}
}

func (c *Client) Model() string {
	return c.model
}

// Breaker exposes the upstream circuit breaker
func (c *Client) Breaker() *resilience.Breaker {
	return c.http.Breaker()
}

// Chat performs a non-streaming completion and returns the reply content
func (c *Client) Chat(ctx context.Context, req Request) (string, error) {
	timer := monitoring.NewTimer(c.metrics, "ollama", "chat")

	resp, err := c.http.Execute(ctx, http.MethodPost, chatPath, func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").
			SetBody(c.buildRequest(req, false))
	})
	if err != nil {
		timer.Stop(types.OutcomeFatal.String())
		return "", fmt.Errorf("llm chat: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		timer.Stop(types.OutcomeFatal.String())
		return "", statusError(resp.StatusCode(), resp.Body())
	}

	var frame chatFrame
	if err := sonic.Unmarshal(resp.Body(), &frame); err != nil {
		timer.Stop(types.OutcomeFatal.String())
		return "", fmt.Errorf("llm chat: decode reply: %w", err)
	}
	if frame.Error != "" {
		timer.Stop(types.OutcomeFatal.String())
		return "", fmt.Errorf("llm chat: %s", frame.Error)
	}
	timer.Stop(types.OutcomeOK.String())

	content := strings.TrimSpace(frame.Message.Content)
	if content == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}

// StreamChat performs a streaming completion. The server sends one JSON
// frame per line; frames that do not decode are skipped. The stream ends at
// the first frame with done=true or when the body closes.
func (c *Client) StreamChat(ctx context.Context, req Request, onToken TokenHandler) (Usage, error) {
	timer := monitoring.NewTimer(c.metrics, "ollama", "chat_stream")

	resp, err := c.http.Execute(ctx, http.MethodPost, chatPath, func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/x-ndjson").
			SetBody(c.buildRequest(req, true)).
			SetDoNotParseResponse(true)
	})
	if err != nil {
		timer.Stop(types.OutcomeFatal.String())
		return Usage{}, fmt.Errorf("llm stream: %w", err)
	}

	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		timer.Stop(types.OutcomeFatal.String())
		data, _ := io.ReadAll(io.LimitReader(body, 4096))
		return Usage{}, statusError(resp.StatusCode(), data)
	}

	usage, err := c.readFrames(ctx, body, onToken)
	if err != nil {
		timer.Stop(types.OutcomeFatal.String())
		return usage, err
	}
	timer.Stop(types.OutcomeOK.String())
	return usage, nil
}

func (c *Client) readFrames(ctx context.Context, body io.Reader, onToken TokenHandler) (Usage, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var frame chatFrame
		if err := sonic.Unmarshal(line, &frame); err != nil {
			c.metrics.IncMalformedFrames()
			c.logger.Debug("skipping malformed stream frame", zap.Int("bytes", len(line)), zap.Error(err))
			continue
		}
		if frame.Error != "" {
			return Usage{}, fmt.Errorf("llm stream: %s", frame.Error)
		}
		if frame.Message.Content != "" {
			if err := onToken(frame.Message.Content); err != nil {
				return Usage{}, err
			}
		}
		if frame.Done {
			return frame.usage(), nil
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return Usage{}, ctx.Err()
		}
		return Usage{}, fmt.Errorf("llm stream: read: %w", err)
	}
	if ctx.Err() != nil {
		return Usage{}, ctx.Err()
	}
	return Usage{}, nil
}

func (c *Client) buildRequest(req Request, stream bool) chatRequest {
	out := chatRequest{
		Model:    c.model,
		Messages: req.Messages,
		Stream:   stream,
		Format:   req.Format,
	}
	if req.MaxTokens > 0 || req.Temperature != nil {
		out.Options = &chatOptions{
			NumPredict:  req.MaxTokens,
			Temperature: req.Temperature,
		}
	}
	return out
}

func statusError(status int, body []byte) error {
	var frame chatFrame
	if err := sonic.Unmarshal(body, &frame); err == nil && frame.Error != "" {
		return fmt.Errorf("llm returned %d: %s", status, frame.Error)
	}
	return fmt.Errorf("llm returned %d", status)
}
