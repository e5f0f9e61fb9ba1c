package intent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/placechat/internal/infrastructure/config"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/placechat/internal/providers/llm"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

// Fallback reasons, used as metric labels
const (
	ReasonTimeout   = "timeout"
	ReasonTransport = "transport"
	ReasonMalformed = "malformed"
	ReasonSchema    = "schema"
	ReasonEmpty     = "empty"
)

// firstObject finds the first flat JSON object in a reply wrapped in prose
var firstObject = regexp.MustCompile(`\{[^{}]*\}`)

// Completer is the non-streaming LLM call the extractor needs
type Completer interface {
	Chat(ctx context.Context, req llm.Request) (string, error)
}

// Extractor turns an utterance into a LocationIntent with one bounded LLM call
type Extractor struct {
	llm       Completer
	prompts   *PromptPack
	schema    *jsonschema.Schema
	budget    time.Duration
	maxTokens int
	logger    *zap.Logger
	metrics   *monitoring.Metrics
}

// NewExtractor builds an extractor. prompts may be nil for the built-in pack.
func NewExtractor(completer Completer, cfg config.LLMConfig, prompts *PromptPack, logger *zap.Logger, metrics *monitoring.Metrics) (*Extractor, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	if prompts == nil {
		prompts = DefaultPromptPack()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		llm:       completer,
		prompts:   prompts,
		schema:    schema,
		budget:    cfg.IntentTimeout,
		maxTokens: cfg.IntentMaxTokens,
		logger:    logger.Named("intent"),
		metrics:   metrics,
	}, nil
}

type extractError struct {
	reason string
	err    error
}

func (e *extractError) Error() string { return e.reason + ": " + e.err.Error() }
func (e *extractError) Unwrap() error { return e.err }

// Extract never fails: on timeout or any error it returns the literal
// fallback intent for the utterance.
func (e *Extractor) Extract(ctx context.Context, utterance string) types.LocationIntent {
	utterance = strings.TrimSpace(utterance)

	intent, err := resilience.Race(ctx, e.budget, func(ctx context.Context) (types.LocationIntent, error) {
		return e.extract(ctx, utterance)
	})
	if err == nil {
		e.logger.Debug("intent extracted",
			zap.String("query", intent.Query),
			zap.String("location", intent.Location),
			zap.String("formatted_query", intent.FormattedQuery),
		)
		return intent
	}

	reason := ReasonTransport
	var xerr *extractError
	switch {
	case errors.Is(err, resilience.ErrDeadlineExceeded):
		reason = ReasonTimeout
	case errors.As(err, &xerr):
		reason = xerr.reason
	}
	e.metrics.RecordIntentFallback(reason)
	e.logger.Debug("intent extraction fell back to raw query", zap.String("reason", reason), zap.Error(err))

	return types.FallbackIntent(utterance)
}

func (e *Extractor) extract(ctx context.Context, utterance string) (types.LocationIntent, error) {
	reply, err := e.llm.Chat(ctx, llm.Request{
		Messages:  e.prompts.IntentMessages(utterance),
		Format:    "json",
		MaxTokens: e.maxTokens,
	})
	if err != nil {
		return types.LocationIntent{}, &extractError{reason: ReasonTransport, err: err}
	}
	return Parse(e.schema, reply, utterance)
}

// Parse reads an LLM reply into an intent and fills missing fields
func Parse(schema *jsonschema.Schema, reply, utterance string) (types.LocationIntent, error) {
	raw := strings.TrimSpace(reply)
	if raw == "" {
		return types.LocationIntent{}, &extractError{reason: ReasonEmpty, err: errors.New("empty reply")}
	}

	obj, err := validate(schema, raw)
	if err != nil {
		// small models often wrap the object in prose or code fences
		match := firstObject.FindString(raw)
		if match == "" {
			return types.LocationIntent{}, &extractError{reason: ReasonMalformed, err: err}
		}
		if obj, err = validate(schema, match); err != nil {
			return types.LocationIntent{}, &extractError{reason: ReasonSchema, err: err}
		}
	}

	intent := types.LocationIntent{
		Query:          stringField(obj, "query"),
		Location:       stringField(obj, "location"),
		FormattedQuery: stringField(obj, "formatted_query"),
	}
	if intent.Query == "" {
		intent.Query = utterance
	}
	if intent.FormattedQuery == "" {
		intent.FormattedQuery = intent.Query
	}
	if intent.Location == "" {
		intent.Location = types.NearMe
	}
	if intent.Query == "" {
		return types.LocationIntent{}, &extractError{reason: ReasonEmpty, err: fmt.Errorf("no query in %q", raw)}
	}
	return intent, nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}
