package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/placechat/internal/domain/intent"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/config"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/placechat/internal/providers/llm"
	"github.com/GriffinCanCode/placechat/internal/providers/maps"
	"github.com/GriffinCanCode/placechat/internal/shared/geo"
	"github.com/GriffinCanCode/placechat/internal/shared/id"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

// Turn outcome labels, used in logs and the chat_turns_total metric
const (
	OutcomeCompleted      = "completed"
	OutcomeSearchDegraded = "search_degraded"
	OutcomeSearchFailed   = "search_failed"
	OutcomeClientGone     = "client_gone"
	OutcomeInvalid        = "invalid"
	OutcomeInternalError  = "internal_error"
)

const (
	searchFailedMessage  = "Place search failed. Please try again."
	internalErrorMessage = "Something went wrong while answering. Please try again."
)

// ErrNoUserMessage is returned when the history holds no user message
var ErrNoUserMessage = errors.New("conversation has no user message")

// IntentExtractor turns an utterance into search parameters. It must not fail.
type IntentExtractor interface {
	Extract(ctx context.Context, utterance string) types.LocationIntent
}

// PlaceSearcher runs a text search
type PlaceSearcher interface {
	Search(ctx context.Context, query string, opts maps.SearchOptions) types.Outcome[maps.SearchResult]
}

// Narrator streams a completion token by token
type Narrator interface {
	StreamChat(ctx context.Context, req llm.Request, onToken llm.TokenHandler) (llm.Usage, error)
}

// Turn is one inbound chat request
type Turn struct {
	Messages []types.ChatMessage
	Origin   *types.LatLng
	Language string
}

// Summary describes how a turn went
type Summary struct {
	TurnID     id.TurnID
	Intent     types.LocationIntent
	PlaceCount int
	Narrated   bool
	Deltas     int
	Outcome    string
	Duration   time.Duration
}

// Options tunes the narration and search stages
type Options struct {
	NarrationTimeout     time.Duration
	NarrationMaxTokens   int
	NarrationTemperature float64
	SearchRadius         int
}

// OptionsFromConfig reads orchestrator options from the service configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		NarrationTimeout:     cfg.LLM.NarrationTimeout,
		NarrationMaxTokens:   cfg.LLM.NarrationMaxTokens,
		NarrationTemperature: cfg.LLM.NarrationTemperature,
		SearchRadius:         cfg.Maps.Radius,
	}
}

// Deps are the collaborators of an Orchestrator. Tracer, Logger and Metrics
// may be nil.
type Deps struct {
	Intents  IntentExtractor
	Places   PlaceSearcher
	Narrator Narrator
	Prompts  *intent.PromptPack
	Tracer   *tracing.Tracer
	Logger   *zap.Logger
	Metrics  *monitoring.Metrics
}

// Orchestrator sequences one chat turn: extract, search, emit places,
// narrate, terminate. It holds no per-turn state and is safe for concurrent use.
type Orchestrator struct {
	intents  IntentExtractor
	places   PlaceSearcher
	narrator Narrator
	prompts  *intent.PromptPack
	opts     Options
	tracer   *tracing.Tracer
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// New creates an orchestrator
func New(deps Deps, opts Options) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Prompts == nil {
		deps.Prompts = intent.DefaultPromptPack()
	}
	if opts.NarrationTimeout <= 0 {
		opts.NarrationTimeout = 10 * time.Second
	}
	if opts.NarrationMaxTokens <= 0 {
		opts.NarrationMaxTokens = 150
	}
	return &Orchestrator{
		intents:  deps.Intents,
		places:   deps.Places,
		narrator: deps.Narrator,
		prompts:  deps.Prompts,
		opts:     opts,
		tracer:   deps.Tracer,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}
}

// Run executes one turn, writing events to emit in order. A turn without a
// user message fails with ErrNoUserMessage before anything is emitted. The
// only other error is an emitter failure, which aborts the turn.
func (o *Orchestrator) Run(ctx context.Context, turn Turn, emit Emitter) (summary Summary, err error) {
	start := time.Now()
	summary.TurnID = id.NewTurnID()
	logger := o.logger.With(zap.String("turn_id", summary.TurnID.String()))

	utterance, ok := types.LastUserMessage(turn.Messages)
	if !ok {
		summary.Outcome = OutcomeInvalid
		o.metrics.RecordChatTurn(summary.Outcome, time.Since(start))
		return summary, ErrNoUserMessage
	}

	span, ctx := o.tracer.StartSpan(ctx, "chat.turn")
	span.SetTag("turn_id", summary.TurnID.String())

	out := &recordingEmitter{next: emit, metrics: o.metrics}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("chat turn panicked", zap.Any("panic", r), zap.Stack("stack"))
			summary.Outcome = OutcomeInternalError
			err = nil
			if emitErr := out.Emit(ErrorNotice(internalErrorMessage)); emitErr == nil {
				err = out.Emit(End())
			} else {
				err = emitErr
			}
		}
		summary.Duration = time.Since(start)
		span.SetTag("outcome", summary.Outcome)
		span.End(err)
		o.metrics.RecordChatTurn(summary.Outcome, summary.Duration)
		logger.Info("chat turn finished",
			zap.String("outcome", summary.Outcome),
			zap.String("query", summary.Intent.FormattedQuery),
			zap.Int("places", summary.PlaceCount),
			zap.Bool("narrated", summary.Narrated),
			zap.Int("deltas", summary.Deltas),
			zap.Duration("duration", summary.Duration),
		)
	}()

	summary.Intent = o.extract(ctx, utterance)

	result, stop := o.search(ctx, summary.Intent, turn, out, logger)
	if stop != "" {
		summary.Outcome = stop
		return summary, out.err
	}
	summary.PlaceCount = len(result.Results)

	if len(result.Results) > 0 {
		if err := out.Emit(Places(result.Results)); err != nil {
			summary.Outcome = OutcomeClientGone
			return summary, err
		}
	}

	narrated, err := o.narrate(ctx, utterance, result.Results, out, logger)
	summary.Narrated = narrated
	summary.Deltas = out.deltas
	if err != nil {
		summary.Outcome = OutcomeClientGone
		return summary, err
	}

	if err := out.Emit(End()); err != nil {
		summary.Outcome = OutcomeClientGone
		return summary, err
	}
	summary.Outcome = OutcomeCompleted
	return summary, nil
}

func (o *Orchestrator) extract(ctx context.Context, utterance string) types.LocationIntent {
	span, ctx := o.tracer.StartSpan(ctx, "chat.intent")
	li := o.intents.Extract(ctx, utterance)
	span.SetTag("formatted_query", li.FormattedQuery)
	span.End(nil)
	return li
}

// search returns a non-empty outcome label when the turn must stop
func (o *Orchestrator) search(ctx context.Context, li types.LocationIntent, turn Turn, out *recordingEmitter, logger *zap.Logger) (maps.SearchResult, string) {
	span, ctx := o.tracer.StartSpan(ctx, "chat.search")

	// formatted_query already carries the location text, so only the
	// caller's own position is passed on as a proximity bias.
	opts := maps.SearchOptions{
		Origin:   turn.Origin,
		Language: turn.Language,
	}
	if turn.Origin != nil {
		opts.Location = geo.FormatLatLng(*turn.Origin)
		opts.Radius = o.opts.SearchRadius
	}

	res := o.places.Search(ctx, li.FormattedQuery, opts)
	span.SetTag("outcome", res.Kind.String())
	span.End(res.Err)

	switch res.Kind {
	case types.OutcomeOK:
		return res.Value, ""
	case types.OutcomeDegraded:
		logger.Warn("place search degraded", zap.String("reason", res.Reason))
		if out.Emit(ErrorNotice(res.Reason)) != nil {
			return res.Value, OutcomeClientGone
		}
		return res.Value, OutcomeSearchDegraded
	default:
		logger.Error("place search failed", zap.Error(res.Err))
		if out.Emit(ErrorNotice(searchFailedMessage)) != nil {
			return res.Value, OutcomeClientGone
		}
		return res.Value, OutcomeSearchFailed
	}
}

// narrate streams the answer under a hard deadline. Narration failures are
// swallowed; the returned error is an emitter failure or caller cancellation.
func (o *Orchestrator) narrate(ctx context.Context, utterance string, places []types.PlaceRecord, out *recordingEmitter, logger *zap.Logger) (bool, error) {
	span, ctx := o.tracer.StartSpan(ctx, "chat.narrate")
	nctx, cancel := context.WithTimeout(ctx, o.opts.NarrationTimeout)
	defer cancel()

	temperature := o.opts.NarrationTemperature
	req := llm.Request{
		Messages:    o.prompts.NarrationMessages(utterance, Digest(places, DigestSize)),
		MaxTokens:   o.opts.NarrationMaxTokens,
		Temperature: &temperature,
	}

	_, err := o.narrator.StreamChat(nctx, req, func(delta string) error {
		if delta == "" {
			return nil // would read as the end marker
		}
		return out.Emit(Content(delta))
	})
	span.SetTag("deltas", fmt.Sprint(out.deltas))
	span.End(err)

	if out.err != nil {
		return out.deltas > 0, out.err
	}
	if ctx.Err() != nil {
		return out.deltas > 0, ctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("narration timed out", zap.Duration("timeout", o.opts.NarrationTimeout), zap.Int("deltas", out.deltas))
		} else {
			logger.Warn("narration failed", zap.Error(err))
		}
	}
	return out.deltas > 0, nil
}

// recordingEmitter counts events and remembers the first write failure.
// After a failure every Emit returns that error.
type recordingEmitter struct {
	next    Emitter
	metrics *monitoring.Metrics
	deltas  int
	err     error
}

func (r *recordingEmitter) Emit(e Event) error {
	if r.err != nil {
		return r.err
	}
	if err := r.next.Emit(e); err != nil {
		r.err = fmt.Errorf("emit %s: %w", e.Kind, err)
		return r.err
	}
	if e.Kind == KindContent {
		r.deltas++
	}
	r.metrics.RecordStreamEvent(e.Kind.String())
	return nil
}
