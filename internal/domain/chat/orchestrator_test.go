package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/placechat/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/placechat/internal/providers/llm"
	"github.com/GriffinCanCode/placechat/internal/providers/maps"
	"github.com/GriffinCanCode/placechat/internal/shared/id"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, utterance string) types.LocationIntent {
	return m.Called(ctx, utterance).Get(0).(types.LocationIntent)
}

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, query string, opts maps.SearchOptions) types.Outcome[maps.SearchResult] {
	return m.Called(ctx, query, opts).Get(0).(types.Outcome[maps.SearchResult])
}

// scriptedNarrator streams deltas, then optionally blocks until cancelled
type scriptedNarrator struct {
	deltas []string
	block  bool
	err    error
	req    llm.Request
}

func (n *scriptedNarrator) StreamChat(ctx context.Context, req llm.Request, onToken llm.TokenHandler) (llm.Usage, error) {
	n.req = req
	for _, d := range n.deltas {
		if err := onToken(d); err != nil {
			return llm.Usage{}, err
		}
	}
	if n.block {
		<-ctx.Done()
		return llm.Usage{}, ctx.Err()
	}
	return llm.Usage{}, n.err
}

// recorder collects emitted events
type recorder struct {
	events []Event
	failAt int
}

func (r *recorder) Emit(e Event) error {
	if r.failAt > 0 && len(r.events)+1 >= r.failAt {
		return errors.New("broken pipe")
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) kinds() []EventKind {
	out := make([]EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func rating(v float64) *float64 { return &v }

func samplePlaces(n int) []types.PlaceRecord {
	places := make([]types.PlaceRecord, n)
	for i := range places {
		places[i] = types.PlaceRecord{ID: string(rune('a' + i)), Name: "Cafe " + string(rune('A'+i)), Rating: rating(4.5)}
	}
	return places
}

type fixture struct {
	extractor *mockExtractor
	searcher  *mockSearcher
	narrator  *scriptedNarrator
	metrics   *monitoring.Metrics
	orch      *Orchestrator
}

func newFixture(narrator *scriptedNarrator, timeout time.Duration) *fixture {
	f := &fixture{
		extractor: &mockExtractor{},
		searcher:  &mockSearcher{},
		narrator:  narrator,
		metrics:   monitoring.NewMetrics(),
	}
	f.orch = New(Deps{
		Intents:  f.extractor,
		Places:   f.searcher,
		Narrator: narrator,
		Metrics:  f.metrics,
	}, Options{NarrationTimeout: timeout, NarrationMaxTokens: 150, NarrationTemperature: 0.7, SearchRadius: 5000})
	return f
}

func userTurn(text string) Turn {
	return Turn{Messages: []types.ChatMessage{
		{Role: types.RoleAssistant, Content: "Hi! Where to?"},
		{Role: types.RoleUser, Content: text},
	}}
}

func TestRunOrdersPlacesBeforeNarration(t *testing.T) {
	f := newFixture(&scriptedNarrator{deltas: []string{"Try ", "Cafe A", "."}}, time.Second)
	li := types.LocationIntent{Query: "coffee", Location: "Soho", FormattedQuery: "coffee in Soho"}
	f.extractor.On("Extract", mock.Anything, "coffee in Soho").Return(li)
	f.searcher.On("Search", mock.Anything, "coffee in Soho", maps.SearchOptions{}).
		Return(types.Ok(maps.SearchResult{Results: samplePlaces(3)}))

	rec := &recorder{}
	summary, err := f.orch.Run(context.Background(), userTurn("coffee in Soho"), rec)

	require.NoError(t, err)
	assert.Equal(t, []EventKind{KindPlaces, KindContent, KindContent, KindContent, KindEnd}, rec.kinds())
	assert.Len(t, rec.events[0].Places, 3)
	assert.Equal(t, "Try ", rec.events[1].Content)

	assert.Equal(t, OutcomeCompleted, summary.Outcome)
	assert.Equal(t, li, summary.Intent)
	assert.Equal(t, 3, summary.PlaceCount)
	assert.True(t, summary.Narrated)
	assert.Equal(t, 3, summary.Deltas)
	prefix, _, err := id.SplitPrefixed(summary.TurnID.String())
	require.NoError(t, err)
	assert.Equal(t, "turn", prefix)

	require.NotNil(t, f.narrator.req.Temperature)
	assert.Equal(t, 0.7, *f.narrator.req.Temperature)
	assert.Equal(t, 150, f.narrator.req.MaxTokens)
	assert.Contains(t, f.narrator.req.Messages[len(f.narrator.req.Messages)-1].Content, "Cafe A")

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ChatTurns.WithLabelValues(OutcomeCompleted)))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.StreamEvents.WithLabelValues("content")))
	f.extractor.AssertExpectations(t)
	f.searcher.AssertExpectations(t)
}

func TestRunPassesOriginAsProximityBias(t *testing.T) {
	f := newFixture(&scriptedNarrator{}, time.Second)
	origin := &types.LatLng{Lat: 51.5, Lng: -0.12}
	f.extractor.On("Extract", mock.Anything, "pizza").Return(types.FallbackIntent("pizza"))
	f.searcher.On("Search", mock.Anything, "pizza", maps.SearchOptions{
		Location: "51.5,-0.12",
		Radius:   5000,
		Origin:   origin,
	}).Return(types.Ok(maps.SearchResult{}))

	turn := userTurn("pizza")
	turn.Origin = origin
	rec := &recorder{}
	_, err := f.orch.Run(context.Background(), turn, rec)

	require.NoError(t, err)
	f.searcher.AssertExpectations(t)
}

func TestRunWithoutResultsSkipsPlacesEvent(t *testing.T) {
	f := newFixture(&scriptedNarrator{deltas: []string{"Nothing nearby."}}, time.Second)
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(types.FallbackIntent("yurts"))
	f.searcher.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(types.Ok(maps.SearchResult{}))

	rec := &recorder{}
	summary, err := f.orch.Run(context.Background(), userTurn("yurts"), rec)

	require.NoError(t, err)
	assert.Equal(t, []EventKind{KindContent, KindEnd}, rec.kinds())
	assert.Zero(t, summary.PlaceCount)
}

func TestRunSearchDegradedEmitsOnlyError(t *testing.T) {
	f := newFixture(&scriptedNarrator{deltas: []string{"never"}}, time.Second)
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(types.FallbackIntent("museums"))
	f.searcher.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(types.Degraded(maps.SearchResult{}, "Maps lookups are unavailable: API key rejected"))

	rec := &recorder{}
	summary, err := f.orch.Run(context.Background(), userTurn("museums"), rec)

	require.NoError(t, err)
	require.Equal(t, []EventKind{KindError}, rec.kinds())
	assert.Equal(t, "Maps lookups are unavailable: API key rejected", rec.events[0].Error)
	assert.Equal(t, OutcomeSearchDegraded, summary.Outcome)
	assert.False(t, summary.Narrated)
	assert.Nil(t, f.narrator.req.Messages)
}

func TestRunSearchFatalEmitsOnlyError(t *testing.T) {
	f := newFixture(&scriptedNarrator{}, time.Second)
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(types.FallbackIntent("bars"))
	f.searcher.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(types.Fatal[maps.SearchResult](&maps.ProviderError{Operation: "search", Status: "OVER_QUERY_LIMIT"}))

	rec := &recorder{}
	summary, err := f.orch.Run(context.Background(), userTurn("bars"), rec)

	require.NoError(t, err)
	require.Equal(t, []EventKind{KindError}, rec.kinds())
	assert.Equal(t, searchFailedMessage, rec.events[0].Error)
	assert.Equal(t, OutcomeSearchFailed, summary.Outcome)
}

func TestRunNarrationTimeoutStillEnds(t *testing.T) {
	f := newFixture(&scriptedNarrator{block: true}, 30*time.Millisecond)
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(types.FallbackIntent("parks"))
	f.searcher.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(types.Ok(maps.SearchResult{Results: samplePlaces(2)}))

	rec := &recorder{}
	start := time.Now()
	summary, err := f.orch.Run(context.Background(), userTurn("parks"), rec)

	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, []EventKind{KindPlaces, KindEnd}, rec.kinds())
	assert.Equal(t, OutcomeCompleted, summary.Outcome)
	assert.False(t, summary.Narrated)
}

func TestRunNarrationErrorIsSwallowed(t *testing.T) {
	f := newFixture(&scriptedNarrator{deltas: []string{"Partial"}, err: errors.New("connection reset")}, time.Second)
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(types.FallbackIntent("gyms"))
	f.searcher.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(types.Ok(maps.SearchResult{Results: samplePlaces(1)}))

	rec := &recorder{}
	summary, err := f.orch.Run(context.Background(), userTurn("gyms"), rec)

	require.NoError(t, err)
	assert.Equal(t, []EventKind{KindPlaces, KindContent, KindEnd}, rec.kinds())
	assert.True(t, summary.Narrated)
}

func TestRunSkipsEmptyDeltas(t *testing.T) {
	f := newFixture(&scriptedNarrator{deltas: []string{"", "Hello", ""}}, time.Second)
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(types.FallbackIntent("x"))
	f.searcher.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(types.Ok(maps.SearchResult{}))

	rec := &recorder{}
	_, err := f.orch.Run(context.Background(), userTurn("x"), rec)

	require.NoError(t, err)
	assert.Equal(t, []EventKind{KindContent, KindEnd}, rec.kinds())
}

func TestRunRejectsHistoryWithoutUserMessage(t *testing.T) {
	f := newFixture(&scriptedNarrator{}, time.Second)

	rec := &recorder{}
	summary, err := f.orch.Run(context.Background(), Turn{Messages: []types.ChatMessage{
		{Role: types.RoleSystem, Content: "be helpful"},
	}}, rec)

	assert.ErrorIs(t, err, ErrNoUserMessage)
	assert.Empty(t, rec.events)
	assert.Equal(t, OutcomeInvalid, summary.Outcome)
	f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestRunRejectsBlankUserMessage(t *testing.T) {
	f := newFixture(&scriptedNarrator{deltas: []string{"hi"}}, time.Second)

	rec := &recorder{}
	summary, err := f.orch.Run(context.Background(), userTurn("  \t "), rec)

	assert.ErrorIs(t, err, ErrNoUserMessage)
	assert.Empty(t, rec.events)
	assert.Equal(t, OutcomeInvalid, summary.Outcome)
	f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	f.searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunEmitterFailureAbortsTurn(t *testing.T) {
	f := newFixture(&scriptedNarrator{deltas: []string{"a", "b", "c"}}, time.Second)
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(types.FallbackIntent("x"))
	f.searcher.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(types.Ok(maps.SearchResult{Results: samplePlaces(1)}))

	rec := &recorder{failAt: 2}
	summary, err := f.orch.Run(context.Background(), userTurn("x"), rec)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
	assert.Equal(t, []EventKind{KindPlaces}, rec.kinds())
	assert.Equal(t, OutcomeClientGone, summary.Outcome)
}

type panickingSearcher struct{}

func (panickingSearcher) Search(context.Context, string, maps.SearchOptions) types.Outcome[maps.SearchResult] {
	panic("nil map")
}

func TestRunInternalErrorEmitsErrorThenEnd(t *testing.T) {
	ex := &mockExtractor{}
	ex.On("Extract", mock.Anything, mock.Anything).Return(types.FallbackIntent("x"))
	orch := New(Deps{Intents: ex, Places: panickingSearcher{}, Narrator: &scriptedNarrator{}}, Options{})

	rec := &recorder{}
	summary, err := orch.Run(context.Background(), userTurn("x"), rec)

	require.NoError(t, err)
	assert.Equal(t, []EventKind{KindError, KindEnd}, rec.kinds())
	assert.Equal(t, OutcomeInternalError, summary.Outcome)
}

func TestDigest(t *testing.T) {
	km := 1.2
	places := []types.PlaceRecord{
		{Name: "Blue Bottle", Rating: rating(4.6), DistanceKm: &km, DistanceText: "1.2km"},
		{Name: "Corner Shop"},
	}
	assert.Equal(t, "1. Blue Bottle (rating 4.6, 1.2km away)\n2. Corner Shop (rating N/A)", Digest(places, DigestSize))

	many := samplePlaces(8)
	lines := strings.Split(Digest(many, DigestSize), "\n")
	assert.Len(t, lines, DigestSize)
	assert.Empty(t, Digest(nil, DigestSize))
}
