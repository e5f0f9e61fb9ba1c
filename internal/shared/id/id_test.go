package id

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	assert.NotEqual(t, id1.String(), id2.String())
	assert.Len(t, gen.GenerateString(), 26)
}

func TestTypedIDFormat(t *testing.T) {
	ids := map[string]string{
		TurnPrefix:    string(NewTurnID()),
		RequestPrefix: string(NewRequestID()),
		TracePrefix:   string(NewTraceID()),
		SpanPrefix:    string(NewSpanID()),
	}

	for prefix, value := range ids {
		got, parsed, err := SplitPrefixed(value)
		require.NoError(t, err, value)
		assert.Equal(t, prefix, got)
		assert.Len(t, parsed.String(), 26)
	}
}

func TestConnectionIDIsUUID(t *testing.T) {
	conn := NewConnectionID()

	require.True(t, strings.HasPrefix(conn.String(), ConnectionPrefix+"_"))
	_, err := uuid.Parse(strings.TrimPrefix(conn.String(), ConnectionPrefix+"_"))
	assert.NoError(t, err)
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(NewGenerator().GenerateString()))

	for _, bad := range []string{"", "invalid", "1234567890", "zzzzzzzzzzzzzzzzzzzzzzzzzzz"} {
		assert.False(t, IsValid(bad), bad)
	}
}

func TestSplitPrefixedRejectsMalformed(t *testing.T) {
	_, _, err := SplitPrefixed("noprefix")
	assert.Error(t, err)

	_, _, err = SplitPrefixed("turn_notaulid")
	assert.Error(t, err)
}

func TestTimestamp(t *testing.T) {
	before := time.Now().UnixMilli()
	turn := NewTurnID()
	after := time.Now().UnixMilli()

	ts, err := Timestamp(turn.String())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ts.UnixMilli(), before)
	assert.LessOrEqual(t, ts.UnixMilli(), after)

	raw := NewGenerator().GenerateString()
	_, err = Timestamp(raw)
	assert.NoError(t, err)
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	const goroutines = 50
	const perGoroutine = 50

	var wg sync.WaitGroup
	out := make(chan string, goroutines*perGoroutine)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				out <- gen.GenerateWithPrefix(TurnPrefix)
			}
		}()
	}
	wg.Wait()
	close(out)

	seen := make(map[string]bool)
	for v := range out {
		assert.False(t, seen[v], "duplicate id %s", v)
		seen[v] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}
