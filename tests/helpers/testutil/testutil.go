// Package testutil provides fake upstreams and config helpers for backend tests.
package testutil

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/placechat/internal/infrastructure/config"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

// MapsAPIKey is the key the fake Google server expects
const MapsAPIKey = "test-key"

// FakeGoogle serves canned Google Maps web service responses
type FakeGoogle struct {
	Server *httptest.Server

	mu     sync.Mutex
	routes map[string]string
	calls  map[string]int
}

// NewFakeGoogle starts a fake Google Maps server closed at test cleanup.
// Unregistered paths answer ZERO_RESULTS.
func NewFakeGoogle(t *testing.T) *FakeGoogle {
	t.Helper()
	f := &FakeGoogle{routes: map[string]string{}, calls: map[string]int{}}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[r.URL.Path]++
		body, ok := f.routes[r.URL.Path]
		f.mu.Unlock()

		if r.URL.Query().Get("key") != MapsAPIKey {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`)
			return
		}
		if !ok {
			body = `{"status":"ZERO_RESULTS","results":[]}`
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(f.Server.Close)
	return f
}

// Respond registers a JSON body for a path such as /place/textsearch/json
func (f *FakeGoogle) Respond(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = body
}

// Calls reports how many requests hit path
func (f *FakeGoogle) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

// FakeOllama answers /api/chat. Requests with format "json" get the intent
// reply; streamed requests get the narration split into NDJSON frames.
type FakeOllama struct {
	Server *httptest.Server

	mu        sync.Mutex
	intent    string
	narration []string
	requests  int
}

// NewFakeOllama starts a fake Ollama server closed at test cleanup
func NewFakeOllama(t *testing.T, intent string, narration ...string) *FakeOllama {
	t.Helper()
	f := &FakeOllama{intent: intent, narration: narration}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req struct {
			Stream bool   `json:"stream"`
			Format string `json:"format"`
		}
		require.NoError(t, sonic.Unmarshal(raw, &req))

		f.mu.Lock()
		f.requests++
		intentReply, parts := f.intent, f.narration
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/x-ndjson")
		if !req.Stream {
			writeFrame(w, types.ChatMessage{Role: types.RoleAssistant, Content: intentReply}, true)
			return
		}
		bw := bufio.NewWriter(w)
		for _, p := range parts {
			writeFrame(bw, types.ChatMessage{Role: types.RoleAssistant, Content: p}, false)
		}
		writeFrame(bw, types.ChatMessage{Role: types.RoleAssistant}, true)
		_ = bw.Flush()
	}))
	t.Cleanup(f.Server.Close)
	return f
}

// Requests reports how many chat calls were served
func (f *FakeOllama) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func writeFrame(w io.Writer, msg types.ChatMessage, done bool) {
	frame := map[string]any{"model": "fake", "message": msg, "done": done}
	if done {
		frame["done_reason"] = "stop"
		frame["eval_count"] = 7
	}
	b, _ := sonic.Marshal(frame)
	fmt.Fprintf(w, "%s\n", b)
}

// Config returns a development config pointed at the fakes. Either may be nil.
func Config(google *FakeGoogle, ollama *FakeOllama) *config.Config {
	cfg := config.Default()
	cfg.Logging.Development = true
	cfg.RateLimit.Enabled = false
	if google != nil {
		cfg.Maps.APIKey = MapsAPIKey
		cfg.Maps.BaseURL = google.Server.URL
	}
	if ollama != nil {
		cfg.LLM.BaseURL = ollama.Server.URL
	}
	return cfg
}

// SSEData returns the data payloads of an event stream body
func SSEData(body string) []string {
	var frames []string
	for _, block := range strings.Split(body, "\n\n") {
		if payload, ok := strings.CutPrefix(strings.TrimSpace(block), "data: "); ok {
			frames = append(frames, payload)
		}
	}
	return frames
}
