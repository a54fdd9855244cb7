package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testPayload() Payload {
	return Payload{
		Timestamp: "2026-03-01T12:00:00.000Z",
		ActionID:  "a-1",
		Category:  "trading",
		Name:      "buy position",
		Outcome:   "queue_approval",
		Reason:    "risk level medium",
		Score:     50,
		Level:     "medium",
	}
}

func TestNewDispatcherEmptyConfigsIsNil(t *testing.T) {
	if d := NewDispatcher(nil, 10); d != nil {
		t.Fatal("expected nil dispatcher for empty configs")
	}

	// Nil-safe by contract.
	var d *Dispatcher
	d.Notify(EventDecision, testPayload())
}

func TestDispatcherMatchesEvents(t *testing.T) {
	configs := []WebhookConfig{
		{URL: "http://one", Events: []string{"approval_needed"}},
		{URL: "http://two", Events: []string{"*"}},
		{URL: "http://three", Events: []string{"daily_summary"}},
	}

	d := NewDispatcher(configs, 0)
	var mu sync.Mutex
	var delivered []string
	done := make(chan struct{}, len(configs))
	d.send = func(cfg WebhookConfig, event Event, payload Payload) error {
		mu.Lock()
		delivered = append(delivered, cfg.URL)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}

	d.Notify(EventApprovalNeeded, testPayload())
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for deliveries")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 2 {
		t.Fatalf("delivered to %d hooks, want 2 (exact match + wildcard): %v", len(delivered), delivered)
	}
	for _, url := range delivered {
		if url == "http://three" {
			t.Error("delivered to non-matching hook")
		}
	}
}

func TestLimiterFixedWindow(t *testing.T) {
	l := newLimiter(2)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if !l.allow(base) || !l.allow(base) {
		t.Fatal("first two sends should be allowed")
	}
	if l.allow(base.Add(time.Second)) {
		t.Fatal("third send in window should be dropped")
	}
	if !l.allow(base.Add(61 * time.Second)) {
		t.Fatal("send after window reset should be allowed")
	}
}

func TestLimiterDisabled(t *testing.T) {
	l := newLimiter(0)
	now := time.Now()
	for i := 0; i < 100; i++ {
		if !l.allow(now) {
			t.Fatal("disabled limiter must always allow")
		}
	}
}

func TestSendDeliversGenericPayload(t *testing.T) {
	var gotBody []byte
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := WebhookConfig{
		URL:     srv.URL,
		Headers: map[string]string{"Authorization": "Bearer tok"},
	}
	if err := Send(cfg, EventApprovalNeeded, testPayload()); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotAuth != "Bearer tok" {
		t.Errorf("auth header = %q", gotAuth)
	}
	var decoded map[string]any
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if decoded["event"] != "approval_needed" {
		t.Errorf("event = %v, want approval_needed", decoded["event"])
	}
	if decoded["action_id"] != "a-1" {
		t.Errorf("action_id = %v, want a-1", decoded["action_id"])
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := Send(WebhookConfig{URL: srv.URL}, EventDecision, testPayload())
	if err == nil {
		t.Fatal("expected error for HTTP 400")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1 (no retry on 4xx)", calls.Load())
	}
}

func TestSlackFormat(t *testing.T) {
	body, err := formatPayload("slack", EventEscalation, testPayload())
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	s := string(body)
	for _, want := range []string{"blocks", "autogate: escalation", "buy position", "50 (medium)"} {
		if !strings.Contains(s, want) {
			t.Errorf("slack payload missing %q: %s", want, s)
		}
	}
}
