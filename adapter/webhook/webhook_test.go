package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pithecene-io/mimestream/adapter"
	"github.com/pithecene-io/mimestream/iox"
)

func testEvent() *adapter.ExtractionCompletedEvent {
	return &adapter.ExtractionCompletedEvent{
		ContractVersion: "0.3.0",
		EventType:       adapter.EventTypeExtractionCompleted,
		ExtractionID:    "ext-001",
		Source:          "billing",
		URL:             "https://example.com/mtom",
		Day:             "2026-10-19",
		Mode:            "xop",
		Outcome:         adapter.OutcomeSuccess,
		ContentType:     `multipart/related; type="application/xop+xml"; boundary=b`,
		StoragePath:     "file:///data/source=billing/day=2026-10-19/extraction_id=ext-001",
		Timestamp:       "2026-10-19T12:00:00Z",
		PartCount:       3,
		ManifestBytes:   812,
		BytesRead:       40960,
		DurationMs:      250,
	}
}

func fastBackoff(t *testing.T) {
	t.Helper()
	prev := adapter.BaseBackoff
	adapter.BaseBackoff = time.Millisecond
	t.Cleanup(func() { adapter.BaseBackoff = prev })
}

func TestPublish_Success(t *testing.T) {
	var received adapter.ExtractionCompletedEvent
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("unmarshal: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	a, err := New(Config{URL: ts.URL})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer iox.DiscardClose(a)

	if err := a.Publish(t.Context(), testEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if received.ExtractionID != "ext-001" {
		t.Errorf("ExtractionID = %q, want ext-001", received.ExtractionID)
	}
	if received.EventType != adapter.EventTypeExtractionCompleted {
		t.Errorf("EventType = %q", received.EventType)
	}
	if received.PartCount != 3 || received.ManifestBytes != 812 {
		t.Errorf("PartCount/ManifestBytes = %d/%d", received.PartCount, received.ManifestBytes)
	}
}

func TestPublish_CustomHeaders(t *testing.T) {
	var authHeader atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	a, err := New(Config{URL: ts.URL, Headers: map[string]string{"Authorization": "Bearer test-token"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer iox.DiscardClose(a)

	if err := a.Publish(t.Context(), testEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got, _ := authHeader.Load().(string); got != "Bearer test-token" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestPublish_StatusHandling(t *testing.T) {
	tests := []struct {
		name         string
		codes        []int // per attempt; last repeats
		retries      int
		wantErr      bool
		wantAttempts int32
	}{
		{"2xx first try", []int{201}, 3, false, 1},
		{"5xx then ok", []int{500, 502, 200}, 3, false, 3},
		{"5xx exhausts", []int{503}, 2, true, 3},
		{"4xx fails fast", []int{404}, 3, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fastBackoff(t)
			var attempts atomic.Int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				n := int(attempts.Add(1))
				code := tt.codes[min(n, len(tt.codes))-1]
				w.WriteHeader(code)
			}))
			defer ts.Close()

			a, err := New(Config{URL: ts.URL, Retries: tt.retries})
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			defer iox.DiscardClose(a)

			err = a.Publish(t.Context(), testEvent())
			if (err != nil) != tt.wantErr {
				t.Fatalf("publish err = %v, wantErr %v", err, tt.wantErr)
			}
			if got := attempts.Load(); got != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", got, tt.wantAttempts)
			}
			if tt.wantErr {
				var se *StatusError
				if !errors.As(err, &se) {
					t.Errorf("err = %v, want wrapping *StatusError", err)
				}
			}
		})
	}
}

func TestPublish_ContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	a, err := New(Config{URL: ts.URL, Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer iox.DiscardClose(a)

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	if err := a.Publish(ctx, testEvent()); err == nil {
		t.Fatal("expected error on canceled context")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for empty URL")
	}
	if _, err := New(Config{URL: "http://example.com", Retries: -1}); err == nil {
		t.Error("expected error for negative retries")
	}
	a, err := New(Config{URL: "http://example.com"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if a.config.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", a.config.Timeout, DefaultTimeout)
	}
}
