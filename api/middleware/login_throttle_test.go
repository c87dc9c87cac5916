package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vora-labs/gogo-admin/pkg/config"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
)

type fakeAttemptCounter struct {
	mu   sync.Mutex
	hits map[string]int64
}

func newFakeAttemptCounter() *fakeAttemptCounter {
	return &fakeAttemptCounter{hits: map[string]int64{}}
}

func (f *fakeAttemptCounter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[scope]++
	return f.hits[scope] <= limit, f.hits[scope], nil
}

func loginRequest(email, remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/login", strings.NewReader(`{"email":"`+email+`","password":"secret"}`))
	req.RemoteAddr = remote
	return req
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestThrottleLoginPassesBodyThrough(t *testing.T) {
	limits := LoginLimits{Window: time.Minute, PerIP: 2, PerEmail: 2}
	handler := ThrottleLogin(limits, newFakeAttemptCounter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if !strings.Contains(string(body), `"email":"tester@vora.dev"`) {
			t.Fatalf("login handler lost the body: %s", body)
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("tester@vora.dev", "1.2.3.4:5678"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestThrottleLoginByEmailAcrossIPs(t *testing.T) {
	handler := ThrottleLogin(LoginLimits{Window: time.Minute, PerEmail: 2}, newFakeAttemptCounter(), nil)(okHandler())

	for i, remote := range []string{"1.1.1.1:1", "2.2.2.2:2", "3.3.3.3:3"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("blocked@vora.dev", remote))
		if i < 2 {
			if rec.Code != http.StatusOK {
				t.Fatalf("attempt %d: expected 200, got %d", i, rec.Code)
			}
			continue
		}
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		var payload struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
			t.Fatalf("unexpected code: %s", payload.Error.Code)
		}
	}
}

func TestThrottleLoginByIPAcrossEmails(t *testing.T) {
	handler := ThrottleLogin(LoginLimits{Window: time.Minute, PerIP: 1}, newFakeAttemptCounter(), nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("a@vora.dev", "5.6.7.8:1234"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req := loginRequest("b@vora.dev", "9.9.9.9:1")
	req.Header.Set("X-Forwarded-For", "5.6.7.8, 10.0.0.1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected the forwarded client ip to be throttled, got %d", rec.Code)
	}
}

func TestThrottleLoginCountsEmailByDigest(t *testing.T) {
	counter := newFakeAttemptCounter()
	handler := ThrottleLogin(LoginLimits{Window: 30 * time.Second, PerEmail: 1}, counter, nil)(okHandler())

	var last *httptest.ResponseRecorder
	for _, email := range []string{" Ops@Vora.dev ", "ops@vora.dev"} {
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, loginRequest(email, "1.2.3.4:1"))
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected normalized emails to share a counter, got %d", last.Code)
	}
	if got := last.Header().Get("Retry-After"); got != "30" {
		t.Fatalf("expected Retry-After 30, got %q", got)
	}
	for scope := range counter.hits {
		if strings.Contains(strings.ToLower(scope), "ops@vora.dev") {
			t.Fatalf("raw email leaked into counter scope %q", scope)
		}
	}
}

func TestThrottleLoginDisabled(t *testing.T) {
	limits := LoginLimitsFromConfig(config.AuthRateLimitConfig{LoginWindow: 0, LoginIPLimit: 1, LoginEmailLimit: 1})
	counter := newFakeAttemptCounter()
	handler := ThrottleLogin(limits, counter, nil)(okHandler())
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("x@vora.dev", "1.2.3.4:1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected a zero window to disable throttling, got %d", rec.Code)
		}
	}
	if len(counter.hits) != 0 {
		t.Fatalf("expected no counters, got %v", counter.hits)
	}
}
