package sendgrid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc, retries int) *client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(logger.Nop(), Config{
		APIKey:           "sg-test",
		BaseURL:          srv.URL + "/",
		DefaultFromEmail: "noreply@careerbridge.test",
		DefaultFromName:  "CareerBridge",
		MaxRetries:       retries,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cl := c.(*client)
	cl.baseDelay = time.Millisecond
	return cl
}

func TestSendBuildsWireRequest(t *testing.T) {
	var got mailSendRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sg-test" {
			t.Errorf("auth = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("X-Message-Id", "msg-1")
		w.WriteHeader(http.StatusAccepted)
	}, 0)

	res, err := c.Send(context.Background(), SendEmailRequest{
		To:         []EmailAddress{{Email: "ada@example.com"}},
		Subject:    "  Milestone complete ",
		Text:       "plain",
		HTML:       "<p>html</p>",
		CustomArgs: map[string]string{"email_log_id": "abc"},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.StatusCode != http.StatusAccepted || res.MessageID != "msg-1" {
		t.Fatalf("result = %+v", res)
	}
	if got.From.Email != "noreply@careerbridge.test" || got.From.Name != "CareerBridge" {
		t.Fatalf("from = %+v", got.From)
	}
	if got.Subject != "Milestone complete" {
		t.Fatalf("subject = %q", got.Subject)
	}
	if len(got.Content) != 2 || got.Content[0].Type != "text/plain" || got.Content[1].Type != "text/html" {
		t.Fatalf("content = %+v", got.Content)
	}
	if len(got.Personalizations) != 1 || got.Personalizations[0].CustomArgs["email_log_id"] != "abc" {
		t.Fatalf("personalizations = %+v", got.Personalizations)
	}
}

func TestSendValidatesRequest(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusAccepted)
	}, 0)

	cases := []struct {
		name string
		req  SendEmailRequest
	}{
		{"no recipient", SendEmailRequest{Subject: "s", Text: "t"}},
		{"no subject", SendEmailRequest{To: []EmailAddress{{Email: "a@b.c"}}, Text: "t"}},
		{"no content", SendEmailRequest{To: []EmailAddress{{Email: "a@b.c"}}, Subject: "s"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Send(context.Background(), tc.req); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("expected no http calls, got %d", n)
	}
}

func TestSendRetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}, 2)

	_, err := c.Send(context.Background(), SendEmailRequest{
		To:      []EmailAddress{{Email: "a@b.c"}},
		Subject: "s",
		Text:    "t",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("calls = %d, want 2", n)
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad from"}]}`))
	}, 3)

	_, err := c.Send(context.Background(), SendEmailRequest{
		To:      []EmailAddress{{Email: "a@b.c"}},
		Subject: "s",
		Text:    "t",
	})
	he, ok := err.(*HTTPError)
	if !ok {
		t.Fatalf("expected *HTTPError, got %T %v", err, err)
	}
	if he.StatusCode != http.StatusBadRequest || he.Error() != "sendgrid http 400: bad from" {
		t.Fatalf("err = %v", he)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls = %d, want 1", n)
	}
}

func TestNewFromEnvWithoutKey(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "")
	c, err := NewFromEnv(logger.Nop())
	if err != nil || c != nil {
		t.Fatalf("expected nil client, got %v %v", c, err)
	}
}
