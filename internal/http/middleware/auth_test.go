package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
	"github.com/yungbote/careerbridge-backend/internal/http/response"
	"github.com/yungbote/careerbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
	"github.com/yungbote/careerbridge-backend/internal/services"
)

type stubAuth struct {
	tokens map[string]uuid.UUID
}

func (s stubAuth) Register(context.Context, services.RegisterInput) (*types.User, error) {
	return nil, errors.New("not implemented")
}

func (s stubAuth) Login(context.Context, string, string) (string, error) {
	return "", errors.New("not implemented")
}

func (s stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	id, ok := s.tokens[token]
	if !ok {
		return ctx, errors.New("bad token")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: token, UserID: id}), nil
}

func (s stubAuth) AccessTTL() time.Duration { return time.Hour }

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	am := NewAuthMiddleware(logger.Nop(), stubAuth{tokens: map[string]uuid.UUID{
		"good": userID,
		"nil":  uuid.Nil,
	}})

	r := gin.New()
	r.Use(am.RequireAuth())
	r.GET("/api/me", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.UserID(c.Request.Context()).String())
	})

	cases := []struct {
		name   string
		target string
		header string
		status int
		code   string
	}{
		{"bearer", "/api/me", "Bearer good", http.StatusOK, ""},
		{"query token", "/api/me?token=good", "", http.StatusOK, ""},
		{"missing", "/api/me", "", http.StatusUnauthorized, "unauthorized"},
		{"wrong scheme", "/api/me", "Basic good", http.StatusUnauthorized, "unauthorized"},
		{"invalid", "/api/me", "Bearer bad", http.StatusUnauthorized, "unauthorized"},
		{"no subject", "/api/me", "Bearer nil", http.StatusForbidden, "forbidden"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.status, rec.Body.String())
			}
			if tc.status == http.StatusOK {
				if rec.Body.String() != userID.String() {
					t.Fatalf("user = %q", rec.Body.String())
				}
				return
			}
			var env response.ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.Error.Code != tc.code {
				t.Fatalf("code = %q, want %q", env.Error.Code, tc.code)
			}
		})
	}
}

func TestAttachTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/healthz", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("X-Request-Id = %q", got)
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("missing X-Trace-Id")
	}
	if seen == nil || seen.RequestID != "req-123" || seen.TraceID == "" {
		t.Fatalf("trace data = %+v", seen)
	}
}
