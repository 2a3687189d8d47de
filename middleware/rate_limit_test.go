package middleware_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
	"github.com/yojahny55/gta-6-launch-date-sub001/middleware"
	"github.com/yojahny55/gta-6-launch-date-sub001/request"
)

type limiterStub struct {
	result domain.RateLimitResult
}

func (s limiterStub) Check(_ context.Context, _ string, _ string) domain.RateLimitResult {
	return s.result
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newRequestContext(writer *httptest.ResponseRecorder) *request.Context {
	req := httptest.NewRequest("POST", "/api/predictions", nil)
	ctx := request.NewContext(req, writer, "submit")
	ctx.SetClientHash("client-hash")
	return ctx
}

func TestRateLimitAllowed(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	writer := httptest.NewRecorder()
	ctx := newRequestContext(writer)

	called := false
	handler := middleware.RateLimit(limiterStub{result: domain.RateLimitResult{Allow: true, Remaining: 5}}, "submit")(
		middleware.HandlerFunc(func(ctx *request.Context) error {
			called = true
			return nil
		}),
	)
	err := handler.Handle(ctx)
	require.NoError(err)
	require.True(called)
}

func TestRateLimitDenied(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	writer := httptest.NewRecorder()
	ctx := newRequestContext(writer)

	resetAt := time.Now().Add(42 * time.Second)
	handler := middleware.RateLimit(limiterStub{result: domain.RateLimitResult{
		Allow:      false,
		Limit:      10,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: 42 * time.Second,
	}}, "submit")(
		middleware.HandlerFunc(func(ctx *request.Context) error {
			t.Fatal("next handler must not be called")
			return nil
		}),
	)

	err := handler.Handle(ctx)
	require.Error(err)

	httpErr, ok := err.(middleware.HttpError)
	require.True(ok)
	require.NoError(httpErr.WriteError(writer))

	require.EqualValues(429, writer.Code)
	require.EqualValues("10", writer.Header().Get("X-RateLimit-Limit"))
	require.EqualValues("0", writer.Header().Get("X-RateLimit-Remaining"))
	require.EqualValues("42", writer.Header().Get("Retry-After"))
	require.NotEmpty(writer.Header().Get("X-RateLimit-Reset"))

	body := errorBody{}
	require.NoError(json.Unmarshal(writer.Body.Bytes(), &body))
	require.EqualValues("RATE_LIMIT_EXCEEDED", body.Error.Code)
	require.Contains(body.Error.Message, "wait 42 seconds")
}
