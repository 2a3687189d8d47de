package middleware

import (
	"net/http"

	"github.com/yojahny55/gta-6-launch-date-sub001/request"
)

type IdentityHasher interface {
	Hash(r *http.Request) string
}

// ClientId resolves the anonymized client identifier used as the
// rate-limit and queue key.
func ClientId(hasher IdentityHasher) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			ctx.SetClientHash(hasher.Hash(ctx.Request()))
			return next.Handle(ctx)
		})
	}
}
