package middleware

import (
	"bufio"
	"net"
	"net/http"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"github.com/yojahny55/gta-6-launch-date-sub001/request"
)

type writerWrapper struct {
	http.ResponseWriter

	statusCode int
}

func (w *writerWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	upstream, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("writerWrapper: upstream writer doesn't implement Hijack")
	}
	return upstream.Hijack()
}

func (w *writerWrapper) StatusCode() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *writerWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func Logger(logger log.Logger, enableRequestLogging bool) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			if !enableRequestLogging {
				return next.Handle(ctx)
			}

			r := ctx.Request()
			writer := &writerWrapper{ResponseWriter: ctx.ResponseWriter()}
			ctx.SetResponseWriter(writer)

			err := next.Handle(ctx)

			clientHash, _ := ctx.ClientHash()
			fields := []log.Field{
				log.String("httpMethod", r.Method),
				log.String("path", r.URL.Path),
				log.String("endpoint", ctx.Endpoint()),
				log.Int("statusCode", writer.StatusCode()),
				log.String("clientHash", clientHash),
			}
			state, _, capacityErr := ctx.Capacity()
			if capacityErr == nil {
				fields = append(fields, log.String("capacityLevel", state.Level.String()))
			}
			logger.Debug(ctx.Context(), "log request", fields...)

			return err
		})
	}
}
