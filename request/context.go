package request

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
)

var (
	ErrNoClientHash = errors.New("client identity is not resolved")
	ErrNoCapacity   = errors.New("capacity state is not resolved")
)

type Context struct {
	request        *http.Request
	responseWriter http.ResponseWriter

	endpoint string

	clientHash string

	capacityResolved bool
	capacityState    domain.CapacityState
	flags            domain.FeatureFlags
}

func NewContext(request *http.Request, response http.ResponseWriter, endpoint string) *Context {
	return &Context{
		request:        request,
		responseWriter: response,
		endpoint:       endpoint,
	}
}

func (c *Context) Request() *http.Request {
	return c.request
}

func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.responseWriter
}

func (c *Context) SetResponseWriter(writer http.ResponseWriter) {
	c.responseWriter = writer
}

func (c *Context) Endpoint() string {
	return c.endpoint
}

func (c *Context) SetClientHash(clientHash string) {
	c.clientHash = clientHash
}

func (c *Context) ClientHash() (string, error) {
	if c.clientHash == "" {
		return "", ErrNoClientHash
	}
	return c.clientHash, nil
}

func (c *Context) SetCapacity(state domain.CapacityState, flags domain.FeatureFlags) {
	c.capacityResolved = true
	c.capacityState = state
	c.flags = flags
}

func (c *Context) Capacity() (domain.CapacityState, domain.FeatureFlags, error) {
	if !c.capacityResolved {
		return domain.CapacityState{}, domain.FeatureFlags{}, ErrNoCapacity
	}
	return c.capacityState, c.flags, nil
}

func (c *Context) Context() context.Context {
	return c.request.Context()
}

func (c *Context) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}
